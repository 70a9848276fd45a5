// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/desertthunder/spotlist/internal/models"
	"github.com/desertthunder/spotlist/internal/services"
	"golang.org/x/oauth2"
)

// MockTokenProvider is a test double for [services.TokenProvider]
type MockTokenProvider struct {
	Token  string
	Expiry time.Time
	Err    error
	Calls  int
}

func (m *MockTokenProvider) TokenSource(ctx context.Context) oauth2.TokenSource {
	return mockTokenSource{m}
}

type mockTokenSource struct {
	provider *MockTokenProvider
}

func (s mockTokenSource) Token() (*oauth2.Token, error) {
	m := s.provider
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return &oauth2.Token{AccessToken: m.Token, TokenType: "Bearer", Expiry: m.Expiry}, nil
}

// MockPlaylistSource is a test double for [services.PlaylistSource] returning canned retrievals.
type MockPlaylistSource struct {
	Info      models.Retrieval[*models.PlaylistInfo]
	InfoErr   error
	Tracks    models.Retrieval[models.TrackCollection]
	TracksErr error

	Tokens      []string
	PlaylistIDs []string
}

func (m *MockPlaylistSource) PlaylistInfo(ctx context.Context, token, playlistID string) (models.Retrieval[*models.PlaylistInfo], error) {
	m.Tokens = append(m.Tokens, token)
	m.PlaylistIDs = append(m.PlaylistIDs, playlistID)
	return m.Info, m.InfoErr
}

func (m *MockPlaylistSource) PlaylistTracks(ctx context.Context, token, playlistID string) (models.Retrieval[models.TrackCollection], error) {
	m.Tokens = append(m.Tokens, token)
	m.PlaylistIDs = append(m.PlaylistIDs, playlistID)
	return m.Tracks, m.TracksErr
}

// MockTransport is a [services.Transport] that replays queued responses in order
// and records every request URL.
type MockTransport struct {
	Responses []*services.Response
	Errs      []error
	URLs      []string
}

func (m *MockTransport) next(target string) (*services.Response, error) {
	i := len(m.URLs)
	m.URLs = append(m.URLs, target)
	if i < len(m.Errs) && m.Errs[i] != nil {
		return nil, m.Errs[i]
	}
	if i >= len(m.Responses) {
		return nil, errors.New("mock transport: no response queued")
	}
	return m.Responses[i], nil
}

func (m *MockTransport) Get(ctx context.Context, target string, header http.Header) (*services.Response, error) {
	return m.next(target)
}

func (m *MockTransport) PostForm(ctx context.Context, target string, header http.Header, form url.Values) (*services.Response, error) {
	return m.next(target)
}

// JSONResponse builds a [services.Response] with the given status and raw body
func JSONResponse(status int, body string) *services.Response {
	return &services.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       []byte(body),
	}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
