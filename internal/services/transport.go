package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/spotlist/internal/shared"
)

// Transport is the blocking request/response primitive the client is built on.
type Transport interface {
	Get(ctx context.Context, rawURL string, header http.Header) (*Response, error)
	PostForm(ctx context.Context, rawURL string, header http.Header, form url.Values) (*Response, error)
}

// Response is an upstream reply with its body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// JSON decodes the body into v, wrapping decode failures in [shared.ErrMalformedBody].
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrMalformedBody, err)
	}
	return nil
}

// HTTPTransport implements [Transport] with an [http.Client].
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport wraps client, defaulting to [http.DefaultClient].
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{client: client}
}

// Get performs a GET request with the given headers.
func (t *HTTPTransport) Get(ctx context.Context, rawURL string, header http.Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	copyHeader(req.Header, header)

	return t.do(req)
}

// PostForm performs a POST with an application/x-www-form-urlencoded body.
func (t *HTTPTransport) PostForm(ctx context.Context, rawURL string, header http.Header, form url.Values) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	copyHeader(req.Header, header)
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	return t.do(req)
}

func (t *HTTPTransport) do(req *http.Request) (*Response, error) {
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrAPIRequest, err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

func copyHeader(dst, src http.Header) {
	for k, vs := range src {
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
}
