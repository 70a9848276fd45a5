package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlist/internal/models"
	"github.com/desertthunder/spotlist/internal/shared"
	tu "github.com/desertthunder/spotlist/internal/testing"
	"github.com/desertthunder/spotlist/internal/ui"
)

const (
	testURL = "https://open.spotify.com/playlist/5V3Bjk9SnOp9hz1cdwguvV?si=befaf075541c4810"
	testID  = "5V3Bjk9SnOp9hz1cdwguvV"
)

func intRef(n int) *int { return &n }

// testConfig returns defaults with credentials set and the database in a temp dir.
func testConfig(t *testing.T) *shared.Config {
	t.Helper()
	config := shared.DefaultConfig()
	config.Credentials.Spotify.ClientID = "test_client_id"
	config.Credentials.Spotify.ClientSecret = "test_client_secret"
	config.Database.Path = filepath.Join(t.TempDir(), "spotlist.db")
	return config
}

// newTestRunner builds a runner writing plain output into the returned buffer.
func newTestRunner(t *testing.T, opts RunnerOpts) (*Runner, *bytes.Buffer) {
	t.Helper()
	output := &bytes.Buffer{}
	if opts.Config == nil {
		opts.Config = testConfig(t)
	}
	opts.Output = output
	opts.Logger = shared.NewLogger(io.Discard)
	opts.Palette = ui.Plain
	return NewRunner(opts), output
}

func run(r *Runner, args ...string) error {
	return r.Command().Run(context.Background(), append([]string{"spotlist"}, args...))
}

func mockTokens() *tu.MockTokenProvider {
	return &tu.MockTokenProvider{Token: "mock_token"}
}

func mockSource() *tu.MockPlaylistSource {
	return &tu.MockPlaylistSource{
		Info: models.Got(&models.PlaylistInfo{
			Name:        "My Playlist",
			Description: "A test playlist",
			Owner:       "TestUser",
			TotalTracks: intRef(2),
			Followers:   intRef(100),
		}, false),
		Tracks: models.Got(models.TrackCollection{
			{Name: "Song One", Artists: "Artist One", Album: "Album One", ReleaseDate: "2023-01-01", Popularity: models.KnownPopularity(80)},
			{Name: "Song Two", Artists: "Artist Two, Artist Three", Album: "Album Two", ReleaseDate: "2022-05-05", Popularity: models.KnownPopularity(60)},
		}, false),
	}
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			tokens := mockTokens()
			source := mockSource()

			runner := NewRunner(RunnerOpts{
				Config:    config,
				Logger:    logger,
				Output:    output,
				Tokens:    tokens,
				Playlists: source,
				Palette:   ui.Plain,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.tokens != tokens {
				t.Error("expected tokens to be set")
			}
			if runner.playlists != source {
				t.Error("expected playlists to be set")
			}
			if runner.palette != ui.Plain {
				t.Error("expected palette to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			if runner := NewRunner(RunnerOpts{}); runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			if runner := NewRunner(RunnerOpts{}); runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil palette uses default colors", func(t *testing.T) {
			if runner := NewRunner(RunnerOpts{}); runner.palette != ui.Default {
				t.Error("expected default palette")
			}
		})
	})

	t.Run("before", func(t *testing.T) {
		t.Run("resolves config from --config", func(t *testing.T) {
			t.Setenv(shared.EnvClientID, "")
			t.Setenv(shared.EnvClientSecret, "")

			configPath := filepath.Join(t.TempDir(), "config.toml")
			content := `
[credentials.spotify]
client_id = "file_id"
client_secret = "file_secret"

[log]
level = "warn"
`
			if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: shared.NewLogger(io.Discard), Palette: ui.Plain})
			if err := run(runner, "--config", configPath, "playlist", "id", testURL); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if runner.config == nil {
				t.Fatal("expected config to be resolved")
			}
			if runner.config.Credentials.Spotify.ClientID != "file_id" {
				t.Errorf("expected file credentials, got %q", runner.config.Credentials.Spotify.ClientID)
			}
			if runner.logger.GetLevel() != log.WarnLevel {
				t.Errorf("expected warn level, got %v", runner.logger.GetLevel())
			}
		})

		t.Run("invalid config file fails", func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(configPath, []byte("not = [valid"), 0600); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: shared.NewLogger(io.Discard), Palette: ui.Plain})
			err := run(runner, "--config", configPath, "playlist", "id", testURL)
			if !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})

		t.Run("--verbose enables debug logging", func(t *testing.T) {
			runner, _ := newTestRunner(t, RunnerOpts{})
			if err := run(runner, "--verbose", "playlist", "id", testURL); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if runner.logger.GetLevel() != log.DebugLevel {
				t.Errorf("expected debug level, got %v", runner.logger.GetLevel())
			}
		})
	})

	t.Run("tokenProvider", func(t *testing.T) {
		t.Run("builds exchanger from config", func(t *testing.T) {
			runner, _ := newTestRunner(t, RunnerOpts{})
			provider, err := runner.tokenProvider()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if provider == nil {
				t.Fatal("expected provider")
			}
		})

		t.Run("missing credentials", func(t *testing.T) {
			runner, _ := newTestRunner(t, RunnerOpts{Config: shared.DefaultConfig()})
			_, err := runner.tokenProvider()
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if result := output.String(); result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("writePlainln surrounds with newlines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlainln("Next steps:"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "\nNext steps:\n" {
				t.Errorf("unexpected output %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}

		for _, want := range []string{"setup", "token", "playlist", "snapshots"} {
			if !names[want] {
				t.Errorf("expected %s command to be registered", want)
			}
		}
	})
}
