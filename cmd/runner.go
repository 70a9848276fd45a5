package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlist/internal/services"
	"github.com/desertthunder/spotlist/internal/shared"
	"github.com/desertthunder/spotlist/internal/ui"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The token provider and playlist source are built from the resolved config on first use
// unless injected through [RunnerOpts].
type Runner struct {
	config    *shared.Config
	tokens    services.TokenProvider
	source    oauth2.TokenSource
	playlists services.PlaylistSource
	logger    *log.Logger
	output    io.Writer
	palette   *ui.Palette
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config    *shared.Config
	Tokens    services.TokenProvider
	Playlists services.PlaylistSource
	Logger    *log.Logger
	Output    io.Writer
	Palette   *ui.Palette
}

// NewRunner creates a new Runner with the provided configuration.
//
// A nil Config is resolved from the --config flag before any command runs.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Palette == nil {
		opts.Palette = ui.Default
	}

	return &Runner{
		config:    opts.Config,
		tokens:    opts.Tokens,
		playlists: opts.Playlists,
		logger:    opts.Logger,
		output:    opts.Output,
		palette:   opts.Palette,
	}
}

// Command builds the root command.
func (r *Runner) Command() *cli.Command {
	return &cli.Command{
		Name:      "spotlist",
		Usage:     "Retrieve Spotify playlist metadata and tracks",
		Version:   "0.1.0",
		Writer:    r.output,
		ErrWriter: r.output,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.before,
		Commands: r.register(),
	}
}

// before resolves the configuration and log level ahead of every command.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if r.config == nil {
		config, err := shared.ResolveConfig(cmd.String("config"))
		if err != nil {
			return ctx, err
		}
		r.config = config
	}

	shared.SetLogLevel(r.logger, r.config.Log.ParsedLevel())
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	return ctx, nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, tokenCommand, playlistCommand, snapshotsCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) clientOpts() services.ClientOpts {
	client := &http.Client{Timeout: r.config.API.Timeout()}
	return services.ClientOpts{
		BaseURL:   r.config.API.BaseURL,
		TokenURL:  r.config.API.TokenURL,
		Transport: services.NewHTTPTransport(client),
		Logger:    r.logger,
	}
}

func (r *Runner) tokenProvider() (services.TokenProvider, error) {
	if r.tokens != nil {
		return r.tokens, nil
	}

	exchanger, err := services.NewTokenExchanger(r.config.Credentials.Spotify, r.clientOpts())
	if err != nil {
		return nil, fmt.Errorf("%w: set %s and %s or [credentials.spotify] in the config file",
			err, shared.EnvClientID, shared.EnvClientSecret)
	}
	r.tokens = exchanger
	return r.tokens, nil
}

func (r *Runner) playlistSource() services.PlaylistSource {
	if r.playlists == nil {
		r.playlists = services.NewSpotifyClient(r.clientOpts())
	}
	return r.playlists
}

// openDatabase opens the configured snapshot database, applying pending migrations when migrate is set.
func (r *Runner) openDatabase(migrate bool) (*sql.DB, error) {
	path := r.config.Database.Path
	r.logger.Debug("opening database", "path", path)

	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if migrate {
		if err := shared.RunMigrations(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return db, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", r.palette.Title(title))
	r.writePlain("═══════════════════════════════════════\n")
}
