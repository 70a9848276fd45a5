package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/spotlist/internal/formatter"
	"github.com/desertthunder/spotlist/internal/models"
	"github.com/desertthunder/spotlist/internal/repositories"
	"github.com/desertthunder/spotlist/internal/services"
	"github.com/desertthunder/spotlist/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// playlistTarget resolves the playlist ID from --id or the url argument.
func playlistTarget(cmd *cli.Command) (string, error) {
	if id := strings.TrimSpace(cmd.String("id")); id != "" {
		return id, nil
	}

	rawURL := cmd.StringArg("url")
	if rawURL == "" {
		return "", fmt.Errorf("%w: a playlist URL or --id is required", shared.ErrMissingArgument)
	}

	return services.PlaylistID(rawURL)
}

// accessToken returns a bearer token, exchanging the configured credentials
// only when no unexpired token is held.
func (r *Runner) accessToken(ctx context.Context) (*oauth2.Token, error) {
	if r.source == nil {
		provider, err := r.tokenProvider()
		if err != nil {
			return nil, err
		}
		r.source = oauth2.ReuseTokenSource(nil, provider.TokenSource(ctx))
	}

	r.logger.Debug("requesting access token")
	token, err := r.source.Token()
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}
	return token, nil
}

func (r *Runner) token(ctx context.Context) (string, error) {
	token, err := r.accessToken(ctx)
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

// tokenOutput is the JSON shape of the token command.
type tokenOutput struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	Expiry      *time.Time `json:"expiry,omitempty"`
}

// fetchInfo retrieves playlist metadata, turning a failed retrieval into an error.
func (r *Runner) fetchInfo(ctx context.Context, token, playlistID string) (*models.PlaylistInfo, error) {
	result, err := r.playlistSource().PlaylistInfo(ctx, token, playlistID)
	if err != nil {
		return nil, fmt.Errorf("%w: playlist info: %w", shared.ErrAPIRequest, err)
	}
	if !result.OK() {
		return nil, fmt.Errorf("%w: playlist info for %s: %w", shared.ErrAPIRequest, playlistID, result.Cause)
	}
	return result.Value, nil
}

// fetchTracks retrieves every track of a playlist, turning a failed retrieval into an error.
func (r *Runner) fetchTracks(ctx context.Context, token, playlistID string) (models.TrackCollection, error) {
	result, err := r.playlistSource().PlaylistTracks(ctx, token, playlistID)
	if err != nil {
		return nil, fmt.Errorf("%w: playlist tracks: %w", shared.ErrAPIRequest, err)
	}
	if !result.OK() {
		if result.Discarded > 0 {
			r.logger.Warn("discarded partially retrieved tracks", "playlist", playlistID, "count", result.Discarded)
		}
		return nil, fmt.Errorf("%w: playlist tracks for %s: %w", shared.ErrAPIRequest, playlistID, result.Cause)
	}
	return result.Value, nil
}

// fetchExport retrieves metadata and tracks of one playlist.
func (r *Runner) fetchExport(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
	token, err := r.token(ctx)
	if err != nil {
		return nil, err
	}

	info, err := r.fetchInfo(ctx, token, playlistID)
	if err != nil {
		return nil, err
	}

	tracks, err := r.fetchTracks(ctx, token, playlistID)
	if err != nil {
		return nil, err
	}

	r.logger.Info("retrieved playlist", "playlist", playlistID, "tracks", len(tracks))
	return &models.PlaylistExport{PlaylistID: playlistID, Info: *info, Tracks: tracks}, nil
}

// Token prints a freshly exchanged access token.
func (r *Runner) Token(ctx context.Context, cmd *cli.Command) error {
	token, err := r.accessToken(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		out := tokenOutput{AccessToken: token.AccessToken, TokenType: token.Type()}
		if !token.Expiry.IsZero() {
			out.Expiry = &token.Expiry
		}
		return r.writeJSON(out, cmd.Bool("pretty"))
	}
	return r.writePlain("%s\n", token.AccessToken)
}

// PlaylistID prints the identifier embedded in a playlist URL.
func (r *Runner) PlaylistID(ctx context.Context, cmd *cli.Command) error {
	rawURL := cmd.StringArg("url")
	if rawURL == "" {
		return fmt.Errorf("%w: playlist URL", shared.ErrMissingArgument)
	}

	id, err := services.PlaylistID(rawURL)
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", id)
}

// PlaylistInfo prints playlist metadata.
func (r *Runner) PlaylistInfo(ctx context.Context, cmd *cli.Command) error {
	playlistID, err := playlistTarget(cmd)
	if err != nil {
		return err
	}

	token, err := r.token(ctx)
	if err != nil {
		return err
	}

	info, err := r.fetchInfo(ctx, token, playlistID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(info, cmd.Bool("pretty"))
	}

	r.writeInfo(info)
	return nil
}

// PlaylistTracks retrieves every track and writes them in the requested format.
func (r *Runner) PlaylistTracks(ctx context.Context, cmd *cli.Command) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	playlistID, err := playlistTarget(cmd)
	if err != nil {
		return err
	}

	export, err := r.fetchExport(ctx, playlistID)
	if err != nil {
		return err
	}

	if len(export.Tracks) == 0 {
		r.logger.Info("playlist has no tracks", "playlist", playlistID)
	}

	if limit := cmd.Int("limit"); limit > 0 && limit < len(export.Tracks) {
		export.Tracks = export.Tracks[:limit]
	}

	return r.writeExport(export, format, cmd.Bool("pretty"), cmd.String("output"))
}

// PlaylistShow prints playlist metadata followed by the first few tracks.
//
// Both retrievals are attempted and reported even when the first one fails.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	playlistID, err := playlistTarget(cmd)
	if err != nil {
		return err
	}

	token, err := r.token(ctx)
	if err != nil {
		return err
	}

	info, infoErr := r.fetchInfo(ctx, token, playlistID)
	if infoErr != nil {
		r.writePlain("%s\n", r.palette.Err("Failed to retrieve playlist information."))
	} else {
		r.writeInfo(info)
	}

	tracks, tracksErr := r.fetchTracks(ctx, token, playlistID)

	r.writePlainln("%s", r.palette.Title("Track details:"))
	switch {
	case tracksErr != nil:
		r.writePlain("%s\n", r.palette.Err("Failed to retrieve track details."))
	case len(tracks) == 0:
		r.writePlain("%s\n", r.palette.Warn("No tracks found."))
	default:
		limit := cmd.Int("limit")
		if limit <= 0 || limit > len(tracks) {
			limit = len(tracks)
		}
		for i, track := range tracks[:limit] {
			r.writeTrack(i+1, track)
		}
		if limit < len(tracks) {
			r.writePlain("%s\n", r.palette.Help(fmt.Sprintf("... and %d more", len(tracks)-limit)))
		}
	}

	if infoErr != nil {
		return infoErr
	}
	return tracksErr
}

// PlaylistSave retrieves a playlist and stores it as a snapshot.
func (r *Runner) PlaylistSave(ctx context.Context, cmd *cli.Command) error {
	playlistID, err := playlistTarget(cmd)
	if err != nil {
		return err
	}

	export, err := r.fetchExport(ctx, playlistID)
	if err != nil {
		return err
	}

	db, err := r.openDatabase(true)
	if err != nil {
		return err
	}
	defer db.Close()

	snapshot := &models.Snapshot{PlaylistID: export.PlaylistID, Info: export.Info, Tracks: export.Tracks}
	if err := repositories.NewSnapshotRepository(db).Create(snapshot); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	r.logger.Info("snapshot saved", "id", snapshot.ID, "playlist", playlistID, "tracks", snapshot.TrackCount)

	if cmd.Bool("json") {
		return r.writeJSON(snapshot, cmd.Bool("pretty"))
	}

	return r.writePlain("%s %s (%d tracks)\n", r.palette.OK("✓ Saved snapshot"), snapshot.ID, snapshot.TrackCount)
}

func outputFormat(cmd *cli.Command) (formatter.Format, error) {
	if cmd.Bool("json") {
		return formatter.FormatJSON, nil
	}
	return formatter.ParseFormat(cmd.String("format"))
}

// writeExport writes an export to stdout, or to outputPath when set.
func (r *Runner) writeExport(export *models.PlaylistExport, format formatter.Format, pretty bool, outputPath string) error {
	if outputPath != "" {
		path, err := formatter.WriteExport(export, format, pretty, outputPath)
		if err != nil {
			return err
		}
		r.logger.Info("export written", "path", path, "format", format)
		return r.writePlain("%s %d tracks to %s\n", r.palette.OK("✓ Exported"), len(export.Tracks), path)
	}

	data, err := formatter.Export(export, format, pretty)
	if err != nil {
		return err
	}

	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeInfo(info *models.PlaylistInfo) {
	r.writePlainln("%s", r.palette.Title("Playlist info:"))
	r.writePlain("  Name: %s\n", info.Name)
	r.writePlain("  Description: %s\n", info.Description)
	r.writePlain("  Owner: %s\n", info.Owner)
	r.writePlain("  Total tracks: %s\n", formatter.Count(info.TotalTracks))
	r.writePlain("  Followers: %s\n", formatter.Count(info.Followers))
}

func (r *Runner) writeTrack(n int, track models.TrackRecord) {
	r.writePlain("%d. %s\n", n, track.Name)
	r.writePlain("   Artists: %s\n", track.Artists)
	r.writePlain("   Album: %s (%s)\n", track.Album, track.ReleaseDate)
	r.writePlain("   Popularity: %s\n", track.Popularity)
}
