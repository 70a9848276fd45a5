// package services defines the interfaces the CLI depends on
package services

import (
	"context"

	"github.com/desertthunder/spotlist/internal/models"
	"golang.org/x/oauth2"
)

// TokenProvider supplies bearer tokens for subsequent API calls.
type TokenProvider interface {
	TokenSource(ctx context.Context) oauth2.TokenSource
}

// PlaylistSource retrieves playlist metadata and tracks with a bearer token.
type PlaylistSource interface {
	PlaylistInfo(ctx context.Context, token, playlistID string) (models.Retrieval[*models.PlaylistInfo], error)
	PlaylistTracks(ctx context.Context, token, playlistID string) (models.Retrieval[models.TrackCollection], error)
}

var (
	_ TokenProvider  = (*TokenExchanger)(nil)
	_ PlaylistSource = (*SpotifyClient)(nil)
)
