// Spotify Web API playlist retrieval
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlist/internal/models"
	"github.com/desertthunder/spotlist/internal/shared"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	playlistMarker = "/playlist/"
)

// ClientOpts configures [SpotifyClient] and [TokenExchanger]. Zero fields take defaults.
type ClientOpts struct {
	BaseURL   string
	TokenURL  string
	Transport Transport
	Logger    *log.Logger
}

func (o ClientOpts) withDefaults() ClientOpts {
	if o.BaseURL == "" {
		o.BaseURL = spotifyBaseURL
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.TokenURL == "" {
		o.TokenURL = spotifyTokenURL
	}
	if o.Transport == nil {
		o.Transport = NewHTTPTransport(nil)
	}
	if o.Logger == nil {
		o.Logger = shared.NewLogger(nil)
	}
	return o
}

// The payload types use pointers so that absent and null fields can be defaulted.

type ownerPayload struct {
	DisplayName *string `json:"display_name"`
}

type totalPayload struct {
	Total *int `json:"total"`
}

type playlistPayload struct {
	Name        *string       `json:"name"`
	Description *string       `json:"description"`
	Owner       *ownerPayload `json:"owner"`
	Tracks      *totalPayload `json:"tracks"`
	Followers   *totalPayload `json:"followers"`
}

type artistPayload struct {
	Name *string `json:"name"`
}

type albumPayload struct {
	Name        *string `json:"name"`
	ReleaseDate *string `json:"release_date"`
}

type trackPayload struct {
	Name       *string           `json:"name"`
	Artists    []artistPayload   `json:"artists"`
	Album      *albumPayload     `json:"album"`
	Popularity models.Popularity `json:"popularity"`
}

type playlistItemPayload struct {
	Track *trackPayload `json:"track"`
}

// trackPagePayload is one page of /playlists/{id}/tracks.
type trackPagePayload struct {
	Items *[]playlistItemPayload `json:"items"`
	Next  *string                `json:"next"`
}

// SpotifyClient retrieves playlist data from the Spotify Web API.
type SpotifyClient struct {
	baseURL   string
	transport Transport
	logger    *log.Logger
}

// NewSpotifyClient creates a client; see [ClientOpts] for defaults.
func NewSpotifyClient(opts ClientOpts) *SpotifyClient {
	opts = opts.withDefaults()
	return &SpotifyClient{
		baseURL:   opts.BaseURL,
		transport: opts.Transport,
		logger:    shared.WithLogger(opts.Logger, "component", "spotify"),
	}
}

// AuthHeader returns the bearer authorization header for token. An empty token yields "Bearer ".
func AuthHeader(token string) http.Header {
	return http.Header{"Authorization": {"Bearer " + token}}
}

// PlaylistID extracts the playlist identifier from a shareable URL such as
// https://open.spotify.com/playlist/5V3Bjk9SnOp9hz1cdwguvV?si=befaf075541c4810.
//
// The identifier is the text after "/playlist/", up to a query string, fragment or further path segment.
func PlaylistID(rawURL string) (string, error) {
	_, rest, found := strings.Cut(strings.TrimSpace(rawURL), playlistMarker)
	if !found {
		return "", fmt.Errorf("%w: %q has no %s segment", shared.ErrInvalidFormat, rawURL, playlistMarker)
	}

	if idx := strings.IndexAny(rest, "?#/"); idx >= 0 {
		rest = rest[:idx]
	}
	if rest == "" {
		return "", fmt.Errorf("%w: %q has no playlist id", shared.ErrInvalidFormat, rawURL)
	}

	return rest, nil
}

func (c *SpotifyClient) playlistURL(playlistID string) string {
	return fmt.Sprintf("%s/playlists/%s", c.baseURL, url.PathEscape(playlistID))
}

func (c *SpotifyClient) tracksURL(playlistID string) string {
	return c.playlistURL(playlistID) + "/tracks"
}

// PlaylistInfo fetches playlist metadata.
//
// A non-200 reply yields a failed retrieval and a nil error. An undecodable 200 body
// and transport faults are returned as errors.
func (c *SpotifyClient) PlaylistInfo(ctx context.Context, token, playlistID string) (models.Retrieval[*models.PlaylistInfo], error) {
	resp, err := c.transport.Get(ctx, c.playlistURL(playlistID), AuthHeader(token))
	if err != nil {
		return models.NoResult[*models.PlaylistInfo](err, 0), err
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("failed to retrieve playlist info", "playlist", playlistID, "status", resp.StatusCode)
		return models.NoResult[*models.PlaylistInfo](unexpectedStatus(resp.StatusCode), 0), nil
	}

	var payload playlistPayload
	if err := resp.JSON(&payload); err != nil {
		return models.NoResult[*models.PlaylistInfo](err, 0), fmt.Errorf("playlist %s: %w", playlistID, err)
	}

	return models.Got(payload.info(), false), nil
}

func (p playlistPayload) info() *models.PlaylistInfo {
	info := &models.PlaylistInfo{
		Name:        orUnknown(p.Name),
		Description: orUnknown(p.Description),
		Owner:       models.Unknown,
	}
	if p.Owner != nil {
		info.Owner = orUnknown(p.Owner.DisplayName)
	}
	if p.Tracks != nil {
		info.TotalTracks = p.Tracks.Total
	}
	if p.Followers != nil {
		info.Followers = p.Followers.Total
	}
	return info
}

// PlaylistTracks retrieves every track of a playlist by following the "next" pointer
// page by page.
//
// A non-200 page, an undecodable page or a page without "items" ends the walk with a
// failed retrieval and drops everything gathered so far. Items without a track are
// skipped. Transport faults are returned as errors.
func (c *SpotifyClient) PlaylistTracks(ctx context.Context, token, playlistID string) (models.Retrieval[models.TrackCollection], error) {
	header := AuthHeader(token)
	tracks := models.TrackCollection{}
	target := c.tracksURL(playlistID)

	for page := 1; target != ""; page++ {
		resp, err := c.transport.Get(ctx, target, header)
		if err != nil {
			return models.NoResult[models.TrackCollection](err, len(tracks)), err
		}

		if resp.StatusCode != http.StatusOK {
			c.logger.Warn("failed to retrieve track details",
				"playlist", playlistID, "page", page, "status", resp.StatusCode, "discarded", len(tracks))
			return models.NoResult[models.TrackCollection](unexpectedStatus(resp.StatusCode), len(tracks)), nil
		}

		var body trackPagePayload
		if err := resp.JSON(&body); err != nil {
			c.logger.Warn("error decoding track page", "playlist", playlistID, "page", page, "error", err, "discarded", len(tracks))
			return models.NoResult[models.TrackCollection](err, len(tracks)), nil
		}

		if body.Items == nil {
			c.logger.Warn("invalid response structure: 'items' not found", "playlist", playlistID, "page", page, "discarded", len(tracks))
			return models.NoResult[models.TrackCollection](shared.ErrMissingItems, len(tracks)), nil
		}

		for i, item := range *body.Items {
			if item.Track == nil {
				c.logger.Warn("track is missing for item, skipping it", "playlist", playlistID, "page", page, "item", i)
				continue
			}
			tracks = append(tracks, item.Track.record())
		}

		target = ""
		if body.Next != nil {
			target = *body.Next
		}
	}

	return models.Got(tracks, len(tracks) == 0), nil
}

func (t trackPayload) record() models.TrackRecord {
	record := models.TrackRecord{
		Name:        orUnknown(t.Name),
		Artists:     joinArtists(t.Artists),
		Album:       models.Unknown,
		ReleaseDate: models.Unknown,
		Popularity:  t.Popularity,
	}
	if t.Album != nil {
		record.Album = orUnknown(t.Album.Name)
		record.ReleaseDate = orUnknown(t.Album.ReleaseDate)
	}
	return record
}

func joinArtists(artists []artistPayload) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, orUnknown(a.Name))
	}
	if joined := strings.Join(names, ", "); joined != "" {
		return joined
	}
	return models.Unknown
}

func orUnknown(s *string) string {
	if s == nil {
		return models.Unknown
	}
	return *s
}

func unexpectedStatus(code int) error {
	return fmt.Errorf("%w: %d %s", shared.ErrUnexpectedStatus, code, http.StatusText(code))
}
