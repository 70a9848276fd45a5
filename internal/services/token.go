package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlist/internal/shared"
	"golang.org/x/oauth2"
)

// TokenExchanger performs the OAuth2 client-credentials grant against the Spotify accounts service.
//
// Credentials are bound at construction; [TokenExchanger.Exchange] takes no other input.
type TokenExchanger struct {
	credentials shared.SpotifyConfig
	tokenURL    string
	transport   Transport
	logger      *log.Logger
}

// tokenResponse mirrors the accounts service reply. access_token is checked separately
// so a missing key can be told apart from a malformed body.
type tokenResponse struct {
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"`
}

// NewTokenExchanger creates an exchanger for the given client credentials.
func NewTokenExchanger(credentials shared.SpotifyConfig, opts ClientOpts) (*TokenExchanger, error) {
	if err := credentials.Validate(); err != nil {
		return nil, err
	}

	opts = opts.withDefaults()
	return &TokenExchanger{
		credentials: credentials,
		tokenURL:    opts.TokenURL,
		transport:   opts.Transport,
		logger:      shared.WithLogger(opts.Logger, "component", "token"),
	}, nil
}

// Exchange requests a new access token and returns it.
//
// The reply status is not inspected: an error reply from the accounts service
// carries no access_token and fails with [shared.ErrMissingField].
func (e *TokenExchanger) Exchange(ctx context.Context) (string, error) {
	token, err := e.TokenSource(ctx).Token()
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

// TokenSource adapts the exchanger to [oauth2.TokenSource]. Every call performs a
// fresh exchange; wrap it in [oauth2.ReuseTokenSource] to keep a token until it expires.
func (e *TokenExchanger) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &exchangeSource{ctx: ctx, exchanger: e}
}

type exchangeSource struct {
	ctx       context.Context
	exchanger *TokenExchanger
}

func (s *exchangeSource) Token() (*oauth2.Token, error) {
	return s.exchanger.exchange(s.ctx)
}

func (e *TokenExchanger) exchange(ctx context.Context) (*oauth2.Token, error) {
	basic := base64.StdEncoding.EncodeToString([]byte(e.credentials.ClientID + ":" + e.credentials.ClientSecret))

	header := http.Header{}
	header.Set("Authorization", "Basic "+basic)
	header.Set("Content-Type", "application/x-www-form-urlencoded")
	form := url.Values{"grant_type": {"client_credentials"}}

	resp, err := e.transport.PostForm(ctx, e.tokenURL, header, form)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("token endpoint responded", "status", resp.StatusCode)

	var fields map[string]json.RawMessage
	if err := resp.JSON(&fields); err != nil {
		return nil, fmt.Errorf("invalid JSON response from token endpoint: %w", err)
	}

	raw, ok := fields["access_token"]
	if !ok {
		return nil, fmt.Errorf("%w: access_token not found in the response", shared.ErrMissingField)
	}

	var accessToken string
	if err := json.Unmarshal(raw, &accessToken); err != nil {
		return nil, fmt.Errorf("%w: access_token is not a string", shared.ErrMissingField)
	}

	var meta tokenResponse
	if err := resp.JSON(&meta); err != nil {
		e.logger.Debug("ignoring unreadable token metadata", "error", err)
	}

	token := &oauth2.Token{AccessToken: accessToken, TokenType: meta.TokenType}
	if token.TokenType == "" {
		token.TokenType = "Bearer"
	}
	if meta.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(meta.ExpiresIn) * time.Second)
	}

	return token, nil
}
