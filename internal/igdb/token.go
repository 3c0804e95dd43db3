package igdb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

// Token is an app access token for the catalog API.
type Token struct {
	AccessToken string
	// ExpiresAt is zero when the token has no known expiry.
	ExpiresAt time.Time
}

// TokenSource fetches and caches Twitch OAuth2 client-credentials tokens.
// A cached token is reused until it comes within the refresh margin of its
// expiry. Safe for concurrent use.
type TokenSource struct {
	clientID      string
	clientSecret  string
	tokenURL      string
	refreshMargin time.Duration

	httpClient *http.Client
	now        func() time.Time

	mu     sync.Mutex
	cached Token
}

// TokenConfig holds the token source settings.
type TokenConfig struct {
	ClientID      string
	ClientSecret  string
	TokenURL      string
	RefreshMargin time.Duration
	// HTTPClient defaults to a client with a 10s timeout.
	HTTPClient *http.Client
}

// NewTokenSource creates a token source.
func NewTokenSource(cfg TokenConfig) *TokenSource {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &TokenSource{
		clientID:      cfg.ClientID,
		clientSecret:  cfg.ClientSecret,
		tokenURL:      cfg.TokenURL,
		refreshMargin: cfg.RefreshMargin,
		httpClient:    httpClient,
		now:           time.Now,
	}
}

// Get returns a valid token, fetching a fresh one when the cached token is
// missing or about to expire.
func (s *TokenSource) Get(ctx context.Context) (Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached.AccessToken != "" && !s.shouldRefresh(s.cached) {
		return s.cached, nil
	}

	token, err := s.fetch(ctx)
	if err != nil {
		return Token{}, err
	}
	s.cached = token
	return token, nil
}

func (s *TokenSource) shouldRefresh(token Token) bool {
	if token.ExpiresAt.IsZero() {
		return false
	}
	return !s.now().Before(token.ExpiresAt.Add(-s.refreshMargin))
}

func (s *TokenSource) fetch(ctx context.Context) (Token, error) {
	form := url.Values{
		"client_id":     {s.clientID},
		"client_secret": {s.clientSecret},
		"grant_type":    {"client_credentials"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Token{}, fmt.Errorf("token request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Token{}, fmt.Errorf("token request failed: status %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Token{}, fmt.Errorf("decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return Token{}, fmt.Errorf("token response missing access_token")
	}

	token := Token{AccessToken: payload.AccessToken}
	if payload.ExpiresIn > 0 {
		token.ExpiresAt = s.now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	}
	return token, nil
}
