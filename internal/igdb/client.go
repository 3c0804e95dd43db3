// Package igdb is a client for the IGDB API v4 behind Twitch OAuth2.
package igdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.igdb.com/v4"

// ErrRateLimited marks a request rejected for rate limiting after all
// retries were spent.
var ErrRateLimited = errors.New("igdb: rate limit exceeded")

// RequestError is a non-retriable API failure.
type RequestError struct {
	Endpoint string
	Status   int
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("igdb: %s request failed with status %d", e.Endpoint, e.Status)
}

// RetryConfig controls retry and backoff behavior.
type RetryConfig struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultRetryConfig retries twice with linear backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, Backoff: 500 * time.Millisecond}
}

// tokens abstracts the token source for tests.
type tokens interface {
	Get(ctx context.Context) (Token, error)
}

// Client queries the catalog API. Requests retry on 429 and 5xx with
// linear backoff.
type Client struct {
	clientID    string
	baseURL     string
	tokenSource tokens
	retry       RetryConfig
	httpClient  *http.Client
	sleep       func(time.Duration)
	logger      *zap.Logger
}

// ClientConfig holds the API client settings.
type ClientConfig struct {
	ClientID    string
	TokenSource *TokenSource
	// BaseURL defaults to the public API endpoint.
	BaseURL string
	Retry   RetryConfig
	// HTTPClient defaults to a client with a 30s timeout.
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewClient creates an API client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	retry := cfg.Retry
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryConfig()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		clientID:    cfg.ClientID,
		baseURL:     strings.TrimRight(baseURL, "/"),
		tokenSource: cfg.TokenSource,
		retry:       retry,
		httpClient:  httpClient,
		sleep:       time.Sleep,
		logger:      logger,
	}
}

// gameFields is the field set the importer needs.
var gameFields = []string{
	"id", "name", "slug", "summary", "storyline", "first_release_date",
	"cover.image_id", "platforms", "category", "tags", "checksum",
}

// FetchGameByID returns the game with the given id, or a nil slice entry
// when the id is unknown.
func (c *Client) FetchGameByID(ctx context.Context, igdbID int64) (Game, bool, error) {
	query := new(QueryBuilder).
		Select(gameFields...).
		Where("id = " + strconv.FormatInt(igdbID, 10)).
		Limit(1).
		Build()

	games, err := c.fetchGames(ctx, query)
	if err != nil {
		return Game{}, false, err
	}
	if len(games) == 0 {
		return Game{}, false, nil
	}
	return games[0], true, nil
}

// SearchGames runs a full-text title search.
func (c *Client) SearchGames(ctx context.Context, title string, limit int) ([]Game, error) {
	query := new(QueryBuilder).
		Select(gameFields...).
		Search(title).
		Limit(limit).
		Build()
	return c.fetchGames(ctx, query)
}

func (c *Client) fetchGames(ctx context.Context, query string) ([]Game, error) {
	body, err := c.request(ctx, "games", query)
	if err != nil {
		return nil, err
	}

	var games []Game
	if err := json.Unmarshal(body, &games); err != nil {
		return nil, fmt.Errorf("igdb: decode games response: %w", err)
	}
	return games, nil
}

// FetchTags resolves taxonomy records of one class by their external ids.
// Unknown ids are silently absent from the result.
func (c *Client) FetchTags(ctx context.Context, class string, igdbIDs []int64) ([]Tag, error) {
	endpoint, ok := tagEndpoints[class]
	if !ok {
		return nil, fmt.Errorf("igdb: unknown tag class %q", class)
	}
	if len(igdbIDs) == 0 {
		return nil, nil
	}

	ids := make([]string, len(igdbIDs))
	for i, id := range igdbIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}
	query := new(QueryBuilder).
		Select("id", "name", "slug").
		Where("id = (" + strings.Join(ids, ",") + ")").
		Limit(len(igdbIDs)).
		Build()

	body, err := c.request(ctx, endpoint, query)
	if err != nil {
		return nil, err
	}

	var tags []Tag
	if err := json.Unmarshal(body, &tags); err != nil {
		return nil, fmt.Errorf("igdb: decode %s response: %w", endpoint, err)
	}
	return tags, nil
}

func (c *Client) request(ctx context.Context, endpoint, query string) ([]byte, error) {
	for attempt := 1; ; attempt++ {
		c.logger.Debug("igdb request",
			zap.String("endpoint", endpoint), zap.Int("attempt", attempt))

		body, status, err := c.do(ctx, endpoint, query)
		if err != nil {
			if attempt >= c.retry.MaxAttempts {
				return nil, err
			}
		} else if status == http.StatusOK {
			return body, nil
		} else if !retriableStatus(status) || attempt >= c.retry.MaxAttempts {
			if status == http.StatusTooManyRequests {
				return nil, ErrRateLimited
			}
			return nil, &RequestError{Endpoint: endpoint, Status: status}
		}

		c.logger.Warn("igdb request retry",
			zap.String("endpoint", endpoint), zap.Int("attempt", attempt),
			zap.Int("status", status), zap.Error(err))
		c.sleep(c.retry.Backoff * time.Duration(attempt))
	}
}

func (c *Client) do(ctx context.Context, endpoint, query string) ([]byte, int, error) {
	token, err := c.tokenSource.Get(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("igdb: get token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/"+endpoint, bytes.NewReader([]byte(query)))
	if err != nil {
		return nil, 0, fmt.Errorf("igdb: build request: %w", err)
	}
	req.Header.Set("Client-ID", c.clientID)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("igdb: %s request: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("igdb: read %s response: %w", endpoint, err)
	}
	return body, resp.StatusCode, nil
}

func retriableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
