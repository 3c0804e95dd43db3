package igdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

// --- Mocks ---

type stubTokens struct {
	token Token
	err   error
	calls int
}

func (s *stubTokens) Get(_ context.Context) (Token, error) {
	s.calls++
	return s.token, s.err
}

// newTestClient builds a client against a local test server with sleeping
// disabled.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewClient(ClientConfig{
		ClientID: "test-client",
		BaseURL:  server.URL,
		Retry:    RetryConfig{MaxAttempts: 3, Backoff: time.Millisecond},
		Logger:   zap.NewNop(),
	})
	c.tokenSource = &stubTokens{token: Token{AccessToken: "tok"}}
	c.sleep = func(time.Duration) {}
	return c
}
