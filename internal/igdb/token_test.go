package igdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestTokenSource(t *testing.T, handler http.Handler, margin time.Duration) *TokenSource {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewTokenSource(TokenConfig{
		ClientID:      "id",
		ClientSecret:  "secret",
		TokenURL:      server.URL,
		RefreshMargin: margin,
	})
}

func TestTokenSourceCachesToken(t *testing.T) {
	var fetches int
	src := newTestTokenSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("grant_type") != "client_credentials" {
			t.Errorf("grant_type = %q", r.PostForm.Get("grant_type"))
		}
		_, _ = w.Write([]byte(`{"access_token": "tok-1", "expires_in": 3600}`))
	}), 5*time.Minute)

	for i := 0; i < 3; i++ {
		token, err := src.Get(context.Background())
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if token.AccessToken != "tok-1" {
			t.Fatalf("token = %q", token.AccessToken)
		}
	}
	if fetches != 1 {
		t.Errorf("fetches = %d, want 1 (cached)", fetches)
	}
}

func TestTokenSourceRefreshesWithinMargin(t *testing.T) {
	var fetches int
	src := newTestTokenSource(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fetches++
		_, _ = w.Write([]byte(`{"access_token": "tok", "expires_in": 3600}`))
	}), 5*time.Minute)

	now := time.Now()
	src.now = func() time.Time { return now }

	if _, err := src.Get(context.Background()); err != nil {
		t.Fatalf("Get: %v", err)
	}

	// Just inside the refresh margin of the 1h expiry.
	now = now.Add(56 * time.Minute)
	if _, err := src.Get(context.Background()); err != nil {
		t.Fatalf("Get after expiry approach: %v", err)
	}
	if fetches != 2 {
		t.Errorf("fetches = %d, want refresh within margin", fetches)
	}
}

func TestTokenSourceNoExpiryNeverRefreshes(t *testing.T) {
	var fetches int
	src := newTestTokenSource(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fetches++
		_, _ = w.Write([]byte(`{"access_token": "tok"}`))
	}), 5*time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := src.Get(context.Background()); err != nil {
			t.Fatalf("Get: %v", err)
		}
	}
	if fetches != 1 {
		t.Errorf("fetches = %d, want 1", fetches)
	}
}

func TestTokenSourceRejectsBadResponses(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}},
		{"missing token", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"expires_in": 60}`))
		}},
		{"bad json", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`nope`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newTestTokenSource(t, tt.handler, 0)
			if _, err := src.Get(context.Background()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
