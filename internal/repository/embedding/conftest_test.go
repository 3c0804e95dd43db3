package embedding

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/ludic-labs/gamerec/internal/db"
	"github.com/ludic-labs/gamerec/internal/domain"
	"github.com/ludic-labs/gamerec/internal/vector"
)

const testDimension = 3

func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(db.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func newTestRepo(t *testing.T, metric vector.Metric) *Repository {
	t.Helper()
	repo, err := New(newTestDB(t), testDimension, metric, zap.NewNop())
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	return repo
}

func payloadWithVector(gameID string, storyline []float32) *domain.EmbeddingPayload {
	return &domain.EmbeddingPayload{
		GameID:          gameID,
		TitleVector:     storyline,
		StorylineVector: storyline,
		SummaryVector:   storyline,
		Metadata:        map[string]any{"title": gameID},
	}
}

// --- Mocks ---

// mockIndex records calls and returns scripted results, standing in for the
// sqlite-vec virtual table.
type mockIndex struct {
	createErr error
	syncErr   error
	searchErr error
	hits      []domain.SearchHit

	syncCalls   []int64
	searchCalls int
}

func (m *mockIndex) Create(_ context.Context) error { return m.createErr }

func (m *mockIndex) Sync(_ context.Context, _ *sql.Tx, rowID int64, _ []float32) error {
	m.syncCalls = append(m.syncCalls, rowID)
	return m.syncErr
}

func (m *mockIndex) Search(_ context.Context, _ []float32, _ int) ([]domain.SearchHit, error) {
	m.searchCalls++
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.hits, nil
}

var errIndexBroken = errors.New("vec0 exploded")
