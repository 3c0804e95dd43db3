// Package embedding persists per-game embedding records in SQLite and
// answers nearest-neighbor queries, through the sqlite-vec index when the
// extension is available and by brute-force scan otherwise.
package embedding

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ludic-labs/gamerec/internal/db"
	"github.com/ludic-labs/gamerec/internal/domain"
	"github.com/ludic-labs/gamerec/internal/vector"
)

// Repository is the embedding store. The distance metric and dimension are
// fixed per instance.
type Repository struct {
	db        *db.DB
	dimension int
	metric    vector.Metric
	logger    *zap.Logger

	index vecIndex
	// vecReady flips to false exactly once per process lifetime when the
	// accelerated path fails; racing queries may legally use either path
	// during the transition.
	vecReady atomic.Bool
}

// New creates the repository and probes the accelerated index once.
// Probe failure is recorded and logged, never fatal.
func New(database *db.DB, dimension int, metric vector.Metric, logger *zap.Logger) (*Repository, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension %d", domain.ErrDimensionMismatch, dimension)
	}

	r := &Repository{
		db:        database,
		dimension: dimension,
		metric:    metric,
		logger:    logger,
		index:     &sqliteVecIndex{db: database, dimension: dimension, metric: metric},
	}

	if err := r.index.Create(context.Background()); err != nil {
		logger.Warn("vector index unavailable, using fallback scan", zap.Error(err))
	} else {
		r.vecReady.Store(true)
	}
	return r, nil
}

// IndexAvailable reports whether the accelerated path is currently active.
func (r *Repository) IndexAvailable() bool { return r.vecReady.Load() }

// Upsert stores or replaces the record for payload.GameID. Replacement
// happens in place at the same rowid so the index entry stays attached to
// the right record; created_at is preserved, updated_at always advances.
func (r *Repository) Upsert(ctx context.Context, payload *domain.EmbeddingPayload) (domain.StoredEmbedding, error) {
	if err := r.validateDimensions(payload); err != nil {
		return domain.StoredEmbedding{}, err
	}

	metadataJSON, err := marshalMetadata(payload.Metadata)
	if err != nil {
		return domain.StoredEmbedding{}, err
	}

	titleBlob := vector.Encode(payload.TitleVector)
	storylineBlob := vector.Encode(payload.StorylineVector)
	summaryBlob := vector.Encode(payload.SummaryVector)
	now := time.Now().UTC()

	tx, err := r.db.SQL().BeginTx(ctx, nil)
	if err != nil {
		return domain.StoredEmbedding{}, db.Wrap(db.OpBegin, "upsert embedding", err)
	}
	defer func() { _ = tx.Rollback() }()

	var rowID int64
	var createdAt time.Time
	err = tx.QueryRowContext(ctx,
		`SELECT id, created_at FROM game_embeddings WHERE game_id = ?`, payload.GameID,
	).Scan(&rowID, &createdAt)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		createdAt = now
		res, insErr := tx.ExecContext(ctx, `
			INSERT INTO game_embeddings
				(game_id, dimension, title_embedding, storyline_embedding, summary_embedding,
				 metadata, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			payload.GameID, r.dimension, titleBlob, storylineBlob, summaryBlob,
			metadataJSON, createdAt, now)
		if insErr != nil {
			return domain.StoredEmbedding{}, db.Wrap(db.OpExec, "insert embedding", insErr)
		}
		rowID, insErr = res.LastInsertId()
		if insErr != nil {
			return domain.StoredEmbedding{}, db.Wrap(db.OpExec, "insert embedding", insErr)
		}
	case err != nil:
		return domain.StoredEmbedding{}, db.Wrap(db.OpQuery, "lookup embedding", err)
	default:
		if _, updErr := tx.ExecContext(ctx, `
			UPDATE game_embeddings
			SET dimension = ?, title_embedding = ?, storyline_embedding = ?,
			    summary_embedding = ?, metadata = ?, updated_at = ?
			WHERE id = ?`,
			r.dimension, titleBlob, storylineBlob, summaryBlob,
			metadataJSON, now, rowID); updErr != nil {
			return domain.StoredEmbedding{}, db.Wrap(db.OpExec, "update embedding", updErr)
		}
	}

	if r.vecReady.Load() {
		if syncErr := r.index.Sync(ctx, tx, rowID, payload.StorylineVector); syncErr != nil {
			r.downgrade("vector index sync failed", syncErr)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.StoredEmbedding{}, db.Wrap(db.OpCommit, "upsert embedding", err)
	}

	return domain.StoredEmbedding{
		GameID:          payload.GameID,
		Dimension:       r.dimension,
		TitleVector:     payload.TitleVector,
		StorylineVector: payload.StorylineVector,
		SummaryVector:   payload.SummaryVector,
		Metadata:        payload.Metadata,
		CreatedAt:       createdAt,
		UpdatedAt:       now,
	}, nil
}

// Get returns the stored record for gameID or domain.ErrNotFound.
func (r *Repository) Get(ctx context.Context, gameID string) (domain.StoredEmbedding, error) {
	row := r.db.SQL().QueryRowContext(ctx, `
		SELECT game_id, dimension, title_embedding, storyline_embedding, summary_embedding,
		       metadata, created_at, updated_at
		FROM game_embeddings WHERE game_id = ?`, gameID)

	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StoredEmbedding{}, fmt.Errorf("embedding %q: %w", gameID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.StoredEmbedding{}, err
	}
	return record, nil
}

// SearchSimilar returns up to k records ordered by ascending distance to
// queryVector. A failing accelerated query downgrades the repository to the
// fallback scan for the remainder of its lifetime.
func (r *Repository) SearchSimilar(ctx context.Context, queryVector []float32, k int) ([]domain.SearchHit, error) {
	if len(queryVector) != r.dimension {
		return nil, fmt.Errorf("%w: query has %d values, store expects %d",
			domain.ErrDimensionMismatch, len(queryVector), r.dimension)
	}
	if k <= 0 {
		return nil, nil
	}

	if r.vecReady.Load() {
		hits, err := r.index.Search(ctx, queryVector, k)
		if err == nil {
			return hits, nil
		}
		r.downgrade("vector index query failed", err)
	}

	return r.searchScan(ctx, queryVector, k)
}

// searchScan is the brute-force path: every record whose dimension matches
// the configured one, distance computed in process.
func (r *Repository) searchScan(ctx context.Context, queryVector []float32, k int) ([]domain.SearchHit, error) {
	rows, err := r.db.SQL().QueryContext(ctx, `
		SELECT game_id, dimension, title_embedding, storyline_embedding, summary_embedding,
		       metadata, created_at, updated_at
		FROM game_embeddings WHERE dimension = ?`, r.dimension)
	if err != nil {
		return nil, db.Wrap(db.OpQuery, "scan embeddings", err)
	}
	defer func() { _ = rows.Close() }()

	var hits []domain.SearchHit
	for rows.Next() {
		record, scanErr := scanRecord(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		hits = append(hits, domain.SearchHit{
			Record:   record,
			Distance: vector.Distance(r.metric, record.StorylineVector, queryVector),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, db.Wrap(db.OpScan, "scan embeddings", err)
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (r *Repository) validateDimensions(payload *domain.EmbeddingPayload) error {
	for name, vec := range map[string][]float32{
		"title":     payload.TitleVector,
		"storyline": payload.StorylineVector,
		"summary":   payload.SummaryVector,
	} {
		if len(vec) != r.dimension {
			return fmt.Errorf("%w: %s vector has %d values, store expects %d",
				domain.ErrDimensionMismatch, name, len(vec), r.dimension)
		}
	}
	return nil
}

// downgrade switches to the fallback scan. One-way for the process lifetime;
// extra calls during a race are harmless.
func (r *Repository) downgrade(msg string, err error) {
	if r.vecReady.Swap(false) {
		r.logger.Warn(msg+", downgrading to fallback scan", zap.Error(err))
	}
}
