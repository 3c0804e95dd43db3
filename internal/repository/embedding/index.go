package embedding

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ludic-labs/gamerec/internal/db"
	"github.com/ludic-labs/gamerec/internal/domain"
	"github.com/ludic-labs/gamerec/internal/vector"
)

const vecTableName = "game_embeddings_vec"

// vecIndex is the accelerated nearest-neighbor structure. It is disposable:
// everything in it can be rebuilt from the primary table.
type vecIndex interface {
	// Create probes availability by creating the index structure.
	Create(ctx context.Context) error
	// Sync replaces the index entry for rowID inside the caller's transaction.
	Sync(ctx context.Context, tx *sql.Tx, rowID int64, vec []float32) error
	// Search returns up to k hits ordered by ascending distance.
	Search(ctx context.Context, queryVector []float32, k int) ([]domain.SearchHit, error)
}

// sqliteVecIndex implements vecIndex on a sqlite-vec vec0 virtual table
// keyed by the primary table's rowid.
type sqliteVecIndex struct {
	db        *db.DB
	dimension int
	metric    vector.Metric
}

func (x *sqliteVecIndex) Create(ctx context.Context) error {
	metric := "cosine"
	if x.metric == vector.MetricEuclidean {
		metric = "l2"
	}
	ddl := fmt.Sprintf(
		"CREATE VIRTUAL TABLE IF NOT EXISTS %s USING vec0(storyline_embedding FLOAT[%d] distance_metric=%s)",
		vecTableName, x.dimension, metric)
	if _, err := x.db.SQL().ExecContext(ctx, ddl); err != nil {
		return db.Wrap(db.OpExec, "create vec0 table", err)
	}
	return nil
}

// Sync deletes then inserts rather than updating: vec0 has no UPDATE, and
// delete-then-insert at the same rowid is equivalent for a disposable index.
func (x *sqliteVecIndex) Sync(ctx context.Context, tx *sql.Tx, rowID int64, vec []float32) error {
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE rowid = ?", vecTableName), rowID); err != nil {
		return db.Wrap(db.OpExec, "delete vec entry", err)
	}
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s(rowid, storyline_embedding) VALUES (?, ?)", vecTableName),
		rowID, vector.Encode(vec)); err != nil {
		return db.Wrap(db.OpExec, "insert vec entry", err)
	}
	return nil
}

func (x *sqliteVecIndex) Search(ctx context.Context, queryVector []float32, k int) ([]domain.SearchHit, error) {
	query := fmt.Sprintf(`
		SELECT ge.game_id, ge.dimension, ge.title_embedding, ge.storyline_embedding,
		       ge.summary_embedding, ge.metadata, ge.created_at, ge.updated_at, vec.distance
		FROM %s AS vec
		JOIN game_embeddings AS ge ON ge.id = vec.rowid
		WHERE vec.storyline_embedding MATCH ? AND vec.k = ?
		ORDER BY vec.distance`, vecTableName)

	rows, err := x.db.SQL().QueryContext(ctx, query, vector.Encode(queryVector), k)
	if err != nil {
		return nil, db.Wrap(db.OpQuery, "vec0 knn", err)
	}
	defer func() { _ = rows.Close() }()

	var hits []domain.SearchHit
	for rows.Next() {
		hit, scanErr := scanHit(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Wrap(db.OpScan, "vec0 knn", err)
	}
	return hits, nil
}
