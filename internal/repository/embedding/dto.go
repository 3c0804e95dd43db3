package embedding

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/ludic-labs/gamerec/internal/db"
	"github.com/ludic-labs/gamerec/internal/domain"
	"github.com/ludic-labs/gamerec/internal/vector"
)

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanRecord reads one game_embeddings row (without distance).
func scanRecord(s scanner) (domain.StoredEmbedding, error) {
	var (
		record        domain.StoredEmbedding
		titleBlob     []byte
		storylineBlob []byte
		summaryBlob   []byte
		metadataJSON  string
		createdAt     time.Time
		updatedAt     time.Time
	)
	if err := s.Scan(&record.GameID, &record.Dimension, &titleBlob, &storylineBlob,
		&summaryBlob, &metadataJSON, &createdAt, &updatedAt); err != nil {
		return domain.StoredEmbedding{}, err
	}
	if err := decodeVectors(&record, titleBlob, storylineBlob, summaryBlob); err != nil {
		return domain.StoredEmbedding{}, err
	}
	if err := json.Unmarshal([]byte(metadataJSON), &record.Metadata); err != nil {
		return domain.StoredEmbedding{}, fmt.Errorf("decode metadata for %q: %w", record.GameID, err)
	}
	record.CreatedAt = createdAt
	record.UpdatedAt = updatedAt
	return record, nil
}

// scanHit reads one joined row carrying a trailing distance column.
func scanHit(s scanner) (domain.SearchHit, error) {
	var (
		hit           domain.SearchHit
		titleBlob     []byte
		storylineBlob []byte
		summaryBlob   []byte
		metadataJSON  string
		createdAt     time.Time
		updatedAt     time.Time
	)
	if err := s.Scan(&hit.Record.GameID, &hit.Record.Dimension, &titleBlob, &storylineBlob,
		&summaryBlob, &metadataJSON, &createdAt, &updatedAt, &hit.Distance); err != nil {
		return domain.SearchHit{}, db.Wrap(db.OpScan, "vec0 row", err)
	}
	if err := decodeVectors(&hit.Record, titleBlob, storylineBlob, summaryBlob); err != nil {
		return domain.SearchHit{}, err
	}
	if err := json.Unmarshal([]byte(metadataJSON), &hit.Record.Metadata); err != nil {
		return domain.SearchHit{}, fmt.Errorf("decode metadata for %q: %w", hit.Record.GameID, err)
	}
	hit.Record.CreatedAt = createdAt
	hit.Record.UpdatedAt = updatedAt
	return hit, nil
}

func decodeVectors(record *domain.StoredEmbedding, titleBlob, storylineBlob, summaryBlob []byte) error {
	var err error
	if record.TitleVector, err = vector.Decode(titleBlob, record.Dimension); err != nil {
		return fmt.Errorf("title vector for %q: %w", record.GameID, err)
	}
	if record.StorylineVector, err = vector.Decode(storylineBlob, record.Dimension); err != nil {
		return fmt.Errorf("storyline vector for %q: %w", record.GameID, err)
	}
	if record.SummaryVector, err = vector.Decode(summaryBlob, record.Dimension); err != nil {
		return fmt.Errorf("summary vector for %q: %w", record.GameID, err)
	}
	return nil
}

func marshalMetadata(metadata map[string]any) (string, error) {
	if metadata == nil {
		return "{}", nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	return string(data), nil
}
