package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/model"
)

// SnapshotRepository provides data access methods for the metrics_snapshot table.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SnapshotRepository with the provided database connection.
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// InsertSnapshot stores a metrics snapshot. The metrics are kept as a JSON document.
func (r *SnapshotRepository) InsertSnapshot(ctx context.Context, s model.MetricsSnapshot) error {
	metrics, err := json.Marshal(s.Metrics)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot metrics: %w", err)
	}

	query := `
        INSERT INTO metrics_snapshot (id, taken_at, metrics, transaction_count, skipped_count)
        VALUES (?, ?, ?, ?, ?)
    `

	_, err = r.db.ExecContext(ctx, query,
		s.ID,
		s.TakenAt.UTC().Format(timestampLayout),
		string(metrics),
		s.TransactionCount,
		s.SkippedCount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert metrics snapshot: %w", err)
	}

	return nil
}

// LatestSnapshot returns the most recently taken snapshot.
// Returns ErrSnapshotNotFound if none has been recorded.
func (r *SnapshotRepository) LatestSnapshot(ctx context.Context) (model.MetricsSnapshot, error) {
	query := `
		SELECT id, taken_at, metrics, transaction_count, skipped_count
		FROM metrics_snapshot
		ORDER BY taken_at DESC
		LIMIT 1
	`

	var s model.MetricsSnapshot
	var takenAtStr, metrics string

	err := r.db.QueryRowContext(ctx, query).Scan(
		&s.ID,
		&takenAtStr,
		&metrics,
		&s.TransactionCount,
		&s.SkippedCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.MetricsSnapshot{}, apperrors.ErrSnapshotNotFound
	}
	if err != nil {
		return model.MetricsSnapshot{}, fmt.Errorf("failed to scan metrics_snapshot table results: %w", err)
	}

	s.TakenAt, err = ParseTime(takenAtStr)
	if err != nil {
		return model.MetricsSnapshot{}, fmt.Errorf("failed to parse taken_at: %w", err)
	}

	if err := json.Unmarshal([]byte(metrics), &s.Metrics); err != nil {
		return model.MetricsSnapshot{}, fmt.Errorf("%w: snapshot %s metrics: %w", apperrors.ErrDataInconsistency, s.ID, err)
	}

	return s, nil
}
