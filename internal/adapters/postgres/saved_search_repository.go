package postgres_adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"car-finder/internal/contextkeys"
	"car-finder/internal/core/domain"
	"car-finder/internal/core/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const savedSearchColumns = `id, user_id, user_email, filters, zip, radius_miles, notify, last_notified_at, created_at`

// SavedSearchRepository реализует SavedSearchRepositoryPort, фильтры хранятся в JSONB
type SavedSearchRepository struct {
	pool *pgxpool.Pool
}

func NewSavedSearchRepository(pool *pgxpool.Pool) (*SavedSearchRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &SavedSearchRepository{pool: pool}, nil
}

func scanSavedSearch(row pgx.CollectableRow) (domain.SavedSearch, error) {
	var s domain.SavedSearch
	var filters []byte
	err := row.Scan(&s.ID, &s.UserID, &s.UserEmail, &filters, &s.Zip, &s.RadiusMiles, &s.Notify, &s.LastNotifiedAt, &s.CreatedAt)
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(filters, &s.Filters); err != nil {
		return s, fmt.Errorf("failed to decode filters of saved search %s: %w", s.ID, err)
	}
	return s, nil
}

func (r *SavedSearchRepository) Create(ctx context.Context, s *domain.SavedSearch) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "SavedSearchRepository",
		"method":    "Create",
		"user_id":   s.UserID,
	})

	filters, err := json.Marshal(s.Filters)
	if err != nil {
		return fmt.Errorf("failed to encode filters: %w", err)
	}

	query := `INSERT INTO saved_searches (` + savedSearchColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = r.pool.Exec(ctx, query,
		s.ID, s.UserID, s.UserEmail, filters, s.Zip, s.RadiusMiles, s.Notify, s.LastNotifiedAt, s.CreatedAt)
	if err != nil {
		repoLogger.Error("Failed to create saved search", err, nil)
		return fmt.Errorf("failed to create saved search: %w", err)
	}
	return nil
}

func (r *SavedSearchRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.SavedSearch, error) {
	query := `SELECT ` + savedSearchColumns + ` FROM saved_searches WHERE user_id = $1 ORDER BY created_at DESC, id ASC`
	return r.list(ctx, query, userID)
}

func (r *SavedSearchRepository) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM saved_searches WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete saved search: %w", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

func (r *SavedSearchRepository) ListNotifiable(ctx context.Context) ([]domain.SavedSearch, error) {
	query := `SELECT ` + savedSearchColumns + ` FROM saved_searches
		WHERE notify <> 'off'
		ORDER BY last_notified_at ASC NULLS FIRST, created_at ASC`
	return r.list(ctx, query)
}

func (r *SavedSearchRepository) MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	if _, err := r.pool.Exec(ctx, `UPDATE saved_searches SET last_notified_at = $2 WHERE id = $1`, id, at); err != nil {
		return fmt.Errorf("failed to mark saved search %s notified: %w", id, err)
	}
	return nil
}

func (r *SavedSearchRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.SavedSearch, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query saved searches: %w", err)
	}
	searches, err := pgx.CollectRows(rows, scanSavedSearch)
	if err != nil {
		return nil, fmt.Errorf("failed to scan saved searches: %w", err)
	}
	return searches, nil
}
