package postgres_adapter

import (
	"context"
	"fmt"
	"time"

	"car-finder/internal/contextkeys"
	"car-finder/internal/core/domain"
	"car-finder/internal/core/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PriceHistoryRepository реализует PriceHistoryStoragePort.
type PriceHistoryRepository struct {
	pool *pgxpool.Pool
}

func NewPriceHistoryRepository(pool *pgxpool.Pool) (*PriceHistoryRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PriceHistoryRepository{pool: pool}, nil
}

func (r *PriceHistoryRepository) ListListingsForSnapshot(ctx context.Context) ([]domain.ListingPriceState, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PriceHistoryRepository",
		"method":    "ListListingsForSnapshot",
	})

	query := `
		SELECT l.id, l.vin, l.title, l.phone, l.price, ph.price
		FROM listings l
		LEFT JOIN LATERAL (
			SELECT price FROM price_history
			WHERE listing_id = l.id
			ORDER BY captured_at DESC
			LIMIT 1
		) ph ON true
		ORDER BY l.id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		repoLogger.Error("Failed to query listings for snapshot", err, nil)
		return nil, fmt.Errorf("failed to query listings for snapshot: %w", err)
	}

	states, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ListingPriceState, error) {
		var s domain.ListingPriceState
		err := row.Scan(&s.ID, &s.VIN, &s.Title, &s.Phone, &s.Price, &s.LatestPrice)
		return s, err
	})
	if err != nil {
		repoLogger.Error("Failed to scan listings for snapshot", err, nil)
		return nil, fmt.Errorf("failed to scan listings for snapshot: %w", err)
	}
	return states, nil
}

func (r *PriceHistoryRepository) InsertSnapshot(ctx context.Context, listingID uuid.UUID, price int, capturedAt time.Time) error {
	query := `INSERT INTO price_history (id, listing_id, price, captured_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.pool.Exec(ctx, query, uuid.New(), listingID, price, capturedAt); err != nil {
		return fmt.Errorf("failed to insert price snapshot for %s: %w", listingID, err)
	}
	return nil
}

func (r *PriceHistoryRepository) GetHistory(ctx context.Context, listingID uuid.UUID) ([]domain.PriceSnapshot, error) {
	query := `SELECT id, listing_id, price, captured_at FROM price_history WHERE listing_id = $1 ORDER BY captured_at ASC`

	rows, err := r.pool.Query(ctx, query, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query price history: %w", err)
	}

	history, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PriceSnapshot, error) {
		var s domain.PriceSnapshot
		err := row.Scan(&s.ID, &s.ListingID, &s.Price, &s.CapturedAt)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan price history: %w", err)
	}
	return history, nil
}
