package postgres_adapter

import (
	"context"
	"errors"
	"fmt"

	"car-finder/internal/contextkeys"
	"car-finder/internal/core/domain"
	"car-finder/internal/core/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ListingReader реализует ListingReaderPort.
type ListingReader struct {
	pool *pgxpool.Pool
}

func NewListingReader(pool *pgxpool.Pool) (*ListingReader, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &ListingReader{pool: pool}, nil
}

func (r *ListingReader) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":  "ListingReader",
		"method":     "GetByID",
		"listing_id": id,
	})

	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	listing, err := scanListing(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			repoLogger.Debug("Listing not found", nil)
			return nil, nil
		}
		repoLogger.Error("Failed to get listing", err, nil)
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return listing, nil
}

// Search выполняет подсчет и выборку страницы одним пакетом запросов
func (r *ListingReader) Search(ctx context.Context, q domain.SearchQuery) (*domain.SearchResult, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "ListingReader",
		"method":    "Search",
	})

	countQuery, pageQuery, args := buildSearchQueries(q)
	pageArgs := append(append([]interface{}{}, args...), q.PageSize, q.Offset())

	result := &domain.SearchResult{Listings: make([]domain.Listing, 0, q.PageSize)}

	batch := &pgx.Batch{}
	batch.Queue(countQuery, args...).QueryRow(func(row pgx.Row) error {
		return row.Scan(&result.TotalCount)
	})
	batch.Queue(pageQuery, pageArgs...).Query(func(rows pgx.Rows) error {
		for rows.Next() {
			listing, err := scanListing(rows)
			if err != nil {
				return fmt.Errorf("failed to scan listing: %w", err)
			}
			result.Listings = append(result.Listings, *listing)
		}
		return rows.Err()
	})

	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		repoLogger.Error("Failed to run search", err, port.Fields{"query": pageQuery})
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}
	return result, nil
}
