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

// ListingUnitOfWork реализует ListingUnitOfWorkPort поверх транзакции pgx.
type ListingUnitOfWork struct {
	pool *pgxpool.Pool
}

func NewListingUnitOfWork(pool *pgxpool.Pool) (*ListingUnitOfWork, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &ListingUnitOfWork{pool: pool}, nil
}

func (u *ListingUnitOfWork) WithinTx(ctx context.Context, fn func(tx port.ListingTxPort) error) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "ListingUnitOfWork",
		"method":    "WithinTx",
	})

	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		repoLogger.Error("Failed to begin transaction", err, nil)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&listingTx{tx: tx}); err != nil {
		repoLogger.Debug("Transaction rolled back", port.Fields{"reason": err.Error()})
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		repoLogger.Error("Failed to commit transaction", err, nil)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type listingTx struct {
	tx pgx.Tx
}

func (t *listingTx) FindBySourceKey(ctx context.Context, source, sourceID string) (*domain.ListingOwnership, error) {
	query := `SELECT id, dealer_id FROM listings WHERE source = $1 AND source_id = $2 FOR UPDATE`

	var own domain.ListingOwnership
	err := t.tx.QueryRow(ctx, query, source, sourceID).Scan(&own.ID, &own.DealerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find listing by source key: %w", err)
	}
	return &own, nil
}

// UpdateListing: nil-поля сохраняют прежние значения, пустой список фото тоже
func (t *listingTx) UpdateListing(ctx context.Context, id uuid.UUID, l *domain.Listing) error {
	query := `
		UPDATE listings SET
			hash_signature = $2,
			vin = COALESCE($3, vin),
			title = COALESCE($4, title),
			year = COALESCE($5, year),
			make = COALESCE($6, make),
			model = COALESCE($7, model),
			trim = COALESCE($8, trim),
			price = COALESCE($9, price),
			mileage = COALESCE($10, mileage),
			body = COALESCE($11, body),
			drivetrain = COALESCE($12, drivetrain),
			transmission = COALESCE($13, transmission),
			fuel = COALESCE($14, fuel),
			color_ext = COALESCE($15, color_ext),
			color_int = COALESCE($16, color_int),
			city = COALESCE($17, city),
			state = COALESCE($18, state),
			lat = COALESCE($19, lat),
			lon = COALESCE($20, lon),
			geohash = CASE WHEN $19::double precision IS NOT NULL THEN $21::text ELSE geohash END,
			url = COALESCE($22, url),
			phone = COALESCE($23, phone),
			images = CASE WHEN cardinality($24::text[]) > 0 THEN $24::text[] ELSE images END,
			seller_type = $25,
			dealer_id = $26,
			posted_at = COALESCE($27, posted_at),
			updated_at = $28
		WHERE id = $1`

	lat, lon, geo := coordinatesForUpdate(l.Lat, l.Lon)
	_, err := t.tx.Exec(ctx, query,
		id, l.HashSignature, l.VIN, l.Title, l.Year, l.Make, l.Model, l.Trim,
		l.Price, l.Mileage, l.Body, l.Drivetrain, l.Transmission, l.Fuel, l.ColorExt, l.ColorInt,
		l.City, l.State, lat, lon, geo, l.URL, l.Phone, imagesOrEmpty(l.Images),
		l.SellerType, l.DealerID, l.PostedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update listing %s: %w", id, err)
	}
	return nil
}

func (t *listingTx) InsertListing(ctx context.Context, l *domain.Listing) error {
	query := `INSERT INTO listings (` + listingColumns + `) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
		$21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31)`

	geo := l.Geohash
	if geo == nil {
		geo = listingGeohash(l.Lat, l.Lon)
	}

	_, err := t.tx.Exec(ctx, query,
		l.ID, l.Source, l.SourceID, l.HashSignature, l.VIN, l.Title, l.Year, l.Make, l.Model, l.Trim,
		l.Price, l.Mileage, l.Body, l.Drivetrain, l.Transmission, l.Fuel, l.ColorExt, l.ColorInt, l.City, l.State,
		l.Lat, l.Lon, geo, l.URL, l.Phone, imagesOrEmpty(l.Images), l.SellerType, l.DealerID, l.PostedAt, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert listing %s: %w", l.SourceID, err)
	}
	return nil
}

func imagesOrEmpty(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}
