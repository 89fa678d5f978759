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
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dealerColumns = `id, name, email, phone, website, feed_url, created_at`

// DealerRepository реализует DealerRepositoryPort.
// Уникальность имени и почты проверяется по свернутым ключам name_key и email_key.
type DealerRepository struct {
	pool *pgxpool.Pool
}

func NewDealerRepository(pool *pgxpool.Pool) (*DealerRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &DealerRepository{pool: pool}, nil
}

func scanDealer(row pgx.Row) (*domain.Dealer, error) {
	var d domain.Dealer
	if err := row.Scan(&d.ID, &d.Name, &d.Email, &d.Phone, &d.Website, &d.FeedURL, &d.CreatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DealerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Dealer, error) {
	query := `SELECT ` + dealerColumns + ` FROM dealers WHERE id = $1`
	dealer, err := scanDealer(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get dealer: %w", err)
	}
	return dealer, nil
}

func (r *DealerRepository) FindByNameOrEmail(ctx context.Context, name string, email *string) (*domain.Dealer, error) {
	var emailKey *string
	if email != nil {
		k := domain.FoldKey(*email)
		emailKey = &k
	}

	query := `SELECT ` + dealerColumns + ` FROM dealers
		WHERE name_key = $1 OR ($2::text IS NOT NULL AND email_key = $2)
		LIMIT 1`
	dealer, err := scanDealer(r.pool.QueryRow(ctx, query, domain.FoldKey(name), emailKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find dealer: %w", err)
	}
	return dealer, nil
}

func (r *DealerRepository) Create(ctx context.Context, d *domain.Dealer) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "DealerRepository",
		"method":    "Create",
		"dealer_id": d.ID,
	})

	var emailKey *string
	if d.Email != nil {
		k := domain.FoldKey(*d.Email)
		emailKey = &k
	}

	query := `INSERT INTO dealers (id, name, name_key, email, email_key, phone, website, feed_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.pool.Exec(ctx, query,
		d.ID, d.Name, domain.FoldKey(d.Name), d.Email, emailKey, d.Phone, d.Website, d.FeedURL, d.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			repoLogger.Warn("Dealer already exists", port.Fields{"constraint": pgErr.ConstraintName})
			return domain.ErrDealerExists
		}
		repoLogger.Error("Failed to create dealer", err, nil)
		return fmt.Errorf("failed to create dealer: %w", err)
	}
	return nil
}

func (r *DealerRepository) List(ctx context.Context) ([]domain.Dealer, error) {
	return r.list(ctx, `SELECT `+dealerColumns+` FROM dealers ORDER BY name_key ASC`)
}

func (r *DealerRepository) ListWithFeeds(ctx context.Context) ([]domain.Dealer, error) {
	return r.list(ctx, `SELECT `+dealerColumns+` FROM dealers WHERE feed_url IS NOT NULL AND feed_url <> '' ORDER BY created_at ASC`)
}

func (r *DealerRepository) list(ctx context.Context, query string) ([]domain.Dealer, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query dealers: %w", err)
	}
	dealers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Dealer, error) {
		d, err := scanDealer(row)
		if err != nil {
			return domain.Dealer{}, err
		}
		return *d, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan dealers: %w", err)
	}
	return dealers, nil
}
