package port

import (
	"context"
	"time"

	"car-finder/internal/core/domain"

	"github.com/google/uuid"
)

type PriceHistoryStoragePort interface {
	// ListListingsForSnapshot возвращает объявления с ценой последнего снимка
	ListListingsForSnapshot(ctx context.Context) ([]domain.ListingPriceState, error)
	InsertSnapshot(ctx context.Context, listingID uuid.UUID, price int, capturedAt time.Time) error
	// GetHistory возвращает снимки по возрастанию capturedAt
	GetHistory(ctx context.Context, listingID uuid.UUID) ([]domain.PriceSnapshot, error)
}
