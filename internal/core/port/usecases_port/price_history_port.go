package usecases_port

import (
	"context"

	"car-finder/internal/core/domain"

	"github.com/google/uuid"
)

type RecordPriceHistoryPort interface {
	Execute(ctx context.Context) (*domain.SnapshotReport, error)
}

type GetPriceHistoryPort interface {
	Execute(ctx context.Context, listingID uuid.UUID) ([]domain.PriceSnapshot, error)
}
