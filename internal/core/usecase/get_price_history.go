package usecase

import (
	"context"
	"fmt"

	"car-finder/internal/core/domain"
	"car-finder/internal/core/port"

	"github.com/google/uuid"
)

type GetPriceHistoryUseCase struct {
	listings port.ListingReaderPort
	history  port.PriceHistoryStoragePort
}

func NewGetPriceHistoryUseCase(listings port.ListingReaderPort, history port.PriceHistoryStoragePort) *GetPriceHistoryUseCase {
	return &GetPriceHistoryUseCase{listings: listings, history: history}
}

func (uc *GetPriceHistoryUseCase) Execute(ctx context.Context, listingID uuid.UUID) ([]domain.PriceSnapshot, error) {
	listing, err := uc.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load listing %s: %w", listingID, err)
	}
	if listing == nil {
		return nil, domain.ErrListingNotFound
	}

	history, err := uc.history.GetHistory(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load price history for %s: %w", listingID, err)
	}
	return history, nil
}
