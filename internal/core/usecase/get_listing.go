package usecase

import (
	"context"
	"fmt"

	"car-finder/internal/core/domain"
	"car-finder/internal/core/port"

	"github.com/google/uuid"
)

type GetListingUseCase struct {
	listings port.ListingReaderPort
}

func NewGetListingUseCase(listings port.ListingReaderPort) *GetListingUseCase {
	return &GetListingUseCase{listings: listings}
}

func (uc *GetListingUseCase) Execute(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	listing, err := uc.listings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load listing %s: %w", id, err)
	}
	if listing == nil {
		return nil, domain.ErrListingNotFound
	}
	return listing, nil
}
