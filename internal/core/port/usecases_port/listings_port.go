package usecases_port

import (
	"context"

	"car-finder/internal/core/domain"

	"github.com/google/uuid"
)

type GetListingPort interface {
	Execute(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
}

type SearchListingsPort interface {
	Execute(ctx context.Context, query domain.SearchQuery) (*domain.SearchResult, error)
}
