package usecases_port

import (
	"context"

	"car-finder/internal/core/domain"

	"github.com/google/uuid"
)

// CreateSavedSearchParams - уже провалидированный запрос на сохранение поиска
type CreateSavedSearchParams struct {
	Filters     domain.SearchFilters
	Zip         *string
	RadiusMiles *int
	Notify      *string
}

type SavedSearchesPort interface {
	Create(ctx context.Context, principal *domain.Principal, params CreateSavedSearchParams) (*domain.SavedSearch, error)
	List(ctx context.Context, principal *domain.Principal) ([]domain.SavedSearch, error)
	Delete(ctx context.Context, principal *domain.Principal, id uuid.UUID) error
}

type SendSavedSearchAlertsPort interface {
	Execute(ctx context.Context) (*domain.AlertsReport, error)
}
