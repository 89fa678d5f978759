package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"car-finder/internal/contextkeys"
	"car-finder/internal/core/domain"
	"car-finder/internal/core/port"
	"car-finder/internal/core/port/usecases_port"

	"github.com/google/uuid"
)

type SavedSearchesUseCase struct {
	repo port.SavedSearchRepositoryPort
	now  func() time.Time
}

func NewSavedSearchesUseCase(repo port.SavedSearchRepositoryPort) *SavedSearchesUseCase {
	return &SavedSearchesUseCase{repo: repo, now: time.Now}
}

// Create сохраняет поиск пользователя. Email для рассылки берется из токена.
func (uc *SavedSearchesUseCase) Create(ctx context.Context, principal *domain.Principal, params usecases_port.CreateSavedSearchParams) (*domain.SavedSearch, error) {
	if principal == nil {
		return nil, domain.ErrUnauthorized
	}

	search := &domain.SavedSearch{
		ID:          uuid.New(),
		UserID:      principal.UserID,
		Filters:     params.Filters,
		Zip:         trimmedOrNil(params.Zip),
		RadiusMiles: domain.DefaultRadiusMiles,
		Notify:      domain.NotifyDaily,
		CreatedAt:   uc.now().UTC(),
	}
	if email := strings.TrimSpace(principal.Email); email != "" {
		search.UserEmail = &email
	}
	if params.RadiusMiles != nil {
		search.RadiusMiles = *params.RadiusMiles
	}
	if params.Notify != nil {
		search.Notify = *params.Notify
	}

	if err := uc.repo.Create(ctx, search); err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to save search", err, port.Fields{"user_id": principal.UserID.String()})
		return nil, fmt.Errorf("failed to create saved search: %w", err)
	}
	return search, nil
}

func (uc *SavedSearchesUseCase) List(ctx context.Context, principal *domain.Principal) ([]domain.SavedSearch, error) {
	if principal == nil {
		return nil, domain.ErrUnauthorized
	}
	searches, err := uc.repo.ListByUser(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved searches: %w", err)
	}
	return searches, nil
}

func (uc *SavedSearchesUseCase) Delete(ctx context.Context, principal *domain.Principal, id uuid.UUID) error {
	if principal == nil {
		return domain.ErrUnauthorized
	}
	deleted, err := uc.repo.Delete(ctx, id, principal.UserID)
	if err != nil {
		return fmt.Errorf("failed to delete saved search: %w", err)
	}
	if !deleted {
		return domain.ErrSavedSearchNotFound
	}
	return nil
}
