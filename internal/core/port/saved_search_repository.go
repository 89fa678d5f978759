package port

import (
	"context"
	"time"

	"car-finder/internal/core/domain"

	"github.com/google/uuid"
)

type SavedSearchRepositoryPort interface {
	Create(ctx context.Context, search *domain.SavedSearch) error
	// ListByUser - новые сначала
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.SavedSearch, error)
	// Delete удаляет поиск пользователя, false - если не найден или чужой
	Delete(ctx context.Context, id, userID uuid.UUID) (bool, error)
	// ListNotifiable возвращает поиски с notify != off, давно не уведомленные первыми
	ListNotifiable(ctx context.Context) ([]domain.SavedSearch, error)
	MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error
}
