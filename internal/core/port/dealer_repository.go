package port

import (
	"context"

	"car-finder/internal/core/domain"

	"github.com/google/uuid"
)

type DealerRepositoryPort interface {
	// GetByID возвращает (nil, nil), если дилера нет
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Dealer, error)
	// FindByNameOrEmail ищет без учета регистра, возвращает (nil, nil), если совпадений нет
	FindByNameOrEmail(ctx context.Context, name string, email *string) (*domain.Dealer, error)
	// Create возвращает domain.ErrDealerExists при нарушении уникальности
	Create(ctx context.Context, dealer *domain.Dealer) error
	List(ctx context.Context) ([]domain.Dealer, error)
	ListWithFeeds(ctx context.Context) ([]domain.Dealer, error)
}
