package port

import (
	"context"

	"car-finder/internal/core/domain"

	"github.com/google/uuid"
)

// ListingUnitOfWorkPort выполняет fn в одной транзакции.
// Ошибка fn откатывает все изменения, сделанные через tx.
type ListingUnitOfWorkPort interface {
	WithinTx(ctx context.Context, fn func(tx ListingTxPort) error) error
}

// ListingTxPort - операции над объявлениями внутри транзакции загрузки
type ListingTxPort interface {
	// FindBySourceKey блокирует найденную строку до конца транзакции.
	// Возвращает (nil, nil), если записи нет.
	FindBySourceKey(ctx context.Context, source, sourceID string) (*domain.ListingOwnership, error)
	// UpdateListing перезаписывает поля; nil-поля и пустой список фото оставляют старые значения
	UpdateListing(ctx context.Context, id uuid.UUID, listing *domain.Listing) error
	InsertListing(ctx context.Context, listing *domain.Listing) error
}

// ListingReaderPort - чтение объявлений
type ListingReaderPort interface {
	// GetByID возвращает (nil, nil), если объявления нет
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchResult, error)
}
