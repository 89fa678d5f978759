package usecases_port

import (
	"context"

	"car-finder/internal/core/domain"

	"github.com/google/uuid"
)

type IngestDealerListingsPort interface {
	// IngestAsUser проверяет права пользователя на дилера и загружает пачку
	IngestAsUser(ctx context.Context, principal *domain.Principal, dealerID uuid.UUID, contentType string, body []byte) (*domain.IngestionResult, error)
	// IngestFromFeed загружает пачку от имени системы (очередь, синхронизация фидов)
	IngestFromFeed(ctx context.Context, dealerID uuid.UUID, contentType string, body []byte) (*domain.IngestionResult, error)
}
