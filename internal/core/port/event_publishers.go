package port

import (
	"context"

	"car-finder/internal/core/domain"
)

// IngestionReporterPort сообщает об успешно загруженной пачке
type IngestionReporterPort interface {
	ReportIngestion(ctx context.Context, report domain.IngestionReport) error
}

type PriceEventPublisherPort interface {
	PublishPriceChanged(ctx context.Context, event domain.PriceChangedEvent) error
}

// AlertSenderPort передает письмо почтовому сервису
type AlertSenderPort interface {
	SendAlert(ctx context.Context, email domain.AlertEmail) error
}
