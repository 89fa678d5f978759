package rabbitmq

import (
	"context"
	"errors"

	"car-finder/internal/contextkeys"
	"car-finder/internal/core/domain"
	"car-finder/internal/core/port"
)

// ErrMessagingDisabled - письмо не отправлено, брокер отключен конфигурацией
var ErrMessagingDisabled = errors.New("messaging is disabled")

// DisabledPublisher используется при RABBITMQ_ENABLED=false:
// события только пишутся в лог, письма не отправляются и поиск не отмечается уведомленным.
type DisabledPublisher struct{}

func NewDisabledPublisher() *DisabledPublisher {
	return &DisabledPublisher{}
}

func (p *DisabledPublisher) ReportIngestion(ctx context.Context, report domain.IngestionReport) error {
	contextkeys.LoggerFromContext(ctx).Debug("Messaging disabled, ingestion report dropped", port.Fields{
		"dealer_id": report.DealerID.String(),
		"created":   report.Created,
		"updated":   report.Updated,
	})
	return nil
}

func (p *DisabledPublisher) PublishPriceChanged(ctx context.Context, event domain.PriceChangedEvent) error {
	contextkeys.LoggerFromContext(ctx).Debug("Messaging disabled, price event dropped", port.Fields{
		"listing_id": event.ListingID.String(),
	})
	return nil
}

func (p *DisabledPublisher) SendAlert(ctx context.Context, email domain.AlertEmail) error {
	contextkeys.LoggerFromContext(ctx).Warn("Messaging disabled, alert email not sent", port.Fields{
		"search_id": email.SearchID.String(),
	})
	return ErrMessagingDisabled
}
