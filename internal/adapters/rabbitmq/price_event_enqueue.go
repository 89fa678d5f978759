package rabbitmq

import (
	"context"
	"fmt"
	"time"

	"car-finder/internal/core/domain"

	"github.com/google/uuid"
)

// PriceChangedDTO - событие о новом снимке цены
type PriceChangedDTO struct {
	ListingID     uuid.UUID `json:"listingId"`
	PreviousPrice *int      `json:"previousPrice"`
	Price         int       `json:"price"`
	CapturedAt    time.Time `json:"capturedAt"`
}

type PriceEventPublisherAdapter struct {
	producer   jsonPublisher
	routingKey string
}

func NewPriceEventPublisherAdapter(producer jsonPublisher, routingKey string) (*PriceEventPublisherAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("rabbitmq adapter: routingKey cannot be empty")
	}
	return &PriceEventPublisherAdapter{producer: producer, routingKey: routingKey}, nil
}

func (a *PriceEventPublisherAdapter) PublishPriceChanged(ctx context.Context, event domain.PriceChangedEvent) error {
	dto := PriceChangedDTO{
		ListingID:     event.ListingID,
		PreviousPrice: event.PreviousPrice,
		Price:         event.Price,
		CapturedAt:    event.CapturedAt,
	}
	if err := publishWithTrace(ctx, a.producer, a.routingKey, "PriceChangedEvent", dto); err != nil {
		return fmt.Errorf("rabbitmq adapter: failed to publish price change for listing %s: %w", event.ListingID, err)
	}
	return nil
}
