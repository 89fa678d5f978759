package rabbitmq

import (
	"context"
	"fmt"

	"car-finder/internal/contextkeys"
	"car-finder/internal/core/domain"
	"car-finder/internal/core/port"

	"github.com/google/uuid"
)

// AlertEmailDTO - письмо для почтового сервиса
type AlertEmailDTO struct {
	SearchID uuid.UUID `json:"searchId"`
	To       string    `json:"to"`
	From     string    `json:"from"`
	Subject  string    `json:"subject"`
	Text     string    `json:"text"`
	HTML     string    `json:"html"`
}

// AlertEmailAdapter ставит письма с подборками в очередь почтового сервиса
type AlertEmailAdapter struct {
	producer   jsonPublisher
	routingKey string
}

func NewAlertEmailAdapter(producer jsonPublisher, routingKey string) (*AlertEmailAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("rabbitmq adapter: routingKey cannot be empty")
	}
	return &AlertEmailAdapter{producer: producer, routingKey: routingKey}, nil
}

func (a *AlertEmailAdapter) SendAlert(ctx context.Context, email domain.AlertEmail) error {
	logger := contextkeys.LoggerFromContext(ctx)
	adapterLogger := logger.WithFields(port.Fields{
		"component": "AlertEmailAdapter",
		"search_id": email.SearchID.String(),
	})

	dto := AlertEmailDTO{
		SearchID: email.SearchID,
		To:       email.To,
		From:     email.From,
		Subject:  email.Subject,
		Text:     email.Text,
		HTML:     email.HTML,
	}
	if err := publishWithTrace(ctx, a.producer, a.routingKey, "AlertEmailEvent", dto); err != nil {
		adapterLogger.Error("Failed to enqueue alert email", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to enqueue alert email: %w", err)
	}
	adapterLogger.Info("Alert email enqueued", nil)
	return nil
}
