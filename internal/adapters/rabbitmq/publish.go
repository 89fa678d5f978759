package rabbitmq

import (
	"context"
	"time"

	"car-finder/internal/constants"
	"car-finder/internal/contextkeys"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 10 * time.Second

// jsonPublisher - то, что адаптерам нужно от rabbitmq_producer.Publisher
type jsonPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, payload interface{}, headers amqp.Table) error
}

// publishWithTrace публикует payload с trace_id из контекста и собственным таймаутом
func publishWithTrace(ctx context.Context, producer jsonPublisher, routingKey, eventType string, payload interface{}) error {
	headers := amqp.Table{
		"event-type":    eventType,
		"event-version": "1.0.0",
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		headers[constants.HeaderTraceID] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return producer.PublishJSON(publishCtx, routingKey, payload, headers)
}
