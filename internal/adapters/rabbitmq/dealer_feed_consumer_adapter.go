package rabbitmq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"car-finder/internal/constants"
	"car-finder/internal/contextkeys"
	"car-finder/internal/contracts"
	"car-finder/internal/core/domain"
	"car-finder/internal/core/port"
	usecases_port "car-finder/internal/core/port/usecases_port"
	"car-finder/pkg/rabbitmq/rabbitmq_common"
	"car-finder/pkg/rabbitmq/rabbitmq_consumer"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// DealerFeedMessageDTO - пачка фида дилера, пришедшая через брокер.
// payload - CSV-строка либо JSON (массив или {"listings": [...]}).
type DealerFeedMessageDTO struct {
	DealerID    uuid.UUID       `json:"dealerId"`
	ContentType string          `json:"contentType"`
	Payload     json.RawMessage `json:"payload"`
}

// DealerFeedConsumerAdapter слушает очередь dealer_feeds и загружает пачки
// через тот же use case, что и REST.
type DealerFeedConsumerAdapter struct {
	consumer rabbitmq_consumer.Consumer
	useCase  usecases_port.IngestDealerListingsPort
	logger   port.LoggerPort
}

func NewDealerFeedConsumerAdapter(
	consumerCfg rabbitmq_consumer.ConsumerConfig,
	useCase usecases_port.IngestDealerListingsPort,
	logger port.LoggerPort,
	connManager *rabbitmq_common.ConnectionManager,
) (*DealerFeedConsumerAdapter, error) {
	adapter := &DealerFeedConsumerAdapter{
		useCase: useCase,
		logger:  logger,
	}

	pkgLogger := logger.WithFields(port.Fields{"component": "rabbitmq_consumer", "consumer_tag": consumerCfg.ConsumerTag})
	consumerCfg.Logger = NewPkgLoggerBridge(pkgLogger)

	consumer, err := rabbitmq_consumer.NewDistributingConsumer(consumerCfg, adapter.handleMessage, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ consumer for dealer feeds: %w", err)
	}
	adapter.consumer = consumer

	return adapter, nil
}

func (a *DealerFeedConsumerAdapter) Start(ctx context.Context) error {
	a.logger.Info("Starting dealer feed consumer", nil)
	return a.consumer.StartConsuming(ctx)
}

func (a *DealerFeedConsumerAdapter) Close() error {
	a.logger.Info("Closing dealer feed consumer", nil)
	return a.consumer.Close()
}

// handleMessage: ошибки в самом сообщении не исправятся повтором и уходят сразу в DLQ
func (a *DealerFeedConsumerAdapter) handleMessage(ctx context.Context, d amqp.Delivery) error {
	traceID, _ := d.Headers[constants.HeaderTraceID].(string)
	if traceID == "" {
		traceID = uuid.New().String()
	}

	msgLogger := a.logger.WithFields(port.Fields{
		"trace_id":     traceID,
		"message_id":   d.MessageId,
		"adapter_name": "DealerFeedConsumerAdapter",
	})

	ctx = contextkeys.ContextWithLogger(ctx, msgLogger)
	ctx = contextkeys.ContextWithTraceID(ctx, traceID)

	if err := contracts.Validate(contracts.DealerFeedV1, d.Body); err != nil {
		msgLogger.Error("Message failed schema validation. Rejecting.", err, nil)
		return rabbitmq_consumer.Permanent(err)
	}

	var dto DealerFeedMessageDTO
	if err := json.Unmarshal(d.Body, &dto); err != nil {
		return rabbitmq_consumer.Permanent(fmt.Errorf("failed to unmarshal dealer feed message: %w", err))
	}

	body, err := payloadBytes(dto.Payload)
	if err != nil {
		return rabbitmq_consumer.Permanent(err)
	}

	msgLogger = msgLogger.WithFields(port.Fields{"dealer_id": dto.DealerID.String()})
	ctx = contextkeys.ContextWithLogger(ctx, msgLogger)

	result, err := a.useCase.IngestFromFeed(ctx, dto.DealerID, dto.ContentType, body)
	if err != nil {
		if isRejection(err) {
			msgLogger.Warn("Dealer feed rejected", port.Fields{"reason": err.Error()})
			return rabbitmq_consumer.Permanent(err)
		}
		msgLogger.Error("Dealer feed ingestion failed, will retry", err, nil)
		return err
	}

	msgLogger.Info("Dealer feed ingested", port.Fields{
		"received": result.Received,
		"created":  result.Created,
		"updated":  result.Updated,
	})
	return nil
}

// payloadBytes: JSON-строка разворачивается (CSV), массив и объект передаются как есть
func payloadBytes(raw json.RawMessage) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, fmt.Errorf("failed to decode string payload: %w", err)
		}
		return []byte(s), nil
	}
	return trimmed, nil
}

// isRejection - ошибки данных, которые не исправятся повторной доставкой
func isRejection(err error) bool {
	return errors.Is(err, domain.ErrInvalidPayload) ||
		errors.Is(err, domain.ErrUnsupportedContentType) ||
		errors.Is(err, domain.ErrNoValidRecords) ||
		errors.Is(err, domain.ErrDealerNotFound) ||
		errors.Is(err, domain.ErrOwnershipConflict)
}
