package rabbitmq_consumer

import (
	"context"
	"errors"
	"fmt"

	"car-finder/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer - общий контракт потребителей пакета
type Consumer interface {
	StartConsuming(ctx context.Context) error
	Close() error
}

// MessageHandler обрабатывает одно сообщение. Ack/Nack выполняет пакет:
// nil - Ack, ошибка - повтор через retry-очередь или финальная DLQ.
type MessageHandler func(ctx context.Context, delivery amqp.Delivery) error

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent помечает ошибку обработчика как неисправимую:
// сообщение сразу уходит в финальную DLQ, без повторов.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// RetryConfig описывает контур повторов: основная очередь -> retry exchange ->
// очередь ожидания с TTL -> обратно в основной обменник.
type RetryConfig struct {
	RetryExchange      string
	RetryQueue         string
	RetryTTL           int // мс
	FinalDLXExchange   string
	FinalDLQ           string
	FinalDLQRoutingKey string
	MaxRetries         int
}

func (r *RetryConfig) validate() error {
	if r.RetryExchange == "" || r.RetryQueue == "" {
		return fmt.Errorf("retry exchange and retry queue are required")
	}
	if r.FinalDLXExchange == "" || r.FinalDLQ == "" {
		return fmt.Errorf("final DLX and DLQ are required")
	}
	if r.RetryTTL <= 0 {
		return fmt.Errorf("retry TTL must be positive")
	}
	if r.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative")
	}
	return nil
}

// ConsumerConfig конфигурация потребителя
type ConsumerConfig struct {
	rabbitmq_common.Config

	QueueName    string
	DurableQueue bool
	QueueArgs    amqp.Table

	// обменник для привязки очереди; пусто - потребляем из default exchange
	ExchangeName string
	ExchangeType string
	RoutingKey   string

	PrefetchCount int
	ConsumerTag   string

	// ограничение на число одновременно обрабатываемых сообщений, 0 - PrefetchCount
	MaxInFlight int

	// nil - без повторов, ошибка обработчика приводит к Nack без requeue
	Retry *RetryConfig

	Logger rabbitmq_common.Logger
}

func (c ConsumerConfig) validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if c.QueueName == "" {
		return fmt.Errorf("queue name is required")
	}
	if c.ExchangeName != "" && c.ExchangeType == "" {
		return fmt.Errorf("exchange type is required for exchange '%s'", c.ExchangeName)
	}
	if c.Retry != nil {
		if c.ExchangeName == "" {
			return fmt.Errorf("retry requires an exchange to return messages to")
		}
		if err := c.Retry.validate(); err != nil {
			return fmt.Errorf("retry: %w", err)
		}
	}
	return nil
}

func (c ConsumerConfig) inFlightLimit() int {
	if c.MaxInFlight > 0 {
		return c.MaxInFlight
	}
	if c.PrefetchCount > 0 {
		return c.PrefetchCount
	}
	return 1
}
