package rabbitmq_consumer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"car-finder/pkg/rabbitmq/rabbitmq_common"
	"car-finder/pkg/rabbitmq/rabbitmq_producer"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DistributingConsumer раздает сообщения обработчикам в отдельных горутинах,
// не больше MaxInFlight одновременно.
type DistributingConsumer struct {
	cfg        ConsumerConfig
	handler    MessageHandler
	connection *amqp.Connection
	channel    *amqp.Channel
	dlx        *rabbitmq_producer.Publisher
	slots      chan struct{}
	wg         sync.WaitGroup
	closeOnce  sync.Once

	Logger rabbitmq_common.Logger
}

var _ Consumer = (*DistributingConsumer)(nil)

func NewDistributingConsumer(cfg ConsumerConfig, handler MessageHandler, connManager *rabbitmq_common.ConnectionManager) (*DistributingConsumer, error) {
	if handler == nil {
		return nil, fmt.Errorf("distributing consumer: message handler is required")
	}
	if connManager == nil {
		return nil, fmt.Errorf("distributing consumer: connection manager is required")
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("distributing consumer: invalid config: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = rabbitmq_common.NewNoopLogger()
	}

	conn, ch, err := connManager.GetChannel()
	if err != nil {
		return nil, fmt.Errorf("distributing consumer: failed to get channel: %w", err)
	}
	if err := declareTopology(ch, cfg); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("distributing consumer: %w", err)
	}

	c := &DistributingConsumer{
		cfg:        cfg,
		handler:    handler,
		connection: conn,
		channel:    ch,
		slots:      make(chan struct{}, cfg.inFlightLimit()),
		Logger:     logger,
	}

	if cfg.Retry != nil {
		c.dlx, err = rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			Config:       cfg.Config,
			ExchangeName: cfg.Retry.FinalDLXExchange,
			Logger:       logger,
		}, connManager)
		if err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("distributing consumer: failed to create final DLX publisher: %w", err)
		}
	}

	logger.Debug("Consumer ready", "queue", cfg.QueueName, "max_in_flight", cap(c.slots))
	return c, nil
}

// StartConsuming блокируется до отмены ctx или закрытия соединения
func (c *DistributingConsumer) StartConsuming(ctx context.Context) error {
	if c.channel == nil || c.connection.IsClosed() {
		return fmt.Errorf("distributing consumer: channel is closed")
	}

	msgs, err := c.channel.Consume(c.cfg.QueueName, c.cfg.ConsumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("distributing consumer: failed to consume from '%s': %w", c.cfg.QueueName, err)
	}
	c.Logger.Info("[*] Waiting for messages", "queue", c.cfg.QueueName)

	notifyClose := c.connection.NotifyClose(make(chan *amqp.Error, 1))

	for {
		// слот занимаем до чтения следующего сообщения, чтобы не держать лишние доставки
		select {
		case <-ctx.Done():
			c.Logger.Info("Context cancelled, stopping consumer", "queue", c.cfg.QueueName)
			return nil
		case c.slots <- struct{}{}:
		}

		select {
		case <-ctx.Done():
			<-c.slots
			c.Logger.Info("Context cancelled, stopping consumer", "queue", c.cfg.QueueName)
			return nil
		case amqpErr := <-notifyClose:
			<-c.slots
			if amqpErr == nil {
				return fmt.Errorf("distributing consumer: connection closed")
			}
			c.Logger.Error(amqpErr, "Connection closed", "queue", c.cfg.QueueName)
			return amqpErr
		case d, ok := <-msgs:
			if !ok {
				<-c.slots
				c.Logger.Info("Deliveries channel closed", "queue", c.cfg.QueueName)
				return nil
			}
			c.wg.Add(1)
			go func(d amqp.Delivery) {
				defer c.wg.Done()
				defer func() { <-c.slots }()
				c.process(ctx, d)
			}(d)
		}
	}
}

func (c *DistributingConsumer) process(ctx context.Context, d amqp.Delivery) {
	err := c.handler(ctx, d)
	if err == nil {
		_ = d.Ack(false)
		c.Logger.Debug("[+] Message acked", "delivery_tag", d.DeliveryTag)
		return
	}

	c.Logger.Error(err, "Handler failed", "queue", c.cfg.QueueName, "delivery_tag", d.DeliveryTag)

	if c.cfg.Retry == nil {
		_ = d.Nack(false, false)
		return
	}

	deaths := deathCount(d.Headers, c.cfg.QueueName)
	if !IsPermanent(err) && deaths < int64(c.cfg.Retry.MaxRetries) {
		c.Logger.Info("Scheduling retry", "delivery_tag", d.DeliveryTag, "death_count", deaths)
		_ = d.Nack(false, false)
		return
	}

	// попытки исчерпаны или повтор бессмысленен
	pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pubErr := c.dlx.Publish(pubCtx, c.cfg.Retry.FinalDLQRoutingKey, amqp.Publishing{
		ContentType:  d.ContentType,
		Body:         d.Body,
		Headers:      d.Headers,
		Timestamp:    time.Now(),
		DeliveryMode: amqp.Persistent,
	})
	if pubErr != nil {
		c.Logger.Error(pubErr, "Failed to publish to final DLX, retrying again", "delivery_tag", d.DeliveryTag)
		_ = d.Nack(false, false)
		return
	}
	c.Logger.Warn("Message moved to final DLQ", "delivery_tag", d.DeliveryTag, "dlq", c.cfg.Retry.FinalDLQ)
	_ = d.Ack(false)
}

// Close дожидается активных обработчиков и закрывает канал
func (c *DistributingConsumer) Close() error {
	var firstErr error
	c.closeOnce.Do(func() {
		c.wg.Wait()
		if c.dlx != nil {
			if err := c.dlx.Close(); err != nil {
				firstErr = err
			}
		}
		if c.channel != nil {
			if err := c.channel.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		c.Logger.Info("Consumer closed", "queue", c.cfg.QueueName)
	})
	return firstErr
}
