package rabbitmq_consumer

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// declareTopology объявляет очередь, обменник, привязку и контур повторов
func declareTopology(ch *amqp.Channel, cfg ConsumerConfig) error {
	if cfg.PrefetchCount > 0 {
		if err := ch.Qos(cfg.PrefetchCount, 0, false); err != nil {
			return fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	if cfg.Retry != nil {
		if err := declareRetryLoop(ch, cfg.ExchangeName, cfg.Retry); err != nil {
			return err
		}
	}

	if cfg.ExchangeName != "" {
		err := ch.ExchangeDeclare(cfg.ExchangeName, cfg.ExchangeType, true, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("failed to declare exchange '%s': %w", cfg.ExchangeName, err)
		}
	}

	args := amqp.Table{}
	for k, v := range cfg.QueueArgs {
		args[k] = v
	}
	if cfg.Retry != nil {
		// отклоненные сообщения уходят в retry exchange
		args["x-dead-letter-exchange"] = cfg.Retry.RetryExchange
	}

	if _, err := ch.QueueDeclare(cfg.QueueName, cfg.DurableQueue, false, false, false, args); err != nil {
		return fmt.Errorf("failed to declare queue '%s': %w", cfg.QueueName, err)
	}

	if cfg.ExchangeName != "" {
		if err := ch.QueueBind(cfg.QueueName, cfg.RoutingKey, cfg.ExchangeName, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue '%s' to '%s': %w", cfg.QueueName, cfg.ExchangeName, err)
		}
	}
	return nil
}

func declareRetryLoop(ch *amqp.Channel, mainExchange string, r *RetryConfig) error {
	if err := ch.ExchangeDeclare(r.FinalDLXExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare final DLX: %w", err)
	}
	if _, err := ch.QueueDeclare(r.FinalDLQ, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare final DLQ: %w", err)
	}
	if err := ch.QueueBind(r.FinalDLQ, r.FinalDLQRoutingKey, r.FinalDLXExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind final DLQ: %w", err)
	}

	if err := ch.ExchangeDeclare(r.RetryExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare retry exchange: %w", err)
	}
	_, err := ch.QueueDeclare(r.RetryQueue, true, false, false, false, amqp.Table{
		"x-message-ttl":          int32(r.RetryTTL),
		"x-dead-letter-exchange": mainExchange,
	})
	if err != nil {
		return fmt.Errorf("failed to declare retry queue: %w", err)
	}
	if err := ch.QueueBind(r.RetryQueue, "", r.RetryExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind retry queue: %w", err)
	}
	return nil
}

// deathCount возвращает, сколько раз сообщение было отклонено из очереди queue.
// Значение берется из заголовка x-death, который выставляет брокер.
func deathCount(headers amqp.Table, queue string) int64 {
	raw, ok := headers["x-death"]
	if !ok {
		return 0
	}
	deaths, ok := raw.([]interface{})
	if !ok {
		return 0
	}
	for _, d := range deaths {
		tbl, ok := d.(amqp.Table)
		if !ok {
			continue
		}
		if q, _ := tbl["queue"].(string); q != queue {
			continue
		}
		if count, ok := tbl["count"].(int64); ok {
			return count
		}
	}
	return 0
}
