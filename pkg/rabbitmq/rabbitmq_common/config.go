package rabbitmq_common

import (
	"fmt"
	"strings"
)

// Config - общая часть конфигурации для издателей и потребителей
type Config struct {
	URL string
}

// Validate проверяет обязательные поля
func (c Config) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return fmt.Errorf("rabbitmq URL is required")
	}
	if !strings.HasPrefix(c.URL, "amqp://") && !strings.HasPrefix(c.URL, "amqps://") {
		return fmt.Errorf("rabbitmq URL must start with amqp:// or amqps://")
	}
	return nil
}
