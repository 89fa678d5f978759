package port

import "context"

// EventListenerPort - фоновый компонент: слушатель очереди или планировщик
type EventListenerPort interface {
	// Start блокируется до отмены ctx
	Start(ctx context.Context) error

	// Close корректно останавливает компонент, дожидаясь завершения активных задач
	Close() error
}
