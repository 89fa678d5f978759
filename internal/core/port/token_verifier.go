package port

import (
	"context"

	"car-finder/internal/core/domain"
)

// TokenVerifierPort проверяет bearer-токен, выпущенный сервисом аутентификации
type TokenVerifierPort interface {
	Verify(ctx context.Context, token string) (*domain.Principal, error)
}
