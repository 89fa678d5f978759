package contextkeys

import (
	"context"

	"car-finder/internal/core/domain"
)

type principalKeyType struct{}

var principalKey = principalKeyType{}

func ContextWithPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext возвращает nil для анонимного запроса
func PrincipalFromContext(ctx context.Context) *domain.Principal {
	p, _ := ctx.Value(principalKey).(*domain.Principal)
	return p
}
