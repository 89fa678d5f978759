package token_adapter

import (
	"context"
	"errors"
	"fmt"

	"car-finder/internal/contextkeys"
	"car-finder/internal/core/domain"
	"car-finder/internal/core/port"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenVerifier проверяет HS256-токены сервиса аутентификации.
// Сервис только читает токены, выпуском занимается сервис аутентификации.
type TokenVerifier struct {
	signingKey []byte
}

func NewTokenVerifier(signingKey string) (*TokenVerifier, error) {
	if signingKey == "" {
		return nil, fmt.Errorf("JWT signing key cannot be empty")
	}
	return &TokenVerifier{signingKey: []byte(signingKey)}, nil
}

// jwtCustomClaims - claims токена, dealer_ids перечисляет дилеров пользователя
type jwtCustomClaims struct {
	UserID    uuid.UUID   `json:"user_id"`
	Email     string      `json:"email"`
	Role      string      `json:"role"`
	DealerIDs []uuid.UUID `json:"dealer_ids,omitempty"`
	jwt.RegisteredClaims
}

// Verify возвращает domain.ErrUnauthorized для любого невалидного токена
func (v *TokenVerifier) Verify(ctx context.Context, tokenString string) (*domain.Principal, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	verifierLogger := logger.WithFields(port.Fields{
		"component": "TokenVerifier",
		"method":    "Verify",
	})

	token, err := jwt.ParseWithClaims(tokenString, &jwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			verifierLogger.Warn("Token has expired", nil)
		} else {
			verifierLogger.Warn("Invalid token format or signature", port.Fields{"reason": err.Error()})
		}
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid || claims.UserID == uuid.Nil {
		verifierLogger.Warn("Token claims are incomplete", nil)
		return nil, domain.ErrUnauthorized
	}

	return &domain.Principal{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Role:      claims.Role,
		DealerIDs: claims.DealerIDs,
	}, nil
}
