package token_adapter

import (
	"context"
	"testing"
	"time"

	"car-finder/internal/core/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test-signing-key"

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwtCustomClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestNewTokenVerifier_EmptyKey(t *testing.T) {
	_, err := NewTokenVerifier("")
	assert.Error(t, err)
}

func TestVerify_Valid(t *testing.T) {
	v, err := NewTokenVerifier(testKey)
	require.NoError(t, err)

	userID := uuid.New()
	dealerID := uuid.New()
	token := sign(t, jwt.SigningMethodHS256, []byte(testKey), jwtCustomClaims{
		UserID:    userID,
		Email:     "dealer@example.com",
		Role:      domain.RoleDealer,
		DealerIDs: []uuid.UUID{dealerID},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	p, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, p.UserID)
	assert.Equal(t, "dealer@example.com", p.Email)
	assert.True(t, p.CanManageDealer(dealerID))
	assert.False(t, p.IsStaff())
}

func TestVerify_Rejects(t *testing.T) {
	v, err := NewTokenVerifier(testKey)
	require.NoError(t, err)

	valid := jwtCustomClaims{
		UserID:           uuid.New(),
		Role:             domain.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	expired := valid
	expired.RegisteredClaims = jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))}
	noUser := valid
	noUser.UserID = uuid.Nil

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong key", sign(t, jwt.SigningMethodHS256, []byte("other"), valid)},
		{"expired", sign(t, jwt.SigningMethodHS256, []byte(testKey), expired)},
		{"no user id", sign(t, jwt.SigningMethodHS256, []byte(testKey), noUser)},
		{"none alg", sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := v.Verify(context.Background(), tt.token)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}
