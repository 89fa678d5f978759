package rest

import (
	"net/http"
	"strings"

	"car-finder/internal/contextkeys"
	"car-finder/internal/core/port"
)

// AuthMiddleware проверяет bearer-токен и кладет Principal в контекст.
// Без валидного токена запрос завершается 401.
func AuthMiddleware(verifier port.TokenVerifierPort) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			principal, err := verifier.Verify(r.Context(), token)
			if err != nil || principal == nil {
				WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
				"user_id": principal.UserID.String(),
			})
			ctx := contextkeys.ContextWithPrincipal(r.Context(), principal)
			ctx = contextkeys.ContextWithLogger(ctx, logger)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
