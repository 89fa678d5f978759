package rest

import (
	"crypto/subtle"
	"net/http"
)

// CronSecretMiddleware пропускает только запросы с "Authorization: Bearer <secret>".
// Пустой секрет отключает проверку.
func CronSecretMiddleware(secret string) func(next http.Handler) http.Handler {
	expected := []byte("Bearer " + secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret != "" {
				got := []byte(r.Header.Get("Authorization"))
				if subtle.ConstantTimeCompare(got, expected) != 1 {
					WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
