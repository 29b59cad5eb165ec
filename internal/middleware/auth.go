package middleware

import (
	"net/http"
	"strings"

	"github.com/beanery/order-service/internal/auth"
	"github.com/beanery/order-service/pkg/utils"
)

// Auth проверяет bearer-токен и кладёт личность запроса в контекст
func Auth(secret string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				utils.WriteError(w, "No Token", http.StatusUnauthorized)
				return
			}

			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				utils.WriteError(w, "Invalid Token", http.StatusUnauthorized)
				return
			}

			identity, err := auth.VerifyToken(secret, tokenStr)
			if err != nil {
				utils.WriteError(w, "Invalid Token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
		})
	}
}

// AdminOnly отсекает не-админов до входа в обработчик
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.FromContext(r.Context())
		if !ok {
			utils.WriteError(w, "No Token", http.StatusUnauthorized)
			return
		}
		if !identity.IsAdmin() {
			utils.WriteError(w, "Invalid Admin Token", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
