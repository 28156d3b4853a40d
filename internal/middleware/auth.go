package middleware

import (
	"context"
	"net/http"
	"strings"

	"paygate/internal/auth"
)

type contextKey string

const merchantIDKey contextKey = "merchant_id"

func MerchantIDFromContext(ctx context.Context) (string, bool) {
	merchantID, ok := ctx.Value(merchantIDKey).(string)
	return merchantID, ok
}

func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "invalid authorization header", http.StatusUnauthorized)
				return
			}
			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), merchantIDKey, claims.MerchantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
