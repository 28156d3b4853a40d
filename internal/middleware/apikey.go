package middleware

import (
	"context"
	"net/http"

	"paygate/internal/models"
)

const apiKeyIDKey contextKey = "api_key_id"

func APIKeyIDFromContext(ctx context.Context) (string, bool) {
	keyID, ok := ctx.Value(apiKeyIDKey).(string)
	return keyID, ok
}

type KeyAuthenticator interface {
	Authenticate(ctx context.Context, publicKey, secretKey, permission string) (models.APIKey, error)
}

// APIKeyAuth authenticates machine callers from the X-Api-Key and
// X-Api-Secret headers and requires the given permission on the key.
func APIKeyAuth(keys KeyAuthenticator, permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			publicKey := r.Header.Get("X-Api-Key")
			secretKey := r.Header.Get("X-Api-Secret")
			if publicKey == "" || secretKey == "" {
				http.Error(w, "missing api credentials", http.StatusUnauthorized)
				return
			}
			key, err := keys.Authenticate(r.Context(), publicKey, secretKey, permission)
			if err != nil {
				http.Error(w, "invalid api credentials", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), merchantIDKey, key.MerchantID)
			ctx = context.WithValue(ctx, apiKeyIDKey, key.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
