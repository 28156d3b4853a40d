package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"paygate/internal/models"
)

type stubKeyAuthenticator struct {
	authenticateFn func(ctx context.Context, publicKey, secretKey, permission string) (models.APIKey, error)
}

func (s stubKeyAuthenticator) Authenticate(ctx context.Context, publicKey, secretKey, permission string) (models.APIKey, error) {
	return s.authenticateFn(ctx, publicKey, secretKey, permission)
}

func TestAPIKeyAuthMissingCredentials(t *testing.T) {
	handler := APIKeyAuth(stubKeyAuthenticator{
		authenticateFn: func(context.Context, string, string, string) (models.APIKey, error) {
			t.Fatalf("unexpected authenticate call")
			return models.APIKey{}, nil
		},
	}, "links:redeem")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not be called")
	}))
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Api-Key", "pk_live_abc")
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAPIKeyAuthRejected(t *testing.T) {
	handler := APIKeyAuth(stubKeyAuthenticator{
		authenticateFn: func(context.Context, string, string, string) (models.APIKey, error) {
			return models.APIKey{}, errors.New("bad credentials")
		},
	}, "links:redeem")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not be called")
	}))
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Api-Key", "pk_live_abc")
	req.Header.Set("X-Api-Secret", "sk_live_wrong")
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAPIKeyAuthAccepted(t *testing.T) {
	handler := APIKeyAuth(stubKeyAuthenticator{
		authenticateFn: func(_ context.Context, publicKey, secretKey, permission string) (models.APIKey, error) {
			if publicKey != "pk_live_abc" || secretKey != "sk_live_good" || permission != "links:redeem" {
				t.Fatalf("unexpected credentials: %s %s %s", publicKey, secretKey, permission)
			}
			return models.APIKey{ID: "k1", MerchantID: "merchant-1"}, nil
		},
	}, "links:redeem")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		merchantID, ok := MerchantIDFromContext(r.Context())
		if !ok || merchantID != "merchant-1" {
			t.Fatalf("expected merchant in context")
		}
		keyID, ok := APIKeyIDFromContext(r.Context())
		if !ok || keyID != "k1" {
			t.Fatalf("expected key id in context")
		}
		w.WriteHeader(http.StatusOK)
	}))
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Api-Key", "pk_live_abc")
	req.Header.Set("X-Api-Secret", "sk_live_good")
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}
