package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"paygate/internal/models"
	"paygate/internal/store"

	"github.com/go-chi/chi/v5"
)

func withID(req *http.Request, id string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestAdminReviewKYCValidation(t *testing.T) {
	handler := newTestHandler(t, testStubs{})
	cases := []struct {
		name string
		body string
	}{
		{"unknown status", `{"status":"maybe"}`},
		{"rejection without reason", `{"status":"rejected"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := withID(httptest.NewRequest(http.MethodPost, "/admin/kyc/doc-1/review", bytes.NewReader([]byte(tc.body))), "doc-1")
			rr := serveWithAuth(t, handler.AdminReviewKYC, "admin-1", req)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rr.Code)
			}
		})
	}
}

func TestAdminReviewKYCVerifiesMerchant(t *testing.T) {
	var updatedMerchant, updatedStatus string
	audits := 0
	handler := newTestHandler(t, testStubs{
		kyc: stubKYCStore{
			getByIDFn: func(_ context.Context, documentID string) (models.KYCDocument, error) {
				return models.KYCDocument{ID: documentID, MerchantID: "m-1", DocumentNumber: "DOC-000001", Status: "pending"}, nil
			},
		},
		merchants: stubMerchantStore{
			updateKYCStatusFn: func(_ context.Context, _ store.Execer, merchantID, status string) error {
				updatedMerchant = merchantID
				updatedStatus = status
				return nil
			},
		},
		audit: stubAuditStore{
			logFn: func(context.Context, store.Execer, string, string, string, string, string) error {
				audits++
				return nil
			},
		},
	})
	body := []byte(`{"status":"verified"}`)
	req := withID(httptest.NewRequest(http.MethodPost, "/admin/kyc/doc-1/review", bytes.NewReader(body)), "doc-1")
	rr := serveWithAuth(t, handler.AdminReviewKYC, "admin-1", req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if updatedMerchant != "m-1" || updatedStatus != "verified" {
		t.Fatalf("expected merchant m-1 verified, got %s %s", updatedMerchant, updatedStatus)
	}
	if audits != 1 {
		t.Fatalf("expected review audit entry, got %d", audits)
	}
}

func TestAdminReviewKYCAlreadyReviewed(t *testing.T) {
	handler := newTestHandler(t, testStubs{
		kyc: stubKYCStore{
			reviewFn: func(context.Context, store.Execer, string, string, string) (int64, error) {
				return 0, nil
			},
		},
	})
	body := []byte(`{"status":"rejected","reason":"document unreadable"}`)
	req := withID(httptest.NewRequest(http.MethodPost, "/admin/kyc/doc-1/review", bytes.NewReader(body)), "doc-1")
	rr := serveWithAuth(t, handler.AdminReviewKYC, "admin-1", req)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestAdminListTransactionsIncludesMerchant(t *testing.T) {
	handler := newTestHandler(t, testStubs{
		transactions: stubTransactionStore{
			listAllFn: func(context.Context, int, int) ([]models.Transaction, error) {
				return []models.Transaction{{ID: "tx-1", MerchantID: "m-1", AmountMinor: 1000, Currency: "USD", Status: "completed"}}, nil
			},
		},
	})
	req := httptest.NewRequest(http.MethodGet, "/admin/transactions", nil)
	rr := serveWithAuth(t, handler.AdminListTransactions, "admin-1", req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload []map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload) != 1 || payload[0]["merchant_id"] != "m-1" {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestPromoteAdminRequiresSuper(t *testing.T) {
	handler := newTestHandler(t, testStubs{
		admin: stubAdminStore{
			isAdminFn: func(context.Context, string) (bool, bool, error) {
				return true, false, nil
			},
		},
	})
	body := []byte(`{"merchant_id":"m-2"}`)
	req := httptest.NewRequest(http.MethodPost, "/admin/admins", bytes.NewReader(body))
	rr := serveWithAuth(t, handler.PromoteAdmin, "admin-1", req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestPromoteAdminCreatesAdmin(t *testing.T) {
	var promoted string
	var createdBy *string
	handler := newTestHandler(t, testStubs{
		admin: stubAdminStore{
			isAdminFn: func(context.Context, string) (bool, bool, error) {
				return true, true, nil
			},
			createAdminFn: func(_ context.Context, _ store.Execer, merchantID string, isSuper bool, by *string) error {
				if isSuper {
					t.Fatalf("promoted admins must not be super")
				}
				promoted = merchantID
				createdBy = by
				return nil
			},
		},
		merchants: stubMerchantStore{
			getByIDFn: func(_ context.Context, merchantID string) (models.Merchant, error) {
				return models.Merchant{ID: merchantID}, nil
			},
		},
	})
	body := []byte(`{"merchant_id":"m-2"}`)
	req := httptest.NewRequest(http.MethodPost, "/admin/admins", bytes.NewReader(body))
	rr := serveWithAuth(t, handler.PromoteAdmin, "admin-1", req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if promoted != "m-2" {
		t.Fatalf("expected m-2 promoted, got %s", promoted)
	}
	if createdBy == nil || *createdBy != "admin-1" {
		t.Fatalf("expected created_by admin-1, got %v", createdBy)
	}
}

func TestAdminMarkOverdue(t *testing.T) {
	handler := newTestHandler(t, testStubs{
		invoicing: stubInvoiceService{
			markOverdueFn: func(context.Context) (int64, error) {
				return 3, nil
			},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/admin/invoices/mark-overdue", nil)
	rr := serveWithAuth(t, handler.AdminMarkOverdue, "admin-1", req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["marked_overdue"] != float64(3) {
		t.Fatalf("expected 3 invoices marked, got %v", payload["marked_overdue"])
	}
}
