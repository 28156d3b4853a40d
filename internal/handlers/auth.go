package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"paygate/internal/auth"
	"paygate/internal/ident"
	"paygate/internal/middleware"
	"paygate/internal/models"
	"paygate/internal/validator"
	"paygate/internal/websocket"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Every merchant gets a hot and a cold USD wallet on signup. Wallets in
// other currencies are created lazily on first payment.
var signupWalletTypes = []string{"hot", "cold"}

type registerRequest struct {
	BusinessName string `json:"business_name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidateBusinessName(req.BusinessName); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validator.ValidateEmail(req.Email); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validator.ValidatePassword(req.Password); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to secure password")
		return
	}
	merchantID := h.gen.EntityID()
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.merchants.Create(r.Context(), tx, merchantID, req.BusinessName, req.Email, passwordHash); err != nil {
			return err
		}
		for _, walletType := range signupWalletTypes {
			address, err := ident.NewWalletAddress()
			if err != nil {
				return err
			}
			wallet := models.Wallet{
				ID:         h.gen.EntityID(),
				MerchantID: &merchantID,
				Type:       walletType,
				Address:    address,
				Currency:   "USD",
				IsActive:   true,
			}
			if err := h.wallets.Create(r.Context(), tx, wallet); err != nil {
				return err
			}
		}
		hasAdmin, err := h.admin.HasAnyAdmin(r.Context())
		if err != nil {
			return err
		}
		if !hasAdmin {
			if err := h.admin.CreateAdmin(r.Context(), tx, merchantID, true, nil); err != nil {
				return err
			}
		}
		data, _ := json.Marshal(map[string]string{
			"merchant_id": merchantID,
			"ip":          r.RemoteAddr,
			"user_agent":  r.UserAgent(),
		})
		return h.audit.Log(r.Context(), tx, merchantID, "register", "merchant", merchantID, string(data))
	})
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			respondError(w, http.StatusConflict, "email already registered")
			return
		}
		respondError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	token, err := auth.GenerateToken(h.cfg.JWTSecret, merchantID, h.cfg.TokenTTL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{
		"merchant_id": merchantID,
		"token":       token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	merchant, err := h.merchants.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if !auth.CheckPassword(merchant.PasswordHash, req.Password) {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		data, _ := json.Marshal(map[string]string{
			"merchant_id": merchant.ID,
			"ip":          r.RemoteAddr,
			"user_agent":  r.UserAgent(),
		})
		return h.audit.Log(r.Context(), tx, merchant.ID, "login", "merchant", merchant.ID, string(data))
	}); err != nil {
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	token, err := auth.GenerateToken(h.cfg.JWTSecret, merchant.ID, h.cfg.TokenTTL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := middleware.MerchantIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	merchant, err := h.merchants.GetByID(r.Context(), merchantID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load merchant")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"id":            merchant.ID,
		"business_name": merchant.BusinessName,
		"email":         merchant.Email,
		"kyc_status":    merchant.KYCStatus,
		"created_at":    merchant.CreatedAt,
	})
}

func (h *Handler) WSUpdates(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		authHeader := r.Header.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			token = authHeader[7:]
		}
	}
	if token == "" {
		respondError(w, http.StatusUnauthorized, "missing token")
		return
	}
	claims, err := auth.ParseToken(h.cfg.JWTSecret, token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	websocket.ServeWS(w, r, h.hub, claims.MerchantID)
}
