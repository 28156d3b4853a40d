package handlers

import (
	"encoding/json"
	"net/http"

	"paygate/internal/money"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// displayAmount pairs the raw minor units with the symbol-prefixed rendering
// the dashboard shows.
func displayAmount(valueMinor int64, currency string) map[string]any {
	return map[string]any{
		"minor":   valueMinor,
		"amount":  money.FormatMinor(valueMinor, currency),
		"display": money.Display(valueMinor, currency),
	}
}
