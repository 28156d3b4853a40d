package websocket

import (
	"encoding/json"
	"sync"
)

// TransactionUpdate is pushed to a merchant's dashboard when one of its
// transactions changes state.
type TransactionUpdate struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	Hash          string `json:"hash,omitempty"`
	WalletID      string `json:"wallet_id"`
	Balance       string `json:"balance"`
	Currency      string `json:"currency"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(merchantID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[merchantID] == nil {
		h.clients[merchantID] = make(map[*Client]struct{})
	}
	h.clients[merchantID][client] = struct{}{}
}

func (h *Hub) Unregister(merchantID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[merchantID] == nil {
		return
	}
	delete(h.clients[merchantID], client)
	if len(h.clients[merchantID]) == 0 {
		delete(h.clients, merchantID)
	}
}

func (h *Hub) BroadcastTransaction(merchantID string, update TransactionUpdate) {
	payload, _ := json.Marshal(update)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[merchantID] {
		select {
		case client.send <- payload:
		default:
		}
	}
}
