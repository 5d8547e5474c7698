package websocket

import (
	"encoding/json"
	"sync"
)

// BalanceUpdate is pushed to every subscriber of an account after a ledger write.
type BalanceUpdate struct {
	AccountNumber string `json:"account_number"`
	Balance       string `json:"balance"`
	OperationCode int64  `json:"operation_code,omitempty"`
	Event         string `json:"event"`
}

const (
	EventApplied  = "operation_applied"
	EventReversed = "operation_reversed"
	EventClosed   = "account_closed"
)

type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(accountNumber string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[accountNumber] == nil {
		h.subscribers[accountNumber] = make(map[*Client]struct{})
	}
	h.subscribers[accountNumber][client] = struct{}{}
}

func (h *Hub) Unregister(accountNumber string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[accountNumber] == nil {
		return
	}
	delete(h.subscribers[accountNumber], client)
	if len(h.subscribers[accountNumber]) == 0 {
		delete(h.subscribers, accountNumber)
	}
}

func (h *Hub) Subscribers(accountNumber string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[accountNumber])
}

// BroadcastBalance never blocks: slow clients miss updates.
func (h *Hub) BroadcastBalance(update BalanceUpdate) {
	payload, err := json.Marshal(update)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.subscribers[update.AccountNumber] {
		select {
		case client.send <- payload:
		default:
		}
	}
}
