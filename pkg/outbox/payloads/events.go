package payloads

import "time"

// OrderCaptured is emitted when an accepted order is first persisted.
type OrderCaptured struct {
	OrderID     string    `json:"order_id"`
	AccountRef  string    `json:"account_ref"`
	OrderNumber string    `json:"order_number"`
	CRMID       *string   `json:"crm_id,omitempty"`
	EventAt     time.Time `json:"event_at"`
}

// OrderResynced is emitted when a redelivered accepted event changes the
// stored CRM linkage or description.
type OrderResynced struct {
	OrderID    string  `json:"order_id"`
	AccountRef string  `json:"account_ref"`
	CRMID      *string `json:"crm_id,omitempty"`
}

// OrderCancelled is emitted when an order transitions to cancelled.
type OrderCancelled struct {
	OrderID    string `json:"order_id"`
	AccountRef string `json:"account_ref"`
}
