package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/forkandfield/catersync/pkg/enums"
)

// OrderView is the order representation returned by the read API. Status is
// the time-aware presentation status, not the stored one.
type OrderView struct {
	ID             uuid.UUID                `json:"id"`
	AccountID      uuid.UUID                `json:"account_id"`
	CatererID      string                   `json:"caterer_id"`
	CatererName    string                   `json:"caterer_name"`
	OrderNumber    string                   `json:"order_number"`
	Status         enums.PresentationStatus `json:"status"`
	CRMID          *string                  `json:"crm_id,omitempty"`
	CRMDescription *string                  `json:"crm_description,omitempty"`
	Warnings       []string                 `json:"warnings,omitempty"`
	EventAt        time.Time                `json:"event_at"`
	AcceptedAt     time.Time                `json:"accepted_at"`
	LastUpdatedAt  time.Time                `json:"last_updated_at"`
}
