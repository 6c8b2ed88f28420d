package outbox

import (
	"encoding/json"
	"time"
)

// SourceRef identifies the tenant context an event was produced under.
type SourceRef struct {
	AccountRef string `json:"accountRef"`
	CatererID  string `json:"catererId,omitempty"`
}

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Source     *SourceRef      `json:"source,omitempty"`
	Data       json.RawMessage `json:"data"`
}
