package enums

// WebhookEventKey is the lifecycle action carried by an inbound order event.
type WebhookEventKey string

const (
	WebhookEventAccepted  WebhookEventKey = "accepted"
	WebhookEventCancelled WebhookEventKey = "cancelled"
)

// IsValid reports whether the value is a known WebhookEventKey.
func (w WebhookEventKey) IsValid() bool {
	return w == WebhookEventAccepted || w == WebhookEventCancelled
}
