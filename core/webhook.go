package core

const (
	WebhookIncomingCompleted = "incoming_payment.completed"
	WebhookIncomingFailed    = "incoming_payment.failed"
	WebhookOutgoingCompleted = "outgoing_payment.completed"
	WebhookOutgoingFailed    = "outgoing_payment.failed"
)

// WebhookEvent is one at-least-once, possibly out-of-order delivery from a
// resource server. PaymentID is data.id.
type WebhookEvent struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	PaymentID string         `json:"-"`
	Data      map[string]any `json:"data,omitempty"`
}

func (e WebhookEvent) Completed() bool {
	return e.Type == WebhookIncomingCompleted || e.Type == WebhookOutgoingCompleted
}

func (e WebhookEvent) Failed() bool {
	return e.Type == WebhookIncomingFailed || e.Type == WebhookOutgoingFailed
}
