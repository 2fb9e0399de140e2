package core

import (
	"context"
	"time"
)

type RecurringState uint8

const (
	_ RecurringState = iota
	RecurringStateRequested
	RecurringStateActive
	RecurringStateExhausted
	RecurringStateRevoked
)

func (s RecurringState) String() string {
	switch s {
	case RecurringStateRequested:
		return "Requested"
	case RecurringStateActive:
		return "Active"
	case RecurringStateExhausted:
		return "Exhausted"
	case RecurringStateRevoked:
		return "Revoked"
	default:
		return "Unknown"
	}
}

func (s RecurringState) Terminal() bool {
	return s == RecurringStateExhausted || s == RecurringStateRevoked
}

// RecurringGrant is one interactive outgoing-payment grant whose limits
// authorize many future debits. PaymentsCompleted is monotonic and never
// exceeds MaxPayments; DebitTotal tracks minor units debited against
// TotalCap.
type RecurringGrant struct {
	ID    string         `json:"id"`
	State RecurringState `json:"state"`

	BuyerWallet  string `json:"buyer_wallet"`
	SellerWallet string `json:"seller_wallet"`

	InstallmentAmount Amount `json:"installment_amount"`
	Interval          string `json:"interval"`
	TotalCap          string `json:"total_cap,omitempty"`
	MaxPayments       int    `json:"max_payments"`
	PaymentsCompleted int    `json:"payments_completed"`
	DebitTotal        string `json:"debit_total,omitempty"`
	TargetAmount      Amount `json:"target_amount"`

	AccessToken      string `json:"-"`
	FinishNonce      string `json:"-"`
	ContinueURI      string `json:"-"`
	ContinueToken    string `json:"-"`
	InteractRedirect string `json:"interact_redirect,omitempty"`
	AuthServer       string `json:"-"`

	NextRunAt time.Time `json:"next_run_at,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Installment records one executed debit under a recurring grant, keyed by
// its outgoing payment id so webhooks can be routed back. Completion is
// compare-and-swap gated: applying the same completion twice is a no-op.
type Installment struct {
	OutgoingPaymentID string       `json:"outgoing_payment_id"`
	GrantID           string       `json:"grant_id"`
	Sequence          int          `json:"sequence"`
	Amount            Amount       `json:"amount"`
	Status            PaymentState `json:"status"`
	CreatedAt         time.Time    `json:"created_at"`
}

type RecurringStore interface {
	Create(ctx context.Context, g *RecurringGrant) error
	Find(ctx context.Context, id string) (*RecurringGrant, error)
	// Activate moves Requested -> Active with the continued access token.
	Activate(ctx context.Context, g *RecurringGrant) error
	// Advance increments payments_completed by one, guarded by the current
	// counter value; ErrOptimisticLock on a concurrent tick.
	Advance(ctx context.Context, g *RecurringGrant, debitTotal string, next time.Time) error
	// Finish moves Active -> Exhausted|Revoked.
	Finish(ctx context.Context, g *RecurringGrant, to RecurringState) error
	ListDue(ctx context.Context, now time.Time, limit int) ([]*RecurringGrant, error)

	CreateInstallment(ctx context.Context, in *Installment) error
	FindInstallment(ctx context.Context, paymentID string) (*Installment, error)
	// CompleteInstallment settles a pending installment; ok is false when it
	// was already terminal (duplicate webhook delivery).
	CompleteInstallment(ctx context.Context, paymentID string, to PaymentState) (bool, error)
}
