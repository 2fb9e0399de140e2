package core

import (
	"context"
	"time"
)

type TransactionState uint8

const (
	_ TransactionState = iota
	TransactionStateInit
	TransactionStateIncomingRequested
	TransactionStateQuoted
	TransactionStateGrantRequested
	TransactionStateGrantContinued
	TransactionStateOutgoingCreated
	TransactionStateCompleted
	TransactionStateFailed
)

func (s TransactionState) String() string {
	switch s {
	case TransactionStateInit:
		return "Init"
	case TransactionStateIncomingRequested:
		return "IncomingRequested"
	case TransactionStateQuoted:
		return "Quoted"
	case TransactionStateGrantRequested:
		return "GrantRequested"
	case TransactionStateGrantContinued:
		return "GrantContinued"
	case TransactionStateOutgoingCreated:
		return "OutgoingCreated"
	case TransactionStateCompleted:
		return "Completed"
	case TransactionStateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

func (s TransactionState) Terminal() bool {
	return s == TransactionStateCompleted || s == TransactionStateFailed
}

// CanTransition encodes the fixed step order of the one-shot saga. Any
// non-terminal state may fail; nothing leaves a terminal state.
func (s TransactionState) CanTransition(to TransactionState) bool {
	if s.Terminal() {
		return false
	}

	if to == TransactionStateFailed {
		return true
	}

	switch s {
	case TransactionStateInit:
		return to == TransactionStateIncomingRequested
	case TransactionStateIncomingRequested:
		return to == TransactionStateQuoted
	case TransactionStateQuoted:
		return to == TransactionStateGrantRequested
	case TransactionStateGrantRequested:
		return to == TransactionStateGrantContinued
	case TransactionStateGrantContinued:
		return to == TransactionStateOutgoingCreated
	case TransactionStateOutgoingCreated:
		return to == TransactionStateCompleted
	default:
		return false
	}
}

// PendingTransaction is the persisted record of one one-shot saga. It is
// created at saga start, mutated at each protocol step under an optimistic
// lock, and archived once terminal. It carries everything needed to resume
// after the unbounded suspension between redirect and callback.
type PendingTransaction struct {
	ID    string           `json:"id"`
	State TransactionState `json:"state"`

	BuyerWallet  string `json:"buyer_wallet"`
	SellerWallet string `json:"seller_wallet"`

	IncomingPaymentID string `json:"incoming_payment_id,omitempty"`
	ReceiveAmount     Amount `json:"receive_amount"`
	QuoteID           string `json:"quote_id,omitempty"`
	QuoteDebit        Amount `json:"quote_debit"`
	OutgoingPaymentID string `json:"outgoing_payment_id,omitempty"`

	FinishNonce      string `json:"-"`
	ContinueURI      string `json:"-"`
	ContinueToken    string `json:"-"`
	InteractRedirect string `json:"interact_redirect,omitempty"`
	AuthServer       string `json:"-"`

	FailReason string `json:"fail_reason,omitempty"`

	Version    uint64    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	ArchivedAt time.Time `json:"archived_at,omitempty"`
}

type TransactionStore interface {
	Create(ctx context.Context, tx *PendingTransaction) error
	Find(ctx context.Context, id string) (*PendingTransaction, error)
	// FindPayment looks a transaction up by incoming or outgoing payment id.
	FindPayment(ctx context.Context, paymentID string) (*PendingTransaction, error)
	// Update persists all mutable fields guarded by tx.Version; it returns
	// ErrOptimisticLock when another writer got there first.
	Update(ctx context.Context, tx *PendingTransaction) error
	// ListArchivable returns terminal transactions not yet archived.
	ListArchivable(ctx context.Context, limit int) ([]*PendingTransaction, error)
	Archive(ctx context.Context, tx *PendingTransaction) error
}
