package core

import "context"

type PaymentState uint8

const (
	_ PaymentState = iota
	PaymentStatePending
	PaymentStateCompleted
	PaymentStateFailed
)

func (s PaymentState) String() string {
	switch s {
	case PaymentStatePending:
		return "Pending"
	case PaymentStateCompleted:
		return "Completed"
	case PaymentStateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

type IncomingPayment struct {
	ID             string         `json:"id"`
	WalletAddress  string         `json:"walletAddress"`
	IncomingAmount Amount         `json:"incomingAmount"`
	ReceivedAmount Amount         `json:"receivedAmount"`
	State          PaymentState   `json:"state"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

type OutgoingPayment struct {
	ID            string         `json:"id"`
	WalletAddress string         `json:"walletAddress"`
	QuoteID       string         `json:"quoteId"`
	DebitAmount   Amount         `json:"debitAmount"`
	ReceiveAmount Amount         `json:"receiveAmount"`
	State         PaymentState   `json:"state"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

type IncomingPaymentRequest struct {
	Wallet      *WalletAddress
	Amount      Amount
	Metadata    map[string]any
	AccessToken string
}

// OutgoingPaymentRequest needs a token scoped to the exact quote's debit
// amount and receiver; a mismatched token is a caller error, not retried.
type OutgoingPaymentRequest struct {
	Wallet      *WalletAddress
	QuoteID     string
	Metadata    map[string]any
	AccessToken string
}

type PaymentService interface {
	CreateIncoming(ctx context.Context, req IncomingPaymentRequest) (*IncomingPayment, error)
	CreateOutgoing(ctx context.Context, req OutgoingPaymentRequest) (*OutgoingPayment, error)
	GetIncoming(ctx context.Context, wallet *WalletAddress, id, accessToken string) (*IncomingPayment, error)
	GetOutgoing(ctx context.Context, wallet *WalletAddress, id, accessToken string) (*OutgoingPayment, error)
}
