package core

import (
	"context"
	"time"
)

// Quote links a debit amount on the sender side to a receive amount on the
// receiver side under the current exchange rate. Exactly one side is fixed
// by the caller; the other is computed by the resource server.
type Quote struct {
	ID            string    `json:"id"`
	WalletAddress string    `json:"walletAddress"`
	Receiver      string    `json:"receiver"`
	DebitAmount   Amount    `json:"debitAmount"`
	ReceiveAmount Amount    `json:"receiveAmount"`
	ExpiresAt     time.Time `json:"expiresAt,omitempty"`
}

// QuoteRequest fixes at most one side explicitly. When the receiver side is
// externally rigid (an incoming payment already fixes its amount), leave
// both sides nil and set ExpectReceive: the returned receiveAmount must
// then equal ExpectReceive exactly.
type QuoteRequest struct {
	Wallet        *WalletAddress
	Receiver      string
	DebitAmount   *Amount
	ReceiveAmount *Amount
	ExpectReceive *Amount
	Method        string // defaults to "ilp"
	AccessToken   string
}

type QuoteService interface {
	Create(ctx context.Context, req QuoteRequest) (*Quote, error)
}
