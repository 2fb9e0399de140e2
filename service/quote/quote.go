package quote

import (
	"context"
	"fmt"
	"time"

	"github.com/constructoken/openpay/core"
	"github.com/go-resty/resty/v2"
)

func New(client *resty.Client) core.QuoteService {
	return &service{client: client}
}

type service struct {
	client *resty.Client
}

type quoteBody struct {
	WalletAddress string       `json:"walletAddress"`
	Receiver      string       `json:"receiver"`
	Method        string       `json:"method"`
	DebitAmount   *core.Amount `json:"debitAmount,omitempty"`
	ReceiveAmount *core.Amount `json:"receiveAmount,omitempty"`
}

func (s *service) Create(ctx context.Context, req core.QuoteRequest) (*core.Quote, error) {
	if req.Wallet == nil || req.Wallet.ResourceServer == "" {
		return nil, &core.QuoteError{Reason: "no resource server"}
	}

	if req.DebitAmount != nil && req.ReceiveAmount != nil {
		return nil, &core.QuoteError{Reason: "exactly one of debit and receive amount may be fixed"}
	}

	if req.DebitAmount == nil && req.ReceiveAmount == nil && req.ExpectReceive == nil {
		return nil, &core.QuoteError{Reason: "no fixed side"}
	}

	method := req.Method
	if method == "" {
		method = "ilp"
	}

	body := quoteBody{
		WalletAddress: req.Wallet.URL,
		Receiver:      req.Receiver,
		Method:        method,
		DebitAmount:   req.DebitAmount,
		ReceiveAmount: req.ReceiveAmount,
	}

	var quote core.Quote
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "GNAP "+req.AccessToken).
		SetBody(body).
		SetResult(&quote).
		Post(req.Wallet.ResourceServer + "/quotes")

	if err != nil {
		return nil, &core.QuoteError{Reason: fmt.Sprintf("request failed: %v", err)}
	}

	if resp.IsError() {
		return nil, &core.QuoteError{Reason: fmt.Sprintf("status %d", resp.StatusCode())}
	}

	if !quote.ExpiresAt.IsZero() && quote.ExpiresAt.Before(time.Now()) {
		return nil, &core.QuoteError{Reason: "quote already expired"}
	}

	// A receiver-side rigid amount must come back untouched: value, code
	// and scale all exact.
	if want := req.ExpectReceive; want != nil && !quote.ReceiveAmount.Equal(*want) {
		got := quote.ReceiveAmount
		return nil, &core.QuoteError{Reason: "receive amount mismatch", Want: want, Got: &got}
	}

	if want := req.ReceiveAmount; want != nil && !quote.ReceiveAmount.Equal(*want) {
		got := quote.ReceiveAmount
		return nil, &core.QuoteError{Reason: "receive amount mismatch", Want: want, Got: &got}
	}

	return &quote, nil
}
