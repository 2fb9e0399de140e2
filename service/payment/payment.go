package payment

import (
	"context"
	"fmt"

	"github.com/constructoken/openpay/core"
	"github.com/go-resty/resty/v2"
)

func New(client *resty.Client) core.PaymentService {
	return &service{client: client}
}

type service struct {
	client *resty.Client
}

type incomingBody struct {
	WalletAddress  string         `json:"walletAddress"`
	IncomingAmount core.Amount    `json:"incomingAmount"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

type incomingResponse struct {
	ID             string         `json:"id"`
	WalletAddress  string         `json:"walletAddress"`
	IncomingAmount core.Amount    `json:"incomingAmount"`
	ReceivedAmount core.Amount    `json:"receivedAmount"`
	Completed      bool           `json:"completed"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

type outgoingBody struct {
	WalletAddress string         `json:"walletAddress"`
	QuoteID       string         `json:"quoteId"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

type outgoingResponse struct {
	ID            string         `json:"id"`
	WalletAddress string         `json:"walletAddress"`
	QuoteID       string         `json:"quoteId"`
	DebitAmount   core.Amount    `json:"debitAmount"`
	ReceiveAmount core.Amount    `json:"receiveAmount"`
	Failed        bool           `json:"failed"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

func (s *service) CreateIncoming(ctx context.Context, req core.IncomingPaymentRequest) (*core.IncomingPayment, error) {
	if req.Wallet == nil || req.Wallet.ResourceServer == "" {
		return nil, &core.PaymentCreationError{Kind: core.AccessTypeIncomingPayment, Err: fmt.Errorf("no resource server")}
	}

	if req.Amount.IsZero() {
		return nil, &core.PaymentCreationError{Kind: core.AccessTypeIncomingPayment, Err: fmt.Errorf("zero amount")}
	}

	var out incomingResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "GNAP "+req.AccessToken).
		SetBody(incomingBody{
			WalletAddress:  req.Wallet.URL,
			IncomingAmount: req.Amount,
			Metadata:       req.Metadata,
		}).
		SetResult(&out).
		Post(req.Wallet.ResourceServer + "/incoming-payments")

	if err != nil {
		return nil, &core.PaymentCreationError{Kind: core.AccessTypeIncomingPayment, Err: err}
	}

	if resp.IsError() {
		return nil, &core.PaymentCreationError{Kind: core.AccessTypeIncomingPayment, Status: resp.StatusCode(), Err: fmt.Errorf("%s", resp.Status())}
	}

	return out.payment(), nil
}

func (s *service) CreateOutgoing(ctx context.Context, req core.OutgoingPaymentRequest) (*core.OutgoingPayment, error) {
	if req.Wallet == nil || req.Wallet.ResourceServer == "" {
		return nil, &core.PaymentCreationError{Kind: core.AccessTypeOutgoingPayment, Err: fmt.Errorf("no resource server")}
	}

	if req.QuoteID == "" {
		return nil, &core.PaymentCreationError{Kind: core.AccessTypeOutgoingPayment, Err: fmt.Errorf("missing quote reference")}
	}

	var out outgoingResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "GNAP "+req.AccessToken).
		SetBody(outgoingBody{
			WalletAddress: req.Wallet.URL,
			QuoteID:       req.QuoteID,
			Metadata:      req.Metadata,
		}).
		SetResult(&out).
		Post(req.Wallet.ResourceServer + "/outgoing-payments")

	if err != nil {
		return nil, &core.PaymentCreationError{Kind: core.AccessTypeOutgoingPayment, Err: err}
	}

	if resp.IsError() {
		return nil, &core.PaymentCreationError{Kind: core.AccessTypeOutgoingPayment, Status: resp.StatusCode(), Err: fmt.Errorf("%s", resp.Status())}
	}

	return out.payment(), nil
}

func (s *service) GetIncoming(ctx context.Context, wallet *core.WalletAddress, id, accessToken string) (*core.IncomingPayment, error) {
	r := s.client.R().SetContext(ctx)
	if accessToken != "" {
		r.SetHeader("Authorization", "GNAP "+accessToken)
	}

	var out incomingResponse
	resp, err := r.SetResult(&out).Get(id)
	if err != nil {
		return nil, fmt.Errorf("get incoming payment: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("get incoming payment: status %d", resp.StatusCode())
	}

	return out.payment(), nil
}

func (s *service) GetOutgoing(ctx context.Context, wallet *core.WalletAddress, id, accessToken string) (*core.OutgoingPayment, error) {
	var out outgoingResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "GNAP "+accessToken).
		SetResult(&out).
		Get(id)

	if err != nil {
		return nil, fmt.Errorf("get outgoing payment: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("get outgoing payment: status %d", resp.StatusCode())
	}

	return out.payment(), nil
}

func (r incomingResponse) payment() *core.IncomingPayment {
	state := core.PaymentStatePending
	if r.Completed {
		state = core.PaymentStateCompleted
	}

	return &core.IncomingPayment{
		ID:             r.ID,
		WalletAddress:  r.WalletAddress,
		IncomingAmount: r.IncomingAmount,
		ReceivedAmount: r.ReceivedAmount,
		State:          state,
		Metadata:       r.Metadata,
	}
}

func (r outgoingResponse) payment() *core.OutgoingPayment {
	state := core.PaymentStatePending
	if r.Failed {
		state = core.PaymentStateFailed
	}

	return &core.OutgoingPayment{
		ID:            r.ID,
		WalletAddress: r.WalletAddress,
		QuoteID:       r.QuoteID,
		DebitAmount:   r.DebitAmount,
		ReceiveAmount: r.ReceiveAmount,
		State:         state,
		Metadata:      r.Metadata,
	}
}
