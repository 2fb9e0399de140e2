package flow

import (
	"context"
	"fmt"
	"time"

	"github.com/constructoken/openpay/core"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

type RecurringParams struct {
	BuyerWallet  string
	SellerWallet string
	// InstallmentAmount is what the seller receives per installment, in the
	// seller's asset.
	InstallmentAmount core.Amount
	Interval          string
	TotalCap          string
	MaxPayments       int
	// TargetAmount is the funding goal tracked across completed
	// installments. Optional.
	TargetAmount core.Amount
}

// SetupRecurring requests one interactive outgoing-payment grant whose
// limits authorize every future installment: a single consent covers the
// whole series.
func (o *Orchestrator) SetupRecurring(ctx context.Context, params RecurringParams) (*core.RecurringGrant, error) {
	if params.MaxPayments <= 0 {
		return nil, fmt.Errorf("max payments must be positive")
	}

	buyer, err := o.wallets.Resolve(ctx, params.BuyerWallet)
	if err != nil {
		return nil, err
	}

	seller, err := o.wallets.Resolve(ctx, params.SellerWallet)
	if err != nil {
		return nil, err
	}

	amount := params.InstallmentAmount
	if amount.AssetCode == "" {
		amount.AssetCode = seller.AssetCode
		amount.AssetScale = seller.AssetScale
	}

	if amount.IsZero() {
		return nil, fmt.Errorf("installment amount required")
	}

	id := ulid.Make().String()

	limits := &core.GrantLimits{
		DebitAmount: &core.Amount{
			Value:      amount.Value,
			AssetCode:  buyer.AssetCode,
			AssetScale: buyer.AssetScale,
		},
		Interval:   params.Interval,
		Iterations: params.MaxPayments,
	}

	if params.TotalCap != "" {
		limits.Cap = &core.GrantCap{TotalAmount: params.TotalCap, Actions: []string{"create"}}
	}

	g, err := o.grants.Request(ctx, core.GrantParams{
		AccessType:  core.AccessTypeOutgoingPayment,
		Actions:     outgoingActions,
		Wallet:      buyer,
		Identifier:  buyer.URL,
		Limits:      limits,
		Interactive: true,
		FinishURI:   fmt.Sprintf("%s/recurring/%s", o.cfg.CallbackURI, id),
		Nonce:       id,
	})

	if err != nil {
		return nil, err
	}

	rg := &core.RecurringGrant{
		ID:                id,
		State:             core.RecurringStateRequested,
		BuyerWallet:       buyer.URL,
		SellerWallet:      seller.URL,
		InstallmentAmount: amount,
		Interval:          params.Interval,
		TotalCap:          params.TotalCap,
		MaxPayments:       params.MaxPayments,
		TargetAmount:      params.TargetAmount,
		FinishNonce:       g.FinishNonce,
		ContinueURI:       g.ContinueURI,
		ContinueToken:     g.ContinueToken,
		InteractRedirect:  g.InteractRedirect,
		AuthServer:        buyer.AuthServer,
		CreatedAt:         time.Now(),
	}

	if err := o.recurrings.Create(ctx, rg); err != nil {
		return nil, fmt.Errorf("create recurring grant: %w", err)
	}

	o.logger.Info("recurring grant requested", "grant", id, "installment", amount, "max_payments", params.MaxPayments)
	return rg, nil
}

// ActivateRecurring resumes the grant once the redirect callback arrives;
// the finish hash gates continuation exactly as in the one-shot flow.
func (o *Orchestrator) ActivateRecurring(ctx context.Context, id, interactRef, receivedHash string) (*core.RecurringGrant, error) {
	g, err := o.recurrings.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if g.State != core.RecurringStateRequested {
		return nil, fmt.Errorf("recurring grant %s not awaiting consent (state %s)", id, g.State)
	}

	if err := o.grants.VerifyFinish(g.ID, g.FinishNonce, interactRef, g.AuthServer, receivedHash); err != nil {
		o.logger.Warn("finish hash rejected", "grant", g.ID)
		return nil, err
	}

	cont, err := o.grants.Continue(ctx, g.ContinueURI, g.ContinueToken, interactRef)
	if err != nil {
		return nil, err
	}

	g.AccessToken = cont.AccessToken
	g.PaymentsCompleted = 0
	g.NextRunAt = time.Now()
	if err := o.recurrings.Activate(ctx, g); err != nil {
		return nil, err
	}

	o.logger.Info("recurring grant active", "grant", g.ID)
	return g, nil
}

// ExecuteInstallment runs one installment on an active grant: re-quote
// (rates move between installments), fresh incoming payment, outgoing
// payment with the already-granted token. No new interactive step.
func (o *Orchestrator) ExecuteInstallment(ctx context.Context, id string) (*core.Installment, error) {
	g, err := o.recurrings.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if g.State != core.RecurringStateActive {
		return nil, &core.RecurringDoneError{ID: g.ID, State: g.State}
	}

	if g.PaymentsCompleted >= g.MaxPayments {
		// late exhaustion: the counter hit the limit without the state
		// being settled yet
		if err := o.recurrings.Finish(ctx, g, core.RecurringStateExhausted); err != nil {
			return nil, err
		}

		return nil, &core.RecurringDoneError{ID: g.ID, State: core.RecurringStateExhausted}
	}

	seller, err := o.wallets.Resolve(ctx, g.SellerWallet)
	if err != nil {
		return nil, err
	}

	buyer, err := o.wallets.Resolve(ctx, g.BuyerWallet)
	if err != nil {
		return nil, err
	}

	logger := o.logger.With("grant", g.ID, "installment", g.PaymentsCompleted+1)

	incoming, err := o.createIncoming(ctx, seller, g.InstallmentAmount, map[string]any{"recurring_grant": g.ID})
	if err != nil {
		return nil, err
	}

	expect := g.InstallmentAmount
	quote, err := o.createQuote(ctx, buyer, incoming.ID, &expect)
	if err != nil {
		return nil, err
	}

	debitTotal, err := addMinorUnits(g.DebitTotal, quote.DebitAmount.Value)
	if err != nil {
		return nil, err
	}

	if exhausted, err := capExceeded(g.TotalCap, debitTotal); err != nil {
		return nil, err
	} else if exhausted {
		if err := o.recurrings.Finish(ctx, g, core.RecurringStateExhausted); err != nil {
			return nil, err
		}

		logger.Info("total cap exhausted", "cap", g.TotalCap, "would_debit", debitTotal)
		return nil, &core.RecurringDoneError{ID: g.ID, State: core.RecurringStateExhausted}
	}

	// claim the sequence before any money moves: a racing tick loses the
	// compare-and-swap here instead of producing a second outgoing payment
	seq := g.PaymentsCompleted + 1
	if err := o.recurrings.Advance(ctx, g, debitTotal, nextRun(g.Interval, time.Now())); err != nil {
		return nil, err
	}

	op, err := o.payments.CreateOutgoing(ctx, core.OutgoingPaymentRequest{
		Wallet:      buyer,
		QuoteID:     quote.ID,
		Metadata:    map[string]any{"recurring_grant": g.ID, "sequence": seq},
		AccessToken: g.AccessToken,
	})

	if err != nil {
		logger.Error("outgoing payment failed after claiming sequence", "error", err)
		return nil, err
	}

	in := &core.Installment{
		OutgoingPaymentID: op.ID,
		GrantID:           g.ID,
		Sequence:          seq,
		Amount:            g.InstallmentAmount,
		Status:            core.PaymentStatePending,
		CreatedAt:         time.Now(),
	}

	if err := o.recurrings.CreateInstallment(ctx, in); err != nil {
		return nil, err
	}

	if seq >= g.MaxPayments {
		if err := o.recurrings.Finish(ctx, g, core.RecurringStateExhausted); err != nil {
			return nil, err
		}

		logger.Info("recurring grant exhausted", "payments", seq)
	}

	logger.Info("installment executed", "payment", op.ID, "debit", quote.DebitAmount)
	return in, nil
}

// RevokeRecurring deactivates a grant; subsequent execute calls fail with a
// terminal error.
func (o *Orchestrator) RevokeRecurring(ctx context.Context, id string) error {
	g, err := o.recurrings.Find(ctx, id)
	if err != nil {
		return err
	}

	if g.State.Terminal() {
		return nil
	}

	return o.recurrings.Finish(ctx, g, core.RecurringStateRevoked)
}

func (o *Orchestrator) FindRecurring(ctx context.Context, id string) (*core.RecurringGrant, error) {
	return o.recurrings.Find(ctx, id)
}

func addMinorUnits(total, add string) (string, error) {
	if total == "" {
		total = "0"
	}

	a, err := decimal.NewFromString(total)
	if err != nil {
		return "", fmt.Errorf("invalid debit total %q: %w", total, err)
	}

	b, err := decimal.NewFromString(add)
	if err != nil {
		return "", fmt.Errorf("invalid debit value %q: %w", add, err)
	}

	return a.Add(b).String(), nil
}

func capExceeded(limit, total string) (bool, error) {
	if limit == "" {
		return false, nil
	}

	c, err := decimal.NewFromString(limit)
	if err != nil {
		return false, fmt.Errorf("invalid total cap %q: %w", limit, err)
	}

	t, err := decimal.NewFromString(total)
	if err != nil {
		return false, err
	}

	return t.GreaterThan(c), nil
}

var intervals = map[string]time.Duration{
	"daily":    24 * time.Hour,
	"weekly":   7 * 24 * time.Hour,
	"biweekly": 14 * 24 * time.Hour,
	"monthly":  30 * 24 * time.Hour,
}

func nextRun(interval string, now time.Time) time.Time {
	d, ok := intervals[interval]
	if !ok {
		d = intervals["weekly"]
	}

	return now.Add(d)
}
