package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/constructoken/openpay/core"
	"github.com/constructoken/openpay/store"
	"github.com/shopspring/decimal"
)

// HandleWebhook routes an event to the owning transaction or installment
// and applies the transition. Delivery is at-least-once and out of order:
// events for unknown or already-terminal records are dropped, never raised.
func (o *Orchestrator) HandleWebhook(ctx context.Context, event core.WebhookEvent) error {
	if event.PaymentID == "" {
		o.logger.Warn("webhook without payment id dropped", "type", event.Type)
		return nil
	}

	logger := o.logger.With("type", event.Type, "payment", event.PaymentID)

	tx, err := o.transactions.FindPayment(ctx, event.PaymentID)
	if err == nil {
		return o.applyTransaction(ctx, tx, event)
	}

	if !store.IsErrNotFound(err) && !errors.Is(err, core.ErrTransactionNotFound) {
		return err
	}

	in, err := o.recurrings.FindInstallment(ctx, event.PaymentID)
	if err == nil {
		return o.applyInstallment(ctx, in, event)
	}

	if !store.IsErrNotFound(err) && !errors.Is(err, core.ErrGrantNotFound) {
		return err
	}

	logger.Warn("webhook for unknown payment dropped")
	return nil
}

func (o *Orchestrator) applyTransaction(ctx context.Context, tx *core.PendingTransaction, event core.WebhookEvent) error {
	logger := o.logger.With("transaction", tx.ID, "type", event.Type)

	if tx.State.Terminal() {
		logger.Debug("transaction already terminal, event ignored")
		return nil
	}

	switch {
	case event.Failed():
		tx.State = core.TransactionStateFailed
		tx.FailReason = failReason(event)
	case event.Completed():
		if tx.State != core.TransactionStateOutgoingCreated {
			logger.Debug("completion before outgoing payment, event ignored", "state", tx.State)
			return nil
		}

		tx.State = core.TransactionStateCompleted
	default:
		logger.Warn("unknown event type ignored")
		return nil
	}

	if err := o.transactions.Update(ctx, tx); err != nil {
		if errors.Is(err, core.ErrOptimisticLock) {
			// a concurrent duplicate delivery won the race
			logger.Debug("transition already applied")
			return nil
		}

		return err
	}

	logger.Info("transaction settled", "state", tx.State)
	return nil
}

func (o *Orchestrator) applyInstallment(ctx context.Context, in *core.Installment, event core.WebhookEvent) error {
	logger := o.logger.With("grant", in.GrantID, "sequence", in.Sequence, "type", event.Type)

	to := core.PaymentStateCompleted
	if event.Failed() {
		to = core.PaymentStateFailed
	}

	ok, err := o.recurrings.CompleteInstallment(ctx, in.OutgoingPaymentID, to)
	if err != nil {
		return err
	}

	if !ok {
		logger.Debug("installment already settled, event ignored")
		return nil
	}

	if to == core.PaymentStateFailed {
		logger.Warn("installment failed", "reason", failReason(event))
		return nil
	}

	return o.accumulate(ctx, in, logger.With("amount", in.Amount))
}

// funding is the per-grant counter stored under "funding/<grant>". Total
// and the funded flag live in one record so a single versioned write
// decides both the new balance and who crossed the target.
type funding struct {
	Total  string `json:"total"`
	Funded bool   `json:"funded"`
}

// accumulate adds a completed installment to the grant's funding counter
// and fires the funded transition exactly once when the target is crossed.
// The CompleteInstallment compare-and-swap guarantees each installment is
// counted once; the versioned property write serializes concurrent
// completions of different installments, retrying the loser against the
// fresh total.
func (o *Orchestrator) accumulate(ctx context.Context, in *core.Installment, logger *slog.Logger) error {
	amount, err := in.Amount.Decimal()
	if err != nil {
		return err
	}

	g, err := o.recurrings.Find(ctx, in.GrantID)
	if err != nil {
		return err
	}

	target := decimal.Zero
	if !g.TargetAmount.IsZero() {
		if target, err = g.TargetAmount.Decimal(); err != nil {
			return err
		}
	}

	key := "funding/" + in.GrantID

	for {
		var f funding
		version, err := o.properties.Get(ctx, key, &f)
		if err != nil {
			return fmt.Errorf("read funding counter: %w", err)
		}

		total := decimal.Zero
		if f.Total != "" {
			if total, err = decimal.NewFromString(f.Total); err != nil {
				return fmt.Errorf("corrupt funding counter %q: %w", f.Total, err)
			}
		}

		after := total.Add(amount)
		f.Total = after.String()

		crossed := false
		if target.IsPositive() && !f.Funded && after.GreaterThanOrEqual(target) {
			f.Funded = true
			crossed = true
		}

		if err := o.properties.Set(ctx, key, f, version); err != nil {
			if errors.Is(err, core.ErrOptimisticLock) {
				continue
			}

			return fmt.Errorf("write funding counter: %w", err)
		}

		logger.Info("installment completed", "accumulated", f.Total)

		if crossed {
			logger.Info("funding target reached", "target", g.TargetAmount)

			if o.cfg.OnFunded != nil {
				o.cfg.OnFunded(ctx, g)
			}
		}

		return nil
	}
}

func failReason(event core.WebhookEvent) string {
	if s, ok := event.Data["error"].(string); ok && s != "" {
		return s
	}

	return "payment failed"
}
