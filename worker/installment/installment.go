package installment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/constructoken/openpay/core"
	"github.com/constructoken/openpay/service/flow"
	"golang.org/x/sync/errgroup"
)

func New(
	recurrings core.RecurringStore,
	flows *flow.Orchestrator,
	logger *slog.Logger,
) *Installment {
	return &Installment{
		recurrings: recurrings,
		flows:      flows,
		logger:     logger.With("worker", "installment"),
	}
}

// Installment sweeps active recurring grants whose next_run_at has passed and
// executes one installment for each.
type Installment struct {
	recurrings core.RecurringStore
	flows      *flow.Orchestrator
	logger     *slog.Logger
}

func (w *Installment) Run(ctx context.Context) error {
	w.logger.Info("installment start")

	for {
		dur := 10 * time.Second
		if w.run(ctx) == nil {
			dur = time.Second
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dur):
		}
	}
}

func (w *Installment) run(ctx context.Context) error {
	const limit = 64
	grants, err := w.recurrings.ListDue(ctx, time.Now(), limit)
	if err != nil {
		w.logger.Error("recurrings.ListDue", "err", err)
		return err
	}

	if len(grants) == 0 {
		return fmt.Errorf("due grants dry")
	}

	var g errgroup.Group
	g.SetLimit(10)

	for idx := range grants {
		grant := grants[idx]
		g.Go(func() error {
			return w.handleGrant(ctx, grant)
		})
	}

	return g.Wait()
}

func (w *Installment) handleGrant(ctx context.Context, grant *core.RecurringGrant) error {
	logger := w.logger.With("grant", grant.ID)

	in, err := w.flows.ExecuteInstallment(ctx, grant.ID)
	if err != nil {
		// A grant hitting its iteration or cap limit is a normal outcome;
		// the sweep moves on.
		var done *core.RecurringDoneError
		if errors.As(err, &done) {
			logger.Info("recurring grant finished", "state", done.State)
			return nil
		}

		if errors.Is(err, core.ErrOptimisticLock) {
			logger.Debug("installment lost tick race")
			return nil
		}

		logger.Error("flows.ExecuteInstallment", "err", err)
		return err
	}

	logger.Info("installment executed", "seq", in.Sequence, "payment", in.OutgoingPaymentID)
	return nil
}
