package archiver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/constructoken/openpay/core"
)

type Config struct {
	BatchSize int `valid:"required"`
}

// Archiver marks terminal transactions as archived so the hot table stays
// small. Archived rows keep their audit trail.
type Archiver struct {
	transactions core.TransactionStore
	logger       *slog.Logger
	cfg          Config
}

func New(
	transactions core.TransactionStore,
	logger *slog.Logger,
	cfg Config,
) *Archiver {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	return &Archiver{
		transactions: transactions,
		logger:       logger.With("worker", "archiver"),
		cfg:          cfg,
	}
}

func (w *Archiver) Run(ctx context.Context) error {
	w.logger.Info("archiver start")

	for {
		dur := time.Minute
		if w.run(ctx) == nil {
			dur = 5 * time.Second
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dur):
		}
	}
}

func (w *Archiver) run(ctx context.Context) error {
	txs, err := w.transactions.ListArchivable(ctx, w.cfg.BatchSize)
	if err != nil {
		w.logger.Error("transactions.ListArchivable", "err", err)
		return err
	}

	if len(txs) == 0 {
		return fmt.Errorf("archivable transactions dry")
	}

	for _, tx := range txs {
		if err := w.transactions.Archive(ctx, tx); err != nil {
			w.logger.Error("transactions.Archive", "transaction", tx.ID, "err", err)
			return err
		}

		w.logger.Debug("transaction archived", "transaction", tx.ID, "state", tx.State.String())
	}

	return nil
}
