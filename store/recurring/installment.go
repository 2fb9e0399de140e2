package recurring

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/constructoken/openpay/core"
	"github.com/lib/pq"
)

func (s *store) CreateInstallment(ctx context.Context, in *core.Installment) error {
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now()
	}

	b := psql.Insert("installments").
		Columns(
			"outgoing_payment_id", "grant_id", "seq",
			"value", "asset_code", "asset_scale",
			"status", "created_at",
		).
		Values(
			in.OutgoingPaymentID, in.GrantID, in.Sequence,
			in.Amount.Value, in.Amount.AssetCode, in.Amount.AssetScale,
			in.Status, in.CreatedAt,
		)

	if _, err := b.RunWith(s.db).ExecContext(ctx); err != nil {
		// The outgoing payment id is the primary key; a replayed create
		// means another tick already recorded this installment.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return core.ErrOptimisticLock
		}

		return err
	}

	return nil
}

func (s *store) FindInstallment(ctx context.Context, paymentID string) (*core.Installment, error) {
	b := psql.Select(installmentColumns...).
		From("installments").
		Where(sq.Eq{"outgoing_payment_id": paymentID})

	row := b.RunWith(s.db).QueryRowContext(ctx)

	var in core.Installment
	if err := scanInstallment(row, &in); err != nil {
		return nil, err
	}

	return &in, nil
}

// CompleteInstallment settles a pending installment exactly once; a replayed
// webhook finds no pending row and reports ok=false.
func (s *store) CompleteInstallment(ctx context.Context, paymentID string, to core.PaymentState) (bool, error) {
	b := psql.Update("installments").
		Set("status", to).
		Set("completed_at", time.Now()).
		Where("outgoing_payment_id = ? AND status = ?", paymentID, core.PaymentStatePending)

	r, err := b.RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return false, err
	}

	n, err := r.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}
