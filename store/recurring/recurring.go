package recurring

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/constructoken/openpay/core"
	"github.com/tsenart/nap"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func New(db *nap.DB) core.RecurringStore {
	return &store{db: db}
}

type store struct {
	db *nap.DB
}

func (s *store) Create(ctx context.Context, g *core.RecurringGrant) error {
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}

	g.UpdatedAt = g.CreatedAt

	b := psql.Insert("recurring_grants").
		Columns(
			"id", "status", "buyer_wallet", "seller_wallet",
			"installment_value", "installment_asset_code", "installment_asset_scale",
			"pay_interval", "total_cap", "max_payments", "payments_completed", "debit_total",
			"target_value", "target_asset_code", "target_asset_scale",
			"access_token", "finish_nonce", "continue_uri", "continue_token",
			"interact_redirect", "auth_server", "next_run_at", "created_at", "updated_at",
		).
		Values(
			g.ID, g.State, g.BuyerWallet, g.SellerWallet,
			g.InstallmentAmount.Value, g.InstallmentAmount.AssetCode, g.InstallmentAmount.AssetScale,
			g.Interval, g.TotalCap, g.MaxPayments, g.PaymentsCompleted, g.DebitTotal,
			g.TargetAmount.Value, g.TargetAmount.AssetCode, g.TargetAmount.AssetScale,
			g.AccessToken, g.FinishNonce, g.ContinueURI, g.ContinueToken,
			g.InteractRedirect, g.AuthServer, nullTime(g.NextRunAt), g.CreatedAt, g.UpdatedAt,
		)

	_, err := b.RunWith(s.db).ExecContext(ctx)
	return err
}

func (s *store) Find(ctx context.Context, id string) (*core.RecurringGrant, error) {
	b := psql.Select(grantColumns...).
		From("recurring_grants").
		Where(sq.Eq{"id": id})

	row := b.RunWith(s.db).QueryRowContext(ctx)

	var g core.RecurringGrant
	if err := scanGrant(row, &g); err != nil {
		return nil, err
	}

	return &g, nil
}

func (s *store) Activate(ctx context.Context, g *core.RecurringGrant) error {
	b := psql.Update("recurring_grants").
		Set("status", core.RecurringStateActive).
		Set("access_token", g.AccessToken).
		Set("payments_completed", g.PaymentsCompleted).
		Set("next_run_at", nullTime(g.NextRunAt)).
		Set("updated_at", time.Now()).
		Where("id = ? AND status = ?", g.ID, core.RecurringStateRequested)

	r, err := b.RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return err
	}

	n, err := r.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return core.ErrOptimisticLock
	}

	g.State = core.RecurringStateActive
	return nil
}

// Advance bumps payments_completed by exactly one. The WHERE clause pins the
// counter the caller observed, so two ticks racing on the same grant settle
// one winner.
func (s *store) Advance(ctx context.Context, g *core.RecurringGrant, debitTotal string, next time.Time) error {
	b := psql.Update("recurring_grants").
		Set("payments_completed", g.PaymentsCompleted+1).
		Set("debit_total", debitTotal).
		Set("next_run_at", nullTime(next)).
		Set("updated_at", time.Now()).
		Where("id = ? AND status = ? AND payments_completed = ?",
			g.ID, core.RecurringStateActive, g.PaymentsCompleted)

	r, err := b.RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return err
	}

	n, err := r.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return core.ErrOptimisticLock
	}

	g.PaymentsCompleted++
	g.DebitTotal = debitTotal
	g.NextRunAt = next
	return nil
}

func (s *store) Finish(ctx context.Context, g *core.RecurringGrant, to core.RecurringState) error {
	b := psql.Update("recurring_grants").
		Set("status", to).
		Set("updated_at", time.Now()).
		Where("id = ? AND status = ?", g.ID, g.State)

	r, err := b.RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return err
	}

	n, err := r.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return core.ErrOptimisticLock
	}

	g.State = to
	return nil
}

func (s *store) ListDue(ctx context.Context, now time.Time, limit int) ([]*core.RecurringGrant, error) {
	b := psql.Select(grantColumns...).
		From("recurring_grants").
		Where("status = ? AND next_run_at <= ?", core.RecurringStateActive, now).
		OrderBy("next_run_at").
		Limit(uint64(limit))

	rows, err := b.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var grants []*core.RecurringGrant
	for rows.Next() {
		var g core.RecurringGrant
		if err := scanGrant(rows, &g); err != nil {
			return nil, err
		}

		grants = append(grants, &g)
	}

	return grants, rows.Err()
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}

	return t
}
