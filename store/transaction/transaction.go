package transaction

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/constructoken/openpay/core"
	"github.com/tsenart/nap"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func New(db *nap.DB) core.TransactionStore {
	return &store{db: db}
}

type store struct {
	db *nap.DB
}

func (s *store) Create(ctx context.Context, tx *core.PendingTransaction) error {
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}

	tx.UpdatedAt = tx.CreatedAt

	b := psql.Insert("transactions").
		Columns(
			"id", "status", "buyer_wallet", "seller_wallet",
			"incoming_payment_id", "receive_value", "receive_asset_code", "receive_asset_scale",
			"quote_id", "debit_value", "debit_asset_code", "debit_asset_scale",
			"outgoing_payment_id", "finish_nonce", "continue_uri", "continue_token",
			"interact_redirect", "auth_server", "fail_reason", "version",
			"created_at", "updated_at",
		).
		Values(
			tx.ID, tx.State, tx.BuyerWallet, tx.SellerWallet,
			tx.IncomingPaymentID, tx.ReceiveAmount.Value, tx.ReceiveAmount.AssetCode, tx.ReceiveAmount.AssetScale,
			tx.QuoteID, tx.QuoteDebit.Value, tx.QuoteDebit.AssetCode, tx.QuoteDebit.AssetScale,
			tx.OutgoingPaymentID, tx.FinishNonce, tx.ContinueURI, tx.ContinueToken,
			tx.InteractRedirect, tx.AuthServer, tx.FailReason, tx.Version,
			tx.CreatedAt, tx.UpdatedAt,
		)

	_, err := b.RunWith(s.db).ExecContext(ctx)
	return err
}

// Update writes every mutable field guarded by the row version; duplicate
// webhook deliveries lose the race and get ErrOptimisticLock.
func (s *store) Update(ctx context.Context, tx *core.PendingTransaction) error {
	now := time.Now()

	b := psql.Update("transactions").
		Set("status", tx.State).
		Set("incoming_payment_id", tx.IncomingPaymentID).
		Set("receive_value", tx.ReceiveAmount.Value).
		Set("receive_asset_code", tx.ReceiveAmount.AssetCode).
		Set("receive_asset_scale", tx.ReceiveAmount.AssetScale).
		Set("quote_id", tx.QuoteID).
		Set("debit_value", tx.QuoteDebit.Value).
		Set("debit_asset_code", tx.QuoteDebit.AssetCode).
		Set("debit_asset_scale", tx.QuoteDebit.AssetScale).
		Set("outgoing_payment_id", tx.OutgoingPaymentID).
		Set("finish_nonce", tx.FinishNonce).
		Set("continue_uri", tx.ContinueURI).
		Set("continue_token", tx.ContinueToken).
		Set("interact_redirect", tx.InteractRedirect).
		Set("auth_server", tx.AuthServer).
		Set("fail_reason", tx.FailReason).
		Set("version", tx.Version+1).
		Set("updated_at", now).
		Where("id = ? AND version = ?", tx.ID, tx.Version)

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

	tx.Version++
	tx.UpdatedAt = now
	return nil
}

func (s *store) Find(ctx context.Context, id string) (*core.PendingTransaction, error) {
	b := psql.Select(scanColumns...).
		From("transactions").
		Where(sq.Eq{"id": id})

	row := b.RunWith(s.db).QueryRowContext(ctx)

	var tx core.PendingTransaction
	if err := scanTransaction(row, &tx); err != nil {
		return nil, err
	}

	return &tx, nil
}

func (s *store) FindPayment(ctx context.Context, paymentID string) (*core.PendingTransaction, error) {
	b := psql.Select(scanColumns...).
		From("transactions").
		Where(sq.Or{
			sq.Eq{"incoming_payment_id": paymentID},
			sq.Eq{"outgoing_payment_id": paymentID},
		})

	row := b.RunWith(s.db).QueryRowContext(ctx)

	var tx core.PendingTransaction
	if err := scanTransaction(row, &tx); err != nil {
		return nil, err
	}

	return &tx, nil
}

func (s *store) ListArchivable(ctx context.Context, limit int) ([]*core.PendingTransaction, error) {
	b := psql.Select(scanColumns...).
		From("transactions").
		Where(sq.And{
			sq.Eq{"status": []core.TransactionState{core.TransactionStateCompleted, core.TransactionStateFailed}},
			sq.Eq{"archived_at": nil},
		}).
		OrderBy("updated_at").
		Limit(uint64(limit))

	rows, err := b.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var txs []*core.PendingTransaction
	for rows.Next() {
		var tx core.PendingTransaction
		if err := scanTransaction(rows, &tx); err != nil {
			return nil, err
		}

		txs = append(txs, &tx)
	}

	return txs, rows.Err()
}

func (s *store) Archive(ctx context.Context, tx *core.PendingTransaction) error {
	b := psql.Update("transactions").
		Set("archived_at", time.Now()).
		Where("id = ? AND archived_at IS NULL", tx.ID)

	_, err := b.RunWith(s.db).ExecContext(ctx)
	return err
}
