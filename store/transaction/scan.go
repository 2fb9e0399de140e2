package transaction

import (
	"database/sql"

	"github.com/constructoken/openpay/core"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

var scanColumns = []string{
	"id",
	"status",
	"buyer_wallet",
	"seller_wallet",
	"incoming_payment_id",
	"receive_value",
	"receive_asset_code",
	"receive_asset_scale",
	"quote_id",
	"debit_value",
	"debit_asset_code",
	"debit_asset_scale",
	"outgoing_payment_id",
	"finish_nonce",
	"continue_uri",
	"continue_token",
	"interact_redirect",
	"auth_server",
	"fail_reason",
	"version",
	"created_at",
	"updated_at",
	"archived_at",
}

func scanTransaction(scanner scanner, tx *core.PendingTransaction) error {
	var archivedAt sql.NullTime

	if err := scanner.Scan(
		&tx.ID,
		&tx.State,
		&tx.BuyerWallet,
		&tx.SellerWallet,
		&tx.IncomingPaymentID,
		&tx.ReceiveAmount.Value,
		&tx.ReceiveAmount.AssetCode,
		&tx.ReceiveAmount.AssetScale,
		&tx.QuoteID,
		&tx.QuoteDebit.Value,
		&tx.QuoteDebit.AssetCode,
		&tx.QuoteDebit.AssetScale,
		&tx.OutgoingPaymentID,
		&tx.FinishNonce,
		&tx.ContinueURI,
		&tx.ContinueToken,
		&tx.InteractRedirect,
		&tx.AuthServer,
		&tx.FailReason,
		&tx.Version,
		&tx.CreatedAt,
		&tx.UpdatedAt,
		&archivedAt,
	); err != nil {
		return err
	}

	tx.ArchivedAt = archivedAt.Time
	return nil
}
