package recurring

import (
	"database/sql"

	"github.com/constructoken/openpay/core"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

var grantColumns = []string{
	"id",
	"status",
	"buyer_wallet",
	"seller_wallet",
	"installment_value",
	"installment_asset_code",
	"installment_asset_scale",
	"pay_interval",
	"total_cap",
	"max_payments",
	"payments_completed",
	"debit_total",
	"target_value",
	"target_asset_code",
	"target_asset_scale",
	"access_token",
	"finish_nonce",
	"continue_uri",
	"continue_token",
	"interact_redirect",
	"auth_server",
	"next_run_at",
	"created_at",
	"updated_at",
}

func scanGrant(scanner scanner, g *core.RecurringGrant) error {
	var nextRunAt sql.NullTime

	if err := scanner.Scan(
		&g.ID,
		&g.State,
		&g.BuyerWallet,
		&g.SellerWallet,
		&g.InstallmentAmount.Value,
		&g.InstallmentAmount.AssetCode,
		&g.InstallmentAmount.AssetScale,
		&g.Interval,
		&g.TotalCap,
		&g.MaxPayments,
		&g.PaymentsCompleted,
		&g.DebitTotal,
		&g.TargetAmount.Value,
		&g.TargetAmount.AssetCode,
		&g.TargetAmount.AssetScale,
		&g.AccessToken,
		&g.FinishNonce,
		&g.ContinueURI,
		&g.ContinueToken,
		&g.InteractRedirect,
		&g.AuthServer,
		&nextRunAt,
		&g.CreatedAt,
		&g.UpdatedAt,
	); err != nil {
		return err
	}

	g.NextRunAt = nextRunAt.Time
	return nil
}

var installmentColumns = []string{
	"outgoing_payment_id",
	"grant_id",
	"seq",
	"value",
	"asset_code",
	"asset_scale",
	"status",
	"created_at",
}

func scanInstallment(scanner scanner, in *core.Installment) error {
	return scanner.Scan(
		&in.OutgoingPaymentID,
		&in.GrantID,
		&in.Sequence,
		&in.Amount.Value,
		&in.Amount.AssetCode,
		&in.Amount.AssetScale,
		&in.Status,
		&in.CreatedAt,
	)
}
