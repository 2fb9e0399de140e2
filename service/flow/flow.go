package flow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/constructoken/openpay/core"
	"github.com/oklog/ulid/v2"
)

var (
	incomingActions = []string{"create", "read", "complete", "list"}
	quoteActions    = []string{"create", "read"}
	outgoingActions = []string{"create", "read", "list"}
)

type Config struct {
	// CallbackURI is the base url the auth server redirects the resource
	// owner back to, e.g. https://pay.example.com/api/callbacks.
	CallbackURI string `valid:"required"`
	// OnFunded fires once when a recurring grant's accumulated amount
	// crosses its funding target. Optional.
	OnFunded func(ctx context.Context, g *core.RecurringGrant)
}

// Orchestrator sequences the Open Payments sagas. One instance serves both
// the one-shot and the recurring flow, parametrized by buyer and seller
// wallet roles; all resume state lives in the stores.
type Orchestrator struct {
	wallets      core.WalletResolver
	grants       core.GrantService
	quotes       core.QuoteService
	payments     core.PaymentService
	transactions core.TransactionStore
	recurrings   core.RecurringStore
	properties   core.PropertyStore
	logger       *slog.Logger
	cfg          Config
}

func New(
	wallets core.WalletResolver,
	grants core.GrantService,
	quotes core.QuoteService,
	payments core.PaymentService,
	transactions core.TransactionStore,
	recurrings core.RecurringStore,
	properties core.PropertyStore,
	logger *slog.Logger,
	cfg Config,
) *Orchestrator {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	return &Orchestrator{
		wallets:      wallets,
		grants:       grants,
		quotes:       quotes,
		payments:     payments,
		transactions: transactions,
		recurrings:   recurrings,
		properties:   properties,
		logger:       logger.With("service", "flow"),
		cfg:          cfg,
	}
}

type PaymentParams struct {
	BuyerWallet  string
	SellerWallet string
	Amount       core.Amount // amount the seller must receive, in the seller's asset
	Metadata     map[string]any
}

// StartPayment runs the one-shot saga up to the interactive step and
// returns the persisted transaction carrying the redirect url. The step
// order is fixed: each step consumes the previous step's output.
func (o *Orchestrator) StartPayment(ctx context.Context, params PaymentParams) (*core.PendingTransaction, error) {
	seller, err := o.wallets.Resolve(ctx, params.SellerWallet)
	if err != nil {
		return nil, err
	}

	buyer, err := o.wallets.Resolve(ctx, params.BuyerWallet)
	if err != nil {
		return nil, err
	}

	amount := params.Amount
	if amount.AssetCode == "" {
		amount.AssetCode = seller.AssetCode
		amount.AssetScale = seller.AssetScale
	}

	if amount.IsZero() {
		return nil, fmt.Errorf("payment amount required")
	}

	tx := &core.PendingTransaction{
		ID:            ulid.Make().String(),
		State:         core.TransactionStateInit,
		BuyerWallet:   buyer.URL,
		SellerWallet:  seller.URL,
		ReceiveAmount: amount,
		CreatedAt:     time.Now(),
	}

	if err := o.transactions.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	logger := o.logger.With("transaction", tx.ID)

	incoming, err := o.createIncoming(ctx, seller, amount, params.Metadata)
	if err != nil {
		return nil, o.failTransaction(ctx, tx, err)
	}

	tx.IncomingPaymentID = incoming.ID
	tx.State = core.TransactionStateIncomingRequested
	if err := o.transactions.Update(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info("incoming payment created", "payment", incoming.ID, "amount", amount)

	quote, err := o.createQuote(ctx, buyer, incoming.ID, &amount)
	if err != nil {
		return nil, o.failTransaction(ctx, tx, err)
	}

	tx.QuoteID = quote.ID
	tx.QuoteDebit = quote.DebitAmount
	tx.State = core.TransactionStateQuoted
	if err := o.transactions.Update(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info("quote created", "quote", quote.ID, "debit", quote.DebitAmount, "receive", quote.ReceiveAmount)

	debit := quote.DebitAmount
	g, err := o.grants.Request(ctx, core.GrantParams{
		AccessType:  core.AccessTypeOutgoingPayment,
		Actions:     outgoingActions,
		Wallet:      buyer,
		Identifier:  buyer.URL,
		Limits:      &core.GrantLimits{DebitAmount: &debit},
		Interactive: true,
		FinishURI:   fmt.Sprintf("%s/%s", o.cfg.CallbackURI, tx.ID),
		Nonce:       tx.ID,
	})

	if err != nil {
		return nil, o.failTransaction(ctx, tx, err)
	}

	tx.FinishNonce = g.FinishNonce
	tx.ContinueURI = g.ContinueURI
	tx.ContinueToken = g.ContinueToken
	tx.InteractRedirect = g.InteractRedirect
	tx.AuthServer = buyer.AuthServer
	tx.State = core.TransactionStateGrantRequested
	if err := o.transactions.Update(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info("interactive grant requested", "redirect", g.InteractRedirect)
	return tx, nil
}

// CompletePayment resumes the saga when the redirect callback arrives. The
// finish hash is verified before anything else; on mismatch the grant is
// never continued.
func (o *Orchestrator) CompletePayment(ctx context.Context, id, interactRef, receivedHash string) (*core.OutgoingPayment, error) {
	tx, err := o.transactions.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if tx.State != core.TransactionStateGrantRequested {
		return nil, fmt.Errorf("transaction %s not awaiting consent (state %s)", id, tx.State)
	}

	if err := o.grants.VerifyFinish(tx.ID, tx.FinishNonce, interactRef, tx.AuthServer, receivedHash); err != nil {
		o.logger.Warn("finish hash rejected", "transaction", tx.ID)
		return nil, err
	}

	g, err := o.grants.Continue(ctx, tx.ContinueURI, tx.ContinueToken, interactRef)
	if err != nil {
		return nil, o.failTransaction(ctx, tx, err)
	}

	tx.State = core.TransactionStateGrantContinued
	if err := o.transactions.Update(ctx, tx); err != nil {
		return nil, err
	}

	buyer, err := o.wallets.Resolve(ctx, tx.BuyerWallet)
	if err != nil {
		return nil, o.failTransaction(ctx, tx, err)
	}

	op, err := o.payments.CreateOutgoing(ctx, core.OutgoingPaymentRequest{
		Wallet:      buyer,
		QuoteID:     tx.QuoteID,
		Metadata:    map[string]any{"correlation_id": tx.ID},
		AccessToken: g.AccessToken,
	})

	if err != nil {
		return nil, o.failTransaction(ctx, tx, err)
	}

	tx.OutgoingPaymentID = op.ID
	tx.State = core.TransactionStateOutgoingCreated
	if err := o.transactions.Update(ctx, tx); err != nil {
		return nil, err
	}

	o.logger.Info("outgoing payment created", "transaction", tx.ID, "payment", op.ID)
	return op, nil
}

func (o *Orchestrator) FindTransaction(ctx context.Context, id string) (*core.PendingTransaction, error) {
	return o.transactions.Find(ctx, id)
}

func (o *Orchestrator) createIncoming(ctx context.Context, seller *core.WalletAddress, amount core.Amount, metadata map[string]any) (*core.IncomingPayment, error) {
	g, err := o.grants.Request(ctx, core.GrantParams{
		AccessType: core.AccessTypeIncomingPayment,
		Actions:    incomingActions,
		Wallet:     seller,
		Identifier: seller.URL,
	})

	if err != nil {
		return nil, err
	}

	return o.payments.CreateIncoming(ctx, core.IncomingPaymentRequest{
		Wallet:      seller,
		Amount:      amount,
		Metadata:    metadata,
		AccessToken: g.AccessToken,
	})
}

func (o *Orchestrator) createQuote(ctx context.Context, buyer *core.WalletAddress, receiver string, expect *core.Amount) (*core.Quote, error) {
	g, err := o.grants.Request(ctx, core.GrantParams{
		AccessType: core.AccessTypeQuote,
		Actions:    quoteActions,
		Wallet:     buyer,
		Identifier: buyer.URL,
	})

	if err != nil {
		return nil, err
	}

	return o.quotes.Create(ctx, core.QuoteRequest{
		Wallet:        buyer,
		Receiver:      receiver,
		ExpectReceive: expect,
		AccessToken:   g.AccessToken,
	})
}

// failTransaction marks the saga failed and hands the step error back
// unchanged. No compensation, no retry.
func (o *Orchestrator) failTransaction(ctx context.Context, tx *core.PendingTransaction, cause error) error {
	tx.State = core.TransactionStateFailed
	tx.FailReason = cause.Error()
	if err := o.transactions.Update(ctx, tx); err != nil {
		o.logger.Error("mark transaction failed", "transaction", tx.ID, "err", err)
	}

	return cause
}
