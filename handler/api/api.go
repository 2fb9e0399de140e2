package api

import (
	"log/slog"
	"net/http"

	"github.com/constructoken/openpay/core"
	"github.com/constructoken/openpay/service/flow"
	"github.com/go-chi/chi/v5"
	"github.com/pandodao/generic"
	"github.com/shopspring/decimal"
)

func New(flows *flow.Orchestrator, logger *slog.Logger) *Server {
	return &Server{
		flows:  flows,
		logger: logger.With("server", "api"),
	}
}

type Server struct {
	flows  *flow.Orchestrator
	logger *slog.Logger
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Route("/payments", func(r chi.Router) {
		r.Post("/", s.createPayment)
		r.Get("/{id}", s.findPayment)
	})

	r.Route("/recurring", func(r chi.Router) {
		r.Post("/", s.setupRecurring)
		r.Get("/{id}", s.findRecurring)
		r.Post("/{id}/installments", s.executeInstallment)
		r.Delete("/{id}", s.revokeRecurring)
	})

	r.Route("/callbacks", func(r chi.Router) {
		r.Get("/recurring/{id}", s.recurringCallback)
		r.Get("/{id}", s.paymentCallback)
	})

	r.Post("/webhooks", s.handleWebhook)

	return r
}

type createPaymentBody struct {
	BuyerWallet  string         `json:"buyer_wallet" valid:"required"`
	SellerWallet string         `json:"seller_wallet" valid:"required"`
	Amount       core.Amount    `json:"amount"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

func (s *Server) createPayment(w http.ResponseWriter, r *http.Request) {
	var body createPaymentBody
	if err := decodeBody(r, &body); err != nil {
		renderErr(w, err)
		return
	}

	if !generic.Try(decimal.NewFromString(body.Amount.Value)).IsPositive() {
		renderErr(w, errBadRequest("amount must be positive"))
		return
	}

	tx, err := s.flows.StartPayment(r.Context(), flow.PaymentParams{
		BuyerWallet:  body.BuyerWallet,
		SellerWallet: body.SellerWallet,
		Amount:       body.Amount,
		Metadata:     body.Metadata,
	})
	if err != nil {
		s.logger.Error("start payment", "error", err)
		renderErr(w, err)
		return
	}

	render(w, http.StatusCreated, tx)
}

func (s *Server) findPayment(w http.ResponseWriter, r *http.Request) {
	tx, err := s.flows.FindTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		renderErr(w, err)
		return
	}

	render(w, http.StatusOK, tx)
}

// paymentCallback is the finish-redirect target of one-shot grants. The hash
// is verified inside the orchestrator before any continuation happens.
func (s *Server) paymentCallback(w http.ResponseWriter, r *http.Request) {
	var (
		id          = chi.URLParam(r, "id")
		interactRef = r.URL.Query().Get("interact_ref")
		hash        = r.URL.Query().Get("hash")
	)

	if interactRef == "" || hash == "" {
		renderErr(w, errBadRequest("interact_ref and hash are required"))
		return
	}

	out, err := s.flows.CompletePayment(r.Context(), id, interactRef, hash)
	if err != nil {
		s.logger.Error("complete payment", "transaction", id, "error", err)
		renderErr(w, err)
		return
	}

	render(w, http.StatusOK, out)
}

type setupRecurringBody struct {
	BuyerWallet       string      `json:"buyer_wallet"`
	SellerWallet      string      `json:"seller_wallet"`
	InstallmentAmount core.Amount `json:"installment_amount"`
	Interval          string      `json:"interval"`
	TotalCap          string      `json:"total_cap,omitempty"`
	MaxPayments       int         `json:"max_payments"`
	TargetAmount      core.Amount `json:"target_amount,omitempty"`
}

func (s *Server) setupRecurring(w http.ResponseWriter, r *http.Request) {
	var body setupRecurringBody
	if err := decodeBody(r, &body); err != nil {
		renderErr(w, err)
		return
	}

	if !generic.Try(decimal.NewFromString(body.InstallmentAmount.Value)).IsPositive() {
		renderErr(w, errBadRequest("installment amount must be positive"))
		return
	}

	g, err := s.flows.SetupRecurring(r.Context(), flow.RecurringParams{
		BuyerWallet:       body.BuyerWallet,
		SellerWallet:      body.SellerWallet,
		InstallmentAmount: body.InstallmentAmount,
		Interval:          body.Interval,
		TotalCap:          body.TotalCap,
		MaxPayments:       body.MaxPayments,
		TargetAmount:      body.TargetAmount,
	})
	if err != nil {
		s.logger.Error("setup recurring", "error", err)
		renderErr(w, err)
		return
	}

	render(w, http.StatusCreated, g)
}

func (s *Server) recurringCallback(w http.ResponseWriter, r *http.Request) {
	var (
		id          = chi.URLParam(r, "id")
		interactRef = r.URL.Query().Get("interact_ref")
		hash        = r.URL.Query().Get("hash")
	)

	if interactRef == "" || hash == "" {
		renderErr(w, errBadRequest("interact_ref and hash are required"))
		return
	}

	g, err := s.flows.ActivateRecurring(r.Context(), id, interactRef, hash)
	if err != nil {
		s.logger.Error("activate recurring", "grant", id, "error", err)
		renderErr(w, err)
		return
	}

	render(w, http.StatusOK, g)
}

func (s *Server) executeInstallment(w http.ResponseWriter, r *http.Request) {
	in, err := s.flows.ExecuteInstallment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.logger.Error("execute installment", "grant", chi.URLParam(r, "id"), "error", err)
		renderErr(w, err)
		return
	}

	render(w, http.StatusCreated, in)
}

func (s *Server) findRecurring(w http.ResponseWriter, r *http.Request) {
	g, err := s.flows.FindRecurring(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		renderErr(w, err)
		return
	}

	render(w, http.StatusOK, g)
}

func (s *Server) revokeRecurring(w http.ResponseWriter, r *http.Request) {
	if err := s.flows.RevokeRecurring(r.Context(), chi.URLParam(r, "id")); err != nil {
		renderErr(w, err)
		return
	}

	render(w, http.StatusOK, map[string]any{"revoked": true})
}

type webhookBody struct {
	ID   string         `json:"id"`
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// handleWebhook accepts resource-server event deliveries. Processing is
// idempotent, so redelivery always gets a 200.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var body webhookBody
	if err := decodeBody(r, &body); err != nil {
		renderErr(w, err)
		return
	}

	event := core.WebhookEvent{
		ID:   body.ID,
		Type: body.Type,
		Data: body.Data,
	}

	if id, ok := body.Data["id"].(string); ok {
		event.PaymentID = id
	}

	if err := s.flows.HandleWebhook(r.Context(), event); err != nil {
		s.logger.Error("handle webhook", "event", body.ID, "type", body.Type, "error", err)
		renderErr(w, err)
		return
	}

	render(w, http.StatusOK, map[string]any{"received": true})
}
