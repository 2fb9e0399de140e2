package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/constructoken/openpay/core"
	"github.com/go-resty/resty/v2"
)

func TestCreateIncoming(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/incoming-payments") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["incomingAmount"] == nil {
			t.Error("request missing incomingAmount")
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":             "https://rs.example.com/incoming-payments/ip-1",
			"walletAddress":  body["walletAddress"],
			"incomingAmount": body["incomingAmount"],
		})
	}))
	defer svr.Close()

	s := New(resty.New())

	in, err := s.CreateIncoming(context.Background(), core.IncomingPaymentRequest{
		Wallet:      &core.WalletAddress{URL: "https://wallet.example.com/bob", ResourceServer: svr.URL},
		Amount:      core.NewAmount("10000", "MXN", 2),
		AccessToken: "incoming-token",
	})
	if err != nil {
		t.Fatalf("CreateIncoming() error = %v", err)
	}

	if in.ID == "" || in.State != core.PaymentStatePending {
		t.Errorf("CreateIncoming() = %+v, want pending with id", in)
	}
}

func TestCreateIncomingZeroAmount(t *testing.T) {
	s := New(resty.New())

	_, err := s.CreateIncoming(context.Background(), core.IncomingPaymentRequest{
		Wallet: &core.WalletAddress{URL: "https://wallet.example.com/bob", ResourceServer: "https://rs.example.com"},
	})

	var perr *core.PaymentCreationError
	if !errors.As(err, &perr) {
		t.Fatalf("CreateIncoming() error = %v, want PaymentCreationError", err)
	}
}

func TestCreateOutgoingNeedsQuote(t *testing.T) {
	s := New(resty.New())

	_, err := s.CreateOutgoing(context.Background(), core.OutgoingPaymentRequest{
		Wallet: &core.WalletAddress{URL: "https://wallet.example.com/alice", ResourceServer: "https://rs.example.com"},
	})

	var perr *core.PaymentCreationError
	if !errors.As(err, &perr) || perr.Kind != core.AccessTypeOutgoingPayment {
		t.Fatalf("CreateOutgoing() error = %v, want outgoing PaymentCreationError", err)
	}
}

func TestCreateOutgoing(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "GNAP outgoing-token" {
			t.Errorf("Authorization = %q", got)
		}

		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["quoteId"] != "https://rs.example.com/quotes/q-1" {
			t.Errorf("quoteId = %v", body["quoteId"])
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "https://rs.example.com/outgoing-payments/op-1",
			"quoteId": body["quoteId"],
		})
	}))
	defer svr.Close()

	s := New(resty.New())

	op, err := s.CreateOutgoing(context.Background(), core.OutgoingPaymentRequest{
		Wallet:      &core.WalletAddress{URL: "https://wallet.example.com/alice", ResourceServer: svr.URL},
		QuoteID:     "https://rs.example.com/quotes/q-1",
		AccessToken: "outgoing-token",
	})
	if err != nil {
		t.Fatalf("CreateOutgoing() error = %v", err)
	}

	if op.ID != "https://rs.example.com/outgoing-payments/op-1" {
		t.Errorf("ID = %q", op.ID)
	}
}
