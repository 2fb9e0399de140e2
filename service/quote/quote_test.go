package quote

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

func quoteServer(t *testing.T, receive core.Amount) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/quotes") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		if !strings.HasPrefix(r.Header.Get("Authorization"), "GNAP ") {
			t.Error("missing GNAP authorization")
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":            "https://rs.example.com/quotes/q-1",
			"receiver":      "https://rs.example.com/incoming-payments/ip-1",
			"debitAmount":   map[string]any{"value": "10150", "assetCode": "USD", "assetScale": 2},
			"receiveAmount": map[string]any{"value": receive.Value, "assetCode": receive.AssetCode, "assetScale": receive.AssetScale},
		})
	}))
}

func TestCreateFixedReceive(t *testing.T) {
	amount := core.NewAmount("10000", "MXN", 2)
	svr := quoteServer(t, amount)
	defer svr.Close()

	s := New(resty.New())

	q, err := s.Create(context.Background(), core.QuoteRequest{
		Wallet:        &core.WalletAddress{URL: "https://wallet.example.com/bob", ResourceServer: svr.URL},
		Receiver:      "https://rs.example.com/incoming-payments/ip-1",
		ExpectReceive: &amount,
		AccessToken:   "quote-token",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if !q.ReceiveAmount.Equal(amount) {
		t.Errorf("ReceiveAmount = %+v, want %+v", q.ReceiveAmount, amount)
	}
}

func TestCreateReceiveMismatch(t *testing.T) {
	svr := quoteServer(t, core.NewAmount("9999", "MXN", 2))
	defer svr.Close()

	s := New(resty.New())

	want := core.NewAmount("10000", "MXN", 2)
	_, err := s.Create(context.Background(), core.QuoteRequest{
		Wallet:        &core.WalletAddress{URL: "https://wallet.example.com/bob", ResourceServer: svr.URL},
		Receiver:      "https://rs.example.com/incoming-payments/ip-1",
		ExpectReceive: &want,
		AccessToken:   "quote-token",
	})

	var qerr *core.QuoteError
	if !errors.As(err, &qerr) || qerr.Reason != "receive amount mismatch" {
		t.Fatalf("Create() error = %v, want receive amount mismatch", err)
	}

	if qerr.Got == nil || qerr.Got.Value != "9999" {
		t.Errorf("Got = %+v, want 9999", qerr.Got)
	}
}

func TestCreateValidation(t *testing.T) {
	s := New(resty.New())
	wallet := &core.WalletAddress{URL: "https://wallet.example.com/bob", ResourceServer: "https://rs.example.com"}
	debit := core.NewAmount("100", "USD", 2)
	receive := core.NewAmount("100", "MXN", 2)

	tests := []struct {
		name string
		req  core.QuoteRequest
	}{
		{
			name: "both sides fixed",
			req:  core.QuoteRequest{Wallet: wallet, DebitAmount: &debit, ReceiveAmount: &receive},
		},
		{
			name: "no fixed side",
			req:  core.QuoteRequest{Wallet: wallet},
		},
		{
			name: "no resource server",
			req:  core.QuoteRequest{Wallet: &core.WalletAddress{}, DebitAmount: &debit},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(context.Background(), tt.req)

			var qerr *core.QuoteError
			if !errors.As(err, &qerr) {
				t.Errorf("Create() error = %v, want QuoteError", err)
			}
		})
	}
}
