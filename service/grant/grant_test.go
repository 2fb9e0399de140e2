package grant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/constructoken/openpay/core"
	"github.com/go-resty/resty/v2"
)

func TestFinishHash(t *testing.T) {
	base := FinishHash("tx-1", "server-nonce", "ref-1", "https://auth.example.com")

	if base != FinishHash("tx-1", "server-nonce", "ref-1", "https://auth.example.com") {
		t.Error("hash must be deterministic")
	}

	// every input participates in the digest
	variants := []string{
		FinishHash("tx-2", "server-nonce", "ref-1", "https://auth.example.com"),
		FinishHash("tx-1", "other-nonce", "ref-1", "https://auth.example.com"),
		FinishHash("tx-1", "server-nonce", "ref-2", "https://auth.example.com"),
		FinishHash("tx-1", "server-nonce", "ref-1", "https://auth.example.org"),
	}

	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d should change the hash", i)
		}
	}
}

func TestVerifyFinish(t *testing.T) {
	s := New(resty.New(), Config{ClientName: "test"}).(*service)

	hash := FinishHash("tx-1", "server-nonce", "ref-1", "https://auth.example.com")
	if err := s.VerifyFinish("tx-1", "server-nonce", "ref-1", "https://auth.example.com", hash); err != nil {
		t.Fatalf("VerifyFinish() error = %v", err)
	}

	// flip a single character of the received hash
	altered := []byte(hash)
	if altered[0] == 'A' {
		altered[0] = 'B'
	} else {
		altered[0] = 'A'
	}

	err := s.VerifyFinish("tx-1", "server-nonce", "ref-1", "https://auth.example.com", string(altered))

	var hashErr *core.HashVerificationError
	if !errors.As(err, &hashErr) {
		t.Fatalf("VerifyFinish() error = %v, want HashVerificationError", err)
	}
}

func TestRequestNonInteractive(t *testing.T) {
	var calls int
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++

		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if _, ok := body["access_token"]; !ok {
			t.Error("request body missing access_token")
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": map[string]any{"value": "token-123"},
		})
	}))
	defer svr.Close()

	s := New(resty.New(), Config{ClientName: "test", TokenTTL: time.Minute})
	wallet := &core.WalletAddress{URL: "https://wallet.example.com/alice", AuthServer: svr.URL}

	g, err := s.Request(context.Background(), core.GrantParams{
		AccessType: core.AccessTypeIncomingPayment,
		Actions:    []string{"create", "read"},
		Wallet:     wallet,
	})
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}

	if g.State != core.GrantStateGranted || g.AccessToken != "token-123" {
		t.Errorf("Request() = %+v, want granted token-123", g)
	}

	// second request for the same auth server and access type hits the cache
	if _, err := s.Request(context.Background(), core.GrantParams{
		AccessType: core.AccessTypeIncomingPayment,
		Actions:    []string{"create", "read"},
		Wallet:     wallet,
	}); err != nil {
		t.Fatalf("Request() error = %v", err)
	}

	if calls != 1 {
		t.Errorf("auth server called %d times, want 1", calls)
	}
}

func TestRequestInteractive(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Interact *struct {
				Start  []string `json:"start"`
				Finish struct {
					Method string `json:"method"`
					URI    string `json:"uri"`
					Nonce  string `json:"nonce"`
				} `json:"finish"`
			} `json:"interact"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		if body.Interact == nil || body.Interact.Finish.Method != "redirect" {
			t.Error("interactive request missing redirect finish")
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"interact": map[string]any{
				"redirect": "https://auth.example.com/interact/xyz",
				"finish":   "server-nonce",
			},
			"continue": map[string]any{
				"access_token": map[string]any{"value": "continue-token"},
				"uri":          "https://auth.example.com/continue/xyz",
			},
		})
	}))
	defer svr.Close()

	s := New(resty.New(), Config{ClientName: "test"})

	g, err := s.Request(context.Background(), core.GrantParams{
		AccessType:  core.AccessTypeOutgoingPayment,
		Actions:     []string{"create", "read"},
		Wallet:      &core.WalletAddress{URL: "https://wallet.example.com/alice", AuthServer: svr.URL},
		Interactive: true,
		FinishURI:   "https://pay.example.com/callbacks/tx-1",
		Nonce:       "tx-1",
	})
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}

	if g.State != core.GrantStateInteractive {
		t.Errorf("State = %v, want Interactive", g.State)
	}

	if g.FinishNonce != "server-nonce" || g.ContinueToken != "continue-token" {
		t.Errorf("Request() = %+v, want server finish nonce and continue token", g)
	}
}

func TestRequestInteractiveNeedsFinish(t *testing.T) {
	s := New(resty.New(), Config{ClientName: "test"})

	_, err := s.Request(context.Background(), core.GrantParams{
		AccessType:  core.AccessTypeOutgoingPayment,
		Wallet:      &core.WalletAddress{URL: "https://wallet.example.com/alice", AuthServer: "https://auth.example.com"},
		Interactive: true,
	})

	var reqErr *core.GrantRequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("Request() error = %v, want GrantRequestError", err)
	}
}

func TestContinue(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "GNAP continue-token" {
			t.Errorf("Authorization = %q, want GNAP continue-token", got)
		}

		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["interact_ref"] != "ref-1" {
			t.Errorf("interact_ref = %q, want ref-1", body["interact_ref"])
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": map[string]any{"value": "final-token"},
		})
	}))
	defer svr.Close()

	s := New(resty.New(), Config{ClientName: "test"})

	g, err := s.Continue(context.Background(), svr.URL, "continue-token", "ref-1")
	if err != nil {
		t.Fatalf("Continue() error = %v", err)
	}

	if g.State != core.GrantStateGranted || g.AccessToken != "final-token" {
		t.Errorf("Continue() = %+v, want granted final-token", g)
	}
}
