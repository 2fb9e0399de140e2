package wallet

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

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		addr string
		want string
	}{
		{
			name: "payment pointer",
			addr: "$ilp.example.com/alice",
			want: "https://ilp.example.com/alice",
		},
		{
			name: "already https",
			addr: "https://ilp.example.com/alice",
			want: "https://ilp.example.com/alice",
		},
		{
			name: "bare host",
			addr: "ilp.example.com/alice",
			want: "https://ilp.example.com/alice",
		},
		{
			name: "trailing slash",
			addr: "https://ilp.example.com/alice/",
			want: "https://ilp.example.com/alice",
		},
		{
			name: "whitespace",
			addr: "  $ilp.example.com/alice ",
			want: "https://ilp.example.com/alice",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.addr); got != tt.want {
				t.Errorf("Normalize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	var calls int
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":             "https://ilp.example.com/alice",
			"publicName":     "Alice",
			"assetCode":      "MXN",
			"assetScale":     2,
			"authServer":     "https://auth.example.com",
			"resourceServer": "https://rs.example.com",
		})
	}))
	defer svr.Close()

	r := New(resty.New(), Config{
		CacheTTL: time.Minute,
		Keys: map[string]core.ClientKey{
			svr.URL: {KeyID: "key-1", PrivateKey: "pem"},
		},
	})

	w, err := r.Resolve(context.Background(), svr.URL)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if w.AssetCode != "MXN" || w.AssetScale != 2 {
		t.Errorf("asset = %s/%d, want MXN/2", w.AssetCode, w.AssetScale)
	}

	if w.AuthServer != "https://auth.example.com" {
		t.Errorf("AuthServer = %q", w.AuthServer)
	}

	if w.KeyID != "key-1" {
		t.Error("client key material not attached")
	}

	// cached within ttl
	if _, err := r.Resolve(context.Background(), svr.URL); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if calls != 1 {
		t.Errorf("wallet fetched %d times, want 1", calls)
	}
}

func TestResolveIncomplete(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"assetCode": "MXN"})
	}))
	defer svr.Close()

	r := New(resty.New(), Config{})

	_, err := r.Resolve(context.Background(), svr.URL)

	var resErr *core.WalletResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("Resolve() error = %v, want WalletResolutionError", err)
	}
}

func TestResolveBadURL(t *testing.T) {
	r := New(resty.New(), Config{})

	if _, err := r.Resolve(context.Background(), "not a url"); err == nil {
		t.Fatal("Resolve() should reject malformed addresses")
	}
}
