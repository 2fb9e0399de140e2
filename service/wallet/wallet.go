package wallet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/constructoken/openpay/core"
	"github.com/go-resty/resty/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

type Config struct {
	CacheSize int
	CacheTTL  time.Duration
	// Keys maps a normalized wallet address url to the client key material
	// used when acting on that wallet's behalf. Injected from config.
	Keys map[string]core.ClientKey
}

func New(client *resty.Client, cfg Config) core.WalletResolver {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 256
	}

	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}

	wallets, err := lru.New[string, *core.WalletAddress](cfg.CacheSize)
	if err != nil {
		panic(err)
	}

	return &resolver{
		client:  client,
		cfg:     cfg,
		wallets: wallets,
	}
}

type resolver struct {
	client  *resty.Client
	cfg     Config
	wallets *lru.Cache[string, *core.WalletAddress]
	sf      singleflight.Group
}

// Normalize turns the `$host/path` payment-pointer shorthand into a
// canonical https url.
func Normalize(addr string) string {
	addr = strings.TrimSpace(addr)
	addr = strings.Trim(addr, "$")
	addr = strings.TrimRight(addr, "/")
	if strings.Contains(addr, "://") {
		return addr
	}

	return "https://" + addr
}

func (r *resolver) Resolve(ctx context.Context, url string) (*core.WalletAddress, error) {
	url = Normalize(url)
	if !govalidator.IsURL(url) {
		return nil, &core.WalletResolutionError{URL: url, Err: fmt.Errorf("not a valid url")}
	}

	if w, ok := r.wallets.Get(url); ok && time.Since(w.ResolvedAt) < r.cfg.CacheTTL {
		return w, nil
	}

	v, err, _ := r.sf.Do(url, func() (interface{}, error) {
		return r.fetch(ctx, url)
	})

	if err != nil {
		return nil, err
	}

	w := v.(*core.WalletAddress)
	r.wallets.Add(url, w)
	return w, nil
}

func (r *resolver) fetch(ctx context.Context, url string) (*core.WalletAddress, error) {
	var w core.WalletAddress
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetResult(&w).
		Get(url)

	if err != nil {
		return nil, &core.WalletResolutionError{URL: url, Err: err}
	}

	if resp.IsError() {
		return nil, &core.WalletResolutionError{URL: url, Err: fmt.Errorf("status %d", resp.StatusCode())}
	}

	if w.AuthServer == "" || w.ResourceServer == "" {
		return nil, &core.WalletResolutionError{URL: url, Err: fmt.Errorf("incomplete wallet metadata")}
	}

	if w.URL == "" {
		w.URL = url
	}

	if key, ok := r.cfg.Keys[url]; ok {
		w.KeyID = key.KeyID
		w.PrivateKey = key.PrivateKey
	}

	w.ResolvedAt = time.Now()
	return &w, nil
}
