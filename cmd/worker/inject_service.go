package main

import (
	"time"

	"github.com/constructoken/openpay/core"
	"github.com/constructoken/openpay/service/flow"
	"github.com/constructoken/openpay/service/grant"
	"github.com/constructoken/openpay/service/payment"
	"github.com/constructoken/openpay/service/quote"
	"github.com/constructoken/openpay/service/wallet"
	"github.com/go-resty/resty/v2"
	"github.com/google/wire"
	"github.com/spf13/viper"
)

var serviceSet = wire.NewSet(
	provideRestyClient,
	provideWalletConfig,
	provideGrantConfig,
	provideFlowConfig,
	wallet.New,
	grant.New,
	quote.New,
	payment.New,
	flow.New,
)

func provideRestyClient(v *viper.Viper) *resty.Client {
	v.SetDefault("http.timeout", 15*time.Second)

	// no automatic retries: a timed-out outgoing-payment create may have
	// debited, so transient failures surface to the caller instead
	return resty.New().
		SetTimeout(v.GetDuration("http.timeout"))
}

func provideWalletConfig(v *viper.Viper) (wallet.Config, error) {
	v.SetDefault("wallet.cache_size", 512)
	v.SetDefault("wallet.cache_ttl", time.Hour)

	var entries []struct {
		Address    string `mapstructure:"address"`
		KeyID      string `mapstructure:"key_id"`
		PrivateKey string `mapstructure:"private_key"`
	}

	if err := v.UnmarshalKey("wallets", &entries); err != nil {
		return wallet.Config{}, err
	}

	keys := make(map[string]core.ClientKey, len(entries))
	for _, e := range entries {
		keys[wallet.Normalize(e.Address)] = core.ClientKey{
			KeyID:      e.KeyID,
			PrivateKey: e.PrivateKey,
		}
	}

	return wallet.Config{
		CacheSize: v.GetInt("wallet.cache_size"),
		CacheTTL:  v.GetDuration("wallet.cache_ttl"),
		Keys:      keys,
	}, nil
}

func provideGrantConfig(v *viper.Viper) grant.Config {
	v.SetDefault("grant.client_name", "openpay")
	v.SetDefault("grant.token_ttl", time.Hour)

	return grant.Config{
		ClientName: v.GetString("grant.client_name"),
		ClientURI:  v.GetString("grant.client_uri"),
		TokenTTL:   v.GetDuration("grant.token_ttl"),
	}
}

func provideFlowConfig(v *viper.Viper) flow.Config {
	return flow.Config{
		CallbackURI: v.GetString("flow.callback_uri"),
	}
}
