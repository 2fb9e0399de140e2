package main

import (
	"time"

	"github.com/constructoken/openpay/service/wallet"
	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

func walletCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wallet <address>",
		Short: "fetch a wallet address document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// resolves against the wallet host directly, not the server
			r, err := resty.New().
				SetTimeout(time.Minute).
				R().
				SetContext(cmd.Context()).
				SetHeader("Accept", "application/json").
				Get(wallet.Normalize(args[0]))

			return call(cmd, r, err)
		},
	}
}
