package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func payCmd() *cobra.Command {
	var (
		buyer  string
		seller string
		value  string
		asset  string
		scale  int32
	)

	cmd := &cobra.Command{
		Use:   "pay",
		Short: "start a one-shot payment",
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{
				"buyer_wallet":  buyer,
				"seller_wallet": seller,
				"amount": map[string]any{
					"value":      value,
					"assetCode":  asset,
					"assetScale": scale,
				},
				"metadata": map[string]any{
					"order_id": uuid.NewString(),
				},
			}

			r, err := client().R().
				SetContext(cmd.Context()).
				SetBody(body).
				Post("/payments")

			return call(cmd, r, err)
		},
	}

	cmd.Flags().StringVar(&buyer, "buyer", "", "buyer wallet address")
	cmd.Flags().StringVar(&seller, "seller", "", "seller wallet address")
	cmd.Flags().StringVar(&value, "value", "", "receive amount in minor units")
	cmd.Flags().StringVar(&asset, "asset", "", "asset code, e.g. MXN")
	cmd.Flags().Int32Var(&scale, "scale", 2, "asset scale")

	_ = cmd.MarkFlagRequired("buyer")
	_ = cmd.MarkFlagRequired("seller")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func transactionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tx <id>",
		Short: "show a pending transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := client().R().
				SetContext(cmd.Context()).
				Get("/payments/" + args[0])

			return call(cmd, r, err)
		},
	}
}
