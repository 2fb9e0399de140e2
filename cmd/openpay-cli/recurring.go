package main

import (
	"github.com/spf13/cobra"
)

func recurringCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recurring",
		Short: "manage recurring payment grants",
	}

	cmd.AddCommand(recurringSetupCmd())
	cmd.AddCommand(recurringShowCmd())
	cmd.AddCommand(recurringTickCmd())
	cmd.AddCommand(recurringRevokeCmd())

	return cmd
}

func recurringSetupCmd() *cobra.Command {
	var (
		buyer       string
		seller      string
		value       string
		asset       string
		scale       int32
		interval    string
		totalCap    string
		maxPayments int
		target      string
	)

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "request a recurring outgoing-payment grant",
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{
				"buyer_wallet":  buyer,
				"seller_wallet": seller,
				"installment_amount": map[string]any{
					"value":      value,
					"assetCode":  asset,
					"assetScale": scale,
				},
				"interval":     interval,
				"max_payments": maxPayments,
			}

			if totalCap != "" {
				body["total_cap"] = totalCap
			}

			if target != "" {
				body["target_amount"] = map[string]any{
					"value":      target,
					"assetCode":  asset,
					"assetScale": scale,
				}
			}

			r, err := client().R().
				SetContext(cmd.Context()).
				SetBody(body).
				Post("/recurring")

			return call(cmd, r, err)
		},
	}

	cmd.Flags().StringVar(&buyer, "buyer", "", "buyer wallet address")
	cmd.Flags().StringVar(&seller, "seller", "", "seller wallet address")
	cmd.Flags().StringVar(&value, "value", "", "installment amount in minor units")
	cmd.Flags().StringVar(&asset, "asset", "", "asset code")
	cmd.Flags().Int32Var(&scale, "scale", 2, "asset scale")
	cmd.Flags().StringVar(&interval, "interval", "weekly", "installment interval")
	cmd.Flags().StringVar(&totalCap, "cap", "", "total debit cap in minor units")
	cmd.Flags().IntVar(&maxPayments, "max-payments", 1, "maximum installment count")
	cmd.Flags().StringVar(&target, "target", "", "funding target in minor units")

	_ = cmd.MarkFlagRequired("buyer")
	_ = cmd.MarkFlagRequired("seller")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func recurringShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "show a recurring grant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := client().R().
				SetContext(cmd.Context()).
				Get("/recurring/" + args[0])

			return call(cmd, r, err)
		},
	}
}

func recurringTickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tick <id>",
		Short: "execute the next installment now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := client().R().
				SetContext(cmd.Context()).
				Post("/recurring/" + args[0] + "/installments")

			return call(cmd, r, err)
		},
	}
}

func recurringRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <id>",
		Short: "revoke a recurring grant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := client().R().
				SetContext(cmd.Context()).
				Delete("/recurring/" + args[0])

			return call(cmd, r, err)
		},
	}
}
