package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := &cobra.Command{
		Use:     "openpay-cli",
		Short:   "drive the openpay engine from the terminal",
		Version: versioninfo.Short(),
	}

	root.PersistentFlags().String("endpoint", "http://localhost:8080/api", "openpay server endpoint")
	if err := viper.BindPFlag("endpoint", root.PersistentFlags().Lookup("endpoint")); err != nil {
		log.Panicln(err)
	}

	root.AddCommand(payCmd())
	root.AddCommand(transactionCmd())
	root.AddCommand(recurringCmd())
	root.AddCommand(walletCmd())

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func client() *resty.Client {
	return resty.New().
		SetBaseURL(viper.GetString("endpoint")).
		SetTimeout(time.Minute)
}

func jsonPrint(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func call(cmd *cobra.Command, r *resty.Response, err error) error {
	if err != nil {
		return err
	}

	var body map[string]any
	if err := json.Unmarshal(r.Body(), &body); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if r.IsError() {
		return fmt.Errorf("%s: %v", r.Status(), body["error"])
	}

	return jsonPrint(cmd, body)
}
