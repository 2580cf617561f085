package main

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kwakudarkwa/momoflow/internal/cli"
	"github.com/kwakudarkwa/momoflow/internal/model"
	"github.com/kwakudarkwa/momoflow/internal/momo"
)

// movementFlags are shared by the three money movement commands.
type movementFlags struct {
	party      string
	currency   string
	message    string
	note       string
	externalID string
	amount     float64
}

func (f *movementFlags) register(cmd *cobra.Command, partyUsage string) {
	cmd.Flags().Float64Var(&f.amount, "amount", 0, "amount to move")
	cmd.Flags().StringVar(&f.party, "party", "", partyUsage)
	cmd.Flags().StringVar(&f.currency, "currency", "", "ISO currency code (default from config)")
	cmd.Flags().StringVar(&f.message, "message", "", "message shown to the payer")
	cmd.Flags().StringVar(&f.note, "note", "", "note shown to the payee")
	cmd.Flags().StringVar(&f.externalID, "external-id", "", "your reconciliation id (generated if empty)")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("party")
}

func (f *movementFlags) normalize(defaultCurrency string) {
	if f.currency == "" {
		f.currency = defaultCurrency
	}
	if f.externalID == "" {
		f.externalID = "ext_" + uuid.NewString()
	}
}

// printResult renders an API response map as indented JSON.
func printResult(result map[string]any) error {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func payCmd() *cobra.Command {
	var flags movementFlags
	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Request a payment from a customer (collections)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			gateway, err := initGateway()
			if err != nil {
				return err
			}
			flags.normalize(gateway.Config().DefaultCurrency)

			result, err := momo.NewCollections(gateway).RequestToPay(cmd.Context(),
				flags.externalID, flags.party, flags.amount, flags.currency, flags.message, flags.note)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("payment requested from %s", flags.party)))
			return printResult(result)
		},
	}
	flags.register(cmd, "payer MSISDN, e.g. 233555000111")
	return cmd
}

func transferCmd() *cobra.Command {
	var flags movementFlags
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Send money to a recipient (disbursements)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			gateway, err := initGateway()
			if err != nil {
				return err
			}
			flags.normalize(gateway.Config().DefaultCurrency)

			result, err := momo.NewDisbursements(gateway).Transfer(cmd.Context(),
				flags.externalID, flags.party, flags.amount, flags.currency, flags.message, flags.note)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("transfer initiated to %s", flags.party)))
			return printResult(result)
		},
	}
	flags.register(cmd, "payee MSISDN")
	return cmd
}

func remitCmd() *cobra.Command {
	var flags movementFlags
	cmd := &cobra.Command{
		Use:   "remit",
		Short: "Send an international remittance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			gateway, err := initGateway()
			if err != nil {
				return err
			}
			flags.normalize(gateway.Config().DefaultCurrency)

			result, err := momo.NewRemittances(gateway).Transfer(cmd.Context(),
				flags.externalID, flags.party, flags.amount, flags.currency, flags.message, flags.note)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("remittance initiated to %s", flags.party)))
			return printResult(result)
		},
	}
	flags.register(cmd, "recipient MSISDN")
	return cmd
}

func statusCmd() *cobra.Command {
	var product string
	cmd := &cobra.Command{
		Use:   "status <reference-id>",
		Short: "Look up a transaction's status on one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gateway, err := initGateway()
			if err != nil {
				return err
			}

			referenceID := args[0]
			var result map[string]any
			switch model.Product(product) {
			case model.ProductCollection:
				result, err = momo.NewCollections(gateway).GetTransactionStatus(cmd.Context(), referenceID)
			case model.ProductDisbursement:
				result, err = momo.NewDisbursements(gateway).GetTransactionStatus(cmd.Context(), referenceID)
			case model.ProductRemittance:
				result, err = momo.NewRemittances(gateway).GetTransactionStatus(cmd.Context(), referenceID)
			default:
				return fmt.Errorf("unknown product %q: use collection, disbursement or remittance", product)
			}
			if err != nil {
				return err
			}

			if status, ok := result["status"].(string); ok {
				recordLedgerStatus(cmd.Context(), referenceID, status)
			}
			return printResult(result)
		},
	}
	cmd.Flags().StringVar(&product, "product", string(model.ProductCollection), "product the transaction was created on")
	return cmd
}

func balanceCmd() *cobra.Command {
	var product string
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the account balance for one product",
		RunE: func(cmd *cobra.Command, _ []string) error {
			gateway, err := initGateway()
			if err != nil {
				return err
			}

			var result map[string]any
			switch model.Product(product) {
			case model.ProductCollection:
				result, err = momo.NewCollections(gateway).GetAccountBalance(cmd.Context())
			case model.ProductDisbursement:
				result, err = momo.NewDisbursements(gateway).GetAccountBalance(cmd.Context())
			case model.ProductRemittance:
				result, err = momo.NewRemittances(gateway).GetAccountBalance(cmd.Context())
			default:
				return fmt.Errorf("unknown product %q: use collection, disbursement or remittance", product)
			}
			if err != nil {
				return err
			}
			return printResult(result)
		},
	}
	cmd.Flags().StringVar(&product, "product", string(model.ProductCollection), "product account to inspect")
	return cmd
}
