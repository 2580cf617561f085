package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kwakudarkwa/momoflow/internal/cli"
	"github.com/kwakudarkwa/momoflow/internal/model"
)

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <transaction-id>",
		Short: "AI analysis of a transaction across all products",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, cleanup, err := initOrchestrator(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			analysis, err := orch.AnalyzeTransaction(cmd.Context(), args[0], "")
			if err != nil {
				return err
			}
			fmt.Println(cli.RenderBox(cli.RobotIcon+" Transaction Analysis", analysis))
			return nil
		},
	}
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <command...>",
		Short: "Execute a natural language payment command",
		Long: `Parses a plain English instruction into a payment operation and runs it.

Example:
  momoflow ask "request 50 GHS from 233555000111 for invoice 42"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, cleanup, err := initOrchestrator(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := orch.ParseNaturalLanguageCommand(cmd.Context(), strings.Join(args, " "), "")
			if err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess("command executed"))
			return printResult(result)
		},
	}
}

func monitorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Scan the last week of transactions for anomalies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			orch, cleanup, err := initOrchestrator(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			anomalies, err := orch.MonitorTransactions(cmd.Context(), "")
			if err != nil {
				return err
			}

			if len(anomalies) == 0 {
				fmt.Println(cli.FormatSuccess("no anomalies detected"))
				return nil
			}
			for _, a := range anomalies {
				fmt.Println(cli.FormatWarning(fmt.Sprintf("[%s] %s: %s", a.Severity, a.Type, a.Details)))
			}
			return nil
		},
	}
}

func reportCmd() *cobra.Command {
	var fromStr, toStr string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate an AI transaction report for a period",
		RunE: func(cmd *cobra.Command, _ []string) error {
			end := time.Now()
			start := end.AddDate(0, 0, -30)
			var err error
			if fromStr != "" {
				if start, err = time.Parse("2006-01-02", fromStr); err != nil {
					return fmt.Errorf("invalid --from date: %w", err)
				}
			}
			if toStr != "" {
				if end, err = time.Parse("2006-01-02", toStr); err != nil {
					return fmt.Errorf("invalid --to date: %w", err)
				}
			}

			orch, cleanup, err := initOrchestrator(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := orch.GenerateReport(cmd.Context(), start, end)
			if err != nil {
				return err
			}
			fmt.Println(cli.RenderBox(cli.ChartIcon+" Transaction Report", report))
			return nil
		},
	}
	cmd.Flags().StringVar(&fromStr, "from", "", "period start (YYYY-MM-DD, default 30 days ago)")
	cmd.Flags().StringVar(&toStr, "to", "", "period end (YYYY-MM-DD, default now)")
	return cmd
}

func forecastCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Project cash flow from recent transaction history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			orch, cleanup, err := initOrchestrator(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			forecast, err := orch.ForecastCashFlow(cmd.Context(), time.Duration(days)*24*time.Hour, "")
			if err != nil {
				return err
			}
			fmt.Println(cli.RenderBox(cli.ChartIcon+" Cash Flow Forecast", forecast))
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "days of history to base the forecast on")
	return cmd
}

func scheduleCmd() *cobra.Command {
	var (
		party    string
		currency string
		amount   float64
	)
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Disburse at an AI-suggested optimal time",
		RunE: func(cmd *cobra.Command, _ []string) error {
			orch, cleanup, err := initOrchestrator(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := orch.ScheduleDisbursement(cmd.Context(), amount, party, currency, "")
			if err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("scheduled transfer to %s", party)))
			return printResult(result)
		},
	}
	cmd.Flags().Float64Var(&amount, "amount", 0, "amount to transfer")
	cmd.Flags().StringVar(&party, "party", "", "payee MSISDN")
	cmd.Flags().StringVar(&currency, "currency", "", "ISO currency code (default from config)")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("party")
	return cmd
}

func retryCmd() *cobra.Command {
	var flags movementFlags
	var product string
	cmd := &cobra.Command{
		Use:   "retry",
		Short: "Retry a failed transaction with an AI-suggested strategy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			orch, cleanup, err := initOrchestrator(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := orch.SmartRetry(cmd.Context(), model.FailedTransaction{
				Product:      model.Product(product),
				ExternalID:   flags.externalID,
				PartyID:      flags.party,
				Amount:       flags.amount,
				Currency:     flags.currency,
				PayerMessage: flags.message,
				PayeeNote:    flags.note,
			}, "")
			if err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess("retry dispatched"))
			return printResult(result)
		},
	}
	flags.register(cmd, "counterparty MSISDN")
	cmd.Flags().StringVar(&product, "product", "", "product the transaction originally targeted")
	_ = cmd.MarkFlagRequired("product")
	_ = cmd.MarkFlagRequired("external-id")
	return cmd
}

func optimizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "optimize <endpoint>",
		Short: "Suggest optimal call timing for an API endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, cleanup, err := initOrchestrator(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			advice, err := orch.OptimizeAPICalls(cmd.Context(), args[0], "")
			if err != nil {
				return err
			}
			fmt.Println(cli.RenderBox(cli.InfoIcon+" API Call Optimization", advice))
			return nil
		},
	}
}

func explainCmd() *cobra.Command {
	var errContext string
	cmd := &cobra.Command{
		Use:   "explain <error-code>",
		Short: "Explain a MoMo API error code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, cleanup, err := initOrchestrator(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := orch.HandleError(cmd.Context(), args[0], errContext, "")
			if err != nil {
				return err
			}
			return printResult(result)
		},
	}
	cmd.Flags().StringVar(&errContext, "context", "", "additional context about the failure")
	return cmd
}
