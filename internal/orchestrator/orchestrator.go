// Package orchestrator composes the product clients, the LLM factory, the
// ledger and the notifier into the cross-cutting workflows consumed by the
// CLI and by embedding applications.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kwakudarkwa/momoflow/internal/llm"
	"github.com/kwakudarkwa/momoflow/internal/model"
	"github.com/kwakudarkwa/momoflow/internal/service"
)

// CollectionsClient is the slice of the collections product used by the
// orchestrator.
type CollectionsClient interface {
	RequestToPay(ctx context.Context, externalID, partyID string, amount float64, currency, payerMessage, payeeNote string) (map[string]any, error)
	GetTransactionStatus(ctx context.Context, referenceID string) (map[string]any, error)
}

// DisbursementsClient is the slice of the disbursements product used by the
// orchestrator.
type DisbursementsClient interface {
	Transfer(ctx context.Context, externalID, partyID string, amount float64, currency, payerMessage, payeeNote string) (map[string]any, error)
	GetTransactionStatus(ctx context.Context, referenceID string) (map[string]any, error)
}

// RemittancesClient is the slice of the remittances product used by the
// orchestrator.
type RemittancesClient interface {
	Transfer(ctx context.Context, externalID, partyID string, amount float64, currency, payerMessage, payeeNote string) (map[string]any, error)
	GetTransactionStatus(ctx context.Context, referenceID string) (map[string]any, error)
}

// Factory produces LLM clients by backend name.
type Factory interface {
	Create(name string) (llm.Client, error)
	CreateReporting() (llm.Client, error)
}

// Options configures an Orchestrator. Any product client may be nil; absent
// products are simply skipped in multi-product fan-outs. Storage is
// required only by the history-based workflows; Notifier only by
// MonitorTransactions.
type Options struct {
	Collections     CollectionsClient
	Disbursements   DisbursementsClient
	Remittances     RemittancesClient
	Factory         Factory
	Storage         service.Storage
	Notifier        service.Notifier
	Logger          *slog.Logger
	DefaultCurrency string
}

// Orchestrator implements the workflow facade. Each workflow is a short
// synchronous pipeline; the orchestrator itself holds no mutable state.
type Orchestrator struct {
	collections   CollectionsClient
	disbursements DisbursementsClient
	remittances   RemittancesClient
	factory       Factory
	storage       service.Storage
	notifier      service.Notifier
	logger        *slog.Logger
	now           func() time.Time
	currency      string
}

// New creates an orchestrator from options.
func New(opts Options) (*Orchestrator, error) {
	if opts.Factory == nil {
		return nil, fmt.Errorf("LLM factory is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	currency := opts.DefaultCurrency
	if currency == "" {
		currency = "EUR"
	}
	return &Orchestrator{
		collections:   opts.Collections,
		disbursements: opts.Disbursements,
		remittances:   opts.Remittances,
		factory:       opts.Factory,
		storage:       opts.Storage,
		notifier:      opts.Notifier,
		logger:        logger.With("component", "orchestrator"),
		now:           time.Now,
		currency:      currency,
	}, nil
}

// TransactionDetails aggregates one transaction's status across all
// configured products. A product whose lookup fails contributes no entry
// rather than aborting the aggregate (swallow-and-omit).
func (o *Orchestrator) TransactionDetails(ctx context.Context, transactionID string) map[string]any {
	details, _ := o.transactionDetails(ctx, transactionID, false)
	return details
}

// TransactionDetailsStrict is the fail-fast variant: the first product
// lookup error aborts the aggregate.
func (o *Orchestrator) TransactionDetailsStrict(ctx context.Context, transactionID string) (map[string]any, error) {
	return o.transactionDetails(ctx, transactionID, true)
}

func (o *Orchestrator) transactionDetails(ctx context.Context, transactionID string, strict bool) (map[string]any, error) {
	type lookup struct {
		fetch func(context.Context, string) (map[string]any, error)
		key   string
	}

	var lookups []lookup
	if o.collections != nil {
		lookups = append(lookups, lookup{key: "collection", fetch: o.collections.GetTransactionStatus})
	}
	if o.disbursements != nil {
		lookups = append(lookups, lookup{key: "disbursement", fetch: o.disbursements.GetTransactionStatus})
	}
	if o.remittances != nil {
		lookups = append(lookups, lookup{key: "remittance", fetch: o.remittances.GetTransactionStatus})
	}

	details := make(map[string]any)
	for _, l := range lookups {
		status, err := l.fetch(ctx, transactionID)
		if err != nil {
			if strict {
				return nil, fmt.Errorf("%s status lookup failed: %w", l.key, err)
			}
			o.logger.Debug("product status lookup omitted from aggregate",
				"product", l.key,
				"transaction_id", transactionID,
				"error", err)
			continue
		}
		details[l.key] = status
	}
	return details, nil
}

// AnalyzeTransaction aggregates a transaction's status across products and
// asks the selected model for an analysis. An empty modelName selects the
// configured default backend.
func (o *Orchestrator) AnalyzeTransaction(ctx context.Context, transactionID, modelName string) (string, error) {
	details := o.TransactionDetails(ctx, transactionID)

	client, err := o.factory.Create(modelName)
	if err != nil {
		return "", err
	}
	return client.Analyze(ctx, details)
}

// DetectFraud asks the selected model for a fraud assessment of the given
// transaction data.
func (o *Orchestrator) DetectFraud(ctx context.Context, data any, modelName string) (string, error) {
	client, err := o.factory.Create(modelName)
	if err != nil {
		return "", err
	}
	return client.DetectFraud(ctx, data)
}

// SmartRetry asks the selected model for a retry strategy, then dispatches
// exactly one new attempt on the product the transaction originally
// targeted. The strategy is advisory; no retry loop is performed.
func (o *Orchestrator) SmartRetry(ctx context.Context, failed model.FailedTransaction, modelName string) (map[string]any, error) {
	client, err := o.factory.Create(modelName)
	if err != nil {
		return nil, err
	}

	strategy, err := client.SuggestRetryStrategy(ctx, failed)
	if err != nil {
		return nil, err
	}
	if failed.Currency == "" {
		failed.Currency = o.currency
	}
	o.logger.Info("retrying failed transaction",
		"product", failed.Product,
		"external_id", failed.ExternalID,
		"strategy", strategy)

	var result map[string]any
	switch failed.Product {
	case model.ProductCollection:
		if o.collections == nil {
			return nil, fmt.Errorf("collections client not configured")
		}
		result, err = o.collections.RequestToPay(ctx, failed.ExternalID, failed.PartyID, failed.Amount, failed.Currency, failed.PayerMessage, failed.PayeeNote)
	case model.ProductDisbursement:
		if o.disbursements == nil {
			return nil, fmt.Errorf("disbursements client not configured")
		}
		result, err = o.disbursements.Transfer(ctx, failed.ExternalID, failed.PartyID, failed.Amount, failed.Currency, failed.PayerMessage, failed.PayeeNote)
	case model.ProductRemittance:
		if o.remittances == nil {
			return nil, fmt.Errorf("remittances client not configured")
		}
		result, err = o.remittances.Transfer(ctx, failed.ExternalID, failed.PartyID, failed.Amount, failed.Currency, failed.PayerMessage, failed.PayeeNote)
	default:
		return nil, fmt.Errorf("unknown product %q in failed transaction", failed.Product)
	}
	if err != nil {
		return nil, err
	}

	o.recordMovement(ctx, result, model.Transaction{
		ExternalID:   failed.ExternalID,
		Product:      failed.Product,
		PartyID:      failed.PartyID,
		Amount:       failed.Amount,
		Currency:     failed.Currency,
		PayerMessage: failed.PayerMessage,
		PayeeNote:    failed.PayeeNote,
	})
	return result, nil
}

// ScheduleDisbursement asks the selected model for an optimal transfer time
// and immediately issues the transfer with a note embedding that time. The
// scheduling is advisory text, not deferred execution.
func (o *Orchestrator) ScheduleDisbursement(ctx context.Context, amount float64, recipient, currency, modelName string) (map[string]any, error) {
	if o.disbursements == nil {
		return nil, fmt.Errorf("disbursements client not configured")
	}

	client, err := o.factory.Create(modelName)
	if err != nil {
		return nil, err
	}

	optimalTime, err := client.SuggestDisbursementTime(ctx, amount, recipient)
	if err != nil {
		return nil, err
	}

	if currency == "" {
		currency = o.currency
	}
	externalID := "ext_" + uuid.NewString()
	payeeNote := "Scheduled at " + optimalTime

	result, err := o.disbursements.Transfer(ctx, externalID, recipient, amount, currency, "Scheduled Transfer", payeeNote)
	if err != nil {
		return nil, err
	}

	o.recordMovement(ctx, result, model.Transaction{
		ExternalID:   externalID,
		Product:      model.ProductDisbursement,
		PartyID:      recipient,
		Amount:       amount,
		Currency:     currency,
		PayerMessage: "Scheduled Transfer",
		PayeeNote:    payeeNote,
	})
	return result, nil
}

// monitorWindow is how far back MonitorTransactions looks.
const monitorWindow = 7 * 24 * time.Hour

// MonitorTransactions feeds the last seven days of ledger entries to the
// selected model and forwards each detected anomaly to the notifier.
func (o *Orchestrator) MonitorTransactions(ctx context.Context, modelName string) ([]model.Anomaly, error) {
	if o.storage == nil {
		return nil, fmt.Errorf("storage not configured")
	}

	end := o.now()
	recent, err := o.storage.GetTransactionsByPeriod(ctx, end.Add(-monitorWindow), end)
	if err != nil {
		return nil, err
	}

	client, err := o.factory.Create(modelName)
	if err != nil {
		return nil, err
	}

	anomalies, err := client.DetectAnomalies(ctx, recent)
	if err != nil {
		return nil, err
	}

	for _, anomaly := range anomalies {
		if o.notifier == nil {
			o.logger.Warn("anomaly detected but no notifier configured", "type", anomaly.Type)
			continue
		}
		if err := o.notifier.NotifyAnomaly(ctx, anomaly); err != nil {
			return anomalies, fmt.Errorf("failed to notify anomaly: %w", err)
		}
	}
	return anomalies, nil
}

// ForecastCashFlow feeds the given timeframe of ledger history to the
// selected model and returns its projection.
func (o *Orchestrator) ForecastCashFlow(ctx context.Context, timeframe time.Duration, modelName string) (string, error) {
	if o.storage == nil {
		return "", fmt.Errorf("storage not configured")
	}

	end := o.now()
	history, err := o.storage.GetTransactionsByPeriod(ctx, end.Add(-timeframe), end)
	if err != nil {
		return "", err
	}

	client, err := o.factory.Create(modelName)
	if err != nil {
		return "", err
	}
	return client.ForecastCashFlow(ctx, history)
}

// GenerateReport asks the configured reporting backend for a report over
// the ledger entries in [start, end).
func (o *Orchestrator) GenerateReport(ctx context.Context, start, end time.Time) (string, error) {
	if o.storage == nil {
		return "", fmt.Errorf("storage not configured")
	}

	history, err := o.storage.GetTransactionsByPeriod(ctx, start, end)
	if err != nil {
		return "", err
	}

	client, err := o.factory.CreateReporting()
	if err != nil {
		return "", err
	}
	return client.GenerateReport(ctx, history)
}

// ParseNaturalLanguageCommand asks the selected model to parse a command,
// then dispatches the product operation its action field names.
func (o *Orchestrator) ParseNaturalLanguageCommand(ctx context.Context, command, modelName string) (map[string]any, error) {
	client, err := o.factory.Create(modelName)
	if err != nil {
		return nil, err
	}

	parsed, err := client.ParseCommand(ctx, command)
	if err != nil {
		return nil, err
	}
	return o.executeCommand(ctx, parsed)
}

// executeCommand dispatches one parsed command to a product client.
func (o *Orchestrator) executeCommand(ctx context.Context, cmd model.ParsedCommand) (map[string]any, error) {
	if cmd.Currency == "" {
		cmd.Currency = o.currency
	}
	if cmd.ExternalID == "" {
		cmd.ExternalID = "ext_" + uuid.NewString()
	}

	var (
		result  map[string]any
		product model.Product
		err     error
	)
	switch cmd.Action {
	case "requestToPay":
		if o.collections == nil {
			return nil, fmt.Errorf("collections client not configured")
		}
		product = model.ProductCollection
		result, err = o.collections.RequestToPay(ctx, cmd.ExternalID, cmd.PartyID, cmd.Amount, cmd.Currency, cmd.PayerMessage, cmd.PayeeNote)
	case "transfer":
		if o.disbursements == nil {
			return nil, fmt.Errorf("disbursements client not configured")
		}
		product = model.ProductDisbursement
		result, err = o.disbursements.Transfer(ctx, cmd.ExternalID, cmd.PartyID, cmd.Amount, cmd.Currency, cmd.PayerMessage, cmd.PayeeNote)
	case "remit":
		if o.remittances == nil {
			return nil, fmt.Errorf("remittances client not configured")
		}
		product = model.ProductRemittance
		result, err = o.remittances.Transfer(ctx, cmd.ExternalID, cmd.PartyID, cmd.Amount, cmd.Currency, cmd.PayerMessage, cmd.PayeeNote)
	default:
		return nil, fmt.Errorf("unsupported command action %q", cmd.Action)
	}
	if err != nil {
		return nil, err
	}

	o.recordMovement(ctx, result, model.Transaction{
		ExternalID:   cmd.ExternalID,
		Product:      product,
		PartyID:      cmd.PartyID,
		Amount:       cmd.Amount,
		Currency:     cmd.Currency,
		PayerMessage: cmd.PayerMessage,
		PayeeNote:    cmd.PayeeNote,
	})
	return result, nil
}

// OptimizeAPICalls summarizes the last day of ledger activity for an
// endpoint and asks the selected model for call-timing suggestions.
func (o *Orchestrator) OptimizeAPICalls(ctx context.Context, endpoint, modelName string) (string, error) {
	if o.storage == nil {
		return "", fmt.Errorf("storage not configured")
	}

	end := o.now()
	transactions, err := o.storage.GetTransactionsByPeriod(ctx, end.Add(-24*time.Hour), end)
	if err != nil {
		return "", err
	}

	failed := 0
	for _, txn := range transactions {
		if txn.Status == model.StatusFailed {
			failed++
		}
	}
	total := len(transactions)
	errorRate := 0.0
	if total > 0 {
		errorRate = float64(failed) / float64(total)
	}

	usage := map[string]any{
		"endpoint":    endpoint,
		"calls_today": total,
		"error_rate":  errorRate,
	}

	client, err := o.factory.Create(modelName)
	if err != nil {
		return "", err
	}
	return client.SuggestOptimalCallTimes(ctx, usage)
}

// HandleError asks the selected model to explain a provider error code and
// wraps the explanation in a structured response.
func (o *Orchestrator) HandleError(ctx context.Context, errorCode string, errContext any, modelName string) (map[string]any, error) {
	client, err := o.factory.Create(modelName)
	if err != nil {
		return nil, err
	}

	explanation, err := client.ExplainError(ctx, errorCode, errContext)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"error":     true,
		"message":   explanation,
		"timestamp": o.now().Format(time.RFC3339),
	}, nil
}

// recordMovement writes a successful money movement to the ledger. Ledger
// failures never fail the movement that already happened; they are logged.
func (o *Orchestrator) recordMovement(ctx context.Context, result map[string]any, txn model.Transaction) {
	if o.storage == nil {
		return
	}

	referenceID, _ := result["referenceId"].(string)
	if referenceID == "" {
		return
	}
	txn.ReferenceID = referenceID
	txn.Status = model.StatusPending
	txn.Date = o.now()

	if err := o.storage.SaveTransaction(ctx, txn); err != nil {
		o.logger.Warn("failed to record transaction in ledger",
			"reference_id", referenceID,
			"error", err)
	}
}
