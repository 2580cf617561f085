package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwakudarkwa/momoflow/internal/llm"
	"github.com/kwakudarkwa/momoflow/internal/model"
)

// movementCall records one money movement dispatched to a fake product client.
type movementCall struct {
	externalID   string
	partyID      string
	currency     string
	payerMessage string
	payeeNote    string
	amount       float64
}

type fakeProduct struct {
	statusResult map[string]any
	statusErr    error
	moveResult   map[string]any
	moveErr      error
	moves        []movementCall
	statusIDs    []string
}

func (f *fakeProduct) move(externalID, partyID string, amount float64, currency, payerMessage, payeeNote string) (map[string]any, error) {
	f.moves = append(f.moves, movementCall{
		externalID:   externalID,
		partyID:      partyID,
		amount:       amount,
		currency:     currency,
		payerMessage: payerMessage,
		payeeNote:    payeeNote,
	})
	return f.moveResult, f.moveErr
}

func (f *fakeProduct) RequestToPay(_ context.Context, externalID, partyID string, amount float64, currency, payerMessage, payeeNote string) (map[string]any, error) {
	return f.move(externalID, partyID, amount, currency, payerMessage, payeeNote)
}

func (f *fakeProduct) Transfer(_ context.Context, externalID, partyID string, amount float64, currency, payerMessage, payeeNote string) (map[string]any, error) {
	return f.move(externalID, partyID, amount, currency, payerMessage, payeeNote)
}

func (f *fakeProduct) GetTransactionStatus(_ context.Context, referenceID string) (map[string]any, error) {
	f.statusIDs = append(f.statusIDs, referenceID)
	return f.statusResult, f.statusErr
}

// fakeLLM implements llm.Client with canned responses, recording the data
// each capability received.
type fakeLLM struct {
	text       string
	err        error
	parsed     model.ParsedCommand
	anomalies  []model.Anomaly
	lastData   any
	lastPrompt string
}

func (f *fakeLLM) Analyze(_ context.Context, data any) (string, error) {
	f.lastData = data
	return f.text, f.err
}

func (f *fakeLLM) DetectFraud(_ context.Context, data any) (string, error) {
	f.lastData = data
	return f.text, f.err
}

func (f *fakeLLM) SuggestRetryStrategy(_ context.Context, data any) (string, error) {
	f.lastData = data
	return f.text, f.err
}

func (f *fakeLLM) ForecastCashFlow(_ context.Context, data any) (string, error) {
	f.lastData = data
	return f.text, f.err
}

func (f *fakeLLM) ParseCommand(_ context.Context, command string) (model.ParsedCommand, error) {
	f.lastPrompt = command
	return f.parsed, f.err
}

func (f *fakeLLM) GenerateReport(_ context.Context, data any) (string, error) {
	f.lastData = data
	return f.text, f.err
}

func (f *fakeLLM) SuggestDisbursementTime(_ context.Context, amount float64, recipient string) (string, error) {
	f.lastData = map[string]any{"amount": amount, "recipient": recipient}
	return f.text, f.err
}

func (f *fakeLLM) DetectAnomalies(_ context.Context, data any) ([]model.Anomaly, error) {
	f.lastData = data
	return f.anomalies, f.err
}

func (f *fakeLLM) SuggestOptimalCallTimes(_ context.Context, data any) (string, error) {
	f.lastData = data
	return f.text, f.err
}

func (f *fakeLLM) ExplainError(_ context.Context, errorCode string, errContext any) (string, error) {
	f.lastData = map[string]any{"code": errorCode, "context": errContext}
	return f.text, f.err
}

type fakeFactory struct {
	client       *fakeLLM
	reporting    *fakeLLM
	createErr    error
	createdNames []string
}

func (f *fakeFactory) Create(name string) (llm.Client, error) {
	f.createdNames = append(f.createdNames, name)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.client, nil
}

func (f *fakeFactory) CreateReporting() (llm.Client, error) {
	if f.reporting != nil {
		return f.reporting, nil
	}
	return f.client, f.createErr
}

type fakeStorage struct {
	saved   []model.Transaction
	history []model.Transaction
	queries [][2]time.Time
	err     error
}

func (f *fakeStorage) SaveTransaction(_ context.Context, txn model.Transaction) error {
	f.saved = append(f.saved, txn)
	return f.err
}

func (f *fakeStorage) UpdateTransactionStatus(context.Context, string, string) error {
	return f.err
}

func (f *fakeStorage) GetTransactionsByPeriod(_ context.Context, start, end time.Time) ([]model.Transaction, error) {
	f.queries = append(f.queries, [2]time.Time{start, end})
	return f.history, f.err
}

func (f *fakeStorage) Migrate(context.Context) error { return nil }
func (f *fakeStorage) Close() error                  { return nil }

type fakeNotifier struct {
	notified []model.Anomaly
	err      error
}

func (f *fakeNotifier) NotifyAnomaly(_ context.Context, anomaly model.Anomaly) error {
	f.notified = append(f.notified, anomaly)
	return f.err
}

type fixture struct {
	orch          *Orchestrator
	collections   *fakeProduct
	disbursements *fakeProduct
	remittances   *fakeProduct
	factory       *fakeFactory
	storage       *fakeStorage
	notifier      *fakeNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		collections:   &fakeProduct{},
		disbursements: &fakeProduct{},
		remittances:   &fakeProduct{},
		factory:       &fakeFactory{client: &fakeLLM{text: "analysis"}},
		storage:       &fakeStorage{},
		notifier:      &fakeNotifier{},
	}
	orch, err := New(Options{
		Collections:     f.collections,
		Disbursements:   f.disbursements,
		Remittances:     f.remittances,
		Factory:         f.factory,
		Storage:         f.storage,
		Notifier:        f.notifier,
		DefaultCurrency: "EUR",
	})
	require.NoError(t, err)
	f.orch = orch
	return f
}

func TestNewRequiresFactory(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "factory")
}

func TestTransactionDetailsAggregatesAcrossProducts(t *testing.T) {
	f := newFixture(t)
	f.collections.statusResult = map[string]any{"status": "SUCCESSFUL"}
	f.disbursements.statusResult = map[string]any{"status": "PENDING"}
	f.remittances.statusResult = map[string]any{"status": "FAILED"}

	details := f.orch.TransactionDetails(context.Background(), "txn-1")

	require.Len(t, details, 3)
	assert.Equal(t, map[string]any{"status": "SUCCESSFUL"}, details["collection"])
	assert.Equal(t, map[string]any{"status": "PENDING"}, details["disbursement"])
	assert.Equal(t, map[string]any{"status": "FAILED"}, details["remittance"])
	assert.Equal(t, []string{"txn-1"}, f.collections.statusIDs)
}

func TestTransactionDetailsOmitsFailedProducts(t *testing.T) {
	f := newFixture(t)
	f.collections.statusErr = fmt.Errorf("boom")
	f.disbursements.statusResult = map[string]any{"status": "PENDING"}
	f.remittances.statusErr = fmt.Errorf("boom")

	details := f.orch.TransactionDetails(context.Background(), "txn-1")

	require.Len(t, details, 1)
	assert.Contains(t, details, "disbursement")
}

func TestTransactionDetailsSkipsAbsentProducts(t *testing.T) {
	factory := &fakeFactory{client: &fakeLLM{}}
	disbursements := &fakeProduct{statusResult: map[string]any{"status": "PENDING"}}
	orch, err := New(Options{Disbursements: disbursements, Factory: factory})
	require.NoError(t, err)

	details := orch.TransactionDetails(context.Background(), "txn-1")

	require.Len(t, details, 1)
	assert.Contains(t, details, "disbursement")
}

func TestTransactionDetailsStrictFailsFast(t *testing.T) {
	f := newFixture(t)
	f.collections.statusErr = fmt.Errorf("boom")

	_, err := f.orch.TransactionDetailsStrict(context.Background(), "txn-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "collection")
}

func TestAnalyzeTransaction(t *testing.T) {
	f := newFixture(t)
	f.collections.statusResult = map[string]any{"status": "SUCCESSFUL"}
	f.factory.client.text = "looks healthy"

	got, err := f.orch.AnalyzeTransaction(context.Background(), "txn-1", "claude")

	require.NoError(t, err)
	assert.Equal(t, "looks healthy", got)
	assert.Equal(t, []string{"claude"}, f.factory.createdNames)

	data, ok := f.factory.client.lastData.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, data, "collection")
}

func TestAnalyzeTransactionUnknownModel(t *testing.T) {
	f := newFixture(t)
	f.factory.createErr = fmt.Errorf("unsupported LLM model: nope")

	_, err := f.orch.AnalyzeTransaction(context.Background(), "txn-1", "nope")
	require.Error(t, err)
}

func TestSmartRetryDispatchesByProduct(t *testing.T) {
	failed := model.FailedTransaction{
		Product:      model.ProductCollection,
		ExternalID:   "ext-9",
		PartyID:      "233555000111",
		Amount:       42,
		Currency:     "GHS",
		PayerMessage: "retry",
		PayeeNote:    "retry",
	}

	f := newFixture(t)
	f.collections.moveResult = map[string]any{"referenceId": "ref-new"}

	result, err := f.orch.SmartRetry(context.Background(), failed, "")

	require.NoError(t, err)
	assert.Equal(t, "ref-new", result["referenceId"])
	require.Len(t, f.collections.moves, 1)
	assert.Equal(t, "ext-9", f.collections.moves[0].externalID)
	assert.Equal(t, 42.0, f.collections.moves[0].amount)
	assert.Empty(t, f.disbursements.moves)
	assert.Empty(t, f.remittances.moves)

	require.Len(t, f.storage.saved, 1)
	assert.Equal(t, "ref-new", f.storage.saved[0].ReferenceID)
	assert.Equal(t, model.ProductCollection, f.storage.saved[0].Product)
	assert.Equal(t, model.StatusPending, f.storage.saved[0].Status)
}

func TestSmartRetryUnknownProduct(t *testing.T) {
	f := newFixture(t)

	_, err := f.orch.SmartRetry(context.Background(), model.FailedTransaction{Product: "airtime"}, "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown product")
	assert.Empty(t, f.collections.moves)
}

func TestSmartRetryStrategyErrorAbortsRetry(t *testing.T) {
	f := newFixture(t)
	f.factory.client.err = fmt.Errorf("rate limited")

	_, err := f.orch.SmartRetry(context.Background(), model.FailedTransaction{Product: model.ProductCollection}, "")

	require.Error(t, err)
	assert.Empty(t, f.collections.moves)
}

func TestScheduleDisbursement(t *testing.T) {
	f := newFixture(t)
	f.factory.client.text = "Tuesday 09:00 UTC"
	f.disbursements.moveResult = map[string]any{"referenceId": "ref-sched"}

	result, err := f.orch.ScheduleDisbursement(context.Background(), 500, "256770000111", "", "gemini")

	require.NoError(t, err)
	assert.Equal(t, "ref-sched", result["referenceId"])
	require.Len(t, f.disbursements.moves, 1)

	call := f.disbursements.moves[0]
	assert.True(t, strings.HasPrefix(call.externalID, "ext_"), "external id %q", call.externalID)
	assert.Equal(t, "256770000111", call.partyID)
	assert.Equal(t, "EUR", call.currency, "default currency applied")
	assert.Equal(t, "Scheduled Transfer", call.payerMessage)
	assert.Contains(t, call.payeeNote, "Tuesday 09:00 UTC")

	require.Len(t, f.storage.saved, 1)
	assert.Equal(t, "ref-sched", f.storage.saved[0].ReferenceID)
}

func TestScheduleDisbursementGeneratesUniqueExternalIDs(t *testing.T) {
	f := newFixture(t)
	f.disbursements.moveResult = map[string]any{"referenceId": "ref"}

	_, err := f.orch.ScheduleDisbursement(context.Background(), 1, "p", "USD", "")
	require.NoError(t, err)
	_, err = f.orch.ScheduleDisbursement(context.Background(), 1, "p", "USD", "")
	require.NoError(t, err)

	require.Len(t, f.disbursements.moves, 2)
	assert.NotEqual(t, f.disbursements.moves[0].externalID, f.disbursements.moves[1].externalID)
}

func TestMonitorTransactionsNotifiesEachAnomaly(t *testing.T) {
	f := newFixture(t)
	f.storage.history = []model.Transaction{{ReferenceID: "ref-1"}}
	f.factory.client.anomalies = []model.Anomaly{
		{Type: "velocity", Severity: "high"},
		{Type: "amount_spike", Severity: "medium"},
	}

	anomalies, err := f.orch.MonitorTransactions(context.Background(), "")

	require.NoError(t, err)
	assert.Len(t, anomalies, 2)
	require.Len(t, f.notifier.notified, 2)
	assert.Equal(t, "velocity", f.notifier.notified[0].Type)

	require.Len(t, f.storage.queries, 1)
	window := f.storage.queries[0][1].Sub(f.storage.queries[0][0])
	assert.Equal(t, 7*24*time.Hour, window)

	history, ok := f.factory.client.lastData.([]model.Transaction)
	require.True(t, ok)
	assert.Equal(t, "ref-1", history[0].ReferenceID)
}

func TestMonitorTransactionsRequiresStorage(t *testing.T) {
	orch, err := New(Options{Factory: &fakeFactory{client: &fakeLLM{}}})
	require.NoError(t, err)

	_, err = orch.MonitorTransactions(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage")
}

func TestMonitorTransactionsNotifierError(t *testing.T) {
	f := newFixture(t)
	f.factory.client.anomalies = []model.Anomaly{{Type: "velocity"}}
	f.notifier.err = fmt.Errorf("smtp down")

	anomalies, err := f.orch.MonitorTransactions(context.Background(), "")

	require.Error(t, err)
	assert.Len(t, anomalies, 1, "detected anomalies still returned")
}

func TestForecastCashFlow(t *testing.T) {
	f := newFixture(t)
	f.storage.history = []model.Transaction{{ReferenceID: "ref-1", Amount: 10}}
	f.factory.client.text = "net inflow expected"

	got, err := f.orch.ForecastCashFlow(context.Background(), 30*24*time.Hour, "chatgpt")

	require.NoError(t, err)
	assert.Equal(t, "net inflow expected", got)

	require.Len(t, f.storage.queries, 1)
	window := f.storage.queries[0][1].Sub(f.storage.queries[0][0])
	assert.Equal(t, 30*24*time.Hour, window)
}

func TestGenerateReportUsesReportingBackend(t *testing.T) {
	f := newFixture(t)
	reporting := &fakeLLM{text: "quarterly report"}
	f.factory.reporting = reporting
	f.storage.history = []model.Transaction{{ReferenceID: "ref-1"}}

	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 3, 0)
	got, err := f.orch.GenerateReport(context.Background(), start, end)

	require.NoError(t, err)
	assert.Equal(t, "quarterly report", got)
	assert.Equal(t, [2]time.Time{start, end}, f.storage.queries[0])
	assert.NotNil(t, reporting.lastData, "reporting client received the history")
	assert.Nil(t, f.factory.client.lastData, "default client not used")
}

func TestParseNaturalLanguageCommandDispatch(t *testing.T) {
	tests := []struct {
		name    string
		action  string
		product func(*fixture) *fakeProduct
	}{
		{name: "request to pay", action: "requestToPay", product: func(f *fixture) *fakeProduct { return f.collections }},
		{name: "transfer", action: "transfer", product: func(f *fixture) *fakeProduct { return f.disbursements }},
		{name: "remit", action: "remit", product: func(f *fixture) *fakeProduct { return f.remittances }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.factory.client.parsed = model.ParsedCommand{
				Action:  tt.action,
				PartyID: "233555000111",
				Amount:  25,
			}
			target := tt.product(f)
			target.moveResult = map[string]any{"referenceId": "ref-cmd"}

			result, err := f.orch.ParseNaturalLanguageCommand(context.Background(), "send 25 to 233555000111", "")

			require.NoError(t, err)
			assert.Equal(t, "ref-cmd", result["referenceId"])
			require.Len(t, target.moves, 1)
			assert.Equal(t, "EUR", target.moves[0].currency, "default currency applied")
			assert.True(t, strings.HasPrefix(target.moves[0].externalID, "ext_"))
			assert.Equal(t, "send 25 to 233555000111", f.factory.client.lastPrompt)
		})
	}
}

func TestParseNaturalLanguageCommandUnsupportedAction(t *testing.T) {
	f := newFixture(t)
	f.factory.client.parsed = model.ParsedCommand{Action: "deleteAccount"}

	_, err := f.orch.ParseNaturalLanguageCommand(context.Background(), "delete my account", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported command action")
}

func TestOptimizeAPICalls(t *testing.T) {
	f := newFixture(t)
	f.storage.history = []model.Transaction{
		{Status: model.StatusSuccessful},
		{Status: model.StatusFailed},
		{Status: model.StatusFailed},
		{Status: model.StatusPending},
	}
	f.factory.client.text = "call after 02:00"

	got, err := f.orch.OptimizeAPICalls(context.Background(), "/collection/v1_0/requesttopay", "")

	require.NoError(t, err)
	assert.Equal(t, "call after 02:00", got)

	usage, ok := f.factory.client.lastData.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "/collection/v1_0/requesttopay", usage["endpoint"])
	assert.Equal(t, 4, usage["calls_today"])
	assert.InDelta(t, 0.5, usage["error_rate"], 1e-9)
}

func TestHandleError(t *testing.T) {
	f := newFixture(t)
	f.factory.client.text = "payer not found on network"

	result, err := f.orch.HandleError(context.Background(), "PAYER_NOT_FOUND", map[string]any{"partyId": "233555000111"}, "")

	require.NoError(t, err)
	assert.Equal(t, true, result["error"])
	assert.Equal(t, "payer not found on network", result["message"])

	ts, ok := result["timestamp"].(string)
	require.True(t, ok)
	_, err = time.Parse(time.RFC3339, ts)
	require.NoError(t, err)
}

func TestRecordMovementSkipsMissingReference(t *testing.T) {
	f := newFixture(t)
	f.disbursements.moveResult = map[string]any{"status": "ACCEPTED"}
	f.factory.client.parsed = model.ParsedCommand{Action: "transfer", PartyID: "p", Amount: 1}

	_, err := f.orch.ParseNaturalLanguageCommand(context.Background(), "transfer", "")

	require.NoError(t, err)
	assert.Empty(t, f.storage.saved)
}
