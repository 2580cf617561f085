package llm

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator records the last prompt and returns a canned response.
type fakeGenerator struct {
	lastSystem string
	lastPrompt string
	response   string
	err        error
}

func (f *fakeGenerator) generate(_ context.Context, system, prompt string) (string, error) {
	f.lastSystem = system
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestProviderEmbedsDataInPrompts(t *testing.T) {
	backend := &fakeGenerator{response: "insight"}
	client := newProvider(backend)
	ctx := context.Background()

	data := map[string]any{"amount": 100, "currency": "EUR"}

	tests := []struct {
		call       func() (string, error)
		name       string
		wantInside string
	}{
		{name: "analyze", call: func() (string, error) { return client.Analyze(ctx, data) }, wantInside: `"currency":"EUR"`},
		{name: "detect fraud", call: func() (string, error) { return client.DetectFraud(ctx, data) }, wantInside: "fraud"},
		{name: "retry strategy", call: func() (string, error) { return client.SuggestRetryStrategy(ctx, data) }, wantInside: "retry strategy"},
		{name: "forecast", call: func() (string, error) { return client.ForecastCashFlow(ctx, data) }, wantInside: "forecast"},
		{name: "report", call: func() (string, error) { return client.GenerateReport(ctx, data) }, wantInside: "report"},
		{name: "call times", call: func() (string, error) { return client.SuggestOptimalCallTimes(ctx, data) }, wantInside: "optimal times"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.call()
			require.NoError(t, err)
			assert.Equal(t, "insight", out)
			assert.Contains(t, backend.lastPrompt, tt.wantInside)
			assert.Equal(t, systemPrompt, backend.lastSystem)
		})
	}
}

func TestProviderSuggestDisbursementTime(t *testing.T) {
	backend := &fakeGenerator{response: "Friday 10:00"}
	client := newProvider(backend)

	out, err := client.SuggestDisbursementTime(context.Background(), 250, "256770000111")
	require.NoError(t, err)
	assert.Equal(t, "Friday 10:00", out)
	assert.Contains(t, backend.lastPrompt, "250")
	assert.Contains(t, backend.lastPrompt, "256770000111")
}

func TestProviderExplainError(t *testing.T) {
	backend := &fakeGenerator{response: "explanation"}
	client := newProvider(backend)

	out, err := client.ExplainError(context.Background(), "PAYER_LIMIT_REACHED", map[string]string{"product": "collection"})
	require.NoError(t, err)
	assert.Equal(t, "explanation", out)
	assert.Contains(t, backend.lastPrompt, "PAYER_LIMIT_REACHED")
	assert.Contains(t, backend.lastPrompt, `"product":"collection"`)
}

func TestProviderParseCommand(t *testing.T) {
	backend := &fakeGenerator{response: `{"action":"transfer","partyId":"256770000111","amount":50,"currency":"EUR","externalId":"ext-1","payerMessage":"m","payeeNote":"n"}`}
	client := newProvider(backend)

	cmd, err := client.ParseCommand(context.Background(), "send 50 euros to 256770000111")
	require.NoError(t, err)
	assert.Equal(t, "transfer", cmd.Action)
	assert.Equal(t, "256770000111", cmd.PartyID)
	assert.InDelta(t, 50, cmd.Amount, 0.001)
	assert.Contains(t, backend.lastPrompt, "send 50 euros to 256770000111")
}

func TestProviderDetectAnomalies(t *testing.T) {
	backend := &fakeGenerator{response: `[{"type":"velocity","transaction_id":"tx-1","amount":900,"severity":"high","details":"burst of transfers"}]`}
	client := newProvider(backend)

	anomalies, err := client.DetectAnomalies(context.Background(), []map[string]any{{"id": "tx-1"}})
	require.NoError(t, err)
	require.Len(t, anomalies, 1)
	assert.Equal(t, "velocity", anomalies[0].Type)
	assert.Equal(t, "tx-1", anomalies[0].TransactionID)
	assert.InDelta(t, 900, anomalies[0].Amount, 0.001)
}

func TestProviderPropagatesBackendError(t *testing.T) {
	backend := &fakeGenerator{err: fmt.Errorf("backend down")}
	client := newProvider(backend)

	_, err := client.Analyze(context.Background(), nil)
	require.Error(t, err)

	_, err = client.ParseCommand(context.Background(), "pay")
	require.Error(t, err)

	_, err = client.DetectAnomalies(context.Background(), nil)
	require.Error(t, err)
}
