// Package llm provides interchangeable language model backends for
// transaction analysis. Each provider implements the same capability set
// behind the Client interface; callers never depend on a concrete backend.
package llm

import (
	"context"

	"github.com/kwakudarkwa/momoflow/internal/model"
)

// Client is the fixed capability set every LLM backend implements. All
// methods send a single-turn chat request and return the generated text, or
// a structured decode of it where the caller must act on the result
// programmatically (ParseCommand, DetectAnomalies).
type Client interface {
	// Analyze returns insights for merged transaction data.
	Analyze(ctx context.Context, data any) (string, error)
	// DetectFraud evaluates transaction data for fraud indicators.
	DetectFraud(ctx context.Context, data any) (string, error)
	// SuggestRetryStrategy proposes how to retry a failed transaction.
	SuggestRetryStrategy(ctx context.Context, data any) (string, error)
	// ForecastCashFlow projects cash flow from historical data.
	ForecastCashFlow(ctx context.Context, data any) (string, error)
	// ParseCommand turns a natural language command into a structured call.
	ParseCommand(ctx context.Context, command string) (model.ParsedCommand, error)
	// GenerateReport produces a transaction report for a period.
	GenerateReport(ctx context.Context, data any) (string, error)
	// SuggestDisbursementTime proposes an optimal time for a transfer.
	SuggestDisbursementTime(ctx context.Context, amount float64, recipient string) (string, error)
	// DetectAnomalies flags unusual patterns in transaction data.
	DetectAnomalies(ctx context.Context, data any) ([]model.Anomaly, error)
	// SuggestOptimalCallTimes proposes API call timing from usage data.
	SuggestOptimalCallTimes(ctx context.Context, data any) (string, error)
	// ExplainError explains a provider error code in context.
	ExplainError(ctx context.Context, errorCode string, errContext any) (string, error)
}

// Config holds the settings for one LLM backend.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string // override for testing; providers default their API host
	Temperature float64
	MaxTokens   int
}
