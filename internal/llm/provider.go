package llm

import (
	"context"

	"github.com/kwakudarkwa/momoflow/internal/model"
)

// generator is the single capability a backend must supply: one prompt in,
// generated text out. New backends implement this and register in the
// factory; the capability methods never change per backend.
type generator interface {
	generate(ctx context.Context, system, prompt string) (string, error)
}

// provider implements Client on top of any generator.
type provider struct {
	backend generator
}

func newProvider(backend generator) *provider {
	return &provider{backend: backend}
}

func (p *provider) Analyze(ctx context.Context, data any) (string, error) {
	return p.backend.generate(ctx, systemPrompt, analyzePrompt(data))
}

func (p *provider) DetectFraud(ctx context.Context, data any) (string, error) {
	return p.backend.generate(ctx, systemPrompt, detectFraudPrompt(data))
}

func (p *provider) SuggestRetryStrategy(ctx context.Context, data any) (string, error) {
	return p.backend.generate(ctx, systemPrompt, retryStrategyPrompt(data))
}

func (p *provider) ForecastCashFlow(ctx context.Context, data any) (string, error) {
	return p.backend.generate(ctx, systemPrompt, forecastPrompt(data))
}

func (p *provider) ParseCommand(ctx context.Context, command string) (model.ParsedCommand, error) {
	content, err := p.backend.generate(ctx, systemPrompt, parseCommandPrompt(command))
	if err != nil {
		return model.ParsedCommand{}, err
	}
	return parseCommand(content)
}

func (p *provider) GenerateReport(ctx context.Context, data any) (string, error) {
	return p.backend.generate(ctx, systemPrompt, reportPrompt(data))
}

func (p *provider) SuggestDisbursementTime(ctx context.Context, amount float64, recipient string) (string, error) {
	return p.backend.generate(ctx, systemPrompt, disbursementTimePrompt(amount, recipient))
}

func (p *provider) DetectAnomalies(ctx context.Context, data any) ([]model.Anomaly, error) {
	content, err := p.backend.generate(ctx, systemPrompt, detectAnomaliesPrompt(data))
	if err != nil {
		return nil, err
	}
	return parseAnomalies(content), nil
}

func (p *provider) SuggestOptimalCallTimes(ctx context.Context, data any) (string, error) {
	return p.backend.generate(ctx, systemPrompt, callTimesPrompt(data))
}

func (p *provider) ExplainError(ctx context.Context, errorCode string, errContext any) (string, error) {
	return p.backend.generate(ctx, systemPrompt, explainErrorPrompt(errorCode, errContext))
}
