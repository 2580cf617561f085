package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/kwakudarkwa/momoflow/internal/llm"
	"github.com/kwakudarkwa/momoflow/internal/momo"
	"github.com/kwakudarkwa/momoflow/internal/notify"
	"github.com/kwakudarkwa/momoflow/internal/orchestrator"
	"github.com/kwakudarkwa/momoflow/internal/service"
	"github.com/kwakudarkwa/momoflow/internal/storage"
)

// momoConfigFromViper assembles the gateway configuration from the config
// file and environment.
func momoConfigFromViper() momo.Config {
	return momo.Config{
		APIUser:             viper.GetString("momo.api_user"),
		APIKey:              viper.GetString("momo.api_key"),
		SubscriptionKey:     viper.GetString("momo.subscription_key"),
		BaseURL:             viper.GetString("momo.base_url"),
		Environment:         viper.GetString("momo.environment"),
		Version:             viper.GetString("momo.version"),
		CallbackHost:        viper.GetString("momo.callback_host"),
		DefaultCurrency:     viper.GetString("momo.default_currency"),
		SupportedCurrencies: viper.GetStringSlice("momo.supported_currencies"),
		Timeout:             viper.GetDuration("momo.timeout"),
	}
}

// initGateway builds the authenticated MoMo gateway from configuration.
func initGateway() (*momo.Gateway, error) {
	gateway, err := momo.NewGateway(momoConfigFromViper())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize momo gateway (run 'momoflow install' first?): %w", err)
	}
	return gateway, nil
}

// backendConfig reads one LLM backend's settings, falling back to the
// conventional environment variable for the API key.
func backendConfig(name, envKey string) llm.Config {
	apiKey := viper.GetString("llm." + name + ".api_key")
	if apiKey == "" {
		apiKey = os.Getenv(envKey)
	}
	return llm.Config{
		APIKey:      apiKey,
		Model:       viper.GetString("llm." + name + ".model"),
		Temperature: viper.GetFloat64("llm." + name + ".temperature"),
		MaxTokens:   viper.GetInt("llm." + name + ".max_tokens"),
	}
}

// createFactory builds the LLM factory from configuration.
func createFactory() *llm.Factory {
	return llm.NewFactory(llm.FactoryConfig{
		Default:   viper.GetString("llm.default"),
		Reporting: viper.GetString("llm.reporting"),
		OpenAI:    backendConfig("openai", "OPENAI_API_KEY"),
		Anthropic: backendConfig("anthropic", "ANTHROPIC_API_KEY"),
		Gemini:    backendConfig("gemini", "GEMINI_API_KEY"),
	})
}

// initStorage opens the ledger database and runs migrations.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".local", "share", "momoflow", "ledger.db")
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// initOrchestrator wires the full stack: gateway, product clients, LLM
// factory, ledger and notifier. The returned cleanup closes the ledger.
func initOrchestrator(ctx context.Context) (*orchestrator.Orchestrator, func(), error) {
	gateway, err := initGateway()
	if err != nil {
		return nil, nil, err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Warn("failed to close ledger", "error", closeErr)
		}
	}

	orch, err := orchestrator.New(orchestrator.Options{
		Collections:     momo.NewCollections(gateway),
		Disbursements:   momo.NewDisbursements(gateway),
		Remittances:     momo.NewRemittances(gateway),
		Factory:         createFactory(),
		Storage:         store,
		Notifier:        notify.NewLogNotifier(slog.Default(), viper.GetString("notifications.alert_email")),
		Logger:          slog.Default(),
		DefaultCurrency: gateway.Config().DefaultCurrency,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return orch, cleanup, nil
}

// recordLedgerStatus updates the local ledger with a status observed from
// the provider. Lookups for transactions initiated elsewhere are expected
// to miss; that is not an error worth surfacing.
func recordLedgerStatus(ctx context.Context, referenceID, status string) {
	store, err := initStorage(ctx)
	if err != nil {
		slog.Debug("ledger unavailable for status update", "error", err)
		return
	}
	defer func() { _ = store.Close() }()

	if err := store.UpdateTransactionStatus(ctx, referenceID, status); err != nil {
		slog.Debug("ledger status not updated", "reference_id", referenceID, "error", err)
	}
}
