package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kwakudarkwa/momoflow/internal/cli"
	"github.com/kwakudarkwa/momoflow/internal/momo"
)

// installAnswers collects everything the wizard gathers before writing the
// config file.
type installAnswers struct {
	subscriptionKey string
	callbackHost    string
	baseURL         string
	defaultCurrency string
	llmBackend      string
	llmAPIKey       string
	alertEmail      string
	apiUser         string
	apiKey          string
}

func installCmd() *cobra.Command {
	var answers installAnswers
	var writeConfig bool
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Provision sandbox API credentials and write a config file",
		Long: `Walks through the one-time MoMo sandbox setup: registers an API user,
generates its API key and writes both into the momoflow config file,
along with the LLM backend and notification settings.

You need a subscription key from https://momodeveloper.mtn.com first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())
			ask := func(label, fallback string) (string, error) {
				prompt := label
				if fallback != "" {
					prompt = fmt.Sprintf("%s [%s]", label, fallback)
				}
				fmt.Print(cli.FormatPrompt(prompt))
				line, err := reader.ReadString('\n')
				if err != nil {
					return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
				}
				answer := strings.TrimSpace(line)
				if answer == "" {
					answer = fallback
				}
				return answer, nil
			}

			fmt.Println(cli.FormatTitle("momoflow sandbox setup"))

			var err error
			if answers.subscriptionKey == "" {
				if answers.subscriptionKey, err = ask("Subscription key", ""); err != nil {
					return err
				}
			}
			if answers.subscriptionKey == "" {
				return fmt.Errorf("a subscription key is required")
			}
			if answers.callbackHost == "" {
				if answers.callbackHost, err = ask("Callback host", "example.com"); err != nil {
					return err
				}
			}
			if answers.defaultCurrency == "" {
				if answers.defaultCurrency, err = ask("Default currency", momo.DefaultCurrency); err != nil {
					return err
				}
			}
			if answers.llmBackend == "" {
				if answers.llmBackend, err = ask("LLM backend (chatgpt, claude, gemini)", "chatgpt"); err != nil {
					return err
				}
			}
			if answers.llmAPIKey == "" {
				if answers.llmAPIKey, err = ask("LLM API key (blank to use env var)", ""); err != nil {
					return err
				}
			}
			if answers.alertEmail == "" {
				if answers.alertEmail, err = ask("Alert e-mail for anomalies (optional)", ""); err != nil {
					return err
				}
			}

			provisioner := momo.NewProvisioner(answers.baseURL, answers.subscriptionKey, answers.callbackHost)

			fmt.Println(cli.FormatInfo("registering API user..."))
			answers.apiUser, err = provisioner.CreateAPIUser(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to create API user: %w", err)
			}

			// The sandbox can lag a freshly created user by a few seconds.
			waitCtx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if _, err := provisioner.WaitForAPIUser(waitCtx, answers.apiUser, 2*time.Second); err != nil {
				return err
			}

			fmt.Println(cli.FormatInfo("generating API key..."))
			answers.apiKey, err = provisioner.CreateAPIKey(cmd.Context(), answers.apiUser)
			if err != nil {
				return fmt.Errorf("failed to create API key: %w", err)
			}

			fmt.Println(cli.FormatSuccess("credentials provisioned"))
			fmt.Printf("  api user: %s\n", answers.apiUser)

			if !writeConfig {
				fmt.Printf("  api key:  %s\n", answers.apiKey)
				fmt.Println(cli.FormatWarning("config not written (--write=false); store the key yourself"))
				return nil
			}

			path, err := writeConfigFile(answers)
			if err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess("config written to " + path))
			return nil
		},
	}
	cmd.Flags().StringVar(&answers.subscriptionKey, "subscription-key", "", "MoMo developer subscription key (prompted if empty)")
	cmd.Flags().StringVar(&answers.callbackHost, "callback-host", "", "provider callback host (prompted if empty)")
	cmd.Flags().StringVar(&answers.baseURL, "base-url", "", "API base URL (default: sandbox)")
	cmd.Flags().BoolVar(&writeConfig, "write", true, "write the credentials into the config file")
	return cmd
}

// backendKeyName maps a backend alias to its config section.
func backendKeyName(backend string) string {
	switch strings.ToLower(backend) {
	case "claude", "anthropic":
		return "anthropic"
	case "gemini":
		return "gemini"
	default:
		return "openai"
	}
}

// writeConfigFile persists the wizard's answers to the standard config
// location. Install owns this file; it is rewritten whole.
func writeConfigFile(a installAnswers) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	dir := filepath.Join(home, ".config", "momoflow")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	momoCfg := map[string]any{
		"api_user":         a.apiUser,
		"api_key":          a.apiKey,
		"subscription_key": a.subscriptionKey,
		"callback_host":    a.callbackHost,
		"environment":      "sandbox",
		"default_currency": a.defaultCurrency,
	}
	if a.baseURL != "" {
		momoCfg["base_url"] = a.baseURL
	}

	llmCfg := map[string]any{"default": a.llmBackend}
	if a.llmAPIKey != "" {
		llmCfg[backendKeyName(a.llmBackend)] = map[string]any{"api_key": a.llmAPIKey}
	}

	cfg := map[string]any{
		"momo": momoCfg,
		"llm":  llmCfg,
	}
	if a.alertEmail != "" {
		cfg["notifications"] = map[string]any{"alert_email": a.alertEmail}
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to render config: %w", err)
	}

	path := filepath.Join(dir, "config.yaml")
	// Credentials file: owner-only.
	if err := os.WriteFile(path, out, 0600); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}
