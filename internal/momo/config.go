// Package momo provides an authenticated client for the MTN Mobile Money
// REST API across its collection, disbursement and remittance products.
package momo

import (
	"fmt"
	"time"
)

// Config holds the credentials and settings for one MoMo API subscription.
// It is immutable for the lifetime of a Gateway.
type Config struct {
	APIUser             string
	APIKey              string
	SubscriptionKey     string
	BaseURL             string
	Environment         string // sandbox or production
	Version             string // e.g. v1_0
	CallbackHost        string
	DefaultCurrency     string
	SupportedCurrencies []string
	Timeout             time.Duration
}

// Defaults applied by Validate when optional fields are unset.
const (
	DefaultBaseURL  = "https://sandbox.momodeveloper.mtn.com"
	DefaultVersion  = "v1_0"
	DefaultCurrency = "EUR"
	DefaultTimeout  = 30 * time.Second
)

// DefaultSupportedCurrencies lists the currencies accepted when the
// configuration does not narrow the set.
var DefaultSupportedCurrencies = []string{"EUR", "USD", "GHS", "UGX", "XAF", "XOF"}

// Validate ensures all required fields are present and fills in defaults.
func (c *Config) Validate() error {
	if c.APIUser == "" {
		return fmt.Errorf("momo API user is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("momo API key is required")
	}
	if c.SubscriptionKey == "" {
		return fmt.Errorf("momo subscription key is required")
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Version == "" {
		c.Version = DefaultVersion
	}
	if c.DefaultCurrency == "" {
		c.DefaultCurrency = DefaultCurrency
	}
	if len(c.SupportedCurrencies) == 0 {
		c.SupportedCurrencies = DefaultSupportedCurrencies
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}

	validEnvs := map[string]bool{
		"sandbox":    true,
		"production": true,
	}
	if c.Environment == "" {
		c.Environment = "sandbox"
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid momo environment %q: must be sandbox or production", c.Environment)
	}

	return nil
}

// SupportsCurrency reports whether code is in the configured currency set.
func (c *Config) SupportsCurrency(code string) bool {
	for _, cur := range c.SupportedCurrencies {
		if cur == code {
			return true
		}
	}
	return false
}
