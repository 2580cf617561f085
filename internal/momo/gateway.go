package momo

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Gateway performs authenticated HTTP calls against the MoMo API. It owns
// the cached access token for its credential set and is safe for use from
// concurrent request handlers. It performs no retries: every failure is
// surfaced immediately as an *APIError.
type Gateway struct {
	httpClient *http.Client
	cache      *tokenCache
	logger     *slog.Logger
	cfg        Config
}

// NewGateway creates a gateway for the given configuration.
func NewGateway(cfg Config) (*Gateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Gateway{
		cfg:    cfg,
		cache:  newTokenCache(nil),
		logger: slog.Default().With("component", "momo"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// Config returns the gateway's configuration.
func (g *Gateway) Config() Config {
	return g.cfg
}

// AuthenticatedRequest issues one HTTP call with the standard MoMo header
// set: a bearer token, a fresh v4 UUID as the X-Reference-Id idempotency
// key, the target environment and the subscription key. Caller-supplied
// headers win on conflict. The decoded JSON body is returned on success;
// an empty 2xx body decodes to an empty map.
func (g *Gateway) AuthenticatedRequest(ctx context.Context, method, path string, body any, headers map[string]string) (map[string]any, error) {
	token, err := g.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		jsonBody, marshalErr := json.Marshal(body)
		if marshalErr != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", marshalErr)
		}
		reader = strings.NewReader(string(jsonBody))
	}

	req, err := http.NewRequestWithContext(ctx, method, g.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Reference-Id", uuid.NewString())
	req.Header.Set("X-Target-Environment", g.cfg.Environment)
	req.Header.Set("Ocp-Apim-Subscription-Key", g.cfg.SubscriptionKey)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Message: fmt.Sprintf("failed to read response: %v", err), StatusCode: resp.StatusCode}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		g.logger.Warn("momo API call failed",
			"method", method,
			"path", path,
			"status", resp.StatusCode)
		return nil, &APIError{
			Message:    fmt.Sprintf("%s %s returned %s", method, path, resp.Status),
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	result := map[string]any{}
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &result); err != nil {
			return nil, &APIError{
				Message:    fmt.Sprintf("malformed response body: %v", err),
				StatusCode: resp.StatusCode,
				Body:       string(respBody),
			}
		}
	}

	return result, nil
}

// ensureToken returns the cached access token, acquiring a new one from the
// token endpoint when the cache is empty or expired.
func (g *Gateway) ensureToken(ctx context.Context) (string, error) {
	if token, ok := g.cache.get(); ok {
		return token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+"/collection/token/", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}

	basic := base64.StdEncoding.EncodeToString([]byte(g.cfg.APIUser + ":" + g.cfg.APIKey))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Ocp-Apim-Subscription-Key", g.cfg.SubscriptionKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", &APIError{Message: fmt.Sprintf("failed to obtain access token: %v", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &APIError{Message: fmt.Sprintf("failed to read token response: %v", err), StatusCode: resp.StatusCode}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{
			Message:    fmt.Sprintf("token endpoint returned %s", resp.Status),
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(respBody, &tokenResp); err != nil || tokenResp.AccessToken == "" {
		return "", &APIError{
			Message:    "failed to obtain access token: invalid token response",
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	g.cache.put(tokenResp.AccessToken, tokenTTL)
	g.logger.Debug("acquired new access token", "ttl", tokenTTL)

	return tokenResp.AccessToken, nil
}

// validateCurrency rejects currencies outside the configured set before any
// network call is attempted.
func (g *Gateway) validateCurrency(currency string) error {
	if !g.cfg.SupportsCurrency(currency) {
		return newAPIError(fmt.Sprintf("unsupported currency %q", currency))
	}
	return nil
}
