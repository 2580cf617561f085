package momo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Provisioner registers a new API user and key pair against the sandbox.
// This is a one-time bootstrap flow used by the installer; it authenticates
// with the subscription key only, since no API user exists yet.
type Provisioner struct {
	httpClient      *http.Client
	baseURL         string
	subscriptionKey string
	callbackHost    string
}

// NewProvisioner creates a provisioner for the given subscription.
func NewProvisioner(baseURL, subscriptionKey, callbackHost string) *Provisioner {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Provisioner{
		baseURL:         baseURL,
		subscriptionKey: subscriptionKey,
		callbackHost:    callbackHost,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// CreateAPIUser registers a new API user and returns its generated UUID.
func (p *Provisioner) CreateAPIUser(ctx context.Context) (string, error) {
	apiUserID := uuid.NewString()

	body, err := json.Marshal(map[string]string{
		"providerCallbackHost": p.callbackHost,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal apiuser request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1_0/apiuser", strings.NewReader(string(body)))
	if err != nil {
		return "", fmt.Errorf("failed to create apiuser request: %w", err)
	}
	req.Header.Set("X-Reference-Id", apiUserID)
	req.Header.Set("Ocp-Apim-Subscription-Key", p.subscriptionKey)
	req.Header.Set("Content-Type", "application/json")

	if err := p.do(req, http.StatusCreated, nil); err != nil {
		return "", err
	}
	return apiUserID, nil
}

// CreateAPIKey generates an API key for a previously created API user.
func (p *Provisioner) CreateAPIKey(ctx context.Context, apiUserID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1_0/apiuser/"+apiUserID+"/apikey", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create apikey request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", p.subscriptionKey)

	var keyResp struct {
		APIKey string `json:"apiKey"`
	}
	if err := p.do(req, http.StatusCreated, &keyResp); err != nil {
		return "", err
	}
	if keyResp.APIKey == "" {
		return "", newAPIError("apikey endpoint returned no apiKey")
	}
	return keyResp.APIKey, nil
}

// GetAPIUser fetches the registration details of an API user.
func (p *Provisioner) GetAPIUser(ctx context.Context, apiUserID string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v1_0/apiuser/"+apiUserID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create apiuser lookup request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", p.subscriptionKey)

	user := map[string]any{}
	if err := p.do(req, http.StatusOK, &user); err != nil {
		return nil, err
	}
	return user, nil
}

// do executes a provisioning request, expecting the given status, and
// decodes the response body into out when non-nil.
func (p *Provisioner) do(req *http.Request, wantStatus int, out any) error {
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return &APIError{Message: fmt.Sprintf("provisioning request failed: %v", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Message: fmt.Sprintf("failed to read provisioning response: %v", err), StatusCode: resp.StatusCode}
	}

	if resp.StatusCode != wantStatus {
		return &APIError{
			Message:    fmt.Sprintf("%s %s returned %s", req.Method, req.URL.Path, resp.Status),
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return &APIError{
				Message:    fmt.Sprintf("malformed provisioning response: %v", err),
				StatusCode: resp.StatusCode,
				Body:       string(respBody),
			}
		}
	}
	return nil
}

// WaitForAPIUser polls GetAPIUser until the registration is visible or the
// context expires. The sandbox occasionally lags a freshly created user.
func (p *Provisioner) WaitForAPIUser(ctx context.Context, apiUserID string, interval time.Duration) (map[string]any, error) {
	if interval <= 0 {
		interval = time.Second
	}
	for {
		user, err := p.GetAPIUser(ctx, apiUserID)
		if err == nil {
			return user, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("api user %s not visible: %w", apiUserID, err)
		case <-time.After(interval):
		}
	}
}
