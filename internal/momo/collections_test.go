package momo

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingMux wraps a ServeMux with a token endpoint and records the last
// product request it saw.
type recordedRequest struct {
	method string
	path   string
	ref    string
	body   map[string]any
}

func newRecordingHandler(last *recordedRequest, status int, response string) http.Handler {
	var tokenRequests atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/collection/token/", tokenHandler(&tokenRequests))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		last.method = r.Method
		last.path = r.URL.Path
		last.ref = r.Header.Get("X-Reference-Id")
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &last.body)
		} else {
			last.body = nil
		}
		w.WriteHeader(status)
		if response != "" {
			_, _ = w.Write([]byte(response))
		}
	})
	return mux
}

func TestCollectionsRequestToPay(t *testing.T) {
	var last recordedRequest
	gateway, _ := newTestGateway(t, newRecordingHandler(&last, http.StatusAccepted, ""))
	collections := NewCollections(gateway)

	result, err := collections.RequestToPay(context.Background(), "ext-1", "233555000111", 100, "EUR", "msg", "note")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, last.method)
	assert.Equal(t, "/collection/v1_0/requesttopay", last.path)
	assert.Equal(t, map[string]any{
		"amount":     float64(100),
		"currency":   "EUR",
		"externalId": "ext-1",
		"payer": map[string]any{
			"partyIdType": "MSISDN",
			"partyId":     "233555000111",
		},
		"payerMessage": "msg",
		"payeeNote":    "note",
	}, last.body)

	// The generated reference id is surfaced for status polling.
	refID, ok := result["referenceId"].(string)
	require.True(t, ok)
	assert.Equal(t, last.ref, refID)
	_, err = uuid.Parse(refID)
	assert.NoError(t, err)
}

func TestCollectionsRequestToPayFreshReferencePerCall(t *testing.T) {
	var last recordedRequest
	gateway, _ := newTestGateway(t, newRecordingHandler(&last, http.StatusAccepted, ""))
	collections := NewCollections(gateway)

	first, err := collections.RequestToPay(context.Background(), "ext-1", "233555000111", 1, "EUR", "m", "n")
	require.NoError(t, err)
	second, err := collections.RequestToPay(context.Background(), "ext-2", "233555000111", 1, "EUR", "m", "n")
	require.NoError(t, err)

	assert.NotEqual(t, first["referenceId"], second["referenceId"])
}

func TestCollectionsRejectsUnsupportedCurrency(t *testing.T) {
	var calls atomic.Int64
	gateway, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	collections := NewCollections(gateway)

	_, err := collections.RequestToPay(context.Background(), "ext", "party", 10, "BTC", "m", "n")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "unsupported currency")
	assert.Zero(t, calls.Load(), "no network call may be attempted for a rejected currency")
}

func TestCollectionsGetTransactionStatus(t *testing.T) {
	var last recordedRequest
	gateway, _ := newTestGateway(t, newRecordingHandler(&last, http.StatusOK, `{"status":"SUCCESSFUL","externalId":"ext-1"}`))
	collections := NewCollections(gateway)

	status, err := collections.GetTransactionStatus(context.Background(), "ref-9")
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, last.method)
	assert.Equal(t, "/collection/v1_0/requesttopay/ref-9", last.path)
	assert.Equal(t, "SUCCESSFUL", status["status"])
}

func TestCollectionsAccountPaths(t *testing.T) {
	var last recordedRequest
	gateway, _ := newTestGateway(t, newRecordingHandler(&last, http.StatusOK, `{}`))
	collections := NewCollections(gateway)
	ctx := context.Background()

	_, err := collections.GetAccountBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/collection/v1_0/account/balance", last.path)

	_, err = collections.GetAccountHolder(ctx, "233555000111", "msisdn")
	require.NoError(t, err)
	assert.Equal(t, "/collection/v1_0/accountholder/msisdn/233555000111/active", last.path)

	// Validation hits the identical path; that is the provider's contract.
	_, err = collections.ValidateAccountHolderStatus(ctx, "233555000111", "msisdn")
	require.NoError(t, err)
	assert.Equal(t, "/collection/v1_0/accountholder/msisdn/233555000111/active", last.path)
}

func TestCollectionsWithdrawalsAndNotifications(t *testing.T) {
	var last recordedRequest
	gateway, _ := newTestGateway(t, newRecordingHandler(&last, http.StatusAccepted, ""))
	collections := NewCollections(gateway)
	ctx := context.Background()

	_, err := collections.RequestToPayDeliveryNotification(ctx, "ref-1", "payment received")
	require.NoError(t, err)
	assert.Equal(t, "/collection/v1_0/requesttopay/ref-1/deliverynotification", last.path)
	assert.Equal(t, map[string]any{"notificationMessage": "payment received"}, last.body)

	result, err := collections.RequestToWithdraw(ctx, "ext-3", "233555000111", 50, "USD", "m", "n")
	require.NoError(t, err)
	assert.Equal(t, "/collection/v1_0/requesttowithdraw", last.path)
	assert.Equal(t, "payee", onlyPartyKey(t, last.body))
	assert.NotEmpty(t, result["referenceId"])

	_, err = collections.GetWithdrawalTransactionStatus(ctx, "ref-7")
	require.NoError(t, err)
	assert.Equal(t, "/collection/v1_0/requesttowithdraw/ref-7", last.path)

	_, err = collections.GetBCAuthorization(ctx, "233555000111", "uuid-1")
	require.NoError(t, err)
	assert.Equal(t, "/collection/v1_0/bc-authorize", last.path)
	assert.Equal(t, map[string]any{
		"accountHolderMSISDN": "233555000111",
		"accountHolderUUID":   "uuid-1",
	}, last.body)
}

// onlyPartyKey returns which of payer/payee is present in a movement body.
func onlyPartyKey(t *testing.T, body map[string]any) string {
	t.Helper()
	_, hasPayer := body["payer"]
	_, hasPayee := body["payee"]
	require.False(t, hasPayer && hasPayee)
	if hasPayer {
		return "payer"
	}
	if hasPayee {
		return "payee"
	}
	return ""
}
