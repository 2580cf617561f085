package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwakudarkwa/momoflow/internal/model"
)

func TestNotifyAnomaly(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	notifier := NewLogNotifier(logger, "ops@example.com")

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	err := notifier.NotifyAnomaly(context.Background(), model.Anomaly{
		Timestamp:     ts,
		Type:          "velocity",
		TransactionID: "ref-1",
		Severity:      "high",
		Details:       "12 transfers in 60s",
		Amount:        900,
	})
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "velocity", entry["type"])
	assert.Equal(t, "ref-1", entry["transaction_id"])
	assert.Equal(t, "high", entry["severity"])
	assert.Equal(t, "ops@example.com", entry["alert_email"])
	assert.Equal(t, ts.Format(time.RFC3339), entry["timestamp"])
}

func TestNotifyAnomalyStampsZeroTimestamp(t *testing.T) {
	var buf bytes.Buffer
	notifier := NewLogNotifier(slog.New(slog.NewJSONHandler(&buf, nil)), "")
	fixed := time.Date(2025, 6, 2, 8, 30, 0, 0, time.UTC)
	notifier.now = func() time.Time { return fixed }

	require.NoError(t, notifier.NotifyAnomaly(context.Background(), model.Anomaly{Type: "amount_spike"}))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, fixed.Format(time.RFC3339), entry["timestamp"])
}

func TestNewLogNotifierNilLogger(t *testing.T) {
	notifier := NewLogNotifier(nil, "ops@example.com")
	require.NotNil(t, notifier)
	assert.NoError(t, notifier.NotifyAnomaly(context.Background(), model.Anomaly{Type: "velocity"}))
}
