// Package notify constructs and forwards anomaly notifications.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/kwakudarkwa/momoflow/internal/model"
)

// LogNotifier delivers anomaly records to the structured log. It is the
// bundled implementation of service.Notifier; operators wanting e-mail or
// paging plug in their own.
type LogNotifier struct {
	logger     *slog.Logger
	alertEmail string
	now        func() time.Time
}

// NewLogNotifier creates a notifier writing to logger. A nil logger uses
// the default; alertEmail is recorded on each notification so downstream
// log routing knows the intended recipient.
func NewLogNotifier(logger *slog.Logger, alertEmail string) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{
		logger:     logger.With("component", "notify"),
		alertEmail: alertEmail,
		now:        time.Now,
	}
}

// NotifyAnomaly forwards one anomaly record. A zero timestamp is stamped
// with the current time.
func (n *LogNotifier) NotifyAnomaly(_ context.Context, anomaly model.Anomaly) error {
	ts := anomaly.Timestamp
	if ts.IsZero() {
		ts = n.now()
	}

	n.logger.Warn("transaction anomaly detected",
		"type", anomaly.Type,
		"transaction_id", anomaly.TransactionID,
		"amount", anomaly.Amount,
		"severity", anomaly.Severity,
		"details", anomaly.Details,
		"timestamp", ts.Format(time.RFC3339),
		"alert_email", n.alertEmail)
	return nil
}
