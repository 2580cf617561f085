// Package service defines the interfaces the orchestration layer depends on.
package service

import (
	"context"
	"time"

	"github.com/kwakudarkwa/momoflow/internal/model"
)

// Storage is the local transaction ledger. It records money movements this
// process initiates and the statuses it observes, and serves the history
// queries behind forecasting, monitoring and reporting. It is not the
// system of record; the provider is.
type Storage interface {
	SaveTransaction(ctx context.Context, txn model.Transaction) error
	UpdateTransactionStatus(ctx context.Context, referenceID, status string) error
	GetTransactionsByPeriod(ctx context.Context, start, end time.Time) ([]model.Transaction, error)
	Migrate(ctx context.Context) error
	Close() error
}

// Notifier receives anomaly records for delivery. Delivery itself (e-mail,
// paging) is a collaborator concern; implementations here only construct
// and forward the record.
type Notifier interface {
	NotifyAnomaly(ctx context.Context, anomaly model.Anomaly) error
}
