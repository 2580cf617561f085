// Package storage implements the local transaction ledger on SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kwakudarkwa/momoflow/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage implements the service.Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage opens (or creates) the ledger database at dbPath.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("dbPath is required")
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{db: db, dbPath: dbPath}, nil
}

// Migrate creates the ledger schema if it does not exist.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS transactions (
		reference_id TEXT PRIMARY KEY,
		external_id TEXT NOT NULL,
		product TEXT NOT NULL,
		party_id TEXT,
		amount REAL NOT NULL,
		currency TEXT NOT NULL,
		payer_message TEXT,
		payee_note TEXT,
		status TEXT NOT NULL DEFAULT 'PENDING',
		date TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
	CREATE INDEX IF NOT EXISTS idx_transactions_status ON transactions(status);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SaveTransaction records one initiated money movement. Saving the same
// reference id again overwrites the previous row.
func (s *SQLiteStorage) SaveTransaction(ctx context.Context, txn model.Transaction) error {
	if txn.ReferenceID == "" {
		return fmt.Errorf("transaction reference id is required")
	}
	date := txn.Date
	if date.IsZero() {
		date = time.Now()
	}
	status := txn.Status
	if status == "" {
		status = model.StatusPending
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (reference_id, external_id, product, party_id, amount, currency, payer_message, payee_note, status, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(reference_id) DO UPDATE SET
			external_id = excluded.external_id,
			status = excluded.status`,
		txn.ReferenceID, txn.ExternalID, string(txn.Product), txn.PartyID,
		txn.Amount, txn.Currency, txn.PayerMessage, txn.PayeeNote, status, date)
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return nil
}

// UpdateTransactionStatus records a status observed from the provider.
func (s *SQLiteStorage) UpdateTransactionStatus(ctx context.Context, referenceID, status string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET status = ? WHERE reference_id = ?`, status, referenceID)
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("transaction %s not found", referenceID)
	}
	return nil
}

// GetTransactionsByPeriod returns ledger entries dated within [start, end),
// newest first.
func (s *SQLiteStorage) GetTransactionsByPeriod(ctx context.Context, start, end time.Time) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT reference_id, external_id, product, party_id, amount, currency, payer_message, payee_note, status, date
		FROM transactions
		WHERE date >= ? AND date < ?
		ORDER BY date DESC`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		var txn model.Transaction
		var product string
		if err := rows.Scan(&txn.ReferenceID, &txn.ExternalID, &product, &txn.PartyID,
			&txn.Amount, &txn.Currency, &txn.PayerMessage, &txn.PayeeNote, &txn.Status, &txn.Date); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.Product = model.Product(product)
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
