// Package model defines the core domain types shared across the application.
package model

import (
	"time"
)

// Product identifies one of the three MTN MoMo product lines.
type Product string

// Supported product lines.
const (
	ProductCollection   Product = "collection"
	ProductDisbursement Product = "disbursement"
	ProductRemittance   Product = "remittance"
)

// Valid reports whether p is one of the known product lines.
func (p Product) Valid() bool {
	switch p {
	case ProductCollection, ProductDisbursement, ProductRemittance:
		return true
	}
	return false
}

// Transaction represents a money movement initiated through this system.
// The provider, not this system, is the system of record for its state; a
// Transaction row is our local ledger entry for history-based workflows.
type Transaction struct {
	Date         time.Time
	ReferenceID  string
	ExternalID   string
	Product      Product
	PartyID      string
	Currency     string
	PayerMessage string
	PayeeNote    string
	Status       string
	Amount       float64
}

// Transaction status values as reported by the provider.
const (
	StatusPending    = "PENDING"
	StatusSuccessful = "SUCCESSFUL"
	StatusFailed     = "FAILED"
)

// FailedTransaction carries the fields needed to retry a failed money
// movement on the product it originally targeted.
type FailedTransaction struct {
	Product      Product
	ExternalID   string
	PartyID      string
	Currency     string
	PayerMessage string
	PayeeNote    string
	Amount       float64
}

// ParsedCommand is the structured form of a natural language command as
// returned by an LLM. Only Action is interpreted by this system; the
// remaining fields are whatever the model extracted.
type ParsedCommand struct {
	Action       string
	ExternalID   string
	PartyID      string
	Currency     string
	PayerMessage string
	PayeeNote    string
	Amount       float64
}

// Anomaly is one suspicious pattern flagged during transaction monitoring.
// It mirrors the record handed to the notification collaborator.
type Anomaly struct {
	Timestamp     time.Time
	Type          string
	TransactionID string
	Severity      string
	Details       string
	Amount        float64
}
