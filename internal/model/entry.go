// Package model defines the core domain types for the cashflow application.
package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates whether an entry records money coming in or going out.
type TransactionType string

const (
	// TransactionTypeIncome represents entries for incoming funds.
	TransactionTypeIncome TransactionType = "income"
	// TransactionTypeExpense represents entries for outgoing funds.
	TransactionTypeExpense TransactionType = "expense"
)

// Entry represents a single cash flow entry, the persistable unit of an import.
type Entry struct {
	EntryDate       time.Time
	CreatedAt       time.Time
	ID              int64
	Subject         string
	Description     string
	TransactionType string
	Status          string
	Project         string
	Author          string
	SourceFile      string
	Hash            string
	Categories      []string
	Amount          decimal.Decimal
	AssigneeID      *int64
}

// GenerateHash creates a stable fingerprint for duplicate detection.
func (e *Entry) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s",
		e.EntryDate.Format("2006-01-02"),
		e.Amount.String(),
		e.Subject,
		strings.Join(e.Categories, ","))
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// ImportResult is the aggregate outcome of one import run.
type ImportResult struct {
	ImportedCount          int
	Errors                 []string
	NewlyCreatedCategories []string
	NewlyCreatedTypes      []string
}

// Success reports whether the batch committed cleanly.
func (r *ImportResult) Success() bool {
	return len(r.Errors) == 0
}
