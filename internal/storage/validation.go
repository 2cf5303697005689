package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fotonlabs/cashflow/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrInvalidEntry = errors.New("invalid entry")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateEntry runs the store's own validation before a save. The messages
// here surface to the operator as global import errors, so they must read
// well on their own.
func validateEntry(entry *model.Entry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry", ErrNilParameter)
	}

	var messages []string
	if strings.TrimSpace(entry.Subject) == "" {
		messages = append(messages, "subject cannot be blank")
	}
	if entry.EntryDate.IsZero() {
		messages = append(messages, "entry date is missing")
	}
	if strings.TrimSpace(entry.TransactionType) == "" {
		messages = append(messages, "transaction type cannot be blank")
	}
	if strings.TrimSpace(entry.Status) == "" {
		messages = append(messages, "status cannot be blank")
	}

	if len(messages) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidEntry, strings.Join(messages, ", "))
	}
	return nil
}
