package bank

import (
	"errors"
	"fmt"
)

// Error kinds reported by the ledger. Callers match them with errors.Is.
var (
	ErrAccountAlreadyExists     = errors.New("account already exists")
	ErrAccountDoesNotExist      = errors.New("account does not exist")
	ErrTransactionAlreadyExists = errors.New("transaction already exists")
	ErrTransactionDoesNotExist  = errors.New("transaction does not exist")
	ErrTransactionAttribute     = errors.New("invalid transaction attribute")
)

// AttributeError describes a single field that violates a domain rule.
// It matches ErrTransactionAttribute.
type AttributeError struct {
	Field  string
	Value  string
	Reason string
}

func (e *AttributeError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *AttributeError) Unwrap() error { return ErrTransactionAttribute }
