package bank

import (
	"strings"

	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// Field names used in AttributeError.
const (
	FieldAmount           = "amount"
	FieldIncomingInterest = "incoming interest"
	FieldOutgoingInterest = "outgoing interest"
)

// ValidateInterest checks that rate lies within [0, 1].
func ValidateInterest(field string, rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(one) {
		return &AttributeError{Field: field, Value: rate.String(), Reason: "must be between 0 and 1"}
	}
	return nil
}

// ValidateTransferAmount checks that a transfer amount is not negative.
func ValidateTransferAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return &AttributeError{Field: FieldAmount, Value: amount.String(), Reason: "negative transfers are illegal"}
	}
	return nil
}

// Validate applies the rules of tx's variant to its current fields. It is used
// when transactions arrive in bulk, where a field may have been changed after
// construction.
func Validate(tx Transaction) error {
	missing := &AttributeError{Field: "transaction", Reason: "missing"}
	switch v := tx.(type) {
	case nil:
		return missing
	case *Payment:
		if v == nil {
			return missing
		}
		if err := ValidateInterest(FieldIncomingInterest, v.incomingInterest); err != nil {
			return err
		}
		return ValidateInterest(FieldOutgoingInterest, v.outgoingInterest)
	case *IncomingTransfer:
		if v == nil {
			return missing
		}
		return ValidateTransferAmount(v.amount)
	case *OutgoingTransfer:
		if v == nil {
			return missing
		}
		return ValidateTransferAmount(v.amount)
	}
	return nil
}

// ParseAmount parses a caller-supplied decimal such as "12.50".
func ParseAmount(field, text string) (decimal.Decimal, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return decimal.Zero, &AttributeError{Field: field, Reason: "no input"}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &AttributeError{Field: field, Value: text, Reason: "not a number"}
	}
	return d, nil
}

// ParseRate parses a caller-supplied interest rate and checks its range.
func ParseRate(field, text string) (decimal.Decimal, error) {
	r, err := ParseAmount(field, text)
	if err != nil {
		return decimal.Zero, err
	}
	if err := ValidateInterest(field, r); err != nil {
		return decimal.Zero, err
	}
	return r, nil
}
