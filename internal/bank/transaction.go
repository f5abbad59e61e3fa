// Package bank defines the transaction variants held by a ledger account and
// the rules they must satisfy.
package bank

import (
	"github.com/shopspring/decimal"
)

// Kind names a concrete transaction variant. It doubles as the type tag of a
// stored record.
type Kind string

const (
	KindPayment          Kind = "Payment"
	KindIncomingTransfer Kind = "IncomingTransfer"
	KindOutgoingTransfer Kind = "OutgoingTransfer"
)

// DateLayout is the layout for dates the application fills in itself, such
// as imported statement rows. Dates are otherwise free text.
const DateLayout = "02.01.2006"

// Kinds lists every transaction variant.
var Kinds = []Kind{KindPayment, KindIncomingTransfer, KindOutgoingTransfer}

// Transaction is a financial event recorded in an account. The set of
// implementations is closed: *Payment, *IncomingTransfer and *OutgoingTransfer.
type Transaction interface {
	Kind() Kind
	Date() string
	Amount() decimal.Decimal
	Description() string
	// Value is the signed effect of the transaction on its account balance.
	Value() decimal.Decimal
	// Equal reports whether other is the same variant with equal fields.
	Equal(other Transaction) bool
	// Clone returns an independent copy.
	Clone() Transaction
	String() string

	common() *entry
}

// entry holds the fields every variant carries.
type entry struct {
	date        string
	amount      decimal.Decimal
	description string
}

func (e *entry) common() *entry { return e }

// Date returns the caller-supplied date string. Its format is not checked.
func (e *entry) Date() string { return e.date }

// Amount returns the stored amount, before any sign or interest is applied.
func (e *entry) Amount() decimal.Decimal { return e.amount }

func (e *entry) Description() string { return e.description }

func (e *entry) SetDate(date string) { e.date = date }

func (e *entry) SetDescription(description string) { e.description = description }

func (e *entry) equal(o *entry) bool {
	return e.date == o.date && e.amount.Equal(o.amount) && e.description == o.description
}

// Sum adds up the values of txs.
func Sum(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Value())
	}
	return total
}

// Index returns the position of the first transaction equal to tx, or -1.
func Index(txs []Transaction, tx Transaction) int {
	for i, t := range txs {
		if t.Equal(tx) {
			return i
		}
	}
	return -1
}
