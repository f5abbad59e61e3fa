package bank

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// transfer is the part shared by both transfer directions. Its amount is
// never negative; the direction decides the sign of Value.
type transfer struct {
	entry
	sender    string
	recipient string
}

func newTransfer(date string, amount decimal.Decimal, description, sender, recipient string) (transfer, error) {
	t := transfer{entry: entry{date: date, description: description}, sender: sender, recipient: recipient}
	if err := t.SetAmount(amount); err != nil {
		return transfer{}, err
	}
	return t, nil
}

func (t *transfer) Sender() string { return t.sender }

func (t *transfer) Recipient() string { return t.recipient }

func (t *transfer) SetSender(sender string) { t.sender = sender }

func (t *transfer) SetRecipient(recipient string) { t.recipient = recipient }

// SetAmount replaces the amount. A negative amount is rejected and the
// previous amount kept.
func (t *transfer) SetAmount(amount decimal.Decimal) error {
	if err := ValidateTransferAmount(amount); err != nil {
		return err
	}
	t.amount = amount
	return nil
}

func (t *transfer) equal(o *transfer) bool {
	return t.entry.equal(&o.entry) && t.sender == o.sender && t.recipient == o.recipient
}

func (t *transfer) describe(kind Kind, value decimal.Decimal) string {
	return fmt.Sprintf("%s: date=%s, amount=%s, value=%s, description=%s, sender=%s, recipient=%s",
		kind, t.date, t.amount, value, t.description, t.sender, t.recipient)
}

// IncomingTransfer credits the account with its amount.
type IncomingTransfer struct {
	transfer
}

// NewIncomingTransfer creates an IncomingTransfer. amount must not be negative.
func NewIncomingTransfer(date string, amount decimal.Decimal, description, sender, recipient string) (*IncomingTransfer, error) {
	t, err := newTransfer(date, amount, description, sender, recipient)
	if err != nil {
		return nil, err
	}
	return &IncomingTransfer{transfer: t}, nil
}

func (t *IncomingTransfer) Kind() Kind { return KindIncomingTransfer }

func (t *IncomingTransfer) Value() decimal.Decimal { return t.amount }

func (t *IncomingTransfer) Equal(other Transaction) bool {
	o, ok := other.(*IncomingTransfer)
	return ok && o != nil && t.transfer.equal(&o.transfer)
}

func (t *IncomingTransfer) Clone() Transaction {
	c := *t
	return &c
}

func (t *IncomingTransfer) String() string { return t.describe(KindIncomingTransfer, t.Value()) }

// OutgoingTransfer debits the account with its amount.
type OutgoingTransfer struct {
	transfer
}

// NewOutgoingTransfer creates an OutgoingTransfer. amount must not be negative.
func NewOutgoingTransfer(date string, amount decimal.Decimal, description, sender, recipient string) (*OutgoingTransfer, error) {
	t, err := newTransfer(date, amount, description, sender, recipient)
	if err != nil {
		return nil, err
	}
	return &OutgoingTransfer{transfer: t}, nil
}

func (t *OutgoingTransfer) Kind() Kind { return KindOutgoingTransfer }

func (t *OutgoingTransfer) Value() decimal.Decimal { return t.amount.Neg() }

func (t *OutgoingTransfer) Equal(other Transaction) bool {
	o, ok := other.(*OutgoingTransfer)
	return ok && o != nil && t.transfer.equal(&o.transfer)
}

func (t *OutgoingTransfer) Clone() Transaction {
	c := *t
	return &c
}

func (t *OutgoingTransfer) String() string { return t.describe(KindOutgoingTransfer, t.Value()) }
