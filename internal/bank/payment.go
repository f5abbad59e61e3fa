package bank

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Payment is a deposit or withdrawal whose effect is reduced (credit) or
// enlarged (debit) by interest.
type Payment struct {
	entry
	incomingInterest decimal.Decimal
	outgoingInterest decimal.Decimal
}

// NewPayment creates a Payment. Both rates must lie within [0, 1].
func NewPayment(date string, amount decimal.Decimal, description string, incomingInterest, outgoingInterest decimal.Decimal) (*Payment, error) {
	p := &Payment{entry: entry{date: date, amount: amount, description: description}}
	if err := p.SetIncomingInterest(incomingInterest); err != nil {
		return nil, err
	}
	if err := p.SetOutgoingInterest(outgoingInterest); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Payment) Kind() Kind { return KindPayment }

func (p *Payment) IncomingInterest() decimal.Decimal { return p.incomingInterest }

func (p *Payment) OutgoingInterest() decimal.Decimal { return p.outgoingInterest }

// SetAmount replaces the amount. Any sign is allowed.
func (p *Payment) SetAmount(amount decimal.Decimal) error {
	p.amount = amount
	return nil
}

// SetIncomingInterest replaces the incoming rate. An out-of-range rate is
// rejected and the previous rate kept.
func (p *Payment) SetIncomingInterest(rate decimal.Decimal) error {
	if err := ValidateInterest(FieldIncomingInterest, rate); err != nil {
		return err
	}
	p.incomingInterest = rate
	return nil
}

// SetOutgoingInterest replaces the outgoing rate. An out-of-range rate is
// rejected and the previous rate kept.
func (p *Payment) SetOutgoingInterest(rate decimal.Decimal) error {
	if err := ValidateInterest(FieldOutgoingInterest, rate); err != nil {
		return err
	}
	p.outgoingInterest = rate
	return nil
}

// Value returns amount*(1-incoming) for a credit and amount*(1+outgoing)
// otherwise.
func (p *Payment) Value() decimal.Decimal {
	if p.amount.IsPositive() {
		return p.amount.Mul(one.Sub(p.incomingInterest))
	}
	return p.amount.Mul(one.Add(p.outgoingInterest))
}

func (p *Payment) Equal(other Transaction) bool {
	o, ok := other.(*Payment)
	if !ok || o == nil {
		return false
	}
	return p.entry.equal(&o.entry) &&
		p.incomingInterest.Equal(o.incomingInterest) &&
		p.outgoingInterest.Equal(o.outgoingInterest)
}

func (p *Payment) Clone() Transaction {
	c := *p
	return &c
}

func (p *Payment) String() string {
	return fmt.Sprintf("Payment: date=%s, amount=%s, value=%s, description=%s, incoming interest=%s, outgoing interest=%s",
		p.date, p.amount, p.Value(), p.description, p.incomingInterest, p.outgoingInterest)
}
