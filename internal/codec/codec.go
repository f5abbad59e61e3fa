// Package codec converts transactions to and from the tagged JSON records
// stored in an account file:
//
//	{"type":"Payment","fields":{"date":"20.07.2020","amount":123,...}}
//
// An account file is a JSON array of such records, one per line.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/headquarters-dev/privatebank/internal/bank"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type record struct {
	Type   bank.Kind       `json:"type"`
	Fields json.RawMessage `json:"fields"`
}

type paymentFields struct {
	Date             string          `json:"date"`
	Amount           decimal.Decimal `json:"amount"`
	Description      string          `json:"description"`
	IncomingInterest decimal.Decimal `json:"incomingInterest"`
	OutgoingInterest decimal.Decimal `json:"outgoingInterest"`
}

type transferFields struct {
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Sender      string          `json:"sender"`
	Recipient   string          `json:"recipient"`
}

// decodeFields has a pointer per field so that absent fields can be told
// apart from zero values.
type decodeFields struct {
	Date             *string          `json:"date"`
	Amount           *decimal.Decimal `json:"amount"`
	Description      *string          `json:"description"`
	IncomingInterest *decimal.Decimal `json:"incomingInterest"`
	OutgoingInterest *decimal.Decimal `json:"outgoingInterest"`
	Sender           *string          `json:"sender"`
	Recipient        *string          `json:"recipient"`
}

// EncodeTransaction marshals tx into a single tagged record.
func EncodeTransaction(tx bank.Transaction) ([]byte, error) {
	var fields any
	switch v := tx.(type) {
	case *bank.Payment:
		fields = paymentFields{
			Date:             v.Date(),
			Amount:           v.Amount(),
			Description:      v.Description(),
			IncomingInterest: v.IncomingInterest(),
			OutgoingInterest: v.OutgoingInterest(),
		}
	case *bank.IncomingTransfer:
		fields = transferFields{v.Date(), v.Amount(), v.Description(), v.Sender(), v.Recipient()}
	case *bank.OutgoingTransfer:
		fields = transferFields{v.Date(), v.Amount(), v.Description(), v.Sender(), v.Recipient()}
	default:
		return nil, fmt.Errorf("cannot encode transaction of type %T", tx)
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s fields: %w", tx.Kind(), err)
	}
	return json.Marshal(record{Type: tx.Kind(), Fields: raw})
}

// DecodeTransaction reconstructs a transaction from a tagged record. The
// variant's constructor runs, so a rule violation is reported as
// bank.ErrTransactionAttribute.
func DecodeTransaction(data []byte) (bank.Transaction, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing record: %w", err)
	}
	if rec.Type == "" {
		return nil, errors.New("record has no type")
	}
	if len(rec.Fields) == 0 {
		return nil, fmt.Errorf("%s record has no fields", rec.Type)
	}

	var f decodeFields
	if err := json.Unmarshal(rec.Fields, &f); err != nil {
		return nil, fmt.Errorf("parsing %s fields: %w", rec.Type, err)
	}

	switch rec.Type {
	case bank.KindPayment:
		if err := f.require("date", "amount", "description", "incomingInterest", "outgoingInterest"); err != nil {
			return nil, fmt.Errorf("%s record: %w", rec.Type, err)
		}
		p, err := bank.NewPayment(*f.Date, *f.Amount, *f.Description, *f.IncomingInterest, *f.OutgoingInterest)
		if err != nil {
			return nil, err
		}
		return p, nil
	case bank.KindIncomingTransfer:
		if err := f.require("date", "amount", "description", "sender", "recipient"); err != nil {
			return nil, fmt.Errorf("%s record: %w", rec.Type, err)
		}
		t, err := bank.NewIncomingTransfer(*f.Date, *f.Amount, *f.Description, *f.Sender, *f.Recipient)
		if err != nil {
			return nil, err
		}
		return t, nil
	case bank.KindOutgoingTransfer:
		if err := f.require("date", "amount", "description", "sender", "recipient"); err != nil {
			return nil, fmt.Errorf("%s record: %w", rec.Type, err)
		}
		t, err := bank.NewOutgoingTransfer(*f.Date, *f.Amount, *f.Description, *f.Sender, *f.Recipient)
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unknown transaction type %q", rec.Type)
	}
}

func (f decodeFields) require(names ...string) error {
	present := map[string]bool{
		"date":             f.Date != nil,
		"amount":           f.Amount != nil,
		"description":      f.Description != nil,
		"incomingInterest": f.IncomingInterest != nil,
		"outgoingInterest": f.OutgoingInterest != nil,
		"sender":           f.Sender != nil,
		"recipient":        f.Recipient != nil,
	}
	var missing []string
	for _, n := range names {
		if !present[n] {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// EncodeAccount writes txs as a JSON array with one record per line.
func EncodeAccount(w io.Writer, txs []bank.Transaction) error {
	var buf bytes.Buffer
	if len(txs) == 0 {
		buf.WriteString("[]\n")
	} else {
		buf.WriteString("[\n")
		for i, tx := range txs {
			data, err := EncodeTransaction(tx)
			if err != nil {
				return fmt.Errorf("encoding transaction %d: %w", i, err)
			}
			buf.WriteByte(' ')
			buf.Write(data)
			if i < len(txs)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		buf.WriteString("]\n")
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing account: %w", err)
	}
	return nil
}

// DecodeAccount reads an array written by EncodeAccount. Any record that
// fails to decode fails the whole account. Blank input is an empty account.
func DecodeAccount(r io.Reader) ([]bank.Transaction, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading account: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("parsing account: %w", err)
	}

	txs := make([]bank.Transaction, 0, len(raws))
	for i, raw := range raws {
		tx, err := DecodeTransaction(raw)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}
