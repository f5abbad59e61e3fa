package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/headquarters-dev/privatebank/internal/bank"
)

// ChaseParser parses Chase bank checking CSV exports. Every row becomes a
// Payment; the ledger assigns its default rates when the rows are added.
type ChaseParser struct{}

const (
	chaseDateFormat = "01/02/2006"
	chaseNumFields  = 7
	chaseColDate    = 1
	chaseColDesc    = 2
	chaseColAmount  = 3
)

// Format returns the parser name.
func (p *ChaseParser) Format() string { return "chase" }

// Parse reads a Chase CSV and returns one Payment per row.
func (p *ChaseParser) Parse(r io.Reader) ([]bank.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = chaseNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading chase CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var txs []bank.Transaction
	for i, rec := range records[1:] {
		tx, err := parseChaseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func parseChaseRow(rec []string) (*bank.Payment, error) {
	date, err := time.Parse(chaseDateFormat, strings.TrimSpace(rec[chaseColDate]))
	if err != nil {
		return nil, fmt.Errorf("parsing date %q: %w", rec[chaseColDate], err)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(rec[chaseColAmount]))
	if err != nil {
		return nil, fmt.Errorf("parsing amount %q: %w", rec[chaseColAmount], err)
	}

	return bank.NewPayment(date.Format(bank.DateLayout), amount, strings.TrimSpace(rec[chaseColDesc]), decimal.Zero, decimal.Zero)
}
