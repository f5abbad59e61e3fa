package importer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/headquarters-dev/privatebank/internal/bank"
	"github.com/headquarters-dev/privatebank/internal/codec"
)

const chaseHeader = "Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #\n"

const chaseStatement = chaseHeader +
	"DEBIT,01/03/2025,GITHUB *PRO SUBSCRIPTION,-4.00,ACH_DEBIT,5196.00,\n" +
	"DEBIT,01/07/2025,AWS EMEA,-23.17,ACH_DEBIT,5172.83,\n" +
	"CREDIT,01/15/2025,ACME CONSULTING INVOICE 1042,3500.00,ACH_CREDIT,8672.83,\n" +
	"DEBIT,01/22/2025,\"RENT, JANUARY\",-1200.00,ACH_DEBIT,7472.83,\n"

func TestChaseParser_Parse(t *testing.T) {
	p := &ChaseParser{}
	txs, err := p.Parse(strings.NewReader(chaseStatement))
	require.NoError(t, err)
	require.Len(t, txs, 4)

	first, ok := txs[0].(*bank.Payment)
	require.True(t, ok, "got %T", txs[0])
	assert.Equal(t, "03.01.2025", first.Date())
	assert.Equal(t, "GITHUB *PRO SUBSCRIPTION", first.Description())
	assert.Equal(t, "-4.00", first.Amount().StringFixed(2))
	assert.True(t, first.IncomingInterest().IsZero())

	assert.Equal(t, "15.01.2025", txs[2].Date())
	assert.True(t, txs[2].Amount().IsPositive())
	assert.Equal(t, "RENT, JANUARY", txs[3].Description())
}

func TestChaseParser_EmptyFile(t *testing.T) {
	p := &ChaseParser{}
	txs, err := p.Parse(strings.NewReader(chaseHeader))
	require.NoError(t, err)
	assert.Nil(t, txs)
}

func TestChaseParser_BadRows(t *testing.T) {
	tests := []struct {
		name    string
		row     string
		errText string
	}{
		{"bad date", "DEBIT,NOTADATE,desc,-4.00,ACH_DEBIT,100.00,\n", "parsing date"},
		{"bad amount", "DEBIT,01/03/2025,desc,NOTANUMBER,ACH_DEBIT,100.00,\n", "parsing amount"},
		{"short row", "DEBIT,01/03/2025,desc\n", "reading chase CSV"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &ChaseParser{}
			_, err := p.Parse(strings.NewReader(chaseHeader + tt.row))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestChaseParser_RowNumberInError(t *testing.T) {
	p := &ChaseParser{}
	_, err := p.Parse(strings.NewReader(chaseStatement + "DEBIT,13/45/2025,x,-1,ACH_DEBIT,0,\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 6")
}

func TestAccountParser(t *testing.T) {
	in, err := bank.NewIncomingTransfer("01.01.2024", decimal.NewFromInt(50), "gift", "Ann", "Bob")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, codec.EncodeAccount(&buf, []bank.Transaction{in}))

	p := &AccountParser{}
	txs, err := p.Parse(&buf)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.True(t, txs[0].Equal(in))
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get("nonexistent"))
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(&ChaseParser{})
	p := r.Get("chase")
	require.NotNil(t, p)
	assert.Equal(t, "chase", p.Format())
}

func TestRegistry_CaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.Register(&ChaseParser{})
	assert.NotNil(t, r.Get("Chase"))
	assert.NotNil(t, r.Get("CHASE"))
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(&ChaseParser{})
	assert.Panics(t, func() { r.Register(&ChaseParser{}) })
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"account", "chase"}, r.Formats())
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statement.csv")
	require.NoError(t, os.WriteFile(path, []byte(chaseStatement), 0o644))

	r := DefaultRegistry()
	txs, err := r.ParseFile("chase", path)
	require.NoError(t, err)
	assert.Len(t, txs, 4)

	_, err = r.ParseFile("mt940", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown import format "mt940"`)

	_, err = r.ParseFile("chase", filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
