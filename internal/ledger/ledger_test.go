package ledger

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/headquarters-dev/privatebank/internal/bank"
	"github.com/headquarters-dev/privatebank/internal/storage"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newLedger(t *testing.T, opts ...Option) *Ledger {
	t.Helper()
	l, err := New("UBS", dec("0.4"), dec("0.12"), opts...)
	require.NoError(t, err)
	return l
}

func payment(t *testing.T, date, amount string) *bank.Payment {
	t.Helper()
	p, err := bank.NewPayment(date, dec(amount), "payment", decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	return p
}

func incoming(t *testing.T, amount string) *bank.IncomingTransfer {
	t.Helper()
	tx, err := bank.NewIncomingTransfer("01.01.2024", dec(amount), "in", "ACME", "Daniel")
	require.NoError(t, err)
	return tx
}

func outgoing(t *testing.T, amount string) *bank.OutgoingTransfer {
	t.Helper()
	tx, err := bank.NewOutgoingTransfer("02.01.2024", dec(amount), "out", "Daniel", "Bob")
	require.NoError(t, err)
	return tx
}

// failingBackend accepts reads but rejects every write and remove.
type failingBackend struct {
	storage.Nop
}

var errDiskFull = errors.New("disk full")

func (failingBackend) Write(string, []bank.Transaction) error { return errDiskFull }

func (failingBackend) Remove(string) error { return errDiskFull }

func TestNew_RejectsOutOfRangeRates(t *testing.T) {
	_, err := New("x", dec("1.5"), decimal.Zero)
	assert.ErrorIs(t, err, bank.ErrTransactionAttribute)

	_, err = New("x", decimal.Zero, dec("-0.1"))
	assert.ErrorIs(t, err, bank.ErrTransactionAttribute)
}

func TestBalance_Scenario(t *testing.T) {
	l := newLedger(t)
	require.NoError(t, l.CreateAccount("Daniel"))

	p := payment(t, "03.01.2024", "-45")
	require.NoError(t, l.AddTransaction("Daniel", incoming(t, "1000")))
	require.NoError(t, l.AddTransaction("Daniel", outgoing(t, "134")))
	require.NoError(t, l.AddTransaction("Daniel", p))

	// The caller's payment carries the ledger defaults after admission.
	assert.True(t, p.IncomingInterest().Equal(dec("0.4")))
	assert.True(t, p.OutgoingInterest().Equal(dec("0.12")))

	balance, err := l.Balance("Daniel")
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("815.6")), "balance %s", balance)
}

func TestCreateAccount_Duplicate(t *testing.T) {
	l := newLedger(t)
	require.NoError(t, l.CreateAccount("a"))
	assert.ErrorIs(t, l.CreateAccount("a"), bank.ErrAccountAlreadyExists)
}

func TestCreateAccount_WithTransactions(t *testing.T) {
	l := newLedger(t)
	p := payment(t, "01.01.2024", "10")
	require.NoError(t, l.CreateAccount("a", p, incoming(t, "5")))

	txs, err := l.Transactions("a")
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, bank.KindPayment, txs[0].Kind())
	assert.True(t, p.IncomingInterest().Equal(dec("0.4")))
}

func TestCreateAccount_DuplicateListCreatesNothing(t *testing.T) {
	l := newLedger(t)
	err := l.CreateAccount("a", incoming(t, "5"), outgoing(t, "1"), incoming(t, "5"))
	require.ErrorIs(t, err, bank.ErrTransactionAlreadyExists)
	assert.False(t, l.HasAccount("a"))
	assert.Empty(t, l.Accounts())
}

func TestCreateAccount_InvalidListCreatesNothing(t *testing.T) {
	l := newLedger(t)
	err := l.CreateAccount("a", incoming(t, "1"), nil)
	require.ErrorIs(t, err, bank.ErrTransactionAttribute)
	assert.False(t, l.HasAccount("a"))
}

func TestCreateAccount_PaymentsEqualAfterDefaults(t *testing.T) {
	l := newLedger(t)
	// Two payments that differ only in their rates collide once the ledger
	// defaults are applied.
	p1, err := bank.NewPayment("d", dec("10"), "x", dec("0.1"), dec("0.2"))
	require.NoError(t, err)
	p2, err := bank.NewPayment("d", dec("10"), "x", dec("0.3"), dec("0.4"))
	require.NoError(t, err)

	err = l.CreateAccount("a", p1, p2)
	require.ErrorIs(t, err, bank.ErrTransactionAlreadyExists)
	assert.True(t, p1.IncomingInterest().Equal(dec("0.1")), "rejected input is left untouched")
}

func TestAddTransaction_Duplicate(t *testing.T) {
	l := newLedger(t)
	require.NoError(t, l.CreateAccount("a"))
	require.NoError(t, l.AddTransaction("a", incoming(t, "5")))

	err := l.AddTransaction("a", incoming(t, "5"))
	require.ErrorIs(t, err, bank.ErrTransactionAlreadyExists)
	assert.Contains(t, err.Error(), `account "a"`)

	txs, err := l.Transactions("a")
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestAddTransaction_Errors(t *testing.T) {
	l := newLedger(t)
	assert.ErrorIs(t, l.AddTransaction("nobody", incoming(t, "1")), bank.ErrAccountDoesNotExist)

	require.NoError(t, l.CreateAccount("a"))
	assert.ErrorIs(t, l.AddTransaction("a", nil), bank.ErrTransactionAttribute)
}

func TestAddTransaction_StoresCopy(t *testing.T) {
	l := newLedger(t)
	require.NoError(t, l.CreateAccount("a"))
	tx := incoming(t, "5")
	require.NoError(t, l.AddTransaction("a", tx))

	tx.SetDescription("changed later")
	ok, err := l.ContainsTransaction("a", incoming(t, "5"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRemoveTransaction(t *testing.T) {
	l := newLedger(t)
	require.NoError(t, l.CreateAccount("a", incoming(t, "5"), outgoing(t, "2")))

	require.NoError(t, l.RemoveTransaction("a", incoming(t, "5")))
	ok, err := l.ContainsTransaction("a", incoming(t, "5"))
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, l.RemoveTransaction("a", incoming(t, "5")), bank.ErrTransactionDoesNotExist)
	assert.ErrorIs(t, l.RemoveTransaction("a", nil), bank.ErrTransactionDoesNotExist)
	assert.ErrorIs(t, l.RemoveTransaction("b", outgoing(t, "2")), bank.ErrAccountDoesNotExist)
}

func TestTransactionsSorted(t *testing.T) {
	l := newLedger(t)
	require.NoError(t, l.CreateAccount("a",
		incoming(t, "1000"),
		outgoing(t, "134"),
		payment(t, "03.01.2024", "-45"),
		incoming(t, "20"),
	))

	asc, err := l.TransactionsSorted("a", true)
	require.NoError(t, err)
	require.Len(t, asc, 4)
	assert.True(t, asc[0].Value().Equal(dec("-134")))
	assert.True(t, asc[3].Value().Equal(dec("1000")))

	desc, err := l.TransactionsSorted("a", false)
	require.NoError(t, err)
	assert.True(t, desc[0].Value().Equal(dec("1000")))
	assert.True(t, desc[3].Value().Equal(dec("-134")))

	// The sorted order sticks.
	txs, err := l.Transactions("a")
	require.NoError(t, err)
	assert.True(t, txs[0].Value().Equal(dec("1000")))
}

func TestTransactionsSorted_FractionalValues(t *testing.T) {
	l := newLedger(t)
	require.NoError(t, l.CreateAccount("a", incoming(t, "1.7"), incoming(t, "1.2"), incoming(t, "1.5")))

	asc, err := l.TransactionsSorted("a", true)
	require.NoError(t, err)
	var got []string
	for _, tx := range asc {
		got = append(got, tx.Value().String())
	}
	assert.Equal(t, []string{"1.2", "1.5", "1.7"}, got)
}

func TestTransactionsSorted_Stable(t *testing.T) {
	l := newLedger(t)
	first, err := bank.NewIncomingTransfer("d", dec("5"), "first", "a", "b")
	require.NoError(t, err)
	second, err := bank.NewIncomingTransfer("d", dec("5"), "second", "a", "b")
	require.NoError(t, err)
	require.NoError(t, l.CreateAccount("a", first, incoming(t, "1"), second))

	asc, err := l.TransactionsSorted("a", true)
	require.NoError(t, err)
	assert.Equal(t, "first", asc[1].Description())
	assert.Equal(t, "second", asc[2].Description())
}

func TestTransactionsByType(t *testing.T) {
	l := newLedger(t)
	zero := outgoing(t, "0")
	require.NoError(t, l.CreateAccount("a",
		incoming(t, "10"),
		outgoing(t, "3"),
		payment(t, "d", "-1"),
		payment(t, "d", "7"),
		zero,
	))

	pos, err := l.TransactionsByType("a", true)
	require.NoError(t, err)
	require.Len(t, pos, 3)
	assert.True(t, pos[2].Equal(zero), "zero value counts as positive")

	neg, err := l.TransactionsByType("a", false)
	require.NoError(t, err)
	require.Len(t, neg, 2)
	for _, tx := range neg {
		assert.True(t, tx.Value().IsNegative())
	}
}

func TestUnknownAccount(t *testing.T) {
	l := newLedger(t)

	_, err := l.Balance("x")
	assert.ErrorIs(t, err, bank.ErrAccountDoesNotExist)
	_, err = l.Transactions("x")
	assert.ErrorIs(t, err, bank.ErrAccountDoesNotExist)
	_, err = l.TransactionsSorted("x", true)
	assert.ErrorIs(t, err, bank.ErrAccountDoesNotExist)
	_, err = l.TransactionsByType("x", false)
	assert.ErrorIs(t, err, bank.ErrAccountDoesNotExist)
	_, err = l.ContainsTransaction("x", incoming(t, "1"))
	assert.ErrorIs(t, err, bank.ErrAccountDoesNotExist)
	assert.ErrorIs(t, l.DeleteAccount("x"), bank.ErrAccountDoesNotExist)
}

func TestDeleteAccount(t *testing.T) {
	l := newLedger(t)
	require.NoError(t, l.CreateAccount("b"))
	require.NoError(t, l.CreateAccount("a"))
	assert.Equal(t, []string{"a", "b"}, l.Accounts())

	require.NoError(t, l.DeleteAccount("a"))
	assert.Equal(t, []string{"b"}, l.Accounts())
	require.NoError(t, l.CreateAccount("a"), "name is free again")
}

func TestFailedWriteLeavesMemoryUnchanged(t *testing.T) {
	l := newLedger(t)
	require.NoError(t, l.CreateAccount("a", incoming(t, "5")))
	l.backend = failingBackend{}

	p := payment(t, "d", "-10")
	assert.ErrorIs(t, l.AddTransaction("a", p), errDiskFull)
	assert.True(t, p.IncomingInterest().IsZero(), "rates are only applied on success")
	assert.ErrorIs(t, l.RemoveTransaction("a", incoming(t, "5")), errDiskFull)
	assert.ErrorIs(t, l.CreateAccount("b"), errDiskFull)
	assert.ErrorIs(t, l.DeleteAccount("a"), errDiskFull)

	txs, err := l.Transactions("a")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.True(t, txs[0].Equal(incoming(t, "5")))
	assert.Equal(t, []string{"a"}, l.Accounts())
}

func TestInterestSetters(t *testing.T) {
	l := newLedger(t)
	require.NoError(t, l.SetIncomingInterest(dec("0.05")))
	assert.ErrorIs(t, l.SetOutgoingInterest(dec("2")), bank.ErrTransactionAttribute)
	assert.True(t, l.OutgoingInterest().Equal(dec("0.12")))

	require.NoError(t, l.CreateAccount("a"))
	p := payment(t, "d", "100")
	require.NoError(t, l.AddTransaction("a", p))
	assert.True(t, p.IncomingInterest().Equal(dec("0.05")))

	balance, err := l.Balance("a")
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("95")))
}

func TestEqualAndString(t *testing.T) {
	a := newLedger(t)
	b := newLedger(t)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(nil))

	require.NoError(t, a.CreateAccount("x", incoming(t, "1")))
	assert.False(t, a.Equal(b))
	require.NoError(t, b.CreateAccount("x", incoming(t, "1.00")))
	assert.True(t, a.Equal(b))

	assert.Equal(t, "Ledger: name=UBS, incoming interest=0.4, outgoing interest=0.12", a.String())
}

func TestPersistence_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	backend := storage.NewDir(dir, "")

	l := newLedger(t, WithBackend(backend))
	require.NoError(t, l.CreateAccount("Daniel"))
	require.NoError(t, l.AddTransaction("Daniel", incoming(t, "1000")))
	require.NoError(t, l.AddTransaction("Daniel", outgoing(t, "134")))
	require.NoError(t, l.AddTransaction("Daniel", payment(t, "03.01.2024", "-45")))
	require.NoError(t, l.CreateAccount("Empty"))

	reopened, err := Open("UBS", dec("0.4"), dec("0.12"), WithBackend(backend))
	require.NoError(t, err)
	assert.True(t, l.Equal(reopened))

	balance, err := reopened.Balance("Daniel")
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("815.6")))

	require.NoError(t, reopened.DeleteAccount("Empty"))
	_, err = os.Stat(filepath.Join(dir, "Empty.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestOpen_CorruptFileFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`[{"type":"Payment"}]`), 0o644))

	_, err := Open("UBS", dec("0.4"), dec("0.12"), WithBackend(storage.NewDir(dir, "")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `loading account "broken"`)
}

func TestOpen_DuplicateRecordsFail(t *testing.T) {
	dir := t.TempDir()
	record := `{"type":"IncomingTransfer","fields":{"date":"d","amount":5,"description":"x","sender":"a","recipient":"b"}}`
	data := "[\n " + record + ",\n " + record + "\n]\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dup.json"), []byte(data), 0o644))

	_, err := Open("UBS", dec("0.4"), dec("0.12"), WithBackend(storage.NewDir(dir, "")))
	assert.ErrorIs(t, err, bank.ErrTransactionAlreadyExists)
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	backend := storage.NewDir(t.TempDir(), "")

	l := newLedger(t, WithBackend(backend), WithLogger(zap.New(core)))
	require.NoError(t, l.CreateAccount("a", incoming(t, "1")))
	require.NoError(t, l.DeleteAccount("a"))

	written := logs.FilterMessage("account written").All()
	require.Len(t, written, 1)
	assert.Equal(t, "a", written[0].ContextMap()["account"])
	assert.EqualValues(t, 1, written[0].ContextMap()["transactions"])
	assert.Equal(t, 1, logs.FilterMessage("account removed").Len())

	require.NoError(t, backend.Write("b", nil))
	_, err := Open("UBS", dec("0.4"), dec("0.12"), WithBackend(backend), WithLogger(zap.New(core)))
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("account loaded").Len())
	loaded := logs.FilterMessage("ledger loaded").All()
	require.Len(t, loaded, 1)
	assert.Equal(t, zapcore.InfoLevel, loaded[0].Level)
}

func TestConcurrentAdds(t *testing.T) {
	l := newLedger(t)
	require.NoError(t, l.CreateAccount("a"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx, err := bank.NewIncomingTransfer("d", decimal.NewFromInt(int64(i)), "x", "a", "b")
			if err == nil {
				_ = l.AddTransaction("a", tx)
			}
		}()
	}
	wg.Wait()

	txs, err := l.Transactions("a")
	require.NoError(t, err)
	assert.Len(t, txs, 50)
	balance, err := l.Balance("a")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(1225)))
}
