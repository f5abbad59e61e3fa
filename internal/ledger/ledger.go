// Package ledger keeps named accounts and their transactions, enforces the
// admission rules and writes every change through to a Backend.
package ledger

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/headquarters-dev/privatebank/internal/bank"
	"github.com/headquarters-dev/privatebank/internal/storage"
)

// Backend persists whole accounts. storage.Dir and storage.Nop implement it.
type Backend interface {
	List() ([]string, error)
	Read(account string) ([]bank.Transaction, error)
	Write(account string, txs []bank.Transaction) error
	Remove(account string) error
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithBackend sets where accounts are persisted. The default keeps them in
// memory only.
func WithBackend(b Backend) Option {
	return func(l *Ledger) {
		if b != nil {
			l.backend = b
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Ledger maps account names to their ordered transactions. All methods are
// safe for concurrent use; one mutex guards the whole map.
//
// Every mutation is staged: the next account state is built and written to
// the backend first, and only committed in memory once the write succeeded.
type Ledger struct {
	mu               sync.Mutex
	name             string
	incomingInterest decimal.Decimal
	outgoingInterest decimal.Decimal
	accounts         map[string][]bank.Transaction
	backend          Backend
	logger           *zap.Logger
}

// New creates an empty ledger. Both default rates must lie within [0, 1].
func New(name string, incomingInterest, outgoingInterest decimal.Decimal, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		name:     name,
		accounts: make(map[string][]bank.Transaction),
		backend:  storage.Nop{},
		logger:   zap.NewNop(),
	}
	if err := l.SetIncomingInterest(incomingInterest); err != nil {
		return nil, err
	}
	if err := l.SetOutgoingInterest(outgoingInterest); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Open creates a ledger and loads every account the backend holds.
func Open(name string, incomingInterest, outgoingInterest decimal.Decimal, opts ...Option) (*Ledger, error) {
	l, err := New(name, incomingInterest, outgoingInterest, opts...)
	if err != nil {
		return nil, err
	}
	if err := l.Load(); err != nil {
		return nil, err
	}
	return l, nil
}

// Load reads every stored account and creates it through CreateAccount, so
// the admission rules apply to stored data as well. The first account that
// fails aborts the load.
func (l *Ledger) Load() error {
	names, err := l.backend.List()
	if err != nil {
		return fmt.Errorf("listing accounts: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, name := range names {
		txs, err := l.backend.Read(name)
		if err != nil {
			return fmt.Errorf("loading account %q: %w", name, err)
		}
		if err := l.createAccount(name, txs); err != nil {
			return fmt.Errorf("loading account %q: %w", name, err)
		}
		l.logger.Debug("account loaded", zap.String("account", name), zap.Int("transactions", len(txs)))
	}
	l.logger.Info("ledger loaded", zap.String("ledger", l.name), zap.Int("accounts", len(names)))
	return nil
}

func (l *Ledger) Name() string { return l.name }

func (l *Ledger) IncomingInterest() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.incomingInterest
}

func (l *Ledger) OutgoingInterest() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.outgoingInterest
}

// SetIncomingInterest changes the rate given to payments added from now on.
func (l *Ledger) SetIncomingInterest(rate decimal.Decimal) error {
	if err := bank.ValidateInterest(bank.FieldIncomingInterest, rate); err != nil {
		return err
	}
	l.mu.Lock()
	l.incomingInterest = rate
	l.mu.Unlock()
	return nil
}

// SetOutgoingInterest changes the rate given to payments added from now on.
func (l *Ledger) SetOutgoingInterest(rate decimal.Decimal) error {
	if err := bank.ValidateInterest(bank.FieldOutgoingInterest, rate); err != nil {
		return err
	}
	l.mu.Lock()
	l.outgoingInterest = rate
	l.mu.Unlock()
	return nil
}

// CreateAccount adds an account holding txs in the given order. Every
// transaction is checked before anything changes; the account is only
// created if all of them are accepted.
func (l *Ledger) CreateAccount(account string, txs ...bank.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.createAccount(account, txs)
}

func (l *Ledger) createAccount(account string, txs []bank.Transaction) error {
	if _, ok := l.accounts[account]; ok {
		return accountErr(account, bank.ErrAccountAlreadyExists)
	}
	for _, tx := range txs {
		if err := bank.Validate(tx); err != nil {
			return accountErr(account, err)
		}
	}

	list := make([]bank.Transaction, 0, len(txs))
	for _, tx := range txs {
		stored, err := l.admit(list, tx)
		if err != nil {
			return accountErr(account, err)
		}
		list = append(list, stored)
	}

	if err := l.write(account, list); err != nil {
		return err
	}
	l.accounts[account] = list
	for _, tx := range txs {
		l.applyDefaults(tx)
	}
	return nil
}

// AddTransaction appends tx to account. A Payment takes the ledger's default
// rates once accepted.
func (l *Ledger) AddTransaction(account string, tx bank.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	list, ok := l.accounts[account]
	if !ok {
		return accountErr(account, bank.ErrAccountDoesNotExist)
	}
	stored, err := l.admit(list, tx)
	if err != nil {
		return accountErr(account, err)
	}

	next := append(slices.Clone(list), stored)
	if err := l.write(account, next); err != nil {
		return err
	}
	l.accounts[account] = next
	l.applyDefaults(tx)
	return nil
}

// RemoveTransaction removes the first transaction of account equal to tx.
func (l *Ledger) RemoveTransaction(account string, tx bank.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	list, ok := l.accounts[account]
	if !ok {
		return accountErr(account, bank.ErrAccountDoesNotExist)
	}
	i := -1
	if tx != nil {
		i = bank.Index(list, tx)
	}
	if i < 0 {
		return accountErr(account, bank.ErrTransactionDoesNotExist)
	}

	next := slices.Delete(slices.Clone(list), i, i+1)
	if err := l.write(account, next); err != nil {
		return err
	}
	l.accounts[account] = next
	return nil
}

// ContainsTransaction reports whether account holds a transaction equal to tx.
func (l *Ledger) ContainsTransaction(account string, tx bank.Transaction) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	list, ok := l.accounts[account]
	if !ok {
		return false, accountErr(account, bank.ErrAccountDoesNotExist)
	}
	return tx != nil && bank.Index(list, tx) >= 0, nil
}

// Balance returns the sum of the values of all transactions of account.
func (l *Ledger) Balance(account string) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	list, ok := l.accounts[account]
	if !ok {
		return decimal.Zero, accountErr(account, bank.ErrAccountDoesNotExist)
	}
	return bank.Sum(list), nil
}

// Transactions returns copies of the transactions of account in their
// current order.
func (l *Ledger) Transactions(account string) ([]bank.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	list, ok := l.accounts[account]
	if !ok {
		return nil, accountErr(account, bank.ErrAccountDoesNotExist)
	}
	return cloneAll(list), nil
}

// TransactionsSorted reorders account by value, keeping the relative order of
// equal values, and returns the result. The new order becomes the account's
// order in memory; it reaches the backend with the next write.
func (l *Ledger) TransactionsSorted(account string, ascending bool) ([]bank.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	list, ok := l.accounts[account]
	if !ok {
		return nil, accountErr(account, bank.ErrAccountDoesNotExist)
	}
	slices.SortStableFunc(list, func(a, b bank.Transaction) int {
		if ascending {
			return a.Value().Cmp(b.Value())
		}
		return b.Value().Cmp(a.Value())
	})
	return cloneAll(list), nil
}

// TransactionsByType returns the transactions of account with a value >= 0
// when positive is true, and those with a value < 0 otherwise.
func (l *Ledger) TransactionsByType(account string, positive bool) ([]bank.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	list, ok := l.accounts[account]
	if !ok {
		return nil, accountErr(account, bank.ErrAccountDoesNotExist)
	}
	var result []bank.Transaction
	for _, tx := range list {
		if tx.Value().IsNegative() != positive {
			result = append(result, tx.Clone())
		}
	}
	return result, nil
}

// DeleteAccount removes account and its stored file.
func (l *Ledger) DeleteAccount(account string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.accounts[account]; !ok {
		return accountErr(account, bank.ErrAccountDoesNotExist)
	}
	if err := l.backend.Remove(account); err != nil {
		return err
	}
	delete(l.accounts, account)
	l.logger.Debug("account removed", zap.String("account", account))
	return nil
}

// Accounts returns all account names, sorted.
func (l *Ledger) Accounts() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, 0, len(l.accounts))
	for name := range l.accounts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// HasAccount reports whether account exists.
func (l *Ledger) HasAccount(account string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.accounts[account]
	return ok
}

// Equal reports whether both ledgers have the same name, rates and accounts.
func (l *Ledger) Equal(other *Ledger) bool {
	if other == nil {
		return false
	}
	if l == other {
		return true
	}
	name, in, out, accounts := other.snapshot()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.name != name || !l.incomingInterest.Equal(in) || !l.outgoingInterest.Equal(out) {
		return false
	}
	return maps.EqualFunc(l.accounts, accounts, func(a, b []bank.Transaction) bool {
		return slices.EqualFunc(a, b, bank.Transaction.Equal)
	})
}

func (l *Ledger) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fmt.Sprintf("Ledger: name=%s, incoming interest=%s, outgoing interest=%s",
		l.name, l.incomingInterest, l.outgoingInterest)
}

func (l *Ledger) snapshot() (string, decimal.Decimal, decimal.Decimal, map[string][]bank.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	accounts := make(map[string][]bank.Transaction, len(l.accounts))
	for name, list := range l.accounts {
		accounts[name] = slices.Clone(list)
	}
	return l.name, l.incomingInterest, l.outgoingInterest, accounts
}

// admit checks tx against list and returns the copy to store.
func (l *Ledger) admit(list []bank.Transaction, tx bank.Transaction) (bank.Transaction, error) {
	if err := bank.Validate(tx); err != nil {
		return nil, err
	}
	stored := tx.Clone()
	l.applyDefaults(stored)
	if bank.Index(list, stored) >= 0 {
		return nil, bank.ErrTransactionAlreadyExists
	}
	return stored, nil
}

// applyDefaults gives a Payment the ledger's rates. The ledger's rates are
// always in range, so the setters cannot fail.
func (l *Ledger) applyDefaults(tx bank.Transaction) {
	if p, ok := tx.(*bank.Payment); ok {
		_ = p.SetIncomingInterest(l.incomingInterest)
		_ = p.SetOutgoingInterest(l.outgoingInterest)
	}
}

func (l *Ledger) write(account string, txs []bank.Transaction) error {
	if err := l.backend.Write(account, txs); err != nil {
		l.logger.Warn("account write failed", zap.String("account", account), zap.Error(err))
		return err
	}
	l.logger.Debug("account written", zap.String("account", account), zap.Int("transactions", len(txs)))
	return nil
}

func accountErr(account string, err error) error {
	return fmt.Errorf("account %q: %w", account, err)
}

func cloneAll(txs []bank.Transaction) []bank.Transaction {
	out := make([]bank.Transaction, len(txs))
	for i, tx := range txs {
		out[i] = tx.Clone()
	}
	return out
}
