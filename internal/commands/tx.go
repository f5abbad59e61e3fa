package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/headquarters-dev/privatebank/internal/bank"
)

func newTxCommand(flags *globalFlags) *cobra.Command {
	txCmd := &cobra.Command{
		Use:   "tx",
		Short: "Manage the transactions of an account",
	}
	txCmd.AddCommand(
		newTxAddCommand(flags),
		newTxRemoveCommand(flags),
		newTxListCommand(flags),
	)
	return txCmd
}

type txFields struct {
	date        string
	amount      string
	description string
	sender      string
	recipient   string
}

func newTxAddCommand(flags *globalFlags) *cobra.Command {
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a transaction to an account",
	}

	for _, kind := range []struct {
		use   string
		short string
		build func(f txFields) (bank.Transaction, error)
	}{
		{"payment <account>", "Add a payment (negative amounts are withdrawals)", buildPayment},
		{"incoming <account>", "Add an incoming transfer", buildIncoming},
		{"outgoing <account>", "Add an outgoing transfer", buildOutgoing},
	} {
		kind := kind
		var f txFields
		cmd := &cobra.Command{
			Use:   kind.use,
			Short: kind.short,
			Args:  cobra.ExactArgs(1),
			RunE: withSession(flags, func(s *Session, args []string) error {
				tx, err := kind.build(f)
				if err != nil {
					return err
				}
				if err := s.Ledger.AddTransaction(args[0], tx); err != nil {
					return err
				}
				s.Printf("Added %s\n", tx)
				return nil
			}),
		}
		cmd.Flags().StringVar(&f.date, "date", time.Now().Format(bank.DateLayout), "transaction date")
		cmd.Flags().StringVar(&f.amount, "amount", "", "amount (required)")
		_ = cmd.MarkFlagRequired("amount")
		cmd.Flags().StringVar(&f.description, "description", "", "description")
		if kind.use != "payment <account>" {
			cmd.Flags().StringVar(&f.sender, "sender", "", "sender")
			cmd.Flags().StringVar(&f.recipient, "recipient", "", "recipient")
		}
		addCmd.AddCommand(cmd)
	}
	return addCmd
}

// Payments get the ledger's default rates on admission, so they are built
// with zero rates here.
func buildPayment(f txFields) (bank.Transaction, error) {
	amount, err := bank.ParseAmount(bank.FieldAmount, f.amount)
	if err != nil {
		return nil, err
	}
	p, err := bank.NewPayment(f.date, amount, f.description, decimal.Zero, decimal.Zero)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func buildIncoming(f txFields) (bank.Transaction, error) {
	amount, err := bank.ParseAmount(bank.FieldAmount, f.amount)
	if err != nil {
		return nil, err
	}
	t, err := bank.NewIncomingTransfer(f.date, amount, f.description, f.sender, f.recipient)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func buildOutgoing(f txFields) (bank.Transaction, error) {
	amount, err := bank.ParseAmount(bank.FieldAmount, f.amount)
	if err != nil {
		return nil, err
	}
	t, err := bank.NewOutgoingTransfer(f.date, amount, f.description, f.sender, f.recipient)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func newTxRemoveCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <account> <n>",
		Short: "Remove the n-th transaction as numbered by tx list without flags",
		Args:  cobra.ExactArgs(2),
		RunE: withSession(flags, func(s *Session, args []string) error {
			account := args[0]
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid position %q", args[1])
			}
			txs, err := s.Ledger.Transactions(account)
			if err != nil {
				return err
			}
			if n < 1 || n > len(txs) {
				return fmt.Errorf("position %d out of range, account %s has %d transactions", n, account, len(txs))
			}
			if err := s.Ledger.RemoveTransaction(account, txs[n-1]); err != nil {
				return err
			}
			s.Printf("Removed %s\n", txs[n-1])
			return nil
		}),
	}
}

func newTxListCommand(flags *globalFlags) *cobra.Command {
	var sortOrder, filter string

	cmd := &cobra.Command{
		Use:   "list <account>",
		Short: "List the transactions of an account",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(flags, func(s *Session, args []string) error {
			return runTxList(s, args[0], sortOrder, filter)
		}),
	}
	cmd.Flags().StringVar(&sortOrder, "sort", "", "sort by value: asc or desc")
	cmd.Flags().StringVar(&filter, "filter", "", "only positive or negative values")
	return cmd
}

func runTxList(s *Session, account, sortOrder, filter string) error {
	var (
		txs []bank.Transaction
		err error
	)
	switch sortOrder {
	case "":
		txs, err = s.Ledger.Transactions(account)
	case "asc", "desc":
		txs, err = s.Ledger.TransactionsSorted(account, sortOrder == "asc")
	default:
		return fmt.Errorf("invalid --sort %q, want asc or desc", sortOrder)
	}
	if err != nil {
		return err
	}

	switch filter {
	case "":
	case "positive", "negative":
		if txs, err = s.Ledger.TransactionsByType(account, filter == "positive"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid --filter %q, want positive or negative", filter)
	}

	if len(txs) == 0 {
		s.Printf("No transactions.\n")
		return nil
	}

	currency := s.Config.Display.Currency
	tw := newTable(s.Out)
	tw.row("#", "DATE", "TYPE", "DESCRIPTION", "AMOUNT", "VALUE")
	for i, tx := range txs {
		tw.row(i+1, tx.Date(), tx.Kind(), tx.Description(), formatMoney(tx.Amount(), currency), formatMoney(tx.Value(), currency))
	}
	return tw.flush()
}
