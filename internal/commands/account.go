package commands

import (
	"github.com/spf13/cobra"
)

func newAccountCommand(flags *globalFlags) *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts",
	}
	accountCmd.AddCommand(
		&cobra.Command{
			Use:   "create <name>",
			Short: "Create an empty account",
			Args:  cobra.ExactArgs(1),
			RunE: withSession(flags, func(s *Session, args []string) error {
				if err := s.Ledger.CreateAccount(args[0]); err != nil {
					return err
				}
				s.Printf("Created account %s\n", args[0])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "delete <name>",
			Short: "Delete an account and its file",
			Args:  cobra.ExactArgs(1),
			RunE: withSession(flags, func(s *Session, args []string) error {
				if err := s.Ledger.DeleteAccount(args[0]); err != nil {
					return err
				}
				s.Printf("Deleted account %s\n", args[0])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "list",
			Short: "List accounts with their balances",
			Args:  cobra.NoArgs,
			RunE:  withSession(flags, runAccountList),
		},
	)
	return accountCmd
}

func runAccountList(s *Session, _ []string) error {
	names := s.Ledger.Accounts()
	if len(names) == 0 {
		s.Printf("No accounts.\n")
		return nil
	}
	tw := newTable(s.Out)
	tw.row("ACCOUNT", "TRANSACTIONS", "BALANCE")
	for _, name := range names {
		txs, err := s.Ledger.Transactions(name)
		if err != nil {
			return err
		}
		balance, err := s.Ledger.Balance(name)
		if err != nil {
			return err
		}
		tw.row(name, len(txs), formatMoney(balance, s.Config.Display.Currency))
	}
	return tw.flush()
}

// withSession opens the ledger before run and closes it afterwards.
func withSession(flags *globalFlags, run func(s *Session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, flags)
		if err != nil {
			return err
		}
		defer s.Close()
		return run(s, args)
	}
}
