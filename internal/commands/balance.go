package commands

import (
	"github.com/spf13/cobra"
)

func newBalanceCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <account>",
		Short: "Show the balance of an account",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(flags, func(s *Session, args []string) error {
			balance, err := s.Ledger.Balance(args[0])
			if err != nil {
				return err
			}
			s.Printf("%s: %s\n", args[0], formatMoney(balance, s.Config.Display.Currency))
			return nil
		}),
	}
}
