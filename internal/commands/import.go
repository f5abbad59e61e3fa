package commands

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/headquarters-dev/privatebank/internal/bank"
	"github.com/headquarters-dev/privatebank/internal/importer"
)

func newImportCommand(flags *globalFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import <account> <file>",
		Short: "Import a bank statement into an account",
		Long: "Import a bank statement into an account. A missing account is created " +
			"from the whole statement; otherwise rows already present are skipped.",
		Args: cobra.ExactArgs(2),
		RunE: withSession(flags, func(s *Session, args []string) error {
			return runImport(s, importer.DefaultRegistry(), args[0], args[1], format)
		}),
	}
	cmd.Flags().StringVar(&format, "format", "chase", "statement format (chase or account)")
	return cmd
}

func runImport(s *Session, registry *importer.Registry, account, path, format string) error {
	txs, err := registry.ParseFile(format, path)
	if err != nil {
		return err
	}

	if !s.Ledger.HasAccount(account) {
		if err := s.Ledger.CreateAccount(account, txs...); err != nil {
			return err
		}
		s.Printf("Created account %s with %d transactions\n", account, len(txs))
		return nil
	}

	added, skipped := 0, 0
	for _, tx := range txs {
		err := s.Ledger.AddTransaction(account, tx)
		switch {
		case err == nil:
			added++
		case errors.Is(err, bank.ErrTransactionAlreadyExists):
			skipped++
			s.Logger.Debug("skipping duplicate", zap.String("account", account), zap.Stringer("transaction", tx))
		default:
			return err
		}
	}
	s.Printf("Imported %d transactions into %s, skipped %d duplicates\n", added, account, skipped)
	return nil
}
