package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/headquarters-dev/privatebank/internal/config"
)

type initOptions struct {
	name     string
	incoming string
	outgoing string
	currency string
}

func newInitCommand() *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ledger",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.OutOrStdout(), absDir, opts)
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "ledger name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&opts.incoming, "incoming", "0", "default incoming interest for payments, between 0 and 1")
	cmd.Flags().StringVar(&opts.outgoing, "outgoing", "0", "default outgoing interest for payments, between 0 and 1")
	cmd.Flags().StringVar(&opts.currency, "currency", "EUR", "ISO 4217 currency used to display amounts")

	return cmd
}

func runInit(out io.Writer, dir string, opts initOptions) error {
	path := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking config: %w", err)
	}

	cfg := config.Default(opts.name)
	cfg.Bank.IncomingInterest = opts.incoming
	cfg.Bank.OutgoingInterest = opts.outgoing
	cfg.Display.Currency = opts.currency
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.StoragePath(path), 0o755); err != nil {
		return fmt.Errorf("creating account directory: %w", err)
	}
	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(out, "Initialized ledger %q at %s\n", opts.name, dir)
	return nil
}
