package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/headquarters-dev/privatebank/internal/buildinfo"
	"github.com/headquarters-dev/privatebank/internal/config"
)

// globalFlags are the persistent flags shared by every command that opens
// the ledger.
type globalFlags struct {
	configPath string
	dir        string
	verbose    bool
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:     "privatebank",
		Short:   "Personal finance ledger",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", config.FileName, "config file")
	rootCmd.PersistentFlags().StringVar(&flags.dir, "dir", "", "account directory (overrides storage.dir)")
	rootCmd.PersistentFlags().BoolVar(&flags.verbose, "verbose", false, "debug logging")

	rootCmd.AddCommand(
		newInitCommand(),
		newAccountCommand(flags),
		newTxCommand(flags),
		newBalanceCommand(flags),
		newImportCommand(flags),
	)

	return rootCmd
}
