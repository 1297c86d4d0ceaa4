package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	EnvPath    string
	Verbose    bool
	Format     string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the provenance CLI.
// newEnv builds the collaborators of each command after flags are parsed.
func NewRootCommand(newEnv EnvironmentFactory) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "provenance-cli",
		Short: "Operator tools for the supply-chain provenance indexer",
		Long: `Operator tools for the supply-chain provenance indexer.

Replays ledger block ranges into the database, applies migrations,
prints a batch verification and imports actor display names.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "path to configuration file")
	cmd.PersistentFlags().StringVar(&opts.EnvPath, "env", "config/", "path to environment files")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	// Add subcommands
	cmd.AddCommand(NewMigrateCommand(opts, newEnv))
	cmd.AddCommand(NewBackfillCommand(opts, newEnv))
	cmd.AddCommand(NewVerifyCommand(opts, newEnv))
	cmd.AddCommand(NewActorsCommand(opts, newEnv))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
