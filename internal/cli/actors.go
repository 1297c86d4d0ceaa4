package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewActorsCommand creates the actors command group.
func NewActorsCommand(opts *RootOptions, newEnv EnvironmentFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "actors",
		Short: "Manage actor display names",
	}

	cmd.AddCommand(newActorsImportCommand(opts, newEnv))

	return cmd
}

func newActorsImportCommand(opts *RootOptions, newEnv EnvironmentFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import actor display names from a JSON registry file",
		Long: `Import actor display names from a JSON registry file of the form
{"actors":[{"address":"0x...","name":"..."}]}.

Existing addresses are renamed; addresses compare case-insensitively.

Examples:
  provenance-cli actors import config/actors.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnvironment(cmd, opts, newEnv, func(ctx context.Context, env Environment) error {
				if err := env.Migrate(ctx); err != nil {
					return WrapExitError(ExitFailure, "failed to migrate database", err)
				}

				n, err := env.Registry().Import(ctx, args[0])
				if err != nil {
					return WrapExitError(ExitFailure, "failed to import actors", err)
				}

				if opts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), map[string]interface{}{"file": args[0], "imported": n})
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d actors from %s\n", n, args[0])
				return err
			})
		},
	}
}
