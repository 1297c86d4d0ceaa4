package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(opts *RootOptions, newEnv EnvironmentFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long: `Apply every pending schema migration to the configured database.

Migrations are idempotent; running the command twice is a no-op.

Examples:
  provenance-cli migrate
  provenance-cli migrate --config config/config.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnvironment(cmd, opts, newEnv, func(ctx context.Context, env Environment) error {
				if err := env.Migrate(ctx); err != nil {
					return WrapExitError(ExitFailure, "failed to migrate database", err)
				}

				if opts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), map[string]bool{"migrated": true})
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
				return err
			})
		},
	}
}
