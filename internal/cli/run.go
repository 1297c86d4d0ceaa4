package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// withEnvironment builds the environment, runs fn and closes the environment
func withEnvironment(cmd *cobra.Command, opts *RootOptions, newEnv EnvironmentFactory, fn func(ctx context.Context, env Environment) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	env, err := newEnv(ctx, opts)
	if err != nil {
		return err
	}
	defer env.Close()

	return fn(ctx, env)
}
