package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand(NewEnvironment)
	require.NotNil(t, cmd)
	assert.Equal(t, "provenance-cli", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand(NewEnvironment)
	commands := [][]string{{"migrate"}, {"backfill"}, {"verify"}, {"actors", "import"}}

	for _, path := range commands {
		t.Run(path[len(path)-1], func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err)
			require.NotNil(t, subCmd)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand(NewEnvironment)

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	envFlag := cmd.PersistentFlags().Lookup("env")
	require.NotNil(t, envFlag)
	assert.Equal(t, "config/", envFlag.DefValue)
}

func TestBackfillCommandFlags(t *testing.T) {
	cmd := NewRootCommand(NewEnvironment)
	backfillCmd, _, err := cmd.Find([]string{"backfill"})
	require.NoError(t, err)

	for _, name := range []string{"from", "to"} {
		flag := backfillCmd.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, "0", flag.DefValue)
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
	assert.Equal(t, ExitFailure, GetExitCode(WrapExitError(ExitFailure, "wrapped", assert.AnError)))
}
