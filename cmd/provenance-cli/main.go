package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/cli"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/config"
)

func main() {
	config.ChdirRepoRoot()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(cli.NewEnvironment).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(cli.GetExitCode(err))
	}
}
