package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "opportunity-finder",
		Short:         "Daily business opportunity discovery",
		SilenceUsage:  true,
	}

	root.AddCommand(
		serveCommand(),
		workerCommand(),
		runOnceCommand(),
		triggerCommand(),
		migrateCommand(),
	)
	return root
}
