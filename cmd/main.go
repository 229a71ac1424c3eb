package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()
	if err != nil {
		// Use stderr directly since the logger may not be initialized yet
		_, _ = os.Stderr.WriteString("rosterquiz: " + err.Error() + "\n")
		os.Exit(1)
	}
}
