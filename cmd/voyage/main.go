package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errRejected) {
			fmt.Fprintf(os.Stderr, "\033[91m[ FAIL ] %v\033[0m\n", err)
		}
		stop()
		os.Exit(1)
	}
}
