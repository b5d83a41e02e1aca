package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"promptist/logger"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := newRootCmd().ExecuteContext(ctx)
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
