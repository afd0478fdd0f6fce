// Package main provides the assetfix CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mesh-intelligence/assetfix/internal/cli"
)

func main() {
	// Cancellation takes effect between statements; the backup tables make
	// an interrupted run recoverable.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
