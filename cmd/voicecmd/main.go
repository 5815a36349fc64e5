// Package main is the voicecmd entrypoint for both the recognition host (serve)
// and the command consumer (run).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rbright/voicecmd/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(app.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr))
}
