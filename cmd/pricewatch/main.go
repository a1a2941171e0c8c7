package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/law-makers/pricewatch/internal/cli"
)

func main() {
	// Interrupts cancel in-flight searches and let serve/watch shut down gracefully
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}
