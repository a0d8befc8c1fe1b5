// Paizer - a minimal real-time TCP chat client with a companion relay.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"paizer/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "paizer: %v\n", err)
		os.Exit(1)
	}
}
