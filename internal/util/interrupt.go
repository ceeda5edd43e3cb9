package util

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// SetupInterruptHandler cancels the run context on the first interrupt so
// the crawl loop can stop at the next story boundary. A second interrupt
// exits immediately.
func SetupInterruptHandler(cancel context.CancelFunc) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sig
		fmt.Println("\nInterrupt received. Finishing current story...")
		cancel()

		<-sig
		fmt.Println("\nExiting due to interrupt.")
		os.Exit(1)
	}()
}
