// Package main is the entry point for the tilde editor.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/tilde/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	application, err := app.New(app.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "tilde: %v\n", err)
		return app.ExitCode(err)
	}

	// Ensure cleanup on all exit paths
	defer application.Close()

	// Termination requests go through the loop so the terminal is restored.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(signals)

	go func() {
		for range signals {
			_ = application.RequestQuit()
		}
	}()

	if err := application.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "tilde: %v\n", err)
		return app.ExitCode(err)
	}
	return app.ExitCode(nil)
}
