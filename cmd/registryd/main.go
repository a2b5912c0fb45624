// Package main provides the entry point for the registryd CLI tool.
package main

import (
	"context"
	"os"

	"github.com/agentstation/playerregistry/cmd/registryd/app"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	application, err := app.New(version, commit, date)
	if err != nil {
		app.ExitOnError(err)
	}

	// Create context with signal handling for graceful shutdown
	ctx, cancel := app.ContextWithSignals(context.Background())
	defer cancel()

	if err := application.Execute(ctx, os.Args[1:]); err != nil {
		application.Close()
		app.ExitOnError(err)
	}
	application.Close()
}
