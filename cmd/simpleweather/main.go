package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/salmonumbrella/simpleweather/internal/cmd"
	"github.com/salmonumbrella/simpleweather/internal/update"
)

// Version information set via ldflags during build
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt)

	app := cmd.NewApp()
	app.Version = Version
	app.Commit = Commit
	app.BuildTime = BuildTime
	err := app.Execute(ctx, os.Args[1:])

	// Only nag interactive humans; piped output stays clean.
	if err == nil && term.IsTerminal(int(os.Stdout.Fd())) {
		if msg := update.Notify(ctx, Version); msg != "" {
			fmt.Fprintln(os.Stderr, "\n"+msg)
		}
	}

	cancel()
	if err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
