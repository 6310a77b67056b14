package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dmitrijs2005/gowallet/internal/client/cli"
	"github.com/dmitrijs2005/gowallet/internal/client/config"
	"github.com/dmitrijs2005/gowallet/internal/flagx"
)

func main() {

	cmd, globals, rest := flagx.SplitCommand(os.Args[1:])
	if unknown := unknownGlobals(globals); len(unknown) > 0 {
		fmt.Fprintf(os.Stderr, "unknown flags %v, supported: %s\n", unknown, strings.Join(config.Globals(), " "))
		os.Exit(2)
	}

	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cmd, rest); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func unknownGlobals(globals []string) []string {
	known := flagx.FilterArgs(globals, config.Globals())
	if len(known) == len(globals) {
		return nil
	}
	keep := make(map[string]bool, len(known))
	for _, a := range known {
		keep[a] = true
	}
	var unknown []string
	for _, a := range globals {
		if !keep[a] {
			unknown = append(unknown, a)
		}
	}
	return unknown
}
