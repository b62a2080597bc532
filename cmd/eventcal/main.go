package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	fxmodules "eventcal/internal/fx"
	appLog "eventcal/internal/log"
)

const version = "0.1.0"

// globalFlags holds the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath string
	data       string
	logLevel   string
}

func (g *globalFlags) options() fxmodules.Options {
	return fxmodules.Options{
		ConfigPath: g.configPath,
		Data:       g.data,
		LogLevel:   g.logLevel,
	}
}

func main() {
	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "eventcal:", err)
		cancel()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "eventcal",
		Short:         "Browse, search and chart quarterly event files",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "eventcal.yaml", "path to config file")
	root.PersistentFlags().StringVar(&g.data, "data", "", "quarter files location, URL or directory (overrides config)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")

	root.AddCommand(
		newCalendarCmd(g, "month"),
		newCalendarCmd(g, "week"),
		newSearchCmd(g),
		newChartCmd(g),
		newExportCmd(g),
		newTUICmd(g),
		newServeDataCmd(g),
		newConfigCmd(g),
	)
	return root
}
