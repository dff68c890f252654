// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/danibene/respiring/internal/daemon"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("respiring serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var configPath string
	fs.StringVar(&configPath, "config", "", "path to config file (YAML)")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	// Explicit --config wins; otherwise auto-load config.yaml from the data
	// dir so a previously written config persists across restarts.
	effective := strings.TrimSpace(configPath)
	if effective == "" {
		effective = resolveDefaultConfigPath()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := daemon.Bootstrap(ctx, effective)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if err := c.App.Run(ctx); err != nil {
		c.Logger.Error().Err(err).Str("event", "daemon.failed").Msg("daemon exited with error")
		return 1
	}

	c.Logger.Info().Msg("server exiting")
	return 0
}

func resolveDefaultConfigPath() string {
	dataDir := strings.TrimSpace(os.Getenv("RESPIRING_DATA_DIR"))
	if dataDir == "" {
		dataDir = "./data"
	}
	autoPath := filepath.Join(dataDir, "config.yaml")
	if info, err := os.Stat(autoPath); err == nil && !info.IsDir() {
		return autoPath
	}
	return ""
}
