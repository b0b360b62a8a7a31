// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the tilebatch command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/tilebatch"
	"github.com/matt-FFFFFF/tilebatch/cmd/tilebatch/config"
	"github.com/matt-FFFFFF/tilebatch/cmd/tilebatch/layers"
	"github.com/matt-FFFFFF/tilebatch/cmd/tilebatch/run"
	"github.com/matt-FFFFFF/tilebatch/cmd/tilebatch/worker"
	"github.com/matt-FFFFFF/tilebatch/internal/ctxlog"
	"github.com/matt-FFFFFF/tilebatch/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

// rootCmd is the root command for the CLI.
var rootCmd = &cli.Command{
	Commands: []*cli.Command{
		run.RunCmd,
		config.ConfigCmd,
		layers.LayersCmd,
		worker.WorkerCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "tilebatch",
	Description: `tilebatch converts a directory of ESA WorldCover land-cover GeoTIFF tiles
into GeoJSONSeq files. Tiles are spread over a fixed pool of worker processes,
one tile per worker at a time, and the conversion itself is done by the GDAL
command-line tools.`,
	Usage:     "tilebatch run --input ./data --output ./output",
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	EnableShellCompletion: true,
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", tilebatch.Version, tilebatch.Commit)

	// A worker's stdout carries the protocol, so it logs to stderr and leaves
	// signals to the coordinator.
	if isWorker(os.Args) {
		ctx = ctxlog.New(ctx, ctxlog.NewConsoleLogger(os.Stderr))

		if err := rootCmd.Run(ctx, os.Args); err != nil {
			ctxlog.Logger(ctx).Error("worker failed", "error", err)
			os.Exit(1)
		}

		return
	}

	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel)

	err := rootCmd.Run(ctx, os.Args) // Err is handled by cli framework

	// Check if the context was cancelled (e.g., due to signals)
	if ctx.Err() != nil {
		ctxlog.Logger(ctx).Error("command terminated due to cancellation", "error", ctx.Err())
		os.Exit(1)
	}

	if err != nil {
		ctxlog.Logger(ctx).Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

func isWorker(args []string) bool {
	return len(args) > 1 && args[1] == worker.WorkerCmd.Name
}
