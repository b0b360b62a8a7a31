// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package worker is the hidden sub-command run by worker processes.
package worker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/tilebatch/internal/config"
	"github.com/matt-FFFFFF/tilebatch/internal/convert"
	"github.com/matt-FFFFFF/tilebatch/internal/ctxlog"
	"github.com/matt-FFFFFF/tilebatch/internal/signalbroker"
	"github.com/matt-FFFFFF/tilebatch/internal/worker"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

// WorkerCmd serves conversion jobs on stdin and stdout. The options come
// from the coordinator through the environment.
var WorkerCmd = &cli.Command{
	Name:   "worker",
	Usage:  "Serve conversion jobs for a coordinating tilebatch process",
	Hidden: true,
	Action: actionFunc,
}

func actionFunc(ctx context.Context, _ *cli.Command) error {
	// interrupts go to the whole process group; the coordinator decides
	signalbroker.Ignore()

	opts, err := config.FromEnv(os.Getenv(config.WorkerEnvVar))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	ctxlog.RaiseVerbosity(opts.Verbose, opts.Debug)

	exec, err := convert.New(opts, afero.NewOsFs())
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	ctx = ctxlog.With(ctx, "pid", os.Getpid())
	ctxlog.Debug(ctx, "worker ready", "backend", opts.Backend)

	return worker.Serve(ctx, os.Stdin, os.Stdout, exec)
}
