// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package controller runs one batch from start to finish: it prepares the
// output directories, enumerates the input files, spawns the workers, hands
// them to the dispatcher and prints progress and the final summary.
package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/matt-FFFFFF/tilebatch/internal/batch"
	"github.com/matt-FFFFFF/tilebatch/internal/config"
	"github.com/matt-FFFFFF/tilebatch/internal/ctxlog"
	"github.com/matt-FFFFFF/tilebatch/internal/dispatch"
	"github.com/matt-FFFFFF/tilebatch/internal/progress"
	"github.com/matt-FFFFFF/tilebatch/internal/queue"
	"github.com/matt-FFFFFF/tilebatch/internal/source"
	"github.com/matt-FFFFFF/tilebatch/internal/worker"
	"github.com/spf13/afero"
)

var (
	// ErrPrepare is returned when the output directories cannot be created.
	ErrPrepare = errors.New("failed to prepare output directories")
	// ErrStart is returned when the batch could not be started.
	ErrStart = errors.New("failed to start batch")
)

// Controller owns a batch for the duration of Run.
type Controller struct {
	Options  *config.Options
	Fs       afero.Fs
	Spawner  worker.Spawner
	Out      io.Writer         // Status lines and the summary
	Reporter progress.Reporter // Receives every progress event, may be nil
}

// Run executes the batch and returns its final accounting. Job failures and
// lost workers are not errors. An error is returned when the batch could not
// start or when ctx was cancelled; in the latter case the summary has still
// been written.
func (c *Controller) Run(ctx context.Context) (batch.Snapshot, error) {
	opts := c.Options
	ctx = ctxlog.With(ctx, "run", uuid.NewString())

	ctxlog.Info(ctx, "starting batch",
		"input", opts.Input,
		"output", opts.Output,
		"layers", opts.Layers,
		"threshold", opts.Threshold,
		"simplify", opts.Simplify,
		"parallel", opts.Parallel,
		"mode", opts.Mode,
		"backend", opts.Backend)

	jobs, err := c.prepare(ctx)
	if err != nil {
		return batch.Snapshot{}, err
	}

	q := queue.New(jobs)
	state := batch.New(q.Len())

	if q.IsEmpty() {
		ctxlog.Info(ctx, "no input files found", "input", opts.Input, "pattern", opts.Pattern)

		if err := state.Start(0); err != nil {
			return batch.Snapshot{}, errors.Join(ErrStart, err)
		}

		return c.finish(ctx, state)
	}

	d := dispatch.New(q, state, c.Reporter, opts.Parallel)

	if err := c.spawn(ctx, d); err != nil {
		return batch.Snapshot{}, errors.Join(ErrStart, err)
	}

	if err := state.Start(opts.Parallel); err != nil {
		return batch.Snapshot{}, errors.Join(ErrStart, err)
	}

	if err := d.Start(ctx); err != nil {
		return batch.Snapshot{}, errors.Join(ErrStart, err)
	}

	ticker := time.NewTicker(opts.Interval)
	status := progress.NewStatus(c.Out, opts.Debug)

	runErr := d.Run(ctx, ticker.C, func(snap batch.Snapshot) {
		if _, err := status.Tick(snap); err != nil {
			ctxlog.Warn(ctx, "failed to write status", "error", err)
		}
	})

	ticker.Stop()

	snap, err := c.finish(ctx, state)

	return snap, errors.Join(runErr, err)
}

// prepare creates the output directories, fetches the input set if asked
// and lists the jobs.
func (c *Controller) prepare(ctx context.Context) ([]string, error) {
	opts := c.Options

	for _, dir := range []string{opts.GeoJSONDir(), opts.SieveDir()} {
		if err := c.Fs.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Join(ErrPrepare, err)
		}
	}

	if opts.InputURL != "" {
		if err := source.Fetch(ctx, opts.InputURL, opts.Input); err != nil {
			return nil, err //nolint:wrapcheck
		}
	}

	jobs, err := source.Enumerate(ctx, c.Fs, opts.Input, opts.Pattern)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return jobs, nil
}

// spawn starts Options.Parallel workers and registers them with d. If any
// worker fails to start, those already started are shut down.
func (c *Controller) spawn(ctx context.Context, d *dispatch.Dispatcher) error {
	started := make([]worker.Handle, 0, c.Options.Parallel)

	abort := func(err error) error {
		for _, h := range started {
			_ = h.Terminate()
		}

		return err
	}

	for range c.Options.Parallel {
		h, err := c.Spawner.Spawn(ctx, d.Events())
		if err != nil {
			return abort(err)
		}

		started = append(started, h)

		if err := d.Register(h); err != nil {
			return abort(err)
		}

		ctxlog.Debug(ctx, "worker started", "worker", h.ID())
	}

	return nil
}

func (c *Controller) finish(ctx context.Context, state *batch.State) (batch.Snapshot, error) {
	snap := state.Snapshot()

	ctxlog.Info(ctx, "batch finished",
		"phase", snap.Phase.String(),
		"completed", snap.Completed,
		"failed", len(snap.Failed),
		"lost", len(snap.Lost))

	if err := snap.WriteSummary(c.Out); err != nil {
		return snap, fmt.Errorf("writing summary: %w", err)
	}

	return snap, nil
}
