// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package worker

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/matt-FFFFFF/tilebatch/internal/ctxlog"
)

var _ Spawner = (*LocalSpawner)(nil)

// LocalSpawner runs each worker on its own goroutine inside the coordinator
// process.
type LocalSpawner struct {
	Executor Executor
	next     atomic.Int64
}

// NewLocalSpawner returns a spawner whose workers run exec.
func NewLocalSpawner(exec Executor) *LocalSpawner {
	return &LocalSpawner{Executor: exec}
}

// Spawn implements Spawner.
func (s *LocalSpawner) Spawn(ctx context.Context, events chan<- Message) (Handle, error) {
	if s.Executor == nil {
		return nil, fmt.Errorf("%w: %w", ErrSpawn, ErrNilExecutor)
	}

	h := &localHandle{
		id:    fmt.Sprintf("local-%d", s.next.Add(1)),
		inbox: make(chan Frame, 1),
	}

	go h.run(ctx, s.Executor, events)

	return h, nil
}

type localHandle struct {
	lifecycle

	id    string
	inbox chan Frame
}

func (h *localHandle) ID() string {
	return h.id
}

func (h *localHandle) Assign(job string) error {
	if err := h.assign(h.id, job); err != nil {
		return err
	}

	h.inbox <- Frame{Type: FrameAssign, Job: job}

	return nil
}

func (h *localHandle) Terminate() error {
	if err := h.terminate(h.id); err != nil {
		return err
	}

	h.inbox <- Frame{Type: FrameShutdown}

	return nil
}

func (h *localHandle) run(ctx context.Context, exec Executor, events chan<- Message) {
	logger := ctxlog.Logger(ctx).With("worker", h.id)

	for {
		select {
		case f := <-h.inbox:
			if f.Type == FrameShutdown {
				logger.Debug("worker shutting down")
				post(ctx, events, Message{Worker: h.id, Kind: KindExit})

				return
			}

			err := SafeExecute(ctx, exec, f.Job)
			if err != nil {
				logger.Warn("job failed", "job", f.Job, "error", err)
				err = fmt.Errorf("%w: %w", ErrJobFailed, err)
			}

			h.complete()
			post(ctx, events, Message{Worker: h.id, Kind: KindCompletion, Job: f.Job, Err: err})

		case <-ctx.Done():
			h.markDead()
			post(ctx, events, Message{Worker: h.id, Kind: KindExit, Err: fmt.Errorf("%w: %w", ErrWorkerLost, ctx.Err())})

			return
		}
	}
}
