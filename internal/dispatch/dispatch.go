// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matt-FFFFFF/tilebatch/internal/batch"
	"github.com/matt-FFFFFF/tilebatch/internal/ctxlog"
	"github.com/matt-FFFFFF/tilebatch/internal/progress"
	"github.com/matt-FFFFFF/tilebatch/internal/queue"
	"github.com/matt-FFFFFF/tilebatch/internal/worker"
)

var (
	// ErrDuplicateWorker is returned when two handles share an id.
	ErrDuplicateWorker = errors.New("worker already registered")
	// ErrAlreadyStarted is returned by Register and Start once jobs have been handed out.
	ErrAlreadyStarted = errors.New("dispatcher already started")
	// ErrNoWorkers is returned by Start when nothing was registered.
	ErrNoWorkers = errors.New("no workers registered")
)

// slot is the dispatcher's record of one worker.
type slot struct {
	handle  worker.Handle
	job     string // job currently held, empty when idle
	retired bool   // shutdown was sent
	exited  bool   // exit message was received
}

// Dispatcher owns the queue and the batch state while the batch runs.
type Dispatcher struct {
	queue    *queue.Queue
	state    *batch.State
	reporter progress.Reporter
	events   chan worker.Message
	slots    map[string]*slot
	order    []*slot
	started  bool
}

// New returns a dispatcher for up to workers handles. The event channel holds
// worker.MessagesPerWorker messages per worker so a worker never blocks when
// posting. A nil reporter discards progress events.
func New(q *queue.Queue, state *batch.State, reporter progress.Reporter, workers int) *Dispatcher {
	if reporter == nil {
		reporter = progress.NewNullReporter()
	}

	return &Dispatcher{
		queue:    q,
		state:    state,
		reporter: reporter,
		events:   make(chan worker.Message, max(workers, 1)*worker.MessagesPerWorker),
		slots:    make(map[string]*slot, workers),
	}
}

// Events is the channel handles post their messages to.
func (d *Dispatcher) Events() chan<- worker.Message {
	return d.events
}

// Register adds a spawned handle. Handles are front-loaded in registration order.
func (d *Dispatcher) Register(h worker.Handle) error {
	if d.started {
		return ErrAlreadyStarted
	}

	if _, ok := d.slots[h.ID()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateWorker, h.ID())
	}

	s := &slot{handle: h}
	d.slots[h.ID()] = s
	d.order = append(d.order, s)

	return nil
}

// Start gives every registered worker its first job, or a shutdown if the
// queue is already empty. The batch state must already be running.
func (d *Dispatcher) Start(ctx context.Context) error {
	if d.started {
		return ErrAlreadyStarted
	}

	if len(d.order) == 0 {
		return ErrNoWorkers
	}

	d.started = true

	for _, s := range d.order {
		if err := d.next(ctx, s); err != nil {
			return err
		}
	}

	return nil
}

// Run applies worker messages until the batch is done. Every value received
// from ticks calls onTick with the current accounting. Run returns ctx.Err()
// if ctx is cancelled first, after recording every held job as lost, and any
// accounting error straight away.
func (d *Dispatcher) Run(ctx context.Context, ticks <-chan time.Time, onTick func(batch.Snapshot)) error {
	for !d.state.Done() {
		select {
		case <-ctx.Done():
			return errors.Join(ctx.Err(), d.abandon(ctx))
		case msg := <-d.events:
			if err := d.handle(ctx, msg); err != nil {
				return err
			}
		case <-ticks:
			if onTick != nil {
				onTick(d.state.Snapshot())
			}
		}
	}

	return nil
}

func (d *Dispatcher) handle(ctx context.Context, msg worker.Message) error {
	s, ok := d.slots[msg.Worker]
	if !ok {
		ctxlog.Warn(ctx, "message from unknown worker ignored", "worker", msg.Worker, "kind", msg.Kind.String())
		return nil
	}

	if s.exited {
		ctxlog.Warn(ctx, "message from exited worker ignored", "worker", msg.Worker, "kind", msg.Kind.String())
		return nil
	}

	switch msg.Kind {
	case worker.KindCompletion:
		return d.completed(ctx, s, msg)
	case worker.KindExit:
		return d.exited(ctx, s, msg)
	default:
		ctxlog.Warn(ctx, "unknown message kind ignored", "worker", msg.Worker, "kind", msg.Kind.String())
		return nil
	}
}

func (d *Dispatcher) completed(ctx context.Context, s *slot, msg worker.Message) error {
	if s.job == "" {
		ctxlog.Error(ctx, "completion from a worker that holds no job ignored",
			"worker", msg.Worker,
			"job", msg.Job)

		return nil
	}

	job := s.job
	if msg.Job != job {
		ctxlog.Warn(ctx, "completion names a different job than the one assigned",
			"worker", msg.Worker,
			"assigned", job,
			"reported", msg.Job)
	}

	s.job = ""

	if msg.Succeeded() {
		if err := d.state.RecordSuccess(job); err != nil {
			return err //nolint:wrapcheck
		}

		d.report(progress.EventSucceeded, s, job, nil)
	} else {
		if err := d.state.RecordFailure(job); err != nil {
			return err //nolint:wrapcheck
		}

		d.report(progress.EventFailed, s, job, msg.Err)
	}

	return d.next(ctx, s)
}

func (d *Dispatcher) exited(ctx context.Context, s *slot, msg worker.Message) error {
	s.exited = true

	if s.job != "" {
		job := s.job
		s.job = ""

		if err := d.state.RecordLost(job); err != nil {
			return err //nolint:wrapcheck
		}

		ctxlog.Error(ctx, "worker died while converting a file, file is lost",
			"worker", msg.Worker,
			"job", job,
			"error", msg.Err)
		d.report(progress.EventLost, s, job, msg.Err)
	}

	done, err := d.state.WorkerExited()
	if err != nil {
		return err //nolint:wrapcheck
	}

	snap := d.state.Snapshot()

	if msg.Err != nil && !s.retired {
		ctxlog.Warn(ctx, "worker lost", "worker", msg.Worker, "remaining", snap.LiveWorkers, "error", msg.Err)
	} else {
		ctxlog.Info(ctx, "worker exited", "worker", msg.Worker, "remaining", snap.LiveWorkers)
	}

	d.report(progress.EventExited, s, "", msg.Err)

	if done {
		d.report(progress.EventBatchDone, nil, "", nil)
	}

	return nil
}

// abandon records the jobs still held by live workers as lost. Cancelling
// the context kills the workers, so their completions will never arrive.
func (d *Dispatcher) abandon(ctx context.Context) error {
	for _, s := range d.order {
		if s.exited || s.job == "" {
			continue
		}

		job := s.job
		s.job = ""

		if err := d.state.RecordLost(job); err != nil {
			return err //nolint:wrapcheck
		}

		ctxlog.Warn(ctx, "batch cancelled while converting a file, file is lost",
			"worker", s.handle.ID(),
			"job", job)
		d.report(progress.EventLost, s, job, ctx.Err())
	}

	return nil
}

// next assigns the head of the queue to s, or retires s when the queue is empty.
func (d *Dispatcher) next(ctx context.Context, s *slot) error {
	job, ok := d.queue.Pop()
	if !ok {
		d.retire(ctx, s)
		return nil
	}

	if d.queue.IsEmpty() {
		if err := d.state.Drain(); err != nil {
			return err //nolint:wrapcheck
		}

		ctxlog.Debug(ctx, "queue empty, draining")
	}

	// A failed Assign means the worker is gone. The job stays held so that
	// the worker's exit message records it as lost.
	s.job = job

	if err := s.handle.Assign(job); err != nil {
		ctxlog.Warn(ctx, "failed to assign job", "worker", s.handle.ID(), "job", job, "error", err)
	} else {
		ctxlog.Debug(ctx, "job assigned", "worker", s.handle.ID(), "job", job)
	}

	d.report(progress.EventAssigned, s, job, nil)

	return nil
}

func (d *Dispatcher) retire(ctx context.Context, s *slot) {
	if s.retired {
		return
	}

	s.retired = true

	if err := s.handle.Terminate(); err != nil {
		ctxlog.Warn(ctx, "failed to shut down worker", "worker", s.handle.ID(), "error", err)
	} else {
		ctxlog.Debug(ctx, "worker shut down", "worker", s.handle.ID())
	}

	d.report(progress.EventRetired, s, "", nil)
}

func (d *Dispatcher) report(t progress.EventType, s *slot, job string, err error) {
	ev := progress.Event{
		Type:      t,
		Job:       job,
		Err:       err,
		Timestamp: time.Now(),
		Batch:     d.state.Snapshot(),
	}

	if s != nil {
		ev.Worker = s.handle.ID()
	}

	d.reporter.Report(ev)
}
