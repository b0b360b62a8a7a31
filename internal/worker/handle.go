// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Handle is the dispatcher's view of one worker.
type Handle interface {
	// ID identifies the worker in logs and messages. Process workers use their pid.
	ID() string
	// Assign sends job to the worker. It fails unless the worker is idle.
	Assign(job string) error
	// Terminate asks an idle worker to exit. It never interrupts a running job.
	Terminate() error
}

// Spawner creates handles. Every message of a spawned handle is posted to events.
type Spawner interface {
	Spawn(ctx context.Context, events chan<- Message) (Handle, error)
}

var (
	// ErrNotIdle is returned by Assign and Terminate when the worker holds a job.
	ErrNotIdle = errors.New("worker is not idle")
	// ErrTerminated is returned when a terminated worker is used.
	ErrTerminated = errors.New("worker is terminated")
	// ErrSpawn is returned when a worker cannot be started.
	ErrSpawn = errors.New("failed to spawn worker")
)

type handleState int

const (
	stateIdle handleState = iota
	stateBusy
	stateTerminated
)

// lifecycle guards the idle -> busy -> idle -> terminated transitions of a
// handle. Completions arrive on the handle's own goroutine while Assign and
// Terminate are called by the dispatcher, hence the mutex.
type lifecycle struct {
	mu    sync.Mutex
	state handleState
	job   string
}

func (l *lifecycle) assign(id, job string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case stateBusy:
		return fmt.Errorf("%w: worker %s holds %q", ErrNotIdle, id, l.job)
	case stateTerminated:
		return fmt.Errorf("%w: worker %s", ErrTerminated, id)
	}

	l.state = stateBusy
	l.job = job

	return nil
}

func (l *lifecycle) complete() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == stateBusy {
		l.state = stateIdle
		l.job = ""
	}
}

func (l *lifecycle) terminate(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case stateBusy:
		return fmt.Errorf("%w: worker %s holds %q", ErrNotIdle, id, l.job)
	case stateTerminated:
		return fmt.Errorf("%w: worker %s", ErrTerminated, id)
	}

	l.state = stateTerminated

	return nil
}

// markDead records that the worker went away on its own and reports whether
// it had been asked to terminate.
func (l *lifecycle) markDead() (requested bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	requested = l.state == stateTerminated
	l.state = stateTerminated

	return requested
}

// post delivers m unless ctx is done first.
func post(ctx context.Context, events chan<- Message, m Message) {
	select {
	case events <- m:
	case <-ctx.Done():
	}
}
