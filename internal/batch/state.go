// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package batch

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Phase is the lifecycle position of a batch.
type Phase int

const (
	// PhaseInitializing is the phase before any worker exists.
	PhaseInitializing Phase = iota
	// PhaseRunning means jobs are still waiting in the queue.
	PhaseRunning
	// PhaseDraining means the queue is empty and workers are retiring.
	PhaseDraining
	// PhaseDone is terminal: every worker has exited.
	PhaseDone
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseRunning:
		return "running"
	case PhaseDraining:
		return "draining"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

var (
	// ErrInvalidTransition is returned when a transition is not allowed from the current phase.
	ErrInvalidTransition = errors.New("invalid batch phase transition")
	// ErrAccountingOverflow is returned when more outcomes are recorded than there are jobs.
	ErrAccountingOverflow = errors.New("more outcomes recorded than jobs in the batch")
	// ErrNoLiveWorkers is returned when a worker exit is reported but none are alive.
	ErrNoLiveWorkers = errors.New("no live workers left to exit")
)

// State is the mutable accounting for a batch.
type State struct {
	total     int
	completed int
	failed    []string
	lost      []string
	live      int
	phase     Phase
	started   time.Time
	finished  time.Time
	now       func() time.Time
}

// New returns a batch of total jobs in PhaseInitializing.
func New(total int) *State {
	return &State{
		total: total,
		now:   time.Now,
	}
}

// Start moves the batch to PhaseRunning with the given number of live workers.
// An empty batch goes straight to PhaseDone and workers must be zero.
func (s *State) Start(workers int) error {
	if s.phase != PhaseInitializing {
		return fmt.Errorf("%w: start from %s", ErrInvalidTransition, s.phase)
	}

	s.started = s.now()

	if s.total == 0 {
		if workers != 0 {
			return fmt.Errorf("%w: empty batch started with %d workers", ErrInvalidTransition, workers)
		}

		s.phase = PhaseDone
		s.finished = s.started

		return nil
	}

	if workers < 1 {
		return fmt.Errorf("%w: batch of %d jobs started without workers", ErrInvalidTransition, s.total)
	}

	s.live = workers
	s.phase = PhaseRunning

	return nil
}

// Drain records that the queue has become empty. Calling it again while
// draining is a no-op.
func (s *State) Drain() error {
	switch s.phase {
	case PhaseRunning:
		s.phase = PhaseDraining
		return nil
	case PhaseDraining:
		return nil
	default:
		return fmt.Errorf("%w: drain from %s", ErrInvalidTransition, s.phase)
	}
}

// RecordSuccess counts job as completed.
func (s *State) RecordSuccess(job string) error {
	if err := s.checkOutcome(job); err != nil {
		return err
	}

	s.completed++

	return nil
}

// RecordFailure appends job to the failed list.
func (s *State) RecordFailure(job string) error {
	if err := s.checkOutcome(job); err != nil {
		return err
	}

	s.failed = append(s.failed, job)

	return nil
}

// RecordLost appends job to the lost list. A lost job is neither completed
// nor failed.
func (s *State) RecordLost(job string) error {
	if err := s.checkOutcome(job); err != nil {
		return err
	}

	s.lost = append(s.lost, job)

	return nil
}

// WorkerExited decrements the live-worker count. It returns true exactly once,
// on the call that moves the batch to PhaseDone.
func (s *State) WorkerExited() (bool, error) {
	if !s.active() {
		return false, fmt.Errorf("%w: worker exit in %s", ErrInvalidTransition, s.phase)
	}

	if s.live == 0 {
		return false, ErrNoLiveWorkers
	}

	s.live--

	if s.live > 0 {
		return false, nil
	}

	s.phase = PhaseDone
	s.finished = s.now()

	return true, nil
}

// Phase returns the current phase.
func (s *State) Phase() Phase {
	return s.phase
}

// Done reports whether the batch reached PhaseDone.
func (s *State) Done() bool {
	return s.phase == PhaseDone
}

// Snapshot returns an immutable copy of the accounting.
func (s *State) Snapshot() Snapshot {
	elapsed := time.Duration(0)

	switch {
	case !s.finished.IsZero():
		elapsed = s.finished.Sub(s.started)
	case !s.started.IsZero():
		elapsed = s.now().Sub(s.started)
	}

	return Snapshot{
		Total:       s.total,
		Completed:   s.completed,
		Failed:      slices.Clone(s.failed),
		Lost:        slices.Clone(s.lost),
		LiveWorkers: s.live,
		Phase:       s.phase,
		Elapsed:     elapsed,
	}
}

func (s *State) active() bool {
	return s.phase == PhaseRunning || s.phase == PhaseDraining
}

func (s *State) checkOutcome(job string) error {
	if !s.active() {
		return fmt.Errorf("%w: outcome for %q in %s", ErrInvalidTransition, job, s.phase)
	}

	if s.completed+len(s.failed)+len(s.lost) >= s.total {
		return fmt.Errorf("%w: %q would exceed %d jobs", ErrAccountingOverflow, job, s.total)
	}

	return nil
}
