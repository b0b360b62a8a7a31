// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"errors"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/tilebatch/internal/batch"
	events "github.com/matt-FFFFFF/tilebatch/internal/progress"
)

var _ events.Listener = (*forwarder)(nil)

// eventBuffer is how many progress events may queue up while the view is
// busy redrawing. Events beyond that are dropped; every event carries a full
// snapshot so the view catches up with the next one.
const eventBuffer = 256

// BatchFunc runs a batch, sending its progress events to reporter.
type BatchFunc func(ctx context.Context, reporter events.Reporter) (batch.Snapshot, error)

// forwarder hands events from the ChannelReporter to the bubbletea program.
type forwarder struct {
	program *tea.Program
}

// OnEvent implements progress.Listener.
func (f *forwarder) OnEvent(event events.Event) {
	if f.program == nil {
		return
	}

	f.program.Send(ProgressEventMsg{Event: event})
}

// Runner manages the TUI application and progress event integration.
type Runner struct {
	model   *Model
	program *tea.Program
	mutex   sync.Mutex
}

// NewRunner creates a new TUI runner. Extra options are passed to the
// bubbletea program, tests use them to replace the terminal.
func NewRunner(opts ...tea.ProgramOption) *Runner {
	model := NewModel()
	program := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)

	return &Runner{
		model:   model,
		program: program,
	}
}

// NewHeadlessRunner creates a runner that renders to out and reads no keys.
func NewHeadlessRunner(out io.Writer) *Runner {
	return NewRunner(tea.WithInput(nil), tea.WithOutput(out), tea.WithoutRenderer())
}

// Run starts the TUI and runs fn while it is displayed. Once the batch
// returns the view stays up until the user quits it. Quitting the view early
// does not stop the batch; Run still waits for it.
func (r *Runner) Run(ctx context.Context, fn BatchFunc) (batch.Snapshot, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	type result struct {
		snap batch.Snapshot
		err  error
	}

	reporter := events.NewChannelReporter(ctx, eventBuffer)
	reporter.Listen(&forwarder{program: r.program})

	resultChan := make(chan result, 1)

	go func() {
		snap, err := fn(ctx, reporter)
		resultChan <- result{snap: snap, err: err}
	}()

	tuiDone := make(chan error, 1)

	go func() {
		_, err := r.program.Run()
		tuiDone <- err
	}()

	var (
		res    result
		tuiErr error
	)

	select {
	case res = <-resultChan:
		// Drain queued events so the view sees them before the final state.
		reporter.Close()
		r.program.Send(BatchFinishedMsg{Snapshot: res.snap, Err: res.err})

		if ctx.Err() != nil {
			r.program.Quit()
		}

		tuiErr = <-tuiDone

	case tuiErr = <-tuiDone:
		res = <-resultChan

		reporter.Close()
	}

	if errors.Is(tuiErr, tea.ErrProgramKilled) {
		tuiErr = nil
	}

	return res.snap, errors.Join(res.err, tuiErr)
}

// Quit asks the view to exit.
func (r *Runner) Quit() {
	r.program.Quit()
}
