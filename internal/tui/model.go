// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/tilebatch/internal/batch"
	events "github.com/matt-FFFFFF/tilebatch/internal/progress"
)

// maxFailures is how many recent failures are listed.
const maxFailures = 8

// WorkerStatus is the state of a worker as shown in the view.
type WorkerStatus int

const (
	WorkerIdle WorkerStatus = iota
	WorkerBusy
	WorkerRetired
	WorkerExited
	WorkerLost
)

// String returns a string representation of the worker status.
func (s WorkerStatus) String() string {
	switch s {
	case WorkerIdle:
		return "idle"
	case WorkerBusy:
		return "busy"
	case WorkerRetired:
		return "retired"
	case WorkerExited:
		return "exited"
	case WorkerLost:
		return "lost"
	default:
		return "unknown"
	}
}

// workerRow is one line of the worker table.
type workerRow struct {
	ID      string
	Status  WorkerStatus
	Job     string
	Started time.Time
	Done    int
}

// failure is a job that failed or was lost.
type failure struct {
	Job    string
	Reason string
	Lost   bool
}

// Model represents the TUI application state.
type Model struct {
	rows     []*workerRow
	byID     map[string]*workerRow
	failures []failure
	snap     batch.Snapshot
	finished bool
	err      error
	quitting bool
	width    int
	bar      progress.Model
	styles   *Styles
	mutex    sync.RWMutex
}

// Styles contains all the styling for the TUI.
type Styles struct {
	Title   lipgloss.Style
	Idle    lipgloss.Style
	Busy    lipgloss.Style
	Retired lipgloss.Style
	Lost    lipgloss.Style
	Job     lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Help    lipgloss.Style
}

// NewStyles creates the default styling for the TUI.
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1),
		Idle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Busy: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true),
		Retired: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")),
		Lost: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true),
		Job: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Italic(true),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Italic(true),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			MarginTop(1),
	}
}

// NewModel creates a new TUI model.
func NewModel() *Model {
	return &Model{
		byID:   make(map[string]*workerRow),
		bar:    progress.New(progress.WithDefaultGradient()),
		styles: NewStyles(),
	}
}

// row returns the row of worker id, adding it on first sight.
// Must be called with the write lock held.
func (m *Model) row(id string) *workerRow {
	if r, ok := m.byID[id]; ok {
		return r
	}

	r := &workerRow{ID: id}
	m.byID[id] = r
	m.rows = append(m.rows, r)

	return r
}

// processEvent applies a dispatcher event to the model.
func (m *Model) processEvent(ev events.Event) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.snap = ev.Batch

	if ev.Worker == "" {
		if ev.Type == events.EventBatchDone {
			m.finished = true
		}

		return
	}

	r := m.row(ev.Worker)

	switch ev.Type {
	case events.EventAssigned:
		r.Status = WorkerBusy
		r.Job = filepath.Base(ev.Job)
		r.Started = ev.Timestamp
	case events.EventSucceeded:
		r.Status = WorkerIdle
		r.Job = ""
		r.Done++
	case events.EventFailed:
		r.Status = WorkerIdle
		r.Job = ""
		r.Done++
		m.addFailure(failure{Job: ev.Job, Reason: reason(ev.Err)})
	case events.EventLost:
		r.Status = WorkerLost
		m.addFailure(failure{Job: ev.Job, Reason: reason(ev.Err), Lost: true})
	case events.EventRetired:
		r.Status = WorkerRetired
		r.Job = ""
	case events.EventExited:
		if r.Status != WorkerLost && r.Status != WorkerRetired {
			r.Status = WorkerExited
		}

		r.Job = ""
	}
}

// addFailure must be called with the write lock held.
func (m *Model) addFailure(f failure) {
	m.failures = append(m.failures, f)
	if len(m.failures) > maxFailures {
		m.failures = m.failures[len(m.failures)-maxFailures:]
	}
}

func reason(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}
