// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/tilebatch/internal/batch"
	events "github.com/matt-FFFFFF/tilebatch/internal/progress"
)

const (
	barPadding          = 4
	maxBarWidth         = 80
	jobDurationRounding = 100 * time.Millisecond
)

// ProgressEventMsg wraps a progress event for the tea framework.
type ProgressEventMsg struct {
	Event events.Event
}

// BatchFinishedMsg indicates that the batch has returned.
type BatchFinishedMsg struct {
	Snapshot batch.Snapshot
	Err      error
}

// Init implements bubbletea.Model.Init.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements bubbletea.Model.Update.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.mutex.Lock()
			m.quitting = true
			m.mutex.Unlock()

			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.mutex.Lock()
		m.width = msg.Width
		m.bar.Width = min(msg.Width-barPadding, maxBarWidth)
		m.mutex.Unlock()

	case ProgressEventMsg:
		m.processEvent(msg.Event)

	case BatchFinishedMsg:
		m.mutex.Lock()
		m.finished = true
		m.snap = msg.Snapshot
		m.err = msg.Err
		m.mutex.Unlock()
	}

	return m, nil
}

// View implements bubbletea.Model.View.
func (m *Model) View() string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.quitting {
		return "Shutting down...\n"
	}

	var b strings.Builder

	b.WriteString(m.styles.Title.Render("tilebatch"))
	b.WriteString("\n")

	snap := m.snap
	fmt.Fprintf(&b, "Completed %d of %d files. (%d%%)\n", snap.Completed, snap.Total, snap.Percent())
	b.WriteString(m.bar.ViewAs(fraction(snap)))
	b.WriteString("\n\n")

	for _, r := range m.rows {
		m.renderRow(&b, r)
	}

	if len(m.failures) > 0 {
		b.WriteString("\n")
		b.WriteString(m.styles.Error.Render("Recent failures:"))
		b.WriteString("\n")

		for _, f := range m.failures {
			label := "failed"
			if f.Lost {
				label = "lost"
			}

			fmt.Fprintf(&b, "  %s %s %s\n", filepath.Base(f.Job), label, m.styles.Error.Render(f.Reason))
		}
	}

	help := "'q' to quit the view, the batch keeps running"

	if m.finished {
		b.WriteString("\n")

		switch {
		case m.err != nil:
			b.WriteString(m.styles.Error.Render("Batch stopped: " + m.err.Error()))
		case len(snap.Failed)+len(snap.Lost) > 0:
			b.WriteString(m.styles.Error.Render(fmt.Sprintf("Done with %d failed and %d lost files", len(snap.Failed), len(snap.Lost))))
		default:
			b.WriteString(m.styles.Success.Render("Done"))
		}

		b.WriteString("\n")

		help = "'q' to quit and show the summary"
	}

	b.WriteString(m.styles.Help.Render(help))

	return b.String()
}

func (m *Model) renderRow(b *strings.Builder, r *workerRow) {
	var status string

	switch r.Status {
	case WorkerBusy:
		status = m.styles.Busy.Render(r.Status.String())
	case WorkerRetired, WorkerExited:
		status = m.styles.Retired.Render(r.Status.String())
	case WorkerLost:
		status = m.styles.Lost.Render(r.Status.String())
	default:
		status = m.styles.Idle.Render(r.Status.String())
	}

	fmt.Fprintf(b, "  worker %-10s %-8s %4d done", r.ID, status, r.Done)

	if r.Status == WorkerBusy && r.Job != "" {
		elapsed := time.Since(r.Started).Round(jobDurationRounding)
		b.WriteString("  ")
		b.WriteString(m.styles.Job.Render(fmt.Sprintf("%s (%v)", r.Job, elapsed)))
	}

	b.WriteString("\n")
}

func fraction(s batch.Snapshot) float64 {
	if s.Total == 0 {
		return 1
	}

	return float64(s.Completed+len(s.Failed)+len(s.Lost)) / float64(s.Total)
}
