// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package batch

import (
	"bytes"
	"testing"
	"time"

	"github.com/matt-FFFFFF/tilebatch/internal/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func newTestState(total int) (*State, *fakeClock) {
	clk := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	s := New(total)
	s.now = clk.now

	return s, clk
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "initializing", PhaseInitializing.String())
	assert.Equal(t, "running", PhaseRunning.String())
	assert.Equal(t, "draining", PhaseDraining.String())
	assert.Equal(t, "done", PhaseDone.String())
	assert.Equal(t, "unknown", Phase(42).String())
}

func TestState_EmptyBatchIsDoneImmediately(t *testing.T) {
	s, _ := newTestState(0)
	require.NoError(t, s.Start(0))

	assert.True(t, s.Done())

	snap := s.Snapshot()
	assert.Empty(t, snap.Failed)
	assert.Equal(t, 100, snap.Percent())
	assert.Zero(t, snap.Elapsed)
}

func TestState_EmptyBatchRejectsWorkers(t *testing.T) {
	s, _ := newTestState(0)
	require.ErrorIs(t, s.Start(2), ErrInvalidTransition)
}

func TestState_StartWithoutWorkers(t *testing.T) {
	s, _ := newTestState(3)
	require.ErrorIs(t, s.Start(0), ErrInvalidTransition)
	assert.Equal(t, PhaseInitializing, s.Phase())
}

func TestState_StartTwice(t *testing.T) {
	s, _ := newTestState(3)
	require.NoError(t, s.Start(1))
	require.ErrorIs(t, s.Start(1), ErrInvalidTransition)
}

func TestState_Lifecycle(t *testing.T) {
	s, clk := newTestState(5)
	require.NoError(t, s.Start(2))
	assert.Equal(t, PhaseRunning, s.Phase())

	require.NoError(t, s.RecordSuccess("1.tif"))
	require.NoError(t, s.RecordSuccess("2.tif"))
	require.NoError(t, s.RecordFailure("3.tif"))
	require.NoError(t, s.RecordSuccess("4.tif"))

	require.NoError(t, s.Drain())
	require.NoError(t, s.Drain(), "drain is idempotent")
	assert.Equal(t, PhaseDraining, s.Phase())

	require.NoError(t, s.RecordSuccess("5.tif"))

	clk.t = clk.t.Add(90 * time.Second)

	done, err := s.WorkerExited()
	require.NoError(t, err)
	assert.False(t, done)

	done, err = s.WorkerExited()
	require.NoError(t, err)
	assert.True(t, done)
	assert.True(t, s.Done())

	snap := s.Snapshot()
	assert.Equal(t, 4, snap.Completed)
	assert.Equal(t, []string{"3.tif"}, snap.Failed)
	assert.Equal(t, 0, snap.LiveWorkers)
	assert.Equal(t, 90*time.Second, snap.Elapsed)
	assert.Equal(t, 0, snap.Pending())

	// done happens exactly once
	done, err = s.WorkerExited()
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.False(t, done)
}

func TestState_AccountingOverflow(t *testing.T) {
	s, _ := newTestState(2)
	require.NoError(t, s.Start(1))
	require.NoError(t, s.RecordSuccess("a.tif"))
	require.NoError(t, s.RecordFailure("b.tif"))
	require.ErrorIs(t, s.RecordSuccess("c.tif"), ErrAccountingOverflow)
	require.ErrorIs(t, s.RecordFailure("c.tif"), ErrAccountingOverflow)
	require.ErrorIs(t, s.RecordLost("c.tif"), ErrAccountingOverflow)
}

func TestState_OutcomeBeforeStart(t *testing.T) {
	s, _ := newTestState(2)
	require.ErrorIs(t, s.RecordSuccess("a.tif"), ErrInvalidTransition)
	require.ErrorIs(t, s.Drain(), ErrInvalidTransition)

	_, err := s.WorkerExited()
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestState_WorkerLoss(t *testing.T) {
	s, _ := newTestState(4)
	require.NoError(t, s.Start(1))
	require.NoError(t, s.RecordSuccess("a.tif"))
	require.NoError(t, s.RecordLost("b.tif"))

	done, err := s.WorkerExited()
	require.NoError(t, err)
	assert.True(t, done, "the only worker died, so the batch is over")

	snap := s.Snapshot()
	assert.Equal(t, 1, snap.Completed)
	assert.Empty(t, snap.Failed)
	assert.Equal(t, []string{"b.tif"}, snap.Lost)
	assert.Equal(t, 2, snap.Pending())
}

func TestState_SnapshotIsACopy(t *testing.T) {
	s, _ := newTestState(3)
	require.NoError(t, s.Start(1))
	require.NoError(t, s.RecordFailure("a.tif"))

	snap := s.Snapshot()
	snap.Failed[0] = "mutated"

	assert.Equal(t, []string{"a.tif"}, s.Snapshot().Failed)
}

func TestSnapshot_Percent(t *testing.T) {
	tests := []struct {
		completed, total, want int
	}{
		{completed: 0, total: 3, want: 0},
		{completed: 1, total: 3, want: 33},
		{completed: 2, total: 3, want: 67},
		{completed: 1, total: 200, want: 1},
		{completed: 1, total: 201, want: 0},
		{completed: 3, total: 3, want: 100},
	}

	for _, tt := range tests {
		snap := Snapshot{Completed: tt.completed, Total: tt.total}
		assert.Equal(t, tt.want, snap.Percent(), "%d/%d", tt.completed, tt.total)
	}
}

func TestSnapshot_WriteSummary(t *testing.T) {
	prev := color.SetEnabled(false)
	defer color.SetEnabled(prev)

	tests := []struct {
		name string
		snap Snapshot
		want string
	}{
		{
			name: "no failures",
			snap: Snapshot{Total: 2, Completed: 2, Elapsed: 1500 * time.Millisecond},
			want: "Done. Completed in 1.500 seconds\n",
		},
		{
			name: "failures",
			snap: Snapshot{Total: 5, Completed: 4, Failed: []string{"./data/3.tif"}, Elapsed: 2 * time.Second},
			want: "Done. Completed in 2.000 seconds\n" +
				"The following files failed:\n" +
				"   ./data/3.tif\n",
		},
		{
			name: "lost and never started",
			snap: Snapshot{Total: 4, Completed: 1, Lost: []string{"./data/2.tif"}, Elapsed: time.Second},
			want: "Done. Completed in 1.000 seconds\n" +
				"The following files were lost with their worker:\n" +
				"   ./data/2.tif\n" +
				"2 files were never started because no workers remained.\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tt.snap.WriteSummary(&buf))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}
