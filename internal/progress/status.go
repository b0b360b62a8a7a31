// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/matt-FFFFFF/tilebatch/internal/batch"
)

// DefaultInterval is how often the status line is considered for printing.
const DefaultInterval = 10 * time.Second

// Status composes the periodic status line and suppresses repeats.
// It is driven by the coordinator's ticker and holds no reference to the
// batch itself, only the snapshots it is given.
type Status struct {
	w     io.Writer
	debug bool
	prev  string
}

// NewStatus returns a Status writing to w. With debug set the line also
// carries the number of live workers.
func NewStatus(w io.Writer, debug bool) *Status {
	return &Status{w: w, debug: debug}
}

// Line composes the status line for snap.
func (s *Status) Line(snap batch.Snapshot) string {
	line := fmt.Sprintf("Completed %d of %d files. (%d%%)", snap.Completed, snap.Total, snap.Percent())
	if s.debug {
		line = fmt.Sprintf("%s. %d workers remain.", line, snap.LiveWorkers)
	}

	return line
}

// Tick writes the status line for snap unless it equals the previously
// written line. It reports whether a line was written.
func (s *Status) Tick(snap batch.Snapshot) (bool, error) {
	line := s.Line(snap)
	if line == s.prev {
		return false, nil
	}

	if _, err := fmt.Fprintln(s.w, line); err != nil {
		return false, err //nolint:wrapcheck
	}

	s.prev = line

	return true, nil
}
