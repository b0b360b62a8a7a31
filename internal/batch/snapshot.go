// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package batch

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/matt-FFFFFF/tilebatch/internal/color"
)

// Snapshot is a read-only view of a State at one point in time.
type Snapshot struct {
	Total       int
	Completed   int
	Failed      []string
	Lost        []string
	LiveWorkers int
	Phase       Phase
	Elapsed     time.Duration
}

// Pending returns the number of jobs with no recorded outcome.
func (s Snapshot) Pending() int {
	return s.Total - s.Completed - len(s.Failed) - len(s.Lost)
}

// Percent returns round(100 * completed / total). An empty batch is 100%.
func (s Snapshot) Percent() int {
	if s.Total == 0 {
		return 100 //nolint:mnd
	}

	return int(math.Round(100 * float64(s.Completed) / float64(s.Total))) //nolint:mnd
}

// WriteSummary writes the end-of-batch report: elapsed time, then every
// failed job, then every job lost with its worker and the count of jobs that
// were never started.
func (s Snapshot) WriteSummary(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Done. Completed in %.3f seconds\n", s.Elapsed.Seconds()); err != nil {
		return err //nolint:wrapcheck
	}

	if len(s.Failed) > 0 {
		if err := writeList(w, color.Colorize("The following files failed:", color.Bold, color.FgRed), s.Failed); err != nil {
			return err
		}
	}

	if len(s.Lost) > 0 {
		header := color.Colorize("The following files were lost with their worker:", color.Bold, color.FgYellow)
		if err := writeList(w, header, s.Lost); err != nil {
			return err
		}
	}

	if p := s.Pending(); p > 0 {
		msg := color.Colorize(fmt.Sprintf("%d files were never started because no workers remained.", p), color.FgYellow)
		if _, err := fmt.Fprintln(w, msg); err != nil {
			return err //nolint:wrapcheck
		}
	}

	return nil
}

func writeList(w io.Writer, header string, items []string) error {
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err //nolint:wrapcheck
	}

	for _, it := range items {
		if _, err := fmt.Fprintf(w, "   %s\n", it); err != nil {
			return err //nolint:wrapcheck
		}
	}

	return nil
}
