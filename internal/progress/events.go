// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"time"

	"github.com/matt-FFFFFF/tilebatch/internal/batch"
)

// Event is a single dispatcher happening.
type Event struct {
	Type      EventType
	Worker    string         // Worker identifier, empty for batch-level events
	Job       string         // Job identifier, if the event concerns one
	Err       error          // Failure reason for EventFailed and EventLost
	Timestamp time.Time      // When the event occurred
	Batch     batch.Snapshot // Accounting after the event was applied
}

// EventType says what happened.
type EventType int

const (
	// EventAssigned means a job was sent to a worker.
	EventAssigned EventType = iota
	// EventSucceeded means a worker reported success for its job.
	EventSucceeded
	// EventFailed means a worker reported failure for its job.
	EventFailed
	// EventRetired means a worker was sent a shutdown instruction.
	EventRetired
	// EventExited means a worker terminated.
	EventExited
	// EventLost means a worker terminated while holding a job.
	EventLost
	// EventBatchDone means the last worker terminated.
	EventBatchDone
)

// String implements fmt.Stringer.
func (et EventType) String() string {
	switch et {
	case EventAssigned:
		return "assigned"
	case EventSucceeded:
		return "succeeded"
	case EventFailed:
		return "failed"
	case EventRetired:
		return "retired"
	case EventExited:
		return "exited"
	case EventLost:
		return "lost"
	case EventBatchDone:
		return "batch-done"
	default:
		return "unknown"
	}
}

// Reporter receives dispatcher events. Report must not block.
type Reporter interface {
	Report(event Event)
	Close()
}

// Listener consumes events forwarded by a ChannelReporter.
type Listener interface {
	OnEvent(event Event)
}

// NullReporter discards every event.
type NullReporter struct{}

// Report implements Reporter.
func (NullReporter) Report(Event) {}

// Close implements Reporter.
func (NullReporter) Close() {}

// NewNullReporter returns a Reporter that discards events.
func NewNullReporter() Reporter {
	return NullReporter{}
}
