// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package worker

import (
	"errors"
)

// Kind distinguishes the two messages a handle posts.
type Kind int

const (
	// KindCompletion reports the outcome of the job the worker was holding.
	KindCompletion Kind = iota
	// KindExit reports that the worker terminated.
	KindExit
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindCompletion:
		return "completion"
	case KindExit:
		return "exit"
	default:
		return "unknown"
	}
}

var (
	// ErrJobFailed wraps the failure reason reported by a worker.
	ErrJobFailed = errors.New("job failed")
	// ErrWorkerLost is attached to exit messages of workers that died outside the shutdown protocol.
	ErrWorkerLost = errors.New("worker lost")
)

// Message is posted by a handle to the dispatcher's event channel.
type Message struct {
	Worker string // Identifier of the posting handle
	Kind   Kind
	Job    string // For KindCompletion, the job the outcome is for
	Err    error  // For KindCompletion, nil on success; for KindExit, non-nil if the worker was lost
}

// Succeeded reports whether a completion message carries a success outcome.
func (m Message) Succeeded() bool {
	return m.Kind == KindCompletion && m.Err == nil
}

// MessagesPerWorker is the most messages a single handle can have pending
// at once: one completion and one exit. Event channels sized to
// MessagesPerWorker times the number of workers never block a handle.
const MessagesPerWorker = 2
