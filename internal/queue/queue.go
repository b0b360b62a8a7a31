// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package queue holds the backlog of jobs waiting for a worker.
//
// A Queue is owned by a single goroutine (the dispatcher loop) and is not
// safe for concurrent use.
package queue

// Queue is a FIFO of job identifiers. Jobs only leave the queue; a popped job
// is never pushed back.
type Queue struct {
	jobs []string
	head int
}

// New returns a queue holding jobs in order. Repeated identifiers are kept
// only at their first position, so every job is handed out at most once.
func New(jobs []string) *Queue {
	seen := make(map[string]struct{}, len(jobs))
	q := &Queue{jobs: make([]string, 0, len(jobs))}

	for _, j := range jobs {
		if _, ok := seen[j]; ok {
			continue
		}

		seen[j] = struct{}{}
		q.jobs = append(q.jobs, j)
	}

	return q
}

// Pop removes and returns the head of the queue. ok is false when the
// queue is empty.
func (q *Queue) Pop() (job string, ok bool) {
	if q.IsEmpty() {
		return "", false
	}

	job = q.jobs[q.head]
	q.jobs[q.head] = ""
	q.head++

	return job, true
}

// IsEmpty reports whether no jobs remain.
func (q *Queue) IsEmpty() bool {
	return q.head >= len(q.jobs)
}

// Len returns the number of jobs remaining.
func (q *Queue) Len() int {
	return len(q.jobs) - q.head
}
