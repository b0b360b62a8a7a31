// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package dispatch hands queued jobs to registered workers one at a time and
// applies every worker message to the batch state.
//
// A Dispatcher is driven by a single goroutine. Workers only ever talk to it
// through the event channel returned by Events, so the queue and the batch
// state need no locking.
package dispatch
