// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package worker implements the executors that run jobs and the handles the
// dispatcher uses to talk to them.
//
// A Handle is created by a Spawner and posts Messages to the dispatcher's
// event channel: exactly one completion per assigned job, and one exit when
// the executor terminates. Handles never talk to each other.
//
// Two spawners exist. ProcessSpawner starts one operating system process per
// worker and speaks a JSON-lines protocol over its stdin and stdout; the child
// side of that protocol is Serve. LocalSpawner runs each worker on a goroutine
// with the same message semantics.
package worker
