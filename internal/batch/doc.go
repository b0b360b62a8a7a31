// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package batch holds the accounting for one run: how many jobs exist, how
// many finished, which failed, which were lost with a crashed worker and how
// many workers are still alive.
//
// State is mutated only through its transition methods, and only from the
// coordinating goroutine. Other components read Snapshot values.
package batch
