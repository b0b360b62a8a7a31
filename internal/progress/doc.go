// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package progress reports how a batch is advancing.
//
// Two mechanisms live here. Status is the periodic one-line summary printed on
// a fixed interval, which stays silent while nothing changes. Reporter is the
// event stream emitted by the dispatcher as jobs are assigned and finish; the
// interactive view listens to it.
package progress
