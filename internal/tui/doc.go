// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tui provides an interactive terminal view of a running batch. It
// shows the overall progress, what every worker is converting and the files
// that failed, updated from the dispatcher's progress events.
package tui
