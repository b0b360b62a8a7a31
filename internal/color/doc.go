// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color decorates terminal output with ANSI escape codes.
// Output is only coloured when stdout is a terminal, unless the NO_COLOR or
// FORCE_COLOR environment variables say otherwise.
package color
