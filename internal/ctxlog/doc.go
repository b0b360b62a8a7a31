// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a *slog.Logger in a context.Context.
//
// The default logger writes through ConsoleHandler, which prints a timestamp,
// a coloured level, the message and the record attributes as indented JSON.
// The level is read from TILEBATCH_LOG_LEVEL ("DEBUG", "INFO", "WARN" or
// "ERROR", anything else means INFO) and can be raised at runtime through
// LevelVar.
package ctxlog
