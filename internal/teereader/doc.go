// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package teereader provides a reader that passes output through unchanged
// while remembering its last non-blank line. External tools usually print
// the reason they failed last, so that line is what gets reported.
package teereader
