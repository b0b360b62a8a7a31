// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/matt-FFFFFF/tilebatch/internal/ctxlog"
	"github.com/matt-FFFFFF/tilebatch/internal/teereader"
)

const maxErrorLineLength = 240

// ErrTool is returned when an external tool fails.
var ErrTool = errors.New("external tool failed")

// runCommand runs name with args and reports the last line the tool wrote
// to stderr when it fails.
var runCommand = func(ctx context.Context, name string, args ...string) error {
	ctxlog.Debug(ctx, "running tool", "tool", name, "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrTool, name, err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrTool, name, err)
	}

	tee := teereader.NewLastLineTeeReader(stderr)
	_, _ = io.Copy(io.Discard, tee)

	if err := cmd.Wait(); err != nil {
		if line := tee.LastLine(maxErrorLineLength); line != "" {
			return fmt.Errorf("%w: %s: %s: %w", ErrTool, name, line, err)
		}

		return fmt.Errorf("%w: %s: %w", ErrTool, name, err)
	}

	return nil
}
