// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package worker

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/matt-FFFFFF/tilebatch/internal/ctxlog"
)

// Serve is the worker side of the process protocol. It executes every
// assigned job with exec and replies with its outcome, until it receives a
// shutdown frame or r reaches EOF. Executor errors and panics become failed
// frames; only protocol failures are returned.
func Serve(ctx context.Context, r io.Reader, w io.Writer, exec Executor) error {
	if exec == nil {
		return ErrNilExecutor
	}

	conn := NewConn(r, w)

	for {
		f, err := conn.Receive()
		if errors.Is(err, io.EOF) {
			ctxlog.Debug(ctx, "coordinator closed the connection")
			return nil
		}

		if err != nil {
			return err
		}

		switch f.Type {
		case FrameShutdown:
			ctxlog.Debug(ctx, "shutdown received")
			return nil
		case FrameAssign:
			ctxlog.Debug(ctx, "job received", "job", f.Job)

			jobErr := SafeExecute(ctx, exec, f.Job)
			if jobErr != nil {
				ctxlog.Error(ctx, "job failed", "job", f.Job, "error", jobErr)
			}

			if err := conn.Send(completionFrame(f.Job, jobErr)); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: coordinator sent %q", ErrProtocol, f.Type)
		}
	}
}
