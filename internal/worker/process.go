// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"

	"github.com/matt-FFFFFF/tilebatch/internal/ctxlog"
)

var _ Spawner = (*ProcessSpawner)(nil)

// ProcessSpawner starts one child process per worker. The child must run
// Serve on its stdin and stdout; the tilebatch binary does so in its hidden
// worker command.
type ProcessSpawner struct {
	Path   string    // Executable to start
	Args   []string  // Arguments, not including the executable name
	Env    []string  // Extra environment in KEY=VALUE form, appended to os.Environ()
	Stderr io.Writer // Destination of the child's log output, os.Stderr if nil
}

// Spawn implements Spawner. Cancelling ctx kills the child.
func (s *ProcessSpawner) Spawn(ctx context.Context, events chan<- Message) (Handle, error) {
	cmd := exec.CommandContext(ctx, s.Path, s.Args...)
	cmd.Env = append(os.Environ(), s.Env...)

	cmd.Stderr = s.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.Join(ErrSpawn, err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Join(ErrSpawn, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, errors.Join(ErrSpawn, err)
	}

	h := &processHandle{
		id:    strconv.Itoa(cmd.Process.Pid),
		stdin: stdin,
		conn:  NewConn(stdout, stdin),
	}

	ctxlog.Debug(ctx, "worker process started", "worker", h.id, "path", s.Path)

	go h.read(ctx, cmd, events)

	return h, nil
}

type processHandle struct {
	lifecycle

	id    string
	stdin io.WriteCloser
	conn  *Conn
}

func (h *processHandle) ID() string {
	return h.id
}

// Assign writes an assign frame to the child. A write failure means the
// child is gone; its exit message will follow from the reader.
func (h *processHandle) Assign(job string) error {
	if err := h.assign(h.id, job); err != nil {
		return err
	}

	if err := h.conn.Send(Frame{Type: FrameAssign, Job: job}); err != nil {
		return fmt.Errorf("worker %s: %w", h.id, err)
	}

	return nil
}

// Terminate writes a shutdown frame and closes the child's stdin.
func (h *processHandle) Terminate() error {
	if err := h.terminate(h.id); err != nil {
		return err
	}

	sendErr := h.conn.Send(Frame{Type: FrameShutdown})
	closeErr := h.stdin.Close()

	if err := errors.Join(sendErr, closeErr); err != nil {
		return fmt.Errorf("worker %s: %w", h.id, err)
	}

	return nil
}

// read turns reply frames into completion messages until the child closes
// its stdout, then waits for the process and posts the exit message.
func (h *processHandle) read(ctx context.Context, cmd *exec.Cmd, events chan<- Message) {
	logger := ctxlog.Logger(ctx).With("worker", h.id)

	var readErr error

	for {
		f, err := h.conn.Receive()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				readErr = err
			}

			break
		}

		if f.Type != FrameDone && f.Type != FrameFailed {
			readErr = fmt.Errorf("%w: worker sent %q", ErrProtocol, f.Type)
			break
		}

		h.complete()
		post(ctx, events, completionMessage(h.id, f))
	}

	if readErr != nil {
		// Unblock a child that is still writing, then reap it.
		logger.Error("worker protocol failure, killing worker", "error", readErr)
		_ = cmd.Process.Kill()
	}

	waitErr := cmd.Wait()
	requested := h.markDead()

	msg := Message{Worker: h.id, Kind: KindExit}

	if !requested || waitErr != nil || readErr != nil {
		msg.Err = errors.Join(ErrWorkerLost, readErr, waitErr)
		logger.Warn("worker died", "error", msg.Err)
	} else {
		logger.Debug("worker exited")
	}

	post(ctx, events, msg)
}
