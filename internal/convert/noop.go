// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package convert

import (
	"context"
	"errors"
	"io"

	"github.com/matt-FFFFFF/tilebatch/internal/ctxlog"
	"github.com/matt-FFFFFF/tilebatch/internal/worker"
	"github.com/spf13/afero"
)

var _ worker.Executor = (*Noop)(nil)

// ErrNoInput is returned when a job names a file that cannot be read.
var ErrNoInput = errors.New("input file cannot be read")

// Noop reads the start of each input file and writes nothing.
type Noop struct {
	Fs afero.Fs
}

// Execute implements worker.Executor.
func (n *Noop) Execute(ctx context.Context, job string) error {
	f, err := n.Fs.Open(job)
	if err != nil {
		return errors.Join(ErrNoInput, err)
	}

	defer f.Close() //nolint:errcheck

	buf := make([]byte, 512)
	if _, err := f.Read(buf); err != nil && !errors.Is(err, io.EOF) {
		return errors.Join(ErrNoInput, err)
	}

	ctxlog.Debug(ctx, "input readable", "file", job)

	return nil
}
