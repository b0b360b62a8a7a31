// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package convert

import (
	"errors"
	"fmt"

	"github.com/matt-FFFFFF/tilebatch/internal/config"
	"github.com/matt-FFFFFF/tilebatch/internal/worker"
	"github.com/spf13/afero"
)

// ErrUnknownBackend is returned by New for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown conversion backend")

// New returns the executor selected by opts.Backend.
func New(opts *config.Options, fs afero.Fs) (worker.Executor, error) {
	switch opts.Backend {
	case config.BackendGDAL:
		classes, err := opts.Classes()
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		return &GDAL{
			Fs:         fs,
			Classes:    classes,
			Threshold:  opts.Threshold,
			Simplify:   opts.Simplify,
			GeoJSONDir: opts.GeoJSONDir(),
			SieveDir:   opts.SieveDir(),
			Verbose:    opts.Verbose,
		}, nil
	case config.BackendNoop:
		return &Noop{Fs: fs}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
