// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/tilebatch/internal/ctxlog"
)

// Watch reads sigCh until it is closed. The second signal of a kind closes
// sigCh and calls cancel.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for sig := range sigCh {
		if _, ok := seen[sig]; ok {
			ctxlog.Warn(ctx, "watchdog", "detail", "received second signal, aborting batch", "signal", sig.String())
			close(sigCh)
			cancel()

			return
		}

		ctxlog.Warn(ctx, "watchdog",
			"detail", "received signal, waiting for running jobs; repeat to abort",
			"signal", sig.String())

		seen[sig] = struct{}{}
	}
}
