// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func runWatch(t *testing.T, signals ...os.Signal) (context.Context, chan os.Signal, <-chan struct{}) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	sigCh := make(chan os.Signal, len(signals))
	done := make(chan struct{})

	go func() {
		defer close(done)
		Watch(ctx, sigCh, cancel)
	}()

	for _, s := range signals {
		sigCh <- s
	}

	return ctx, sigCh, done
}

func TestWatch(t *testing.T) {
	tests := []struct {
		name       string
		signals    []os.Signal
		wantCancel bool
	}{
		{name: "first signal is logged only", signals: []os.Signal{os.Interrupt}},
		{name: "different signals do not cancel", signals: []os.Signal{os.Interrupt, syscall.SIGTERM}},
		{name: "repeated signal cancels", signals: []os.Signal{syscall.SIGTERM, syscall.SIGTERM}, wantCancel: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer goleak.VerifyNone(t)

			ctx, sigCh, done := runWatch(t, tt.signals...)

			if tt.wantCancel {
				select {
				case <-ctx.Done():
				case <-time.After(time.Second):
					t.Fatal("context should be cancelled after the second signal")
				}

				<-done

				_, open := <-sigCh
				assert.False(t, open, "signal channel should be closed by Watch")

				return
			}

			time.Sleep(50 * time.Millisecond)
			assert.NoError(t, ctx.Err())
			close(sigCh)
			<-done
		})
	}
}
