// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"context"
	"sync"
)

// ChannelReporter is a Reporter backed by a buffered channel. Events that do
// not fit in the buffer are dropped so that the dispatcher loop never waits
// on a slow consumer.
type ChannelReporter struct {
	ch     chan Event
	ctx    context.Context //nolint:containedctx
	cancel context.CancelFunc
	mu     sync.RWMutex
	wg     sync.WaitGroup
	closed bool
}

// NewChannelReporter returns a ChannelReporter with room for bufferSize events.
func NewChannelReporter(ctx context.Context, bufferSize int) *ChannelReporter {
	ctx, cancel := context.WithCancel(ctx)

	return &ChannelReporter{
		ch:     make(chan Event, bufferSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Report implements Reporter.
func (cr *ChannelReporter) Report(event Event) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	if cr.closed {
		return
	}

	select {
	case cr.ch <- event:
	default:
	}
}

// Close stops accepting events, closes the channel and waits for the
// listener started by Listen, if any, to drain it.
func (cr *ChannelReporter) Close() {
	cr.mu.Lock()
	if cr.closed {
		cr.mu.Unlock()
		return
	}

	cr.closed = true
	close(cr.ch)
	cr.mu.Unlock()

	cr.wg.Wait()
	cr.cancel()
}

// Listen forwards events to listener on a new goroutine until the reporter
// is closed or its context is cancelled.
func (cr *ChannelReporter) Listen(listener Listener) {
	cr.wg.Add(1)

	go func() {
		defer cr.wg.Done()

		for {
			select {
			case event, ok := <-cr.ch:
				if !ok {
					return
				}

				listener.OnEvent(event)
			case <-cr.ctx.Done():
				return
			}
		}
	}()
}

// Events exposes the channel for callers that do not use Listen.
func (cr *ChannelReporter) Events() <-chan Event {
	return cr.ch
}
