// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package worker

import (
	"context"
	"errors"
	"fmt"
)

// Executor performs one job.
type Executor interface {
	Execute(ctx context.Context, job string) error
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, job string) error

// Execute implements Executor.
func (f ExecutorFunc) Execute(ctx context.Context, job string) error {
	return f(ctx, job)
}

// ErrExecutorPanic wraps the value an executor panicked with.
type ErrExecutorPanic struct {
	v any
}

// Error implements the error interface.
func (e *ErrExecutorPanic) Error() string {
	return fmt.Sprintf("executor panic: %v", e.v)
}

// Unwrap returns the panic value when it was an error.
func (e *ErrExecutorPanic) Unwrap() error {
	if err, ok := e.v.(error); ok {
		return err
	}

	return nil
}

// ErrNilExecutor is returned when a worker is started without an executor.
var ErrNilExecutor = errors.New("no executor configured")

// SafeExecute runs exec for job and converts a panic into an error, so that a
// faulty executor still yields a failure outcome for the job.
func SafeExecute(ctx context.Context, exec Executor, job string) (err error) {
	if exec == nil {
		return ErrNilExecutor
	}

	defer func() {
		if r := recover(); r != nil {
			err = &ErrExecutorPanic{v: r}
		}
	}()

	return exec.Execute(ctx, job)
}
