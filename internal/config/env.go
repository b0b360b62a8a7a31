// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// WorkerEnvVar carries the coordinator's options to worker processes.
const WorkerEnvVar = "TILEBATCH_WORKER_OPTIONS"

// ErrWorkerEnv is returned when the worker options cannot be decoded.
var ErrWorkerEnv = errors.New("invalid worker options")

// EnvEntry encodes o as a KEY=VALUE environment entry for a worker process.
func (o *Options) EnvEntry() (string, error) {
	b, err := yaml.MarshalWithOptions(o.File(), yaml.Flow(true))
	if err != nil {
		return "", fmt.Errorf("encoding worker options: %w", err)
	}

	return WorkerEnvVar + "=" + string(b), nil
}

// FromEnv decodes options written by EnvEntry. An empty value yields the defaults.
func FromEnv(value string) (*Options, error) {
	o := Default()
	if value == "" {
		return o, nil
	}

	var f File
	if err := yaml.Unmarshal([]byte(value), &f); err != nil {
		return nil, errors.Join(ErrWorkerEnv, err)
	}

	if err := o.Apply(&f); err != nil {
		return nil, errors.Join(ErrWorkerEnv, err)
	}

	return o, nil
}
