// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/tilebatch/internal/landcover"
)

// Worker modes.
const (
	ModeProcess = "process"
	ModeLocal   = "local"
)

// Conversion backends.
const (
	BackendGDAL = "gdal"
	BackendNoop = "noop"
)

// Defaults.
const (
	DefaultLayers    = landcover.All
	DefaultThreshold = 2048
	DefaultSimplify  = 0.01
	DefaultInterval  = 10 * time.Second
	DefaultInput     = "./data"
	DefaultOutput    = "./output"
	DefaultPattern   = "*.tif"
)

var (
	// ErrInvalidOptions wraps every validation failure.
	ErrInvalidOptions = errors.New("invalid options")

	modes    = []string{ModeProcess, ModeLocal}
	backends = []string{BackendGDAL, BackendNoop}
)

// Options is the effective configuration of a run.
type Options struct {
	Layers    string        // Comma separated land-cover classes, or "all"
	Threshold int           // Sieve threshold in pixels
	Simplify  float64       // Simplification tolerance in degrees
	Parallel  int           // Number of workers
	Verbose   bool          // Log every converted file
	Debug     bool          // Debug logging and the live worker count in status lines
	Interval  time.Duration // Status line interval
	Mode      string        // Worker mode, ModeProcess or ModeLocal
	Backend   string        // Conversion backend, BackendGDAL or BackendNoop
	Input     string        // Input directory
	InputURL  string        // Optional go-getter source fetched into Input first
	Pattern   string        // Glob applied to input file names
	Output    string        // Output directory
	TUI       bool          // Interactive progress view
}

// Default returns the options used when nothing is configured.
func Default() *Options {
	return &Options{
		Layers:    DefaultLayers,
		Threshold: DefaultThreshold,
		Simplify:  DefaultSimplify,
		Parallel:  DefaultParallel(),
		Verbose:   true,
		Interval:  DefaultInterval,
		Mode:      ModeProcess,
		Backend:   BackendGDAL,
		Input:     DefaultInput,
		Pattern:   DefaultPattern,
		Output:    DefaultOutput,
	}
}

// DefaultParallel is half the CPUs, at least one.
func DefaultParallel() int {
	return max(runtime.NumCPU()/2, 1)
}

// GeoJSONDir is where converted files are written.
func (o *Options) GeoJSONDir() string {
	return filepath.Join(o.Output, "geojson")
}

// SieveDir holds intermediate rasters and polygons.
func (o *Options) SieveDir() string {
	return filepath.Join(o.Output, "sieve")
}

// Classes parses Layers.
func (o *Options) Classes() ([]landcover.Class, error) {
	return landcover.Parse(o.Layers)
}

// Validate reports every problem with o at once.
func (o *Options) Validate() error {
	var result *multierror.Error

	if _, err := o.Classes(); err != nil {
		result = multierror.Append(result, fmt.Errorf("layers: %w", err))
	}

	if o.Threshold < 0 {
		result = multierror.Append(result, fmt.Errorf("threshold must not be negative, got %d", o.Threshold))
	}

	if o.Simplify < 0 {
		result = multierror.Append(result, fmt.Errorf("simplify must not be negative, got %g", o.Simplify))
	}

	if o.Parallel < 1 {
		result = multierror.Append(result, fmt.Errorf("parallel must be at least 1, got %d", o.Parallel))
	}

	if o.Interval <= 0 {
		result = multierror.Append(result, fmt.Errorf("interval must be positive, got %s", o.Interval))
	}

	if !slices.Contains(modes, o.Mode) {
		result = multierror.Append(result, fmt.Errorf("mode must be one of %v, got %q", modes, o.Mode))
	}

	if !slices.Contains(backends, o.Backend) {
		result = multierror.Append(result, fmt.Errorf("backend must be one of %v, got %q", backends, o.Backend))
	}

	if o.Input == "" {
		result = multierror.Append(result, errors.New("input directory must be set"))
	}

	if o.Output == "" {
		result = multierror.Append(result, errors.New("output directory must be set"))
	}

	if err := result.ErrorOrNil(); err != nil {
		return errors.Join(ErrInvalidOptions, err)
	}

	return nil
}
