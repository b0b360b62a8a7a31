// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

var (
	// ErrReadConfigFile is returned when the config file cannot be read.
	ErrReadConfigFile = errors.New("failed to read config file")
	// ErrParseConfigFile is returned when the config file is malformed.
	ErrParseConfigFile = errors.New("failed to parse config file")
	// ErrUnsupportedFormat is returned for a config file that is neither YAML nor HCL.
	ErrUnsupportedFormat = errors.New("unsupported config file format, use .yaml, .yml or .hcl")
)

// FsFactory is a function that returns an afero filesystem.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// File is the on-disk form of Options. Unset fields leave the current
// value alone.
type File struct {
	Layers    *string  `yaml:"layers,omitempty"    hcl:"layers,optional"`
	Threshold *int     `yaml:"threshold,omitempty" hcl:"threshold,optional"`
	Simplify  *float64 `yaml:"simplify,omitempty"  hcl:"simplify,optional"`
	Parallel  *int     `yaml:"parallel,omitempty"  hcl:"parallel,optional"`
	Verbose   *bool    `yaml:"verbose,omitempty"   hcl:"verbose,optional"`
	Debug     *bool    `yaml:"debug,omitempty"     hcl:"debug,optional"`
	Interval  *string  `yaml:"interval,omitempty"  hcl:"interval,optional"`
	Mode      *string  `yaml:"mode,omitempty"      hcl:"mode,optional"`
	Backend   *string  `yaml:"backend,omitempty"   hcl:"backend,optional"`
	Input     *string  `yaml:"input,omitempty"     hcl:"input,optional"`
	InputURL  *string  `yaml:"input_url,omitempty" hcl:"input_url,optional"`
	Pattern   *string  `yaml:"pattern,omitempty"   hcl:"pattern,optional"`
	Output    *string  `yaml:"output,omitempty"    hcl:"output,optional"`
}

// LoadFile reads a YAML or HCL config file, chosen by extension, and applies
// it on top of o. HCL files may use the variable cpus, the number of CPUs,
// and the functions floor, max and min.
func (o *Options) LoadFile(path string) error {
	src, err := afero.ReadFile(FsFactory(), path)
	if err != nil {
		return errors.Join(ErrReadConfigFile, err)
	}

	var f File

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.UnmarshalWithOptions(src, &f, yaml.DisallowUnknownField()); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrParseConfigFile, path, err)
		}
	case ".hcl":
		if err := hclsimple.Decode(path, src, evalContext(), &f); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrParseConfigFile, path, err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	return o.Apply(&f)
}

// Apply copies every set field of f into o.
func (o *Options) Apply(f *File) error {
	if f.Interval != nil {
		d, err := time.ParseDuration(*f.Interval)
		if err != nil {
			return fmt.Errorf("%w: interval: %w", ErrParseConfigFile, err)
		}

		o.Interval = d
	}

	set(&o.Layers, f.Layers)
	set(&o.Threshold, f.Threshold)
	set(&o.Simplify, f.Simplify)
	set(&o.Parallel, f.Parallel)
	set(&o.Verbose, f.Verbose)
	set(&o.Debug, f.Debug)
	set(&o.Mode, f.Mode)
	set(&o.Backend, f.Backend)
	set(&o.Input, f.Input)
	set(&o.InputURL, f.InputURL)
	set(&o.Pattern, f.Pattern)
	set(&o.Output, f.Output)

	return nil
}

// File returns o with every field set.
func (o *Options) File() *File {
	interval := o.Interval.String()

	return &File{
		Layers:    &o.Layers,
		Threshold: &o.Threshold,
		Simplify:  &o.Simplify,
		Parallel:  &o.Parallel,
		Verbose:   &o.Verbose,
		Debug:     &o.Debug,
		Interval:  &interval,
		Mode:      &o.Mode,
		Backend:   &o.Backend,
		Input:     &o.Input,
		InputURL:  &o.InputURL,
		Pattern:   &o.Pattern,
		Output:    &o.Output,
	}
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"cpus": cty.NumberIntVal(int64(runtime.NumCPU())),
		},
		Functions: map[string]function.Function{
			"floor": stdlib.FloorFunc,
			"max":   stdlib.MaxFunc,
			"min":   stdlib.MinFunc,
		},
	}
}
