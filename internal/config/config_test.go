// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	o := Default()

	require.NoError(t, o.Validate())
	assert.Equal(t, "all", o.Layers)
	assert.Equal(t, 2048, o.Threshold)
	assert.InDelta(t, 0.01, o.Simplify, 1e-9)
	assert.GreaterOrEqual(t, o.Parallel, 1)
	assert.True(t, o.Verbose)
	assert.Equal(t, 10*time.Second, o.Interval)
	assert.Equal(t, ModeProcess, o.Mode)
	assert.Equal(t, filepath.Join("output", "geojson"), o.GeoJSONDir())
	assert.Equal(t, filepath.Join("output", "sieve"), o.SieveDir())
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	o := Default()
	o.Layers = "lava"
	o.Threshold = -1
	o.Parallel = 0
	o.Mode = "thread"
	o.Output = ""

	err := o.Validate()
	require.ErrorIs(t, err, ErrInvalidOptions)

	for _, want := range []string{"layers", "threshold", "parallel", "mode", "output"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name  string
		file  string
		check func(t *testing.T, o *Options)
	}{
		{
			name: "yaml",
			file: "testdata/tilebatch.yaml",
			check: func(t *testing.T, o *Options) {
				assert.Equal(t, "forest,water", o.Layers)
				assert.Equal(t, 1024, o.Threshold)
				assert.Equal(t, 3, o.Parallel)
				assert.Equal(t, 30*time.Second, o.Interval)
				assert.Equal(t, ModeLocal, o.Mode)
				assert.Equal(t, "/tmp/tiles", o.Output)
				assert.Equal(t, DefaultInput, o.Input, "unset fields keep their value")
			},
		},
		{
			name: "hcl",
			file: "testdata/tilebatch.hcl",
			check: func(t *testing.T, o *Options) {
				assert.Equal(t, "crop", o.Layers)
				assert.InDelta(t, 0.05, o.Simplify, 1e-9)
				assert.Equal(t, DefaultParallel(), o.Parallel)
				assert.Equal(t, BackendNoop, o.Backend)
				assert.True(t, o.Debug)
				assert.Equal(t, DefaultThreshold, o.Threshold)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			o := Default()
			require.NoError(t, o.LoadFile(tc.file))
			require.NoError(t, o.Validate())
			tc.check(t, o)
		})
	}
}

func TestLoadFile_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "bad.yaml", []byte("unknown: 1\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "bad.hcl", []byte("threshold = \"lots\"\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "interval.yaml", []byte("interval: soon\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "tilebatch.toml", []byte(""), 0o644))

	stubs := gostub.Stub(&FsFactory, func() afero.Fs { return fs })
	defer stubs.Reset()

	tests := []struct {
		file string
		want error
	}{
		{file: "missing.yaml", want: ErrReadConfigFile},
		{file: "bad.yaml", want: ErrParseConfigFile},
		{file: "bad.hcl", want: ErrParseConfigFile},
		{file: "interval.yaml", want: ErrParseConfigFile},
		{file: "tilebatch.toml", want: ErrUnsupportedFormat},
	}

	for _, tc := range tests {
		t.Run(tc.file, func(t *testing.T) {
			require.ErrorIs(t, Default().LoadFile(tc.file), tc.want)
		})
	}
}

func TestWorkerEnv(t *testing.T) {
	o := Default()
	o.Layers = "water"
	o.Threshold = 64
	o.Simplify = 0.25
	o.Backend = BackendNoop
	o.Output = "/data/out"
	o.Debug = true

	entry, err := o.EnvEntry()
	require.NoError(t, err)

	value, ok := strings.CutPrefix(entry, WorkerEnvVar+"=")
	require.True(t, ok)

	got, err := FromEnv(value)
	require.NoError(t, err)
	assert.Equal(t, o, got)

	got, err = FromEnv("")
	require.NoError(t, err)
	assert.Equal(t, Default(), got)

	_, err = FromEnv("threshold: [")
	require.ErrorIs(t, err, ErrWorkerEnv)
}

func TestExampleFilesLoadBack(t *testing.T) {
	dir := t.TempDir()

	o := Default()
	o.Layers = "forest,water"
	o.Interval = time.Minute

	for _, name := range []string{"tilebatch.yaml", "tilebatch.hcl"} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer

			if filepath.Ext(name) == ".hcl" {
				require.NoError(t, o.WriteHCL(&buf))
				assert.Contains(t, buf.String(), "max(floor(cpus / 2), 1)")
			} else {
				require.NoError(t, o.WriteYAML(&buf))
			}

			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

			got := &Options{}
			require.NoError(t, got.LoadFile(path))
			assert.Equal(t, o, got)
		})
	}
}
