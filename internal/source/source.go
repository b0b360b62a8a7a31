// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package source finds the input files of a batch and can fetch them from a
// remote location first.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter/v2"
	"github.com/matt-FFFFFF/tilebatch/internal/ctxlog"
	"github.com/spf13/afero"
)

var (
	// ErrEnumerate is returned when the input directory cannot be listed.
	ErrEnumerate = errors.New("failed to list input directory")
	// ErrFetch is returned when the input set cannot be downloaded.
	ErrFetch = errors.New("failed to fetch input files")
	// ErrBadPattern is returned for an invalid glob pattern.
	ErrBadPattern = errors.New("invalid file pattern")
)

// Enumerate lists the regular files of dir whose names match pattern, sorted
// by name. An empty pattern matches everything. Hidden files and
// subdirectories are skipped. The returned paths include dir.
func Enumerate(ctx context.Context, fs afero.Fs, dir, pattern string) ([]string, error) {
	if pattern != "" {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadPattern, pattern)
		}
	}

	// afero.ReadDir sorts by name
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, errors.Join(ErrEnumerate, err)
	}

	jobs := make([]string, 0, len(infos))

	for _, fi := range infos {
		name := fi.Name()

		switch {
		case strings.HasPrefix(name, "."):
			continue
		case !fi.Mode().IsRegular():
			ctxlog.Debug(ctx, "skipping non-regular input entry", "name", name)
			continue
		}

		if pattern != "" {
			if ok, _ := filepath.Match(pattern, name); !ok {
				continue
			}
		}

		jobs = append(jobs, filepath.Join(dir, name))
	}

	ctxlog.Debug(ctx, "input files enumerated", "dir", dir, "pattern", pattern, "count", len(jobs))

	return jobs, nil
}

// Fetch downloads src into dst using go-getter, so src may be a local path,
// an archive, an HTTP URL, a git repository or any other go-getter source.
func Fetch(ctx context.Context, src, dst string) error {
	if src == "" {
		return fmt.Errorf("%w: empty source", ErrFetch)
	}

	wd, err := os.Getwd()
	if err != nil {
		return errors.Join(ErrFetch, err)
	}

	client := getter.Client{
		DisableSymlinks: true,
	}

	req := &getter.Request{
		Src:     src,
		Dst:     dst,
		Pwd:     wd,
		GetMode: getter.ModeAny,
		Copy:    true,
	}

	ctxlog.Info(ctx, "fetching input files", "src", src, "dst", dst)

	res, err := client.Get(ctx, req)
	if err != nil {
		return errors.Join(ErrFetch, err)
	}

	ctxlog.Debug(ctx, "input files fetched", "dst", res.Dst)

	return nil
}
