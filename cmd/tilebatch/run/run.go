// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run is the sub-command that converts a directory of tiles.
package run

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/matt-FFFFFF/tilebatch/internal/batch"
	"github.com/matt-FFFFFF/tilebatch/internal/config"
	"github.com/matt-FFFFFF/tilebatch/internal/controller"
	"github.com/matt-FFFFFF/tilebatch/internal/convert"
	"github.com/matt-FFFFFF/tilebatch/internal/ctxlog"
	"github.com/matt-FFFFFF/tilebatch/internal/progress"
	"github.com/matt-FFFFFF/tilebatch/internal/tui"
	"github.com/matt-FFFFFF/tilebatch/internal/worker"
	"github.com/urfave/cli/v3"
)

const (
	configFlag    = "config"
	layersFlag    = "layers"
	thresholdFlag = "threshold"
	simplifyFlag  = "simplify"
	parallelFlag  = "parallel"
	verboseFlag   = "verbose"
	debugFlag     = "debug"
	intervalFlag  = "interval"
	modeFlag      = "mode"
	backendFlag   = "backend"
	inputFlag     = "input"
	inputURLFlag  = "input-url"
	patternFlag   = "pattern"
	outputFlag    = "output"
	tuiFlag       = "tui"
	cliExitStr    = ""
	workerCommand = "worker"
)

var (
	// ErrNoExecutable is returned when the worker executable cannot be found.
	ErrNoExecutable = errors.New("cannot locate the tilebatch executable for worker processes")
)

// RunCmd converts every tile in the input directory.
var RunCmd = &cli.Command{
	Name:  "run",
	Usage: "Convert every land-cover tile in the input directory to GeoJSONSeq",
	Description: `Convert every GeoTIFF in the input directory to a GeoJSONSeq file in
<output>/geojson. Each tile is sieved, polygonized and filtered to the selected
land-cover classes with the GDAL command-line tools. Tiles whose output already
exists are skipped, so an interrupted run can simply be started again.

Options can also be read from a YAML or HCL file with --config. Flags that are
set explicitly override the file. HCL files may use the variable "cpus".

The input set can be fetched first with --input-url, which accepts Hashicorp's
go-getter syntax. See https://github.com/hashicorp/go-getter.

The exit status is 0 once every tile has been attempted, even if some failed.
`,
	Flags:  flags(),
	Action: actionFunc,
}

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:      configFlag,
			Aliases:   []string{"c"},
			Usage:     "Read options from a YAML (.yaml, .yml) or HCL (.hcl) file",
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.StringFlag{
			Name:  layersFlag,
			Usage: "Comma-separated list of land-cover classes to include, see 'tilebatch layers'",
			Value: config.DefaultLayers,
		},
		&cli.IntFlag{
			Name:    thresholdFlag,
			Aliases: []string{"t"},
			Usage:   "Threshold used for the GDAL sieve operation (in pixels)",
			Value:   config.DefaultThreshold,
		},
		&cli.FloatFlag{
			Name:    simplifyFlag,
			Aliases: []string{"s"},
			Usage:   "Polygon simplification tolerance (in degrees)",
			Value:   config.DefaultSimplify,
		},
		&cli.IntFlag{
			Name:    parallelFlag,
			Aliases: []string{"p"},
			Usage:   "Number of worker processes to run. Defaults to the number of CPUs / 2.",
			Value:   config.DefaultParallel(),
		},
		&cli.BoolFlag{
			Name:        verboseFlag,
			Aliases:     []string{"v"},
			Usage:       "Log every converted file",
			Value:       true,
			DefaultText: "true",
		},
		&cli.BoolFlag{
			Name:  debugFlag,
			Usage: "Enable debug logging and show the live worker count",
		},
		&cli.DurationFlag{
			Name:  intervalFlag,
			Usage: "Interval between status lines",
			Value: progress.DefaultInterval,
		},
		&cli.StringFlag{
			Name:  modeFlag,
			Usage: "Worker mode: 'process' runs one child process per worker, 'local' one goroutine",
			Value: config.ModeProcess,
		},
		&cli.StringFlag{
			Name:  backendFlag,
			Usage: "Conversion backend: 'gdal' or 'noop' (only checks that inputs are readable)",
			Value: config.BackendGDAL,
		},
		&cli.StringFlag{
			Name:      inputFlag,
			Aliases:   []string{"i"},
			Usage:     "Directory containing the input tiles",
			Value:     config.DefaultInput,
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:  inputURLFlag,
			Usage: "Fetch the input tiles from this go-getter URL into the input directory first",
		},
		&cli.StringFlag{
			Name:  patternFlag,
			Usage: "Glob pattern selecting input files",
			Value: config.DefaultPattern,
		},
		&cli.StringFlag{
			Name:      outputFlag,
			Aliases:   []string{"o"},
			Usage:     "Output directory; converted files go to <output>/geojson",
			Value:     config.DefaultOutput,
			TakesFile: true,
		},
		&cli.BoolFlag{
			Name:    tuiFlag,
			Aliases: []string{"interactive"},
			Usage:   "Run with an interactive Terminal User Interface (TUI) showing real-time progress",
		},
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	opts, err := optionsFromCommand(cmd)
	if err != nil {
		logger.Error(err.Error())
		return cli.Exit(cliExitStr, 1)
	}

	ctxlog.RaiseVerbosity(opts.Verbose, opts.Debug)

	fs := config.FsFactory()

	exec, err := convert.New(opts, fs)
	if err != nil {
		logger.Error(err.Error())
		return cli.Exit(cliExitStr, 1)
	}

	// Logs, status lines and the summary are held back while the TUI is up.
	out := cmd.Writer
	buf := &lockedBuffer{}

	var workerStderr io.Writer // nil leaves worker logs on os.Stderr

	if opts.TUI {
		out = buf
		workerStderr = buf
	}

	spawner, err := newSpawner(opts, exec, workerStderr)
	if err != nil {
		logger.Error(err.Error())
		return cli.Exit(cliExitStr, 1)
	}

	c := &controller.Controller{
		Options: opts,
		Fs:      fs,
		Spawner: spawner,
		Out:     out,
	}

	if !opts.TUI {
		if _, err := c.Run(ctx); err != nil {
			logger.Error(fmt.Sprintf("Batch did not complete: %s", err.Error()))
			return cli.Exit(cliExitStr, 1)
		}

		return nil
	}

	logger.Info("Starting interactive TUI mode...")

	tuiCtx := ctxlog.NewForTUI(ctx, buf)
	runner := tui.NewRunner()

	_, err = runner.Run(tuiCtx, func(ctx context.Context, reporter progress.Reporter) (batch.Snapshot, error) {
		c.Reporter = reporter
		return c.Run(ctx)
	})

	buf.WriteTo(cmd.Writer) //nolint:errcheck

	if err != nil {
		logger.Error(fmt.Sprintf("Batch did not complete: %s", err.Error()))
		return cli.Exit(cliExitStr, 1)
	}

	return nil
}

// optionsFromCommand builds the options: defaults, then the config file,
// then every flag that was set explicitly.
func optionsFromCommand(cmd *cli.Command) (*config.Options, error) {
	opts := config.Default()

	if path := cmd.String(configFlag); path != "" {
		if err := opts.LoadFile(path); err != nil {
			return nil, err //nolint:wrapcheck
		}
	}

	f := &config.File{}

	if cmd.IsSet(layersFlag) {
		f.Layers = ptr(cmd.String(layersFlag))
	}

	if cmd.IsSet(thresholdFlag) {
		f.Threshold = ptr(cmd.Int(thresholdFlag))
	}

	if cmd.IsSet(simplifyFlag) {
		f.Simplify = ptr(cmd.Float(simplifyFlag))
	}

	if cmd.IsSet(parallelFlag) {
		f.Parallel = ptr(cmd.Int(parallelFlag))
	}

	if cmd.IsSet(verboseFlag) {
		f.Verbose = ptr(cmd.Bool(verboseFlag))
	}

	if cmd.IsSet(debugFlag) {
		f.Debug = ptr(cmd.Bool(debugFlag))
	}

	if cmd.IsSet(intervalFlag) {
		f.Interval = ptr(cmd.Duration(intervalFlag).String())
	}

	if cmd.IsSet(modeFlag) {
		f.Mode = ptr(cmd.String(modeFlag))
	}

	if cmd.IsSet(backendFlag) {
		f.Backend = ptr(cmd.String(backendFlag))
	}

	if cmd.IsSet(inputFlag) {
		f.Input = ptr(cmd.String(inputFlag))
	}

	if cmd.IsSet(inputURLFlag) {
		f.InputURL = ptr(cmd.String(inputURLFlag))
	}

	if cmd.IsSet(patternFlag) {
		f.Pattern = ptr(cmd.String(patternFlag))
	}

	if cmd.IsSet(outputFlag) {
		f.Output = ptr(cmd.String(outputFlag))
	}

	if err := opts.Apply(f); err != nil {
		return nil, err //nolint:wrapcheck
	}

	opts.TUI = cmd.Bool(tuiFlag)

	if err := opts.Validate(); err != nil {
		return nil, err //nolint:wrapcheck
	}

	return opts, nil
}

// newSpawner returns the spawner for opts.Mode. Process workers re-run this
// executable with the hidden worker command.
func newSpawner(opts *config.Options, exec worker.Executor, stderr io.Writer) (worker.Spawner, error) {
	if opts.Mode == config.ModeLocal {
		return worker.NewLocalSpawner(exec), nil
	}

	path, err := os.Executable()
	if err != nil {
		return nil, errors.Join(ErrNoExecutable, err)
	}

	entry, err := opts.EnvEntry()
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return &worker.ProcessSpawner{
		Path:   path,
		Args:   []string{workerCommand},
		Env:    []string{entry},
		Stderr: stderr,
	}, nil
}

func ptr[T any](v T) *T {
	return &v
}

// lockedBuffer is written by the logger, the status ticker and the stderr
// copiers of worker processes at the same time.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p) //nolint:wrapcheck
}

func (b *lockedBuffer) WriteTo(w io.Writer) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.WriteTo(w) //nolint:wrapcheck
}
