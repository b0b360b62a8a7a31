// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/matt-FFFFFF/tilebatch/internal/ctxlog"
	"github.com/matt-FFFFFF/tilebatch/internal/landcover"
	"github.com/matt-FFFFFF/tilebatch/internal/worker"
	"github.com/spf13/afero"
)

// GDAL tool names, resolved through PATH.
const (
	SieveTool      = "gdal_sieve.py"
	PolygonizeTool = "gdal_polygonize.py"
	OgrTool        = "ogr2ogr"
)

const (
	outputLayer    = "global_landcover"
	polygonLayer   = "polygons"
	polygonField   = "band"
	geojsonExt     = ".geojson"
	sieveSuffix    = "-sieve.tif"
	polygonsSuffix = "-polygons.gpkg"
)

var _ worker.Executor = (*GDAL)(nil)

// GDAL converts a land-cover tile in three steps:
//
//  1. gdal_sieve.py removes patches smaller than Threshold pixels.
//  2. gdal_polygonize.py turns the sieved raster into 8-connected polygons.
//  3. ogr2ogr keeps the polygons of the selected classes, names their class,
//     simplifies them and writes GeoJSONSeq.
//
// The sieved raster and polygons are written to SieveDir and removed
// afterwards. A tile whose output already exists is skipped.
type GDAL struct {
	Fs         afero.Fs
	Classes    []landcover.Class
	Threshold  int
	Simplify   float64
	GeoJSONDir string
	SieveDir   string
	Verbose    bool
}

// Execute implements worker.Executor.
func (g *GDAL) Execute(ctx context.Context, job string) (err error) {
	name := strings.TrimSuffix(filepath.Base(job), filepath.Ext(job))
	output := filepath.Join(g.GeoJSONDir, name+geojsonExt)
	logger := ctxlog.Logger(ctx).With("file", name)

	exists, err := afero.Exists(g.Fs, output)
	if err != nil {
		return fmt.Errorf("checking %s: %w", output, err)
	}

	if exists {
		logger.Info(fmt.Sprintf("Skipping %s, geojson exists", name))
		return nil
	}

	start := time.Now()

	logger.Debug("starting file",
		"threshold", g.Threshold,
		"simplify", g.Simplify,
		"layers", strings.Join(landcover.Names(g.Classes), ","))

	sieved := filepath.Join(g.SieveDir, name+sieveSuffix)
	polygons := filepath.Join(g.SieveDir, name+polygonsSuffix)

	// left over by a worker that died
	for _, f := range []string{sieved, polygons} {
		_ = g.Fs.Remove(f)
	}

	defer func() {
		cleanup := []string{sieved, polygons}
		if err != nil {
			// never leave a partial output behind, it would be skipped next run
			cleanup = append(cleanup, output)
		}

		for _, f := range cleanup {
			if rmErr := g.Fs.Remove(f); rmErr == nil {
				logger.Debug("cleaned up", "path", f)
			}
		}
	}()

	steps := []struct {
		tool string
		args []string
	}{
		{SieveTool, g.sieveArgs(job, sieved)},
		{PolygonizeTool, polygonizeArgs(sieved, polygons)},
		{OgrTool, g.ogrArgs(polygons, output)},
	}

	for _, s := range steps {
		if err := runCommand(ctx, s.tool, s.args...); err != nil {
			return err
		}
	}

	if g.Verbose {
		logger.Info(fmt.Sprintf("%s (%.3f seconds)", name, time.Since(start).Seconds()))
	}

	return nil
}

func (g *GDAL) sieveArgs(input, output string) []string {
	return []string{"-q", "-st", strconv.Itoa(g.Threshold), "-of", "GTiff", input, output}
}

func polygonizeArgs(input, output string) []string {
	return []string{"-q", "-8", input, "-f", "GPKG", output, polygonLayer, polygonField}
}

func (g *GDAL) ogrArgs(input, output string) []string {
	return []string{
		"-f", "GeoJSONSeq",
		"-nln", outputLayer,
		"-simplify", strconv.FormatFloat(g.Simplify, 'f', -1, 64),
		"-skipfailures",
		"-dialect", "SQLite",
		"-sql", classSQL(g.Classes),
		output, input,
	}
}

// classSQL selects the polygons of classes and labels them with the class name.
func classSQL(classes []landcover.Class) string {
	var b strings.Builder

	b.WriteString("SELECT CASE " + polygonField)

	values := make([]string, len(classes))

	for i, c := range classes {
		fmt.Fprintf(&b, " WHEN %d THEN '%s'", c.Value, c.Name)
		values[i] = strconv.Itoa(c.Value)
	}

	fmt.Fprintf(&b, " END AS class, geom FROM %s WHERE %s IN (%s)",
		polygonLayer, polygonField, strings.Join(values, ", "))

	return b.String()
}
