// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package landcover is the catalogue of ESA WorldCover classes that can be
// extracted from a land-cover tile.
package landcover

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// All selects every class.
const All = "all"

var (
	// ErrUnknownClass is returned for a layer name that is not in the catalogue.
	ErrUnknownClass = errors.New("unknown land-cover class")
	// ErrNoClasses is returned when a layer list selects nothing.
	ErrNoClasses = errors.New("no land-cover classes selected")
)

// Class is one land-cover class and its raster value.
type Class struct {
	Name  string
	Value int
}

var catalogue = []Class{
	{Name: "forest", Value: 10},
	{Name: "shrub", Value: 20},
	{Name: "grass", Value: 30},
	{Name: "crop", Value: 40},
	{Name: "built", Value: 50},
	{Name: "bare", Value: 60},
	{Name: "snow", Value: 70},
	{Name: "water", Value: 80},
	{Name: "wetland", Value: 90},
	{Name: "mangroves", Value: 95},
	{Name: "moss", Value: 100},
}

// Classes returns the catalogue in raster value order.
func Classes() []Class {
	return slices.Clone(catalogue)
}

// Lookup finds a class by name, ignoring case.
func Lookup(name string) (Class, bool) {
	name = strings.ToLower(strings.TrimSpace(name))

	i := slices.IndexFunc(catalogue, func(c Class) bool { return c.Name == name })
	if i < 0 {
		return Class{}, false
	}

	return catalogue[i], true
}

// Parse turns a comma separated list such as "forest,water" into classes,
// ordered by raster value with duplicates removed. "all" selects every class
// and may not be combined with names.
func Parse(list string) ([]Class, error) {
	var (
		out  []Class
		errs []error
	)

	for _, name := range strings.Split(list, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}

		if name == All {
			out = append(out, catalogue...)
			continue
		}

		c, ok := Lookup(name)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownClass, name))
			continue
		}

		out = append(out, c)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	if len(out) == 0 {
		return nil, ErrNoClasses
	}

	slices.SortFunc(out, func(a, b Class) int { return a.Value - b.Value })

	return slices.Compact(out), nil
}

// Values returns the raster values of classes.
func Values(classes []Class) []int {
	out := make([]int, len(classes))
	for i, c := range classes {
		out[i] = c.Value
	}

	return out
}

// Names returns the names of classes.
func Names(classes []Class) []string {
	out := make([]string, len(classes))
	for i, c := range classes {
		out[i] = c.Name
	}

	return out
}
