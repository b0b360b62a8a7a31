// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package layers lists the land-cover classes that can be selected.
package layers

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/tilebatch/internal/color"
	"github.com/matt-FFFFFF/tilebatch/internal/landcover"
	"github.com/urfave/cli/v3"
)

// LayersCmd prints the land-cover catalogue.
var LayersCmd = &cli.Command{
	Name:  "layers",
	Usage: "List the land-cover classes accepted by --layers",
	Action: func(_ context.Context, cmd *cli.Command) error {
		for _, c := range landcover.Classes() {
			if _, err := fmt.Fprintf(cmd.Writer, "%s %3d\n", color.Colorize(fmt.Sprintf("%-10s", c.Name), color.Bold), c.Value); err != nil {
				return err //nolint:wrapcheck
			}
		}

		_, err := fmt.Fprintf(cmd.Writer, "\nUse %q to select every class.\n", landcover.All)

		return err //nolint:wrapcheck
	},
}
