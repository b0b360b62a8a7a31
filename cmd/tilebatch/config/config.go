// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config is the sub-command that prints an example config file.
package config

import (
	"context"
	"fmt"

	cfg "github.com/matt-FFFFFF/tilebatch/internal/config"
	"github.com/urfave/cli/v3"
)

const formatFlag = "format"

// ConfigCmd writes the default options as a config file for run --config.
var ConfigCmd = &cli.Command{
	Name:   "config",
	Usage:  "Print an example config file with the default options",
	Flags:  flags(),
	Action: actionFunc,
}

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    formatFlag,
			Aliases: []string{"f"},
			Usage:   "Config file format, 'yaml' or 'hcl'",
			Value:   "yaml",
		},
	}
}

func actionFunc(_ context.Context, cmd *cli.Command) error {
	opts := cfg.Default()

	switch f := cmd.String(formatFlag); f {
	case "yaml", "yml":
		return opts.WriteYAML(cmd.Writer) //nolint:wrapcheck
	case "hcl":
		return opts.WriteHCL(cmd.Writer) //nolint:wrapcheck
	default:
		return cli.Exit(fmt.Sprintf("unsupported format %q, use yaml or hcl", f), 1)
	}
}
