// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	cfg "github.com/matt-FFFFFF/tilebatch/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd := &cli.Command{
		Name:   "config",
		Flags:  flags(),
		Action: actionFunc,
		Writer: &out,
		// cli.Exit errors would otherwise end the test binary.
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}

	err := cmd.Run(context.Background(), append([]string{"config"}, args...))

	return out.String(), err
}

func TestConfigCmd(t *testing.T) {
	for _, tc := range []struct {
		args []string
		file string
	}{
		{file: "tilebatch.yaml"},
		{args: []string{"--format", "hcl"}, file: "tilebatch.hcl"},
	} {
		t.Run(tc.file, func(t *testing.T) {
			out, err := run(t, tc.args...)
			require.NoError(t, err)
			require.NotEmpty(t, out)

			path := filepath.Join(t.TempDir(), tc.file)
			require.NoError(t, os.WriteFile(path, []byte(out), 0o600))

			got := cfg.Default()
			require.NoError(t, got.LoadFile(path))
			assert.Equal(t, cfg.Default(), got)
		})
	}
}

func TestConfigCmd_UnknownFormat(t *testing.T) {
	_, err := run(t, "--format", "toml")

	var exitErr cli.ExitCoder
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.ExitCode())
}
