// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package worker

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frames(lines ...string) io.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

func readFrames(t *testing.T, r io.Reader) []Frame {
	t.Helper()

	conn := NewConn(r, nil)

	var out []Frame

	for {
		f, err := conn.Receive()
		if err == io.EOF {
			return out
		}

		require.NoError(t, err)

		out = append(out, f)
	}
}

func TestServe(t *testing.T) {
	in := frames(
		`{"type":"assign","job":"ok.tif"}`,
		`{"type":"assign","job":"fail.tif"}`,
		`{"type":"assign","job":"panic.tif"}`,
		`{"type":"shutdown"}`,
		`{"type":"assign","job":"never.tif"}`,
	)

	var out bytes.Buffer

	require.NoError(t, Serve(context.Background(), in, &out, ExecutorFunc(scriptedJob)))

	got := readFrames(t, &out)
	require.Len(t, got, 3, "nothing is executed after shutdown")

	assert.Equal(t, Frame{Type: FrameDone, Job: "ok.tif"}, got[0])
	assert.Equal(t, Frame{Type: FrameFailed, Job: "fail.tif", Error: "scripted failure"}, got[1])
	assert.Equal(t, FrameFailed, got[2].Type)
	assert.Equal(t, "panic.tif", got[2].Job)
	assert.Contains(t, got[2].Error, "scripted panic")
}

func TestServe_EOFIsCleanExit(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, Serve(context.Background(), frames(`{"type":"assign","job":"ok.tif"}`), &out, ExecutorFunc(scriptedJob)))
	assert.Len(t, readFrames(t, &out), 1)
}

func TestServe_ProtocolError(t *testing.T) {
	var out bytes.Buffer

	err := Serve(context.Background(), frames(`{"type":"done","job":"x.tif"}`), &out, ExecutorFunc(scriptedJob))
	require.ErrorIs(t, err, ErrProtocol)

	err = Serve(context.Background(), frames(`garbage`), &out, ExecutorFunc(scriptedJob))
	require.ErrorIs(t, err, ErrProtocol)
}

func TestServe_NilExecutor(t *testing.T) {
	require.ErrorIs(t, Serve(context.Background(), frames(), io.Discard, nil), ErrNilExecutor)
}
