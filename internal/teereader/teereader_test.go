// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package teereader

import (
	"io"
	"strings"
	"sync"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastLineTeeReader(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "single line", input: "hello world\n", want: "hello world"},
		{name: "unterminated", input: "hello world", want: "hello world"},
		{name: "last of many", input: "one\ntwo\nthree\n", want: "three"},
		{name: "trailing blank lines", input: "ERROR 4: no such file\n\n  \n", want: "ERROR 4: no such file"},
		{name: "windows line endings", input: "first\r\nsecond\r\n", want: "second"},
		{name: "progress then message", input: "0...10...20...\nERROR 1: bad band", want: "ERROR 1: bad band"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lt := NewLastLineTeeReader(strings.NewReader(tc.input))

			data, err := io.ReadAll(lt)
			require.NoError(t, err)

			assert.Equal(t, tc.input, string(data))
			assert.Equal(t, tc.input, string(lt.Bytes()))
			assert.Equal(t, tc.want, lt.LastLine(0))
		})
	}
}

func TestLastLineTeeReader_SplitReads(t *testing.T) {
	input := "warming up\nERROR 4: `/data/N00E006.tif' not recognized as a supported file format.\n"
	lt := NewLastLineTeeReader(iotest.OneByteReader(strings.NewReader(input)))

	_, err := io.Copy(io.Discard, lt)
	require.NoError(t, err)

	assert.Equal(t, "ERROR 4: `/data/N00E006.tif' not recognized as a supported file format.", lt.LastLine(0))
}

func TestLastLineTeeReader_Truncate(t *testing.T) {
	lt := NewLastLineTeeReader(strings.NewReader("abcdefghijklmnop\n"))

	_, err := io.ReadAll(lt)
	require.NoError(t, err)

	assert.Equal(t, "abcdefg...", lt.LastLine(10))
	assert.Equal(t, "abcdefghijklmnop", lt.LastLine(100))
}

func TestLastLineTeeReader_Concurrent(t *testing.T) {
	pr, pw := io.Pipe()
	lt := NewLastLineTeeReader(pr)

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		_, _ = io.Copy(io.Discard, lt)
	}()

	for range 100 {
		_, err := pw.Write([]byte("line\n"))
		require.NoError(t, err)

		_ = lt.LastLine(0)
	}

	require.NoError(t, pw.Close())
	wg.Wait()

	assert.Equal(t, "line", lt.LastLine(0))
	assert.Len(t, lt.Bytes(), 500)
}
