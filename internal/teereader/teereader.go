// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package teereader

import (
	"bytes"
	"io"
	"strings"
	"sync"
)

// LastLineTeeReader wraps an io.Reader, keeps a copy of everything read and
// tracks the last non-blank line. It is safe for concurrent use.
type LastLineTeeReader struct {
	reader  io.Reader
	full    bytes.Buffer
	partial strings.Builder // text after the last newline
	last    string
	mu      sync.Mutex
}

// NewLastLineTeeReader creates a LastLineTeeReader reading from r.
func NewLastLineTeeReader(r io.Reader) *LastLineTeeReader {
	return &LastLineTeeReader{reader: r}
}

// Read implements io.Reader.
func (lt *LastLineTeeReader) Read(p []byte) (int, error) {
	n, err := lt.reader.Read(p)
	if n > 0 {
		lt.mu.Lock()
		lt.full.Write(p[:n])
		lt.scan(p[:n])
		lt.mu.Unlock()
	}

	return n, err //nolint:wrapcheck
}

// scan must be called with mu held.
func (lt *LastLineTeeReader) scan(data []byte) {
	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			lt.partial.Write(data)
			return
		}

		lt.partial.Write(data[:i])

		if line := clean(lt.partial.String()); line != "" {
			lt.last = line
		}

		lt.partial.Reset()
		data = data[i+1:]
	}
}

// LastLine returns the last non-blank line read so far. Text after the final
// newline counts as a line once it is not blank, since a tool may exit
// without terminating its last message. If maxLength > 0 longer lines are
// cut to maxLength with a "..." suffix.
func (lt *LastLineTeeReader) LastLine(maxLength int) string {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	line := lt.last
	if p := clean(lt.partial.String()); p != "" {
		line = p
	}

	if maxLength > 3 && len(line) > maxLength {
		line = line[:maxLength-3] + "..."
	}

	return line
}

// Bytes returns a copy of everything read so far.
func (lt *LastLineTeeReader) Bytes() []byte {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	return bytes.Clone(lt.full.Bytes())
}

func clean(s string) string {
	return strings.TrimSpace(strings.TrimSuffix(s, "\r"))
}
