// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package worker

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Frame types of the coordinator/worker protocol. Each frame is one JSON
// object on its own line.
const (
	FrameAssign   = "assign"
	FrameShutdown = "shutdown"
	FrameDone     = "done"
	FrameFailed   = "failed"
)

// ErrProtocol is returned for malformed or unexpected frames.
var ErrProtocol = errors.New("worker protocol error")

// Frame is a protocol message.
type Frame struct {
	Type  string `json:"type"`
	Job   string `json:"job,omitempty"`
	Error string `json:"error,omitempty"`
}

// Conn reads and writes frames over a byte stream pair.
type Conn struct {
	dec *json.Decoder
	enc *json.Encoder
}

// NewConn returns a Conn reading frames from r and writing them to w.
func NewConn(r io.Reader, w io.Writer) *Conn {
	return &Conn{dec: json.NewDecoder(r), enc: json.NewEncoder(w)}
}

// Send writes f.
func (c *Conn) Send(f Frame) error {
	if err := c.enc.Encode(f); err != nil {
		return errors.Join(ErrProtocol, err)
	}

	return nil
}

// Receive reads the next frame. It returns io.EOF unwrapped when the stream
// ends between frames.
func (c *Conn) Receive() (Frame, error) {
	var f Frame

	if err := c.dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return Frame{}, io.EOF
		}

		return Frame{}, errors.Join(ErrProtocol, err)
	}

	switch f.Type {
	case FrameAssign, FrameDone, FrameFailed:
		if f.Job == "" {
			return Frame{}, fmt.Errorf("%w: %s frame without job", ErrProtocol, f.Type)
		}
	case FrameShutdown:
	default:
		return Frame{}, fmt.Errorf("%w: unknown frame type %q", ErrProtocol, f.Type)
	}

	return f, nil
}

// completionFrame converts the outcome of job into a reply frame.
func completionFrame(job string, err error) Frame {
	if err != nil {
		return Frame{Type: FrameFailed, Job: job, Error: err.Error()}
	}

	return Frame{Type: FrameDone, Job: job}
}

// completionMessage converts a reply frame into a dispatcher message.
func completionMessage(worker string, f Frame) Message {
	m := Message{Worker: worker, Kind: KindCompletion, Job: f.Job}
	if f.Type == FrameFailed {
		m.Err = fmt.Errorf("%w: %s", ErrJobFailed, f.Error)
	}

	return m
}
