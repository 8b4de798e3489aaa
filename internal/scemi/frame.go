// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package scemi

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	// HeaderSize is the size of the [Header] on the wire.
	HeaderSize = 8

	// Magic is the first field of every frame.
	Magic uint16 = 0x5343

	// ProtocolVersion is the frame layout version.
	ProtocolVersion uint16 = 1

	// MaxBodySize is the largest body a single frame can carry.
	MaxBodySize = math.MaxUint16
)

// PortID identifies a bound port on the link. Port 0 is reserved for control
// messages.
type PortID uint16

// ControlPort carries [Control] messages.
const ControlPort PortID = 0

// Header precedes every frame body. All fields are big-endian.
//
//	 0      2        4     6       8
//	+------+--------+-----+-------+
//	|magic |version |port |length |
//	+------+--------+-----+-------+
type Header struct {
	Magic   uint16
	Version uint16
	Port    PortID
	Length  uint16
}

// Frame is a single message on the link.
type Frame struct {
	Port PortID
	Body []byte
}

// ReadFrame reads exactly one frame from r.
//
// It returns [io.EOF] only if r ends cleanly before the first header byte.
// A stream ending within a frame results in [io.ErrUnexpectedEOF].
func ReadFrame(r io.Reader) (Frame, error) {
	var headerBuf [HeaderSize]byte

	_, err := io.ReadFull(r, headerBuf[:])
	if err != nil {
		return Frame{}, err //nolint:wrapcheck
	}

	header := Header{
		Magic:   binary.BigEndian.Uint16(headerBuf[0:]),
		Version: binary.BigEndian.Uint16(headerBuf[2:]),
		Port:    PortID(binary.BigEndian.Uint16(headerBuf[4:])),
		Length:  binary.BigEndian.Uint16(headerBuf[6:]),
	}

	if header.Magic != Magic {
		return Frame{}, fmt.Errorf("%w: %#04x", ErrInvalidMagic, header.Magic)
	}

	if header.Version != ProtocolVersion {
		return Frame{}, fmt.Errorf("frame %w: %d",
			ErrUnsupportedVersion, header.Version)
	}

	frame := Frame{Port: header.Port}

	if header.Length == 0 {
		return frame, nil
	}

	frame.Body = make([]byte, header.Length)

	_, err = io.ReadFull(r, frame.Body)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}

		return Frame{}, err //nolint:wrapcheck
	}

	return frame, nil
}

// WriteFrame writes the frame to w with a single write call.
func WriteFrame(w io.Writer, frame Frame) error {
	length := len(frame.Body)
	if length > MaxBodySize {
		return fmt.Errorf("%w: %d bytes", ErrBodyTooLarge, length)
	}

	buf := make([]byte, HeaderSize+length)
	binary.BigEndian.PutUint16(buf[0:], Magic)
	binary.BigEndian.PutUint16(buf[2:], ProtocolVersion)
	binary.BigEndian.PutUint16(buf[4:], uint16(frame.Port))
	binary.BigEndian.PutUint16(buf[6:], uint16(length))
	copy(buf[HeaderSize:], frame.Body)

	_, err := w.Write(buf)
	if err != nil {
		return fmt.Errorf("write frame: %w", err)
	}

	return nil
}
