// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package scemi

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMagic is returned if a frame header does not start with
	// [Magic].
	ErrInvalidMagic = errors.New("invalid frame magic")

	// ErrUnsupportedVersion is returned for unknown version tags or frames
	// with an unknown protocol version.
	ErrUnsupportedVersion = errors.New("unsupported version")

	// ErrVersionMismatch is returned if the fabric answers the hello with a
	// different version.
	ErrVersionMismatch = errors.New("fabric version mismatch")

	// ErrBodyTooLarge is returned if a message body does not fit into a
	// single frame.
	ErrBodyTooLarge = errors.New("body exceeds frame size")

	// ErrInvalidMessage is returned if a message body can not be decoded.
	ErrInvalidMessage = errors.New("invalid message")

	// ErrPortBound is returned if a port name is bound more than once.
	ErrPortBound = errors.New("port already bound")

	// ErrLinkClosed is returned by receiving ports once the link is gone.
	ErrLinkClosed = errors.New("link closed")

	// ErrUnexpectedFrame is returned if the fabric sends a frame that does
	// not fit the current protocol step.
	ErrUnexpectedFrame = errors.New("unexpected frame")
)

// LinkError wraps errors of the underlying connection.
type LinkError struct {
	Op  string
	Err error
}

// Error implements the [error] interface.
func (e *LinkError) Error() string {
	return fmt.Sprintf("link %s: %v", e.Op, e.Err)
}

// Is implements the [errors.Is] interface.
func (*LinkError) Is(other error) bool {
	_, ok := other.(*LinkError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *LinkError) Unwrap() error {
	return e.Err
}
