// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package driver

import (
	"errors"
	"fmt"
)

// ErrNotRegularFile is returned if an image path is not a regular file.
var ErrNotRegularFile = errors.New("not a regular file")

// LoadError is returned if an image could not be loaded into the device
// memory.
type LoadError struct {
	Path string
	Err  error
}

// Error implements the [error] interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

// Is implements the [errors.Is] interface.
func (*LoadError) Is(other error) bool {
	_, ok := other.(*LoadError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// ProtocolError is returned if the device sends a status message the host
// can not process.
type ProtocolError struct {
	CoreID uint32
	Cores  int
}

// Error implements the [error] interface.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("status from core %d, but only %d cores active",
		e.CoreID, e.Cores)
}

// Is implements the [errors.Is] interface.
func (*ProtocolError) Is(other error) bool {
	_, ok := other.(*ProtocolError)
	return ok
}
