// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package exitcode provides the error type for non-zero exit codes reported
// by the device.
package exitcode

import (
	"errors"
	"fmt"
)

// Error is an exit code the device reported for a run that is considered an
// error.
type Error int

func (e Error) Error() string {
	return fmt.Sprintf("device exit code: %d", int(e))
}

func (Error) Is(other error) bool {
	_, ok := other.(Error)
	return ok
}

// Code returns the exit code as basic int type.
func (e Error) Code() int {
	return int(e)
}

// From returns the device exit code of the given error and if the error was an
// [Error].
//
// If the error is nil, the exit code is 0. If the error is or wraps an [Error]
// the exit code is the one of the first [Error] found. Otherwise the exit code
// is -1.
func From(err error) (int, bool) {
	if err == nil {
		return 0, false
	}

	var exitErr Error
	if errors.As(err, &exitErr) {
		return exitErr.Code(), true
	}

	return -1, false
}
