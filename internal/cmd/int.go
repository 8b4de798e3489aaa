// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"errors"
	"fmt"
	"strconv"
)

var ErrValueOutOfRange = errors.New("value is outside of range")

// LimitedUintValue is a [flag.Value] for unsigned integers within the
// inclusive range from Lower to Upper. A zero bound is not checked.
type LimitedUintValue struct {
	Value        *uint64
	Lower, Upper uint64
}

func (u *LimitedUintValue) String() string {
	if u.Value == nil {
		return "0"
	}

	return strconv.FormatUint(*u.Value, 10)
}

func (u *LimitedUintValue) Set(s string) error {
	value, err := strconv.ParseUint(s, 10, 0)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	if u.Lower > 0 && value < u.Lower {
		return fmt.Errorf("%d < %d: %w", value, u.Lower, ErrValueOutOfRange)
	}

	if u.Upper > 0 && value > u.Upper {
		return fmt.Errorf("%d > %d: %w", value, u.Upper, ErrValueOutOfRange)
	}

	*u.Value = value

	return nil
}

// AddressValue is a [flag.Value] for 32 bit addresses. Values may be given
// in decimal, hex (0x), octal (0o) or binary (0b) notation.
type AddressValue uint32

func (a *AddressValue) String() string {
	return fmt.Sprintf("%#x", uint32(*a))
}

func (a *AddressValue) Set(s string) error {
	value, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	*a = AddressValue(value)

	return nil
}
