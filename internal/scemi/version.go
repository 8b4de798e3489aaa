// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package scemi

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultVersionTag is the interface version the host speaks by default.
const DefaultVersionTag = "2.1.0"

const supportedMajor = 2

// Version converts a version tag of the form "major.minor[.patch]" into the
// integer version exchanged in the hello handshake.
//
// Only major version 2 is supported.
func Version(tag string) (int, error) {
	parts := strings.Split(tag, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedVersion, tag)
	}

	var numbers [3]int

	for idx, part := range parts {
		number, err := strconv.Atoi(part)
		if err != nil || number < 0 || number > 99 {
			return 0, fmt.Errorf("%w: %q", ErrUnsupportedVersion, tag)
		}

		numbers[idx] = number
	}

	if numbers[0] != supportedMajor {
		return 0, fmt.Errorf("%w: major %d", ErrUnsupportedVersion, numbers[0])
	}

	return numbers[0]*10000 + numbers[1]*100 + numbers[2], nil
}
