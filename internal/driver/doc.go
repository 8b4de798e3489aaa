// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package driver runs images on the device and reports their results.
//
// A [Session] holds the link to the device. [Run] loads each image, starts
// the cores and decodes their status messages with a [Decoder] until the
// device reports the exit code.
package driver
