// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cmd provides the CLI command entry point for scemirun. It parses the
// flags, opens the session to the device and maps the result to an exit code.
package cmd
