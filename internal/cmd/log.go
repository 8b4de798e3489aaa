// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

func setupLogging(writer io.Writer, debug bool) {
	level := log.WarnLevel
	if debug {
		level = log.DebugLevel
	}

	handler := log.NewWithOptions(writer, log.Options{
		Level:           level,
		Prefix:          name,
		ReportTimestamp: debug,
	})

	slog.SetDefault(slog.New(handler))
}
