// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"github.com/aibor/scemirun/internal/driver"
	"github.com/aibor/scemirun/internal/exitcode"
	"github.com/aibor/scemirun/internal/scemi"
)

const (
	localConfigFile = ".scemirun-args"

	// shutdownTimeout limits waiting for the device to acknowledge the
	// finish request. It applies even if the run itself was cancelled.
	shutdownTimeout = 30 * time.Second
)

var errSessionClose = errors.New("session close failed")

// IO provides input and output details for the command.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func run(ctx context.Context, flags *flags, cfg IO) (err error) {
	params, err := scemi.LoadParams(flags.ParamsFile)
	if err != nil {
		return fmt.Errorf("load params: %w", err)
	}

	session, err := driver.Open(ctx, flags.VersionTag, params)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}

	// The session must be closed on every path, so the device is told to
	// finish and the service thread does not outlive the run.
	defer func() {
		loadFailed := errors.Is(err, &driver.LoadError{})
		if loadFailed {
			fmt.Fprintln(cfg.Stdout, "shutting down...")
		}

		closeErr := closeSession(ctx, session)
		if closeErr != nil {
			slog.Error("Failed to close session", slog.Any("error", closeErr))

			err = errors.Join(err, errSessionClose)
		}

		if loadFailed {
			fmt.Fprintln(cfg.Stdout, "finished")
		}
	}()

	return driver.Run(ctx, session, flags.driverConfig(cfg.Stderr)) //nolint:wrapcheck
}

func closeSession(ctx context.Context, session *driver.Session) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	return session.Close(ctx)
}

func handleParseArgsError(err error) int {
	// [ErrHelp] is returned when help is requested. So exit without error
	// in this case.
	if errors.Is(err, ErrHelp) {
		return 0
	}

	// ParseArgs already prints errors, so we just exit without an error.
	if !errors.Is(err, &ParseArgsError{}) {
		slog.Error(err.Error())
	}

	return 1
}

func handleRunError(err error) int {
	// Images that failed with a device exit code have been reported already
	// and a failed session close has been logged when it happened.
	_, isExitErr := exitcode.From(err)
	if !isExitErr && !errors.Is(err, errSessionClose) {
		slog.Error(err.Error())
	}

	return 1
}

// Run is the main entry point for the CLI command.
func Run(ctx context.Context, args []string, cfg IO) int {
	setupLogging(cfg.Stderr, false)

	args, err := MergedArgs(args, os.DirFS("."), localConfigFile)
	if err != nil {
		slog.Error(err.Error())
		return 1
	}

	flags, err := parseArgs(args, cfg.Stderr)
	if err != nil {
		return handleParseArgsError(err)
	}

	setupLogging(cfg.Stderr, flags.Debug)

	if flags.Version {
		buildInfo, err := getBuildInfo()
		if err != nil {
			slog.Error(err.Error())
			return 1
		}

		fmt.Fprintf(cfg.Stdout, "Version: %s\n", buildInfo.Main.Version)

		return 0
	}

	err = run(ctx, flags, cfg)
	if err != nil {
		return handleRunError(err)
	}

	return 0
}

func getBuildInfo() (*debug.BuildInfo, error) {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return nil, ErrReadBuildInfo
	}

	return buildInfo, nil
}
