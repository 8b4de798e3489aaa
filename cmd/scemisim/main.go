// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Command scemisim is a simulated device. It serves a single scemirun
// connection and plays back the status messages of a script file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"golang.org/x/sys/unix"

	"github.com/aibor/scemirun/internal/device"
	"github.com/aibor/scemirun/internal/scemi"
)

func run(ctx context.Context) (int, error) {
	cfg := defaultConfig()

	// ParseArgs already prints errors, so we just exit.
	if err := cfg.parseArgs(os.Args, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0, nil
		}

		return 1, nil
	}

	level := log.InfoLevel
	if cfg.debug {
		level = log.DebugLevel
	}

	slog.SetDefault(slog.New(log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		Prefix:          "scemisim",
		ReportTimestamp: true,
	})))

	params, err := scemi.LoadParams(cfg.paramsFile)
	if err != nil {
		return 1, fmt.Errorf("load params: %w", err)
	}

	script, err := device.LoadScript(cfg.script)
	if err != nil {
		return 1, fmt.Errorf("load script: %w", err)
	}

	listener, err := device.Listen(ctx, params)
	if err != nil {
		return 1, err
	}
	defer listener.Close()

	slog.Info("Waiting for host",
		slog.String("addr", listener.Addr().String()),
		slog.Int("runs", len(script.Runs)))

	dev := &device.Device{
		Version: cfg.version,
		Runs:    script.Runs,
	}

	err = dev.ServeOne(ctx, listener)
	if err != nil {
		return 1, fmt.Errorf("serve: %w", err)
	}

	stats := dev.Stats()
	slog.Info("Host disconnected",
		slog.Int("version", stats.Version),
		slog.Int("starts", len(stats.StartAddrs)),
		slog.Int("status_sent", stats.StatusSent),
		slog.Bool("finished", stats.Finish > 0))

	return 0, nil
}

func main() {
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		unix.SIGINT,
		unix.SIGTERM,
		unix.SIGQUIT,
		unix.SIGHUP,
	)

	rc, err := run(ctx)
	if err != nil {
		slog.Error(err.Error())
	}

	cancel()
	os.Exit(rc)
}
