// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// DefaultStartAddr is the address the cores start executing at.
const DefaultStartAddr uint32 = 0x200

// Target is the device the images are run on.
type Target interface {
	MemInitSender
	StatusReceiver
	SendStart(addr uint32) error
}

// Config describes a sequence of image runs.
type Config struct {
	// Images to run, in order.
	Images []string
	// Number of active cores. Each round receives one status message per
	// core.
	Cores int
	// Address the cores start at.
	StartAddr uint32
	// Limits the time for a single image from start to exit code. Zero
	// waits forever.
	Timeout time.Duration
	// Loader for the images. [StubLoader] if not set.
	Loader ImageLoader
	// Diagnostic output. Banners, device output and results are written
	// here.
	Output io.Writer
}

// Run runs all images one after another on the target.
//
// A non-zero exit code reported by the device does not stop the sequence.
// Once all images ran, the [exitcode.Error]s of all failed images are
// returned joined. Any other error, like a [LoadError], stops the sequence
// immediately.
func Run(ctx context.Context, target Target, cfg Config) error {
	loader := cfg.Loader
	if loader == nil {
		loader = StubLoader{}
	}

	var failed []error

	for _, image := range cfg.Images {
		outcome, err := runImage(ctx, target, loader, image, cfg)
		if err != nil {
			return err
		}

		err = outcome.Err()
		if err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", image, err))
		}
	}

	return errors.Join(failed...)
}

func runImage(
	ctx context.Context,
	target Target,
	loader ImageLoader,
	image string,
	cfg Config,
) (Outcome, error) {
	fmt.Fprintf(cfg.Output, "---- %s ----\n", image)

	err := loader.Load(ctx, image, target)
	if err != nil {
		fmt.Fprintln(cfg.Output, "Failed to load memory")
		return Outcome{}, err
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	err = target.SendStart(cfg.StartAddr)
	if err != nil {
		return Outcome{}, fmt.Errorf("start %s: %w", image, err)
	}

	slog.Debug("Image started",
		slog.String("image", image),
		slog.String("addr", fmt.Sprintf("%#x", cfg.StartAddr)),
		slog.Int("cores", cfg.Cores))

	outcome, err := NewDecoder(cfg.Cores, cfg.Output).Run(ctx, target)
	if err != nil {
		return Outcome{}, fmt.Errorf("run %s: %w", image, err)
	}

	fmt.Fprintln(cfg.Output)
	fmt.Fprintln(cfg.Output, outcome)

	return outcome, nil
}
