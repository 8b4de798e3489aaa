// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package driver

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// MemInitSender signals the end of memory initialization to the device.
type MemInitSender interface {
	SendInitDone() error
}

// ImageLoader initializes the device memory from an image file.
//
// Implementations must send exactly one init-done marker if they succeed.
type ImageLoader interface {
	Load(ctx context.Context, path string, mem MemInitSender) error
}

// StubLoader does not transfer any image content. It only checks the image
// exists and signals the device that memory initialization is done.
type StubLoader struct{}

var _ ImageLoader = StubLoader{}

// Load implements [ImageLoader].
func (StubLoader) Load(_ context.Context, path string, mem MemInitSender) error {
	err := validateImagePath(path)
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}

	slog.Debug("Skipping image content", slog.String("path", path))

	err = mem.SendInitDone()
	if err != nil {
		return &LoadError{Path: path, Err: fmt.Errorf("init done: %w", err)}
	}

	return nil
}

func validateImagePath(path string) error {
	stat, err := os.Stat(path)
	if err != nil {
		return err //nolint:wrapcheck
	}

	if !stat.Mode().IsRegular() {
		return ErrNotRegularFile
	}

	return nil
}
