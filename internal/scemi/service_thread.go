// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package scemi

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// ServiceThread pumps inbound frames from the link into the bound ports.
type ServiceThread struct {
	sceMi    *SceMi
	group    errgroup.Group
	stopping atomic.Bool
	stopOnce sync.Once
}

// NewServiceThread starts servicing the link right away.
func NewServiceThread(sceMi *SceMi) *ServiceThread {
	thread := &ServiceThread{sceMi: sceMi}
	thread.group.Go(thread.run)

	return thread
}

func (t *ServiceThread) run() error {
	err := t.sceMi.serve()

	// Receivers must not block on a link that is not serviced anymore.
	t.sceMi.failQueues(ErrLinkClosed)

	switch {
	case errors.Is(err, ErrLinkClosed), errors.Is(err, io.EOF):
		slog.Debug("Fabric closed the link")
		return nil
	case t.stopping.Load() && (errors.Is(err, os.ErrDeadlineExceeded) ||
		errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe)):
		return nil
	default:
		return &LinkError{Op: "receive", Err: err}
	}
}

// Stop makes the service thread return. It does not wait for it, use
// [ServiceThread.Join] for that.
func (t *ServiceThread) Stop() {
	t.stopOnce.Do(func() {
		t.stopping.Store(true)

		// Unblock the pending read.
		err := t.sceMi.conn.SetReadDeadline(time.Now())
		if err != nil {
			slog.Debug("Failed to interrupt link read", slog.Any("error", err))
		}
	})
}

// Join waits for the service thread to return. It returns the error that
// terminated it, if it did not stop because of [ServiceThread.Stop] or a
// regular close of the link.
func (t *ServiceThread) Join() error {
	return t.group.Wait() //nolint:wrapcheck
}
