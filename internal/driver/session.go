// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/aibor/scemirun/internal/scemi"
)

// Session is the open link to the device with all ports of the processor
// host interface bound and serviced.
//
// A Session must be closed with [Session.Close] on every path once it is
// opened.
type Session struct {
	sceMi    *scemi.SceMi
	mem      *scemi.InportProxy[scemi.MemInit]
	toHost   *scemi.OutportQueue[scemi.ToHost, *scemi.ToHost]
	fromHost *scemi.InportProxy[scemi.FromHost]
	shutdown *scemi.ShutdownXactor
	service  *scemi.ServiceThread

	closeOnce sync.Once
	closeErr  error
}

var _ Target = (*Session)(nil)

// Open connects to the fabric described by params and opens the session.
func Open(ctx context.Context, versionTag string, params *scemi.Params) (*Session, error) {
	version, err := scemi.Version(versionTag)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	sceMi, err := scemi.Init(ctx, version, params)
	if err != nil {
		return nil, fmt.Errorf("init link: %w", err)
	}

	return newSession(sceMi)
}

// OpenConn opens the session on an established connection.
func OpenConn(ctx context.Context, versionTag string, conn net.Conn) (*Session, error) {
	version, err := scemi.Version(versionTag)
	if err != nil {
		_ = conn.Close()
		return nil, err //nolint:wrapcheck
	}

	sceMi, err := scemi.InitConn(ctx, version, conn)
	if err != nil {
		return nil, fmt.Errorf("init link: %w", err)
	}

	return newSession(sceMi)
}

func newSession(sceMi *scemi.SceMi) (*Session, error) {
	session, err := bindPorts(sceMi)
	if err != nil {
		_ = sceMi.Shutdown()
		return nil, err
	}

	session.service = scemi.NewServiceThread(sceMi)

	slog.Debug("Session opened")

	return session, nil
}

func bindPorts(sceMi *scemi.SceMi) (*Session, error) {
	var (
		session = Session{sceMi: sceMi}
		err     error
	)

	session.mem, err = scemi.NewInportProxy[scemi.MemInit](scemi.PortMemInit, sceMi)
	if err != nil {
		return nil, fmt.Errorf("bind: %w", err)
	}

	session.toHost, err = scemi.NewOutportQueue[scemi.ToHost](scemi.PortToHost, sceMi)
	if err != nil {
		return nil, fmt.Errorf("bind: %w", err)
	}

	session.fromHost, err = scemi.NewInportProxy[scemi.FromHost](scemi.PortFromHost, sceMi)
	if err != nil {
		return nil, fmt.Errorf("bind: %w", err)
	}

	session.shutdown, err = scemi.NewShutdownXactor(scemi.PortShutdown, sceMi)
	if err != nil {
		return nil, fmt.Errorf("bind: %w", err)
	}

	return &session, nil
}

// SendInitDone implements [MemInitSender].
func (s *Session) SendInitDone() error {
	return s.mem.SendMessage(scemi.MemInit{Tag: scemi.MemInitDone})
}

// SendStart implements [Target].
func (s *Session) SendStart(addr uint32) error {
	return s.fromHost.SendMessage(scemi.FromHost{StartAddr: addr})
}

// ReceiveStatus implements [StatusReceiver].
func (s *Session) ReceiveStatus(ctx context.Context) (scemi.ToHost, error) {
	return s.toHost.GetMessage(ctx)
}

// Close shuts the session down: the finish request is sent and acknowledged,
// the service thread is stopped and joined and the link is closed.
//
// All steps are run even if one fails. Only the first call does anything,
// further calls return the first call's result.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		var errs []error

		err := s.shutdown.BlockingSendFinish(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("finish: %w", err))
		}

		s.service.Stop()

		err = s.service.Join()
		if err != nil {
			errs = append(errs, fmt.Errorf("service thread: %w", err))
		}

		err = s.sceMi.Shutdown()
		if err != nil {
			errs = append(errs, fmt.Errorf("shutdown: %w", err))
		}

		s.closeErr = errors.Join(errs...)

		slog.Debug("Session closed", slog.Any("error", s.closeErr))
	})

	return s.closeErr
}
