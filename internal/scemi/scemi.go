// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package scemi

import (
	"bufio"
	"context"
	"encoding"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"
)

// SceMi is an open link to the emulation fabric.
//
// Ports are bound with [NewInportProxy], [NewOutportQueue] and
// [NewShutdownXactor]. Inbound frames are only processed while a
// [ServiceThread] runs.
type SceMi struct {
	conn    net.Conn
	reader  *bufio.Reader
	version int

	writeMu sync.Mutex

	mu     sync.Mutex
	ports  map[string]PortID
	queues map[PortID]*queue
	nextID PortID

	closeOnce sync.Once
	closeErr  error
}

// Init dials the fabric described by params and opens the link with the
// given version, as returned by [Version].
func Init(ctx context.Context, version int, params *Params) (*SceMi, error) {
	conn, err := Dial(ctx, params)
	if err != nil {
		return nil, &LinkError{Op: "dial", Err: err}
	}

	return InitConn(ctx, version, conn)
}

// InitConn opens the link on an already established connection. The
// connection is closed if the handshake fails.
func InitConn(ctx context.Context, version int, conn net.Conn) (*SceMi, error) {
	sceMi := &SceMi{
		conn:    conn,
		reader:  bufio.NewReader(conn),
		version: version,
		ports:   make(map[string]PortID),
		queues:  make(map[PortID]*queue),
	}

	err := sceMi.hello(ctx)
	if err != nil {
		_ = conn.Close()
		return nil, &LinkError{Op: "hello", Err: err}
	}

	slog.Debug("Link established",
		slog.String("remote", conn.RemoteAddr().String()),
		slog.Int("version", version))

	return sceMi, nil
}

// Version returns the negotiated version.
func (s *SceMi) Version() int {
	return s.version
}

func (s *SceMi) hello(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		_ = s.conn.SetDeadline(time.Now())
	})
	defer func() {
		stop()
		_ = s.conn.SetDeadline(time.Time{})
	}()

	err := s.send(ControlPort, Control{
		Op:      OpHello,
		Version: uint32(s.version), //nolint:gosec
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err() //nolint:wrapcheck
		}

		return err
	}

	frame, err := ReadFrame(s.reader)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err() //nolint:wrapcheck
		}

		return err
	}

	var reply Control
	if frame.Port != ControlPort || reply.UnmarshalBinary(frame.Body) != nil ||
		reply.Op != OpHello {
		return fmt.Errorf("%w on port %d", ErrUnexpectedFrame, frame.Port)
	}

	if int(reply.Version) != s.version {
		return fmt.Errorf("%w: host %d, fabric %d",
			ErrVersionMismatch, s.version, reply.Version)
	}

	return nil
}

// bind registers the port name and announces it to the fabric. Ports the
// device sends on get a queue the [ServiceThread] delivers into.
func (s *SceMi) bind(name string, dir Direction) (PortID, *queue, error) {
	s.mu.Lock()

	if _, exists := s.ports[name]; exists {
		s.mu.Unlock()
		return 0, nil, fmt.Errorf("%w: %s", ErrPortBound, name)
	}

	s.nextID++
	port := s.nextID
	s.ports[name] = port

	var q *queue
	if dir&DirOut != 0 {
		q = newQueue()
		s.queues[port] = q
	}

	s.mu.Unlock()

	err := s.send(ControlPort, Control{
		Op:        OpBind,
		Port:      port,
		Direction: dir,
		Name:      name,
	})
	if err != nil {
		return 0, nil, fmt.Errorf("bind %s: %w", name, err)
	}

	slog.Debug("Port bound",
		slog.String("name", name),
		slog.Int("port", int(port)))

	return port, q, nil
}

func (s *SceMi) send(port PortID, msg encoding.BinaryMarshaler) error {
	body, err := msg.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err = WriteFrame(s.conn, Frame{Port: port, Body: body})
	if err != nil {
		return &LinkError{Op: "send", Err: err}
	}

	return nil
}

// serve reads and routes inbound frames until reading fails.
func (s *SceMi) serve() error {
	for {
		frame, err := ReadFrame(s.reader)
		if err != nil {
			return err
		}

		if frame.Port == ControlPort {
			var ctrl Control

			err := ctrl.UnmarshalBinary(frame.Body)
			if err == nil && ctrl.Op == OpClose {
				return ErrLinkClosed
			}

			slog.Debug("Ignoring control frame", slog.Any("error", err))

			continue
		}

		s.route(frame)
	}
}

func (s *SceMi) route(frame Frame) {
	s.mu.Lock()
	q, exists := s.queues[frame.Port]
	s.mu.Unlock()

	if !exists {
		slog.Debug("Dropping frame for unbound port",
			slog.Int("port", int(frame.Port)))

		return
	}

	q.push(frame.Body)
}

func (s *SceMi) failQueues(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, q := range s.queues {
		q.fail(err)
	}
}

// Shutdown announces the close to the fabric and closes the connection.
//
// Any port still waiting for messages returns [ErrLinkClosed]. Calling it
// more than once returns the result of the first call.
func (s *SceMi) Shutdown() error {
	s.closeOnce.Do(func() {
		sendErr := s.send(ControlPort, Control{Op: OpClose})
		closeErr := s.conn.Close()

		s.failQueues(ErrLinkClosed)

		if closeErr != nil {
			closeErr = &LinkError{Op: "close", Err: closeErr}
		}

		s.closeErr = errors.Join(sendErr, closeErr)
	})

	return s.closeErr
}
