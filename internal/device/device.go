// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package device

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/aibor/scemirun/internal/scemi"
)

// ErrNoRunScripted is returned if the host starts more runs than the
// [Device] has scripted.
var ErrNoRunScripted = errors.New("no run scripted")

// Stats records what the host did on the link.
type Stats struct {
	Version    int
	Binds      []string
	InitDone   int
	StartAddrs []uint32
	StatusSent int
	Finish     int
	Closed     bool
}

// Device is the device side of the link.
//
// Each start command plays the next [Run] back as status messages.
type Device struct {
	// Version answered in the hello handshake. If zero, the host's version
	// is echoed.
	Version int
	Runs    []Run

	mu    sync.Mutex
	stats Stats
}

// Stats returns a copy of the recorded host activity.
func (d *Device) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()

	stats := d.stats
	stats.Binds = append([]string(nil), d.stats.Binds...)
	stats.StartAddrs = append([]uint32(nil), d.stats.StartAddrs...)

	return stats
}

func (d *Device) record(fn func(*Stats)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	fn(&d.stats)
}

// Serve serves a single host connection until the host closes the link, the
// connection fails or the context is done. The connection is closed on
// return.
func (d *Device) Serve(ctx context.Context, conn net.Conn) error {
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	session := &session{
		device: d,
		conn:   conn,
		reader: bufio.NewReader(conn),
		ports:  make(map[scemi.PortID]string),
		byName: make(map[string]scemi.PortID),
	}

	err := session.serve()
	if err != nil && ctx.Err() != nil {
		return ctx.Err() //nolint:wrapcheck
	}

	return err
}

type session struct {
	device  *Device
	conn    net.Conn
	reader  *bufio.Reader
	ports   map[scemi.PortID]string
	byName  map[string]scemi.PortID
	nextRun int
}

func (s *session) serve() error {
	err := s.hello()
	if err != nil {
		return fmt.Errorf("hello: %w", err)
	}

	for {
		frame, err := scemi.ReadFrame(s.reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}

			return fmt.Errorf("read: %w", err)
		}

		done, err := s.handle(frame)
		if err != nil || done {
			return err
		}
	}
}

func (s *session) hello() error {
	frame, err := scemi.ReadFrame(s.reader)
	if err != nil {
		return err //nolint:wrapcheck
	}

	var hello scemi.Control

	err = hello.UnmarshalBinary(frame.Body)
	if err != nil || frame.Port != scemi.ControlPort || hello.Op != scemi.OpHello {
		return scemi.ErrUnexpectedFrame
	}

	s.device.record(func(stats *Stats) {
		stats.Version = int(hello.Version)
	})

	if s.device.Version != 0 {
		hello.Version = uint32(s.device.Version) //nolint:gosec
	}

	return s.send(scemi.ControlPort, hello)
}

func (s *session) handle(frame scemi.Frame) (bool, error) {
	if frame.Port == scemi.ControlPort {
		return s.handleControl(frame.Body)
	}

	name := s.ports[frame.Port]

	switch name {
	case scemi.PortMemInit:
		var msg scemi.MemInit
		if err := msg.UnmarshalBinary(frame.Body); err != nil {
			return false, err
		}

		if msg.Tag == scemi.MemInitDone {
			s.device.record(func(stats *Stats) { stats.InitDone++ })
		}
	case scemi.PortFromHost:
		var msg scemi.FromHost
		if err := msg.UnmarshalBinary(frame.Body); err != nil {
			return false, err
		}

		s.device.record(func(stats *Stats) {
			stats.StartAddrs = append(stats.StartAddrs, msg.StartAddr)
		})

		return false, s.play()
	case scemi.PortShutdown:
		var msg scemi.Shutdown
		if err := msg.UnmarshalBinary(frame.Body); err != nil {
			return false, err
		}

		if msg.Op != scemi.ShutdownFinish {
			break
		}

		s.device.record(func(stats *Stats) { stats.Finish++ })

		return false, s.send(frame.Port, scemi.Shutdown{Op: scemi.ShutdownAck})
	default:
		slog.Debug("Ignoring frame", slog.Int("port", int(frame.Port)))
	}

	return false, nil
}

func (s *session) handleControl(body []byte) (bool, error) {
	var ctrl scemi.Control

	err := ctrl.UnmarshalBinary(body)
	if err != nil {
		return false, err //nolint:wrapcheck
	}

	switch ctrl.Op {
	case scemi.OpBind:
		s.ports[ctrl.Port] = ctrl.Name
		s.byName[ctrl.Name] = ctrl.Port

		s.device.record(func(stats *Stats) {
			stats.Binds = append(stats.Binds, ctrl.Name)
		})
	case scemi.OpClose:
		s.device.record(func(stats *Stats) { stats.Closed = true })
		return true, nil
	case scemi.OpHello:
		return false, scemi.ErrUnexpectedFrame
	}

	return false, nil
}

// play sends the status messages of the next scripted run.
func (s *session) play() error {
	if s.nextRun >= len(s.device.Runs) {
		return fmt.Errorf("%w: run %d", ErrNoRunScripted, s.nextRun+1)
	}

	run := s.device.Runs[s.nextRun]
	s.nextRun++

	port, bound := s.byName[scemi.PortToHost]
	if !bound {
		return fmt.Errorf("%w: %s not bound", scemi.ErrUnexpectedFrame,
			scemi.PortToHost)
	}

	for _, msg := range run.Messages {
		err := s.send(port, msg.ToHost())
		if err != nil {
			return err
		}

		s.device.record(func(stats *Stats) { stats.StatusSent++ })
	}

	return nil
}

func (s *session) send(port scemi.PortID, msg scemi.Message) error {
	body, err := msg.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	return scemi.WriteFrame(s.conn, scemi.Frame{Port: port, Body: body})
}
