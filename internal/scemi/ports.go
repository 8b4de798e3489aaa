// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package scemi

import (
	"context"
	"encoding"
	"fmt"
)

// InportProxy sends messages of type T into the device.
type InportProxy[T Message] struct {
	name  string
	port  PortID
	sceMi *SceMi
}

// NewInportProxy binds the named inport.
func NewInportProxy[T Message](name string, sceMi *SceMi) (*InportProxy[T], error) {
	port, _, err := sceMi.bind(name, DirIn)
	if err != nil {
		return nil, err
	}

	return &InportProxy[T]{
		name:  name,
		port:  port,
		sceMi: sceMi,
	}, nil
}

// Name returns the name the port is bound with.
func (p *InportProxy[T]) Name() string {
	return p.name
}

// SendMessage sends the message without waiting for the device.
func (p *InportProxy[T]) SendMessage(msg T) error {
	err := p.sceMi.send(p.port, msg)
	if err != nil {
		return fmt.Errorf("port %s: %w", p.name, err)
	}

	return nil
}

// OutportQueue receives messages of type T from the device.
//
// Messages are queued by the [ServiceThread] until they are received, so the
// device never waits for the host to catch up.
type OutportQueue[T any, PT interface {
	*T
	encoding.BinaryUnmarshaler
}] struct {
	name  string
	queue *queue
}

// NewOutportQueue binds the named outport.
func NewOutportQueue[T any, PT interface {
	*T
	encoding.BinaryUnmarshaler
}](name string, sceMi *SceMi) (*OutportQueue[T, PT], error) {
	_, q, err := sceMi.bind(name, DirOut)
	if err != nil {
		return nil, err
	}

	return &OutportQueue[T, PT]{
		name:  name,
		queue: q,
	}, nil
}

// Name returns the name the port is bound with.
func (q *OutportQueue[T, PT]) Name() string {
	return q.name
}

// Pending returns the number of received but not yet consumed messages.
func (q *OutportQueue[T, PT]) Pending() int {
	return q.queue.len()
}

// GetMessage blocks until a message is available, the context is done or the
// link is gone.
func (q *OutportQueue[T, PT]) GetMessage(ctx context.Context) (T, error) {
	var msg T

	body, err := q.queue.pop(ctx)
	if err != nil {
		return msg, fmt.Errorf("port %s: %w", q.name, err)
	}

	err = PT(&msg).UnmarshalBinary(body)
	if err != nil {
		return msg, fmt.Errorf("port %s: %w", q.name, err)
	}

	return msg, nil
}

// ShutdownXactor tells the device the host is done.
type ShutdownXactor struct {
	name  string
	port  PortID
	queue *queue
	sceMi *SceMi
}

// NewShutdownXactor binds the named shutdown port. It is used in both
// directions: the finish request goes in, the acknowledge comes out.
func NewShutdownXactor(name string, sceMi *SceMi) (*ShutdownXactor, error) {
	port, q, err := sceMi.bind(name, DirIn|DirOut)
	if err != nil {
		return nil, err
	}

	return &ShutdownXactor{
		name:  name,
		port:  port,
		queue: q,
		sceMi: sceMi,
	}, nil
}

// BlockingSendFinish sends the finish request and waits for the device to
// acknowledge it. It requires a running [ServiceThread].
func (x *ShutdownXactor) BlockingSendFinish(ctx context.Context) error {
	err := x.sceMi.send(x.port, Shutdown{Op: ShutdownFinish})
	if err != nil {
		return fmt.Errorf("port %s: %w", x.name, err)
	}

	for {
		body, err := x.queue.pop(ctx)
		if err != nil {
			return fmt.Errorf("port %s: %w", x.name, err)
		}

		var msg Shutdown

		err = msg.UnmarshalBinary(body)
		if err == nil && msg.Op == ShutdownAck {
			return nil
		}
	}
}

// Logical port names of the processor host interface.
const (
	PortMemInit  = "scemi_mem_inport"
	PortToHost   = "scemi_tohost_outport"
	PortFromHost = "scemi_fromhost_inport"
	PortShutdown = "scemi_shutdown"
)
