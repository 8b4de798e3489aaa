// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package scemi

import (
	"encoding/binary"
	"fmt"
)

// ControlOp is the kind of a [Control] message.
type ControlOp uint8

const (
	// OpHello opens the link. The host sends its version, the fabric answers
	// with the version it speaks.
	OpHello ControlOp = iota + 1
	// OpBind announces a named port and the [PortID] the host assigned to it.
	OpBind
	// OpClose announces that the sender closes the link.
	OpClose
)

// Direction of a bound port, seen from the device.
type Direction uint8

const (
	// DirIn is a port into the device: the host sends.
	DirIn Direction = 1 << iota
	// DirOut is a port out of the device: the host receives.
	DirOut
)

// Control is a message on the [ControlPort].
type Control struct {
	Op        ControlOp
	Version   uint32
	Port      PortID
	Direction Direction
	Name      string
}

// MarshalBinary implements [encoding.BinaryMarshaler].
func (c Control) MarshalBinary() ([]byte, error) {
	buf := []byte{byte(c.Op)}

	switch c.Op {
	case OpHello:
		buf = binary.BigEndian.AppendUint32(buf, c.Version)
	case OpBind:
		buf = binary.BigEndian.AppendUint16(buf, uint16(c.Port))
		buf = append(buf, byte(c.Direction))
		buf = append(buf, c.Name...)
	case OpClose:
	default:
		return nil, fmt.Errorf("%w: control op %d", ErrInvalidMessage, c.Op)
	}

	return buf, nil
}

// UnmarshalBinary implements [encoding.BinaryUnmarshaler].
func (c *Control) UnmarshalBinary(data []byte) error {
	if len(data) < 1 {
		return invalidLength("control", 1, len(data))
	}

	*c = Control{Op: ControlOp(data[0])}
	data = data[1:]

	switch c.Op {
	case OpHello:
		if len(data) != 4 {
			return invalidLength("hello", 5, len(data)+1)
		}

		c.Version = binary.BigEndian.Uint32(data)
	case OpBind:
		if len(data) < 4 {
			return fmt.Errorf("%w: bind without name", ErrInvalidMessage)
		}

		c.Port = PortID(binary.BigEndian.Uint16(data))
		c.Direction = Direction(data[2])
		c.Name = string(data[3:])
	case OpClose:
	default:
		return fmt.Errorf("%w: control op %d", ErrInvalidMessage, c.Op)
	}

	return nil
}
