// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package scemi

import (
	"encoding"
	"encoding/binary"
	"fmt"
)

// Message is anything that can be sent through an [InportProxy].
type Message interface {
	encoding.BinaryMarshaler
}

var (
	_ Message = MemInit{}
	_ Message = FromHost{}
	_ Message = ToHost{}
	_ Message = Shutdown{}
	_ Message = Control{}
)

// MemInitTag is the kind of a [MemInit] message.
type MemInitTag uint8

// MemInitDone tells the device that memory initialization is complete.
const MemInitDone MemInitTag = 1

// MemInit is sent on the memory initialization port.
type MemInit struct {
	Tag MemInitTag
}

// MarshalBinary implements [encoding.BinaryMarshaler].
func (m MemInit) MarshalBinary() ([]byte, error) {
	return []byte{byte(m.Tag)}, nil
}

// UnmarshalBinary implements [encoding.BinaryUnmarshaler].
func (m *MemInit) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return invalidLength("mem init", 1, len(data))
	}

	m.Tag = MemInitTag(data[0])

	return nil
}

// FromHost is the start command sent to the device. The cores start
// executing at StartAddr.
type FromHost struct {
	StartAddr uint32
}

// MarshalBinary implements [encoding.BinaryMarshaler].
func (m FromHost) MarshalBinary() ([]byte, error) {
	return binary.BigEndian.AppendUint32(nil, m.StartAddr), nil
}

// UnmarshalBinary implements [encoding.BinaryUnmarshaler].
func (m *FromHost) UnmarshalBinary(data []byte) error {
	if len(data) != 4 {
		return invalidLength("from host", 4, len(data))
	}

	m.StartAddr = binary.BigEndian.Uint32(data)

	return nil
}

// CpuToHostType is the type tag of a [ToHost] status message.
type CpuToHostType uint8

const (
	// ExitCode carries the program's exit code. It ends the run.
	ExitCode CpuToHostType = iota
	// PrintChar carries a character in the low byte of the data.
	PrintChar
	// PrintIntLow carries the low 16 bits of an integer to print.
	PrintIntLow
	// PrintIntHigh carries the high 16 bits of an integer to print.
	PrintIntHigh
)

// String implements [fmt.Stringer].
func (t CpuToHostType) String() string {
	switch t {
	case ExitCode:
		return "exit_code"
	case PrintChar:
		return "print_char"
	case PrintIntLow:
		return "print_int_low"
	case PrintIntHigh:
		return "print_int_high"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (t CpuToHostType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (t *CpuToHostType) UnmarshalText(text []byte) error {
	for _, known := range []CpuToHostType{
		ExitCode,
		PrintChar,
		PrintIntLow,
		PrintIntHigh,
	} {
		if known.String() == string(text) {
			*t = known
			return nil
		}
	}

	return fmt.Errorf("%w: status type %q", ErrInvalidMessage, text)
}

const toHostSize = 7

// ToHost is a status message from one of the device cores.
type ToHost struct {
	CoreID uint32
	Type   CpuToHostType
	Data   uint16
}

// MarshalBinary implements [encoding.BinaryMarshaler].
func (m ToHost) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, toHostSize)
	buf = binary.BigEndian.AppendUint32(buf, m.CoreID)
	buf = append(buf, byte(m.Type))
	buf = binary.BigEndian.AppendUint16(buf, m.Data)

	return buf, nil
}

// UnmarshalBinary implements [encoding.BinaryUnmarshaler].
func (m *ToHost) UnmarshalBinary(data []byte) error {
	if len(data) != toHostSize {
		return invalidLength("to host", toHostSize, len(data))
	}

	m.CoreID = binary.BigEndian.Uint32(data[0:])
	m.Type = CpuToHostType(data[4])
	m.Data = binary.BigEndian.Uint16(data[5:])

	return nil
}

// ShutdownOp is the kind of a [Shutdown] message.
type ShutdownOp uint8

const (
	// ShutdownFinish is sent by the host when it is done.
	ShutdownFinish ShutdownOp = iota + 1
	// ShutdownAck is the device's answer to [ShutdownFinish].
	ShutdownAck
)

// Shutdown is exchanged on the shutdown port.
type Shutdown struct {
	Op ShutdownOp
}

// MarshalBinary implements [encoding.BinaryMarshaler].
func (m Shutdown) MarshalBinary() ([]byte, error) {
	return []byte{byte(m.Op)}, nil
}

// UnmarshalBinary implements [encoding.BinaryUnmarshaler].
func (m *Shutdown) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return invalidLength("shutdown", 1, len(data))
	}

	m.Op = ShutdownOp(data[0])

	return nil
}

func invalidLength(kind string, expected, actual int) error {
	return fmt.Errorf("%w: %s body has %d bytes, expected %d",
		ErrInvalidMessage, kind, actual, expected)
}
