// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package driver

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/aibor/scemirun/internal/exitcode"
	"github.com/aibor/scemirun/internal/scemi"
)

// StatusReceiver blocks until the next status message of any core arrives.
type StatusReceiver interface {
	ReceiveStatus(ctx context.Context) (scemi.ToHost, error)
}

// State of a [Decoder].
type State int

const (
	// StateRunning is the state until the exit code is received.
	StateRunning State = iota
	// StateDone is the terminal state. See [Decoder.Outcome] for the result.
	StateDone
)

// String implements [fmt.Stringer].
func (s State) String() string {
	if s == StateDone {
		return "done"
	}

	return "running"
}

// Outcome is the result of a finished run.
type Outcome struct {
	ExitCode uint16
}

// Passed returns true if the device reported exit code 0.
func (o Outcome) Passed() bool {
	return o.ExitCode == 0
}

// Err returns an [exitcode.Error] if the run did not pass.
func (o Outcome) Err() error {
	if o.Passed() {
		return nil
	}

	return exitcode.Error(o.ExitCode)
}

// String implements [fmt.Stringer]. It is the report line of the run.
func (o Outcome) String() string {
	if o.Passed() {
		return "PASSED"
	}

	return "FAILED: exit code = " + strconv.Itoa(int(o.ExitCode))
}

// Decoder turns the status messages of a single run into output.
//
// Status messages are received in rounds. A round receives one message per
// active core. The run ends with the first exit code message, even within a
// round: messages the remaining cores sent for that round are not received.
type Decoder struct {
	output   io.Writer
	printInt []uint32
	state    State
	outcome  Outcome
}

// NewDecoder creates a [Decoder] for the given number of active cores that
// writes printed characters and integers to output.
func NewDecoder(cores int, output io.Writer) *Decoder {
	return &Decoder{
		output:   output,
		printInt: make([]uint32, max(cores, 1)),
	}
}

// State returns the current state.
func (d *Decoder) State() State {
	return d.state
}

// Outcome returns the outcome. It is only meaningful in [StateDone].
func (d *Decoder) Outcome() Outcome {
	return d.outcome
}

// Run receives rounds until the device reports the exit code.
func (d *Decoder) Run(ctx context.Context, recv StatusReceiver) (Outcome, error) {
	for d.state == StateRunning {
		err := d.Round(ctx, recv)
		if err != nil {
			return Outcome{}, err
		}
	}

	return d.outcome, nil
}

// Round receives and handles one message per core in core order. It returns
// early once the exit code has been handled.
func (d *Decoder) Round(ctx context.Context, recv StatusReceiver) error {
	for range d.printInt {
		msg, err := recv.ReceiveStatus(ctx)
		if err != nil {
			return fmt.Errorf("receive status: %w", err)
		}

		err = d.Handle(msg)
		if err != nil {
			return err
		}

		if d.state == StateDone {
			break
		}
	}

	return nil
}

// Handle processes a single status message. Messages with unknown type are
// ignored.
func (d *Decoder) Handle(msg scemi.ToHost) error {
	switch msg.Type {
	case scemi.ExitCode:
		d.outcome = Outcome{ExitCode: msg.Data}
		d.state = StateDone
	case scemi.PrintChar:
		return d.write([]byte{byte(msg.Data)})
	case scemi.PrintIntLow:
		slot, err := d.slot(msg.CoreID)
		if err != nil {
			return err
		}

		*slot = uint32(msg.Data)
	case scemi.PrintIntHigh:
		slot, err := d.slot(msg.CoreID)
		if err != nil {
			return err
		}

		*slot |= uint32(msg.Data) << 16

		// The firmware prints signed integers.
		return d.write(strconv.AppendInt(nil, int64(int32(*slot)), 10)) //nolint:gosec
	}

	return nil
}

func (d *Decoder) slot(coreID uint32) (*uint32, error) {
	if uint64(coreID) >= uint64(len(d.printInt)) {
		return nil, &ProtocolError{CoreID: coreID, Cores: len(d.printInt)}
	}

	return &d.printInt[coreID], nil
}

func (d *Decoder) write(data []byte) error {
	_, err := d.output.Write(data)
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}

	return nil
}
