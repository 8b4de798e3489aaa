// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package device

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/aibor/scemirun/internal/scemi"
)

// Message is a single scripted status message.
type Message struct {
	Core uint32              `toml:"core"`
	Type scemi.CpuToHostType `toml:"type"`
	Data uint16              `toml:"data"`
}

// ToHost converts the message into its wire type.
func (m Message) ToHost() scemi.ToHost {
	return scemi.ToHost{
		CoreID: m.Core,
		Type:   m.Type,
		Data:   m.Data,
	}
}

// Run is the status output the device produces for one started image.
type Run struct {
	Messages []Message `toml:"messages" validate:"required"`
}

// Script is a complete device behaviour for [Device.Runs].
//
// Scripts are read from TOML files:
//
//	[[run]]
//	messages = [
//	  { core = 0, type = "print_char", data = 79 },
//	  { core = 0, type = "exit_code", data = 0 },
//	]
type Script struct {
	Runs []Run `toml:"run" validate:"required,dive"`
}

var validate = validator.New()

// LoadScript reads and validates the script file at path.
func LoadScript(path string) (*Script, error) {
	var script Script

	_, err := toml.DecodeFile(path, &script)
	if err != nil {
		return nil, fmt.Errorf("decode script %s: %w", path, err)
	}

	err = validate.Struct(&script)
	if err != nil {
		return nil, fmt.Errorf("script %s: validation failed: %w", path, err)
	}

	return &script, nil
}

// Text returns print_char messages for every byte of text.
func Text(core uint32, text string) []Message {
	msgs := make([]Message, 0, len(text))

	for idx := range len(text) {
		msgs = append(msgs, Message{
			Core: core,
			Type: scemi.PrintChar,
			Data: uint16(text[idx]),
		})
	}

	return msgs
}

// Int returns the low and high half messages printing value.
func Int(core uint32, value uint32) []Message {
	return []Message{
		{Core: core, Type: scemi.PrintIntLow, Data: uint16(value)},
		{Core: core, Type: scemi.PrintIntHigh, Data: uint16(value >> 16)},
	}
}

// Exit returns the exit code message.
func Exit(core uint32, code uint16) Message {
	return Message{Core: core, Type: scemi.ExitCode, Data: code}
}
