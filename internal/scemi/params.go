// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package scemi

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/mdlayher/vsock"
)

// DefaultParamsFile is the parameters resource used if none is given.
const DefaultParamsFile = "scemi.params"

// Network is the kind of connection used for the link.
type Network string

const (
	NetworkTCP   Network = "tcp"
	NetworkUnix  Network = "unix"
	NetworkVsock Network = "vsock"
)

// Params describes how to reach the emulation fabric.
//
// Params are read from a TOML file:
//
//	network = "vsock"
//	cid = 3
//	port = 5000
//	dial_timeout = "10s"
type Params struct {
	Network     Network       `toml:"network"      validate:"required,oneof=tcp unix vsock"`
	Address     string        `toml:"address"      validate:"required_unless=Network vsock"`
	CID         uint32        `toml:"cid"`
	Port        uint32        `toml:"port"         validate:"required_if=Network vsock"`
	DialTimeout time.Duration `toml:"dial_timeout" validate:"gte=0"`
}

var validate = validator.New()

// DefaultParams returns the parameters used for any setting the parameters
// resource does not contain.
func DefaultParams() Params {
	return Params{
		Network: NetworkTCP,
		CID:     vsock.Host,
	}
}

// LoadParams reads the parameters resource at path on top of
// [DefaultParams] and validates the result.
func LoadParams(path string) (*Params, error) {
	params := DefaultParams()

	_, err := toml.DecodeFile(path, &params)
	if err != nil {
		return nil, fmt.Errorf("decode params %s: %w", path, err)
	}

	err = params.Validate()
	if err != nil {
		return nil, fmt.Errorf("params %s: %w", path, err)
	}

	return &params, nil
}

// Validate checks that the params are complete for their [Network].
func (p *Params) Validate() error {
	err := validate.Struct(p)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return nil
}
