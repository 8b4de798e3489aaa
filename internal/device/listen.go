// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package device

import (
	"context"
	"fmt"
	"net"

	"github.com/mdlayher/vsock"

	"github.com/aibor/scemirun/internal/scemi"
)

// Listen opens the listener the host reaches with the same params.
func Listen(ctx context.Context, params *scemi.Params) (net.Listener, error) {
	switch params.Network {
	case scemi.NetworkVsock:
		listener, err := vsock.Listen(params.Port, nil)
		if err != nil {
			return nil, fmt.Errorf("listen vsock: %w", err)
		}

		return listener, nil
	case scemi.NetworkTCP, scemi.NetworkUnix:
		var config net.ListenConfig

		listener, err := config.Listen(ctx, string(params.Network), params.Address)
		if err != nil {
			return nil, fmt.Errorf("listen %s: %w", params.Network, err)
		}

		return listener, nil
	default:
		return nil, fmt.Errorf("unknown network %q", params.Network)
	}
}

// ServeOne accepts a single connection on listener and serves it with d.
func (d *Device) ServeOne(ctx context.Context, listener net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = listener.Close() })
	defer stop()

	conn, err := listener.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err() //nolint:wrapcheck
		}

		return fmt.Errorf("accept: %w", err)
	}

	return d.Serve(ctx, conn)
}
