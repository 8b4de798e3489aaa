// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package scemi

import (
	"context"
	"fmt"
	"net"

	"github.com/mdlayher/vsock"
)

// Dial connects to the fabric as described by params.
func Dial(ctx context.Context, params *Params) (net.Conn, error) {
	if params.DialTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, params.DialTimeout)
		defer cancel()
	}

	switch params.Network {
	case NetworkVsock:
		return dialVsock(ctx, params.CID, params.Port)
	case NetworkTCP, NetworkUnix:
		var dialer net.Dialer

		conn, err := dialer.DialContext(ctx, string(params.Network), params.Address)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", params.Network, err)
		}

		return conn, nil
	default:
		return nil, fmt.Errorf("unknown network %q", params.Network)
	}
}

// dialVsock runs the vsock dial in the background as it does not take a
// context. A connection established after the context is done is closed.
func dialVsock(ctx context.Context, cid, port uint32) (net.Conn, error) {
	type result struct {
		conn net.Conn
		err  error
	}

	done := make(chan result, 1)

	go func() {
		conn, err := vsock.Dial(cid, port, nil)
		if err != nil {
			done <- result{err: err}
			return
		}

		done <- result{conn: conn}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("dial vsock %d:%d: %w", cid, port, res.err)
		}

		return res.conn, nil
	case <-ctx.Done():
		go func() {
			res := <-done
			if res.conn != nil {
				_ = res.conn.Close()
			}
		}()

		return nil, fmt.Errorf("dial vsock %d:%d: %w", cid, port, ctx.Err())
	}
}
