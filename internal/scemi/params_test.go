// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package scemi_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mdlayher/vsock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibor/scemirun/internal/scemi"
)

func TestLoadParams(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected *scemi.Params
		errMsg   string
	}{
		{
			name:    "tcp",
			content: "network = \"tcp\"\naddress = \"fabric:4000\"\ndial_timeout = \"5s\"\n",
			expected: &scemi.Params{
				Network:     scemi.NetworkTCP,
				Address:     "fabric:4000",
				CID:         vsock.Host,
				DialTimeout: 5 * time.Second,
			},
		},
		{
			name:    "default network",
			content: "address = \"localhost:4000\"\n",
			expected: &scemi.Params{
				Network: scemi.NetworkTCP,
				Address: "localhost:4000",
				CID:     vsock.Host,
			},
		},
		{
			name:    "vsock",
			content: "network = \"vsock\"\ncid = 3\nport = 5000\n",
			expected: &scemi.Params{
				Network: scemi.NetworkVsock,
				CID:     3,
				Port:    5000,
			},
		},
		{
			name:    "unix without address",
			content: "network = \"unix\"\n",
			errMsg:  "validation failed",
		},
		{
			name:    "vsock without port",
			content: "network = \"vsock\"\ncid = 3\n",
			errMsg:  "validation failed",
		},
		{
			name:    "unknown network",
			content: "network = \"udp\"\naddress = \"fabric:4000\"\n",
			errMsg:  "validation failed",
		},
		{
			name:    "negative timeout",
			content: "address = \"fabric:4000\"\ndial_timeout = \"-1s\"\n",
			errMsg:  "validation failed",
		},
		{
			name:    "invalid toml",
			content: "network = tcp\n",
			errMsg:  "decode params",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "scemi.params")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			params, err := scemi.LoadParams(path)
			if tt.errMsg != "" {
				assert.ErrorContains(t, err, tt.errMsg)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, params)
		})
	}
}

func TestLoadParams_Missing(t *testing.T) {
	_, err := scemi.LoadParams(filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
