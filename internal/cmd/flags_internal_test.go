// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	absParamsPath, err := filepath.Abs("fabric.params")
	require.NoError(t, err)

	defaults := func(mod func(*flags)) *flags {
		f := &flags{
			ParamsFile: "scemi.params",
			VersionTag: "2.1.0",
			Cores:      1,
			StartAddr:  0x200,
			Images:     []string{"prog.vmh"},
		}
		if mod != nil {
			mod(f)
		}

		return f
	}

	tests := []struct {
		name        string
		args        []string
		expected    *flags
		expectedErr error
		errMsg      string
	}{
		{
			name:        "no image",
			args:        []string{},
			expectedErr: &ParseArgsError{},
			errMsg:      "no image given",
		},
		{
			name:        "help",
			args:        []string{"-help"},
			expectedErr: ErrHelp,
		},
		{
			name:        "cores below range",
			args:        []string{"-cores", "0", "prog.vmh"},
			expectedErr: &ParseArgsError{},
			errMsg:      "value is outside of range",
		},
		{
			name:        "cores above range",
			args:        []string{"-cores", "65", "prog.vmh"},
			expectedErr: &ParseArgsError{},
			errMsg:      "value is outside of range",
		},
		{
			name:        "empty params",
			args:        []string{"-params=", "prog.vmh"},
			expectedErr: &ParseArgsError{},
			errMsg:      "file path must not be empty",
		},
		{
			name:        "negative timeout",
			args:        []string{"-timeout=-1s", "prog.vmh"},
			expectedErr: &ParseArgsError{},
			errMsg:      "negative timeout",
		},
		{
			name:     "defaults",
			args:     []string{"prog.vmh"},
			expected: defaults(nil),
		},
		{
			name: "version without image",
			args: []string{"-version"},
			expected: defaults(func(f *flags) {
				f.Images = nil
				f.Version = true
			}),
		},
		{
			name: "all flags",
			args: []string{
				"-params", "fabric.params",
				"-version-tag", "2.0.3",
				"-cores", "4",
				"-start", "0x1000",
				"-timeout", "30s",
				"-debug",
				"prog.vmh", "other.vmh",
			},
			expected: defaults(func(f *flags) {
				f.ParamsFile = absParamsPath
				f.VersionTag = "2.0.3"
				f.Cores = 4
				f.StartAddr = 0x1000
				f.Timeout = 30 * time.Second
				f.Debug = true
				f.Images = []string{"prog.vmh", "other.vmh"}
			}),
		},
		{
			name: "flags after image are images",
			args: []string{"prog.vmh", "-debug"},
			expected: defaults(func(f *flags) {
				f.Images = []string{"prog.vmh", "-debug"}
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var output bytes.Buffer

			actual, err := parseArgs(tt.args, &output)
			require.ErrorIs(t, err, tt.expectedErr)

			if tt.expectedErr != nil {
				assert.Contains(t, output.String(), "Usage of 'scemirun'")

				if tt.errMsg != "" {
					assert.ErrorContains(t, err, tt.errMsg)
				}

				return
			}

			assert.Equal(t, tt.expected, actual)
		})
	}
}

func TestFlagsDriverConfig(t *testing.T) {
	f := &flags{
		Cores:     4,
		StartAddr: 0x300,
		Timeout:   time.Minute,
		Images:    []string{"a", "b"},
	}

	var output bytes.Buffer

	cfg := f.driverConfig(&output)

	assert.Equal(t, []string{"a", "b"}, cfg.Images)
	assert.Equal(t, 4, cfg.Cores)
	assert.Equal(t, uint32(0x300), cfg.StartAddr)
	assert.Equal(t, time.Minute, cfg.Timeout)
	assert.Same(t, &output, cfg.Output)
	assert.Nil(t, cfg.Loader)
}
