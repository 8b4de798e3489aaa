// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package scemi_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibor/scemirun/internal/scemi"
)

func TestWriteFrame(t *testing.T) {
	var buf bytes.Buffer

	err := scemi.WriteFrame(&buf, scemi.Frame{Port: 3, Body: []byte{0xaa, 0xbb}})
	require.NoError(t, err)

	expected := []byte{0x53, 0x43, 0x00, 0x01, 0x00, 0x03, 0x00, 0x02, 0xaa, 0xbb}
	assert.Equal(t, expected, buf.Bytes())
}

func TestWriteFrame_TooLarge(t *testing.T) {
	var buf bytes.Buffer

	body := make([]byte, scemi.MaxBodySize+1)

	err := scemi.WriteFrame(&buf, scemi.Frame{Port: 1, Body: body})
	require.ErrorIs(t, err, scemi.ErrBodyTooLarge)
	assert.Zero(t, buf.Len(), "nothing written")
}

func TestReadFrame(t *testing.T) {
	tests := []struct {
		name        string
		input       []byte
		expected    scemi.Frame
		expectedErr error
	}{
		{
			name:        "empty stream",
			input:       nil,
			expectedErr: io.EOF,
		},
		{
			name:        "truncated header",
			input:       []byte{0x53, 0x43, 0x00},
			expectedErr: io.ErrUnexpectedEOF,
		},
		{
			name:        "truncated body",
			input:       []byte{0x53, 0x43, 0x00, 0x01, 0x00, 0x03, 0x00, 0x02, 0xaa},
			expectedErr: io.ErrUnexpectedEOF,
		},
		{
			name:        "invalid magic",
			input:       []byte{0x43, 0x53, 0x00, 0x01, 0x00, 0x03, 0x00, 0x00},
			expectedErr: scemi.ErrInvalidMagic,
		},
		{
			name:        "unknown version",
			input:       []byte{0x53, 0x43, 0x00, 0x02, 0x00, 0x03, 0x00, 0x00},
			expectedErr: scemi.ErrUnsupportedVersion,
		},
		{
			name:     "empty body",
			input:    []byte{0x53, 0x43, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00},
			expected: scemi.Frame{Port: scemi.ControlPort},
		},
		{
			name:  "with body",
			input: []byte{0x53, 0x43, 0x00, 0x01, 0x01, 0x02, 0x00, 0x01, 0x2a},
			expected: scemi.Frame{
				Port: 0x0102,
				Body: []byte{0x2a},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := scemi.ReadFrame(bytes.NewReader(tt.input))
			require.ErrorIs(t, err, tt.expectedErr)
			assert.Equal(t, tt.expected, frame)
		})
	}
}

func TestReadFrame_Sequence(t *testing.T) {
	var buf bytes.Buffer

	frames := []scemi.Frame{
		{Port: 1, Body: []byte("first")},
		{Port: 2},
		{Port: 1, Body: []byte("third")},
	}

	for _, frame := range frames {
		require.NoError(t, scemi.WriteFrame(&buf, frame))
	}

	for _, expected := range frames {
		frame, err := scemi.ReadFrame(&buf)
		require.NoError(t, err)
		assert.Equal(t, expected, frame)
	}

	_, err := scemi.ReadFrame(&buf)
	require.ErrorIs(t, err, io.EOF)
}
