// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package driver_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibor/scemirun/internal/driver"
)

type memInitCounter struct {
	count int
	err   error
}

func (m *memInitCounter) SendInitDone() error {
	m.count++
	return m.err
}

func TestStubLoader(t *testing.T) {
	dir := t.TempDir()
	image := filepath.Join(dir, "prog.vmh")
	require.NoError(t, os.WriteFile(image, []byte("@0\n"), 0o600))

	errSend := errors.New("send failed")

	tests := []struct {
		name          string
		path          string
		sendErr       error
		expectedCount int
		expectedErr   error
	}{
		{
			name:          "regular file",
			path:          image,
			expectedCount: 1,
		},
		{
			name:        "missing",
			path:        filepath.Join(dir, "missing.vmh"),
			expectedErr: os.ErrNotExist,
		},
		{
			name:        "directory",
			path:        dir,
			expectedErr: driver.ErrNotRegularFile,
		},
		{
			name:          "send fails",
			path:          image,
			sendErr:       errSend,
			expectedCount: 1,
			expectedErr:   errSend,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := &memInitCounter{err: tt.sendErr}

			err := driver.StubLoader{}.Load(t.Context(), tt.path, mem)
			require.ErrorIs(t, err, tt.expectedErr)

			if tt.expectedErr != nil {
				require.ErrorIs(t, err, &driver.LoadError{})
			}

			assert.Equal(t, tt.expectedCount, mem.count)
		})
	}
}
