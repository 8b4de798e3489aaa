// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package driver_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibor/scemirun/internal/device"
	"github.com/aibor/scemirun/internal/driver"
	"github.com/aibor/scemirun/internal/exitcode"
	"github.com/aibor/scemirun/internal/scemi"
)

// fakeTarget plays back one status queue per start command.
type fakeTarget struct {
	runs     []*statusQueue
	initDone int
	starts   []uint32
	current  *statusQueue
}

func (f *fakeTarget) SendInitDone() error {
	f.initDone++
	return nil
}

func (f *fakeTarget) SendStart(addr uint32) error {
	f.starts = append(f.starts, addr)

	if idx := len(f.starts) - 1; idx < len(f.runs) {
		f.current = f.runs[idx]
	}

	return nil
}

func (f *fakeTarget) ReceiveStatus(ctx context.Context) (scemi.ToHost, error) {
	if f.current == nil {
		return scemi.ToHost{}, errNoMessage
	}

	return f.current.ReceiveStatus(ctx)
}

// blockingTarget never delivers a status message.
type blockingTarget struct {
	fakeTarget
}

func (*blockingTarget) ReceiveStatus(ctx context.Context) (scemi.ToHost, error) {
	<-ctx.Done()
	return scemi.ToHost{}, ctx.Err()
}

func writeImages(t *testing.T, names ...string) []string {
	t.Helper()

	dir := t.TempDir()
	paths := make([]string, 0, len(names))

	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, nil, 0o600))
		paths = append(paths, path)
	}

	return paths
}

func TestRun(t *testing.T) {
	images := writeImages(t, "a.vmh", "b.vmh", "c.vmh")
	target := &fakeTarget{
		runs: []*statusQueue{
			newStatusQueue(device.Text(0, "A"), exit(0, 0)),
			newStatusQueue(exit(0, 5)),
			newStatusQueue(device.Int(0, 7), exit(0, 3)),
		},
	}

	var output bytes.Buffer

	err := driver.Run(t.Context(), target, driver.Config{
		Images:    images,
		Cores:     1,
		StartAddr: driver.DefaultStartAddr,
		Output:    &output,
	})

	require.ErrorIs(t, err, exitcode.Error(0))

	var exitErr exitcode.Error

	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 5, exitErr.Code(), "first failed image")
	assert.ErrorContains(t, err, "b.vmh")
	assert.ErrorContains(t, err, "c.vmh")

	expected := "---- " + images[0] + " ----\nA\nPASSED\n" +
		"---- " + images[1] + " ----\n\nFAILED: exit code = 5\n" +
		"---- " + images[2] + " ----\n7\nFAILED: exit code = 3\n"
	assert.Equal(t, expected, output.String())

	assert.Equal(t, 3, target.initDone)
	assert.Equal(t, []uint32{0x200, 0x200, 0x200}, target.starts)
}

func TestRun_AllPassed(t *testing.T) {
	images := writeImages(t, "a.vmh", "b.vmh")
	target := &fakeTarget{
		runs: []*statusQueue{
			newStatusQueue(exit(0, 0)),
			newStatusQueue(exit(0, 0)),
		},
	}

	err := driver.Run(t.Context(), target, driver.Config{
		Images:    images,
		Cores:     2,
		StartAddr: 0x1000,
		Output:    &bytes.Buffer{},
	})
	require.NoError(t, err)
	assert.Equal(t, []uint32{0x1000, 0x1000}, target.starts)
}

func TestRun_LoadFailure(t *testing.T) {
	images := writeImages(t, "a.vmh")
	images = append(images, filepath.Join(t.TempDir(), "missing.vmh"))
	images = append(images, writeImages(t, "c.vmh")...)

	target := &fakeTarget{
		runs: []*statusQueue{
			newStatusQueue(exit(0, 0)),
			newStatusQueue(exit(0, 0)),
		},
	}

	var output bytes.Buffer

	err := driver.Run(t.Context(), target, driver.Config{
		Images: images,
		Cores:  1,
		Output: &output,
	})
	require.ErrorIs(t, err, &driver.LoadError{})
	require.ErrorIs(t, err, os.ErrNotExist)

	assert.Equal(t, 1, target.initDone)
	assert.Len(t, target.starts, 1, "no start after load failure")
	assert.Equal(t, 1, target.runs[0].received)
	assert.Zero(t, target.runs[1].received, "no receive after load failure")
	assert.Contains(t, output.String(), "missing.vmh ----\nFailed to load memory\n")
	assert.NotContains(t, output.String(), "c.vmh")
}

type failingLoader struct{}

var errLoad = errors.New("load failed")

func (failingLoader) Load(_ context.Context, path string, _ driver.MemInitSender) error {
	return &driver.LoadError{Path: path, Err: errLoad}
}

func TestRun_CustomLoader(t *testing.T) {
	target := &fakeTarget{}

	err := driver.Run(t.Context(), target, driver.Config{
		Images: []string{"prog.vmh"},
		Cores:  1,
		Loader: failingLoader{},
		Output: &bytes.Buffer{},
	})
	require.ErrorIs(t, err, errLoad)
	assert.Zero(t, target.initDone)
	assert.Empty(t, target.starts)
}

func TestRun_Timeout(t *testing.T) {
	target := &blockingTarget{}

	err := driver.Run(t.Context(), target, driver.Config{
		Images:  writeImages(t, "a.vmh", "b.vmh"),
		Cores:   1,
		Timeout: 20 * time.Millisecond,
		Output:  &bytes.Buffer{},
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, target.starts, 1, "sequence stops")
}
