// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package scemi

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_Order(t *testing.T) {
	q := newQueue()

	q.push([]byte("a"))
	q.push([]byte("b"))
	q.push([]byte("c"))
	assert.Equal(t, 3, q.len())

	for _, expected := range []string{"a", "b", "c"} {
		item, err := q.pop(t.Context())
		require.NoError(t, err)
		assert.Equal(t, expected, string(item))
	}

	assert.Zero(t, q.len())
}

func TestQueue_FailDrainsFirst(t *testing.T) {
	q := newQueue()
	errFirst := errors.New("first")

	q.push([]byte("a"))
	q.fail(errFirst)
	q.fail(errors.New("second"))

	item, err := q.pop(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "a", string(item))

	_, err = q.pop(t.Context())
	require.ErrorIs(t, err, errFirst)

	_, err = q.pop(t.Context())
	require.ErrorIs(t, err, errFirst, "error is sticky")
}

func TestQueue_Context(t *testing.T) {
	q := newQueue()

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()

	_, err := q.pop(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueue_Blocking(t *testing.T) {
	q := newQueue()
	done := make(chan []byte)

	go func() {
		item, _ := q.pop(context.Background())
		done <- item
	}()

	q.push([]byte("late"))

	select {
	case item := <-done:
		assert.Equal(t, "late", string(item))
	case <-time.After(5 * time.Second):
		require.Fail(t, "pop did not return")
	}
}
