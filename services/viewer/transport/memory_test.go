// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPublishSubscribe(t *testing.T) {
	m := NewMemory()

	var got [][]byte
	require.NoError(t, m.Subscribe("chan", func(data []byte) {
		got = append(got, data)
	}))

	require.NoError(t, m.Publish(context.Background(), "chan", []byte("one")))
	require.NoError(t, m.Publish(context.Background(), "other", []byte("two")))

	require.Len(t, got, 1)
	assert.Equal(t, []byte("one"), got[0])
}

func TestMemoryMultipleSubscribers(t *testing.T) {
	m := NewMemory()

	count := 0
	for i := 0; i < 3; i++ {
		require.NoError(t, m.Subscribe("chan", func([]byte) { count++ }))
	}
	assert.Equal(t, 3, m.SubscriberCount("chan"))

	require.NoError(t, m.Publish(context.Background(), "chan", []byte("x")))
	assert.Equal(t, 3, count)
}

func TestMemoryPublishWithoutSubscribersDrops(t *testing.T) {
	m := NewMemory()
	assert.NoError(t, m.Publish(context.Background(), "nobody", []byte("x")))
}

func TestMemoryClose(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Subscribe("chan", func([]byte) {}))
	require.NoError(t, m.Close())

	assert.ErrorIs(t, m.Publish(context.Background(), "chan", []byte("x")), ErrClosed)
	assert.ErrorIs(t, m.Subscribe("chan", func([]byte) {}), ErrClosed)
	assert.Equal(t, 0, m.SubscriberCount("chan"))
}

func TestMemoryCancelledContext(t *testing.T) {
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, m.Publish(ctx, "chan", []byte("x")))
}
