// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package transport

import (
	"context"
	"sync"
)

// Memory is an in-process Transport: published messages are delivered
// synchronously to every handler subscribed on the channel, on the
// publisher's goroutine. It is the default transport when no relay is
// configured, and the workhorse of the test suite.
type Memory struct {
	mu     sync.RWMutex
	subs   map[string][]Handler
	closed bool
}

// NewMemory returns an empty in-process transport.
func NewMemory() *Memory {
	return &Memory{subs: make(map[string][]Handler)}
}

// Publish delivers data to all current subscribers of channel. A
// channel with no subscribers drops the message, which is within the
// best-effort contract.
func (m *Memory) Publish(ctx context.Context, channel string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return ErrClosed
	}
	handlers := make([]Handler, len(m.subs[channel]))
	copy(handlers, m.subs[channel])
	m.mu.RUnlock()

	for _, fn := range handlers {
		fn(data)
	}
	return nil
}

// Subscribe registers fn on channel.
func (m *Memory) Subscribe(channel string, fn Handler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.subs[channel] = append(m.subs[channel], fn)
	return nil
}

// SubscriberCount reports how many handlers are registered on channel.
func (m *Memory) SubscriberCount(channel string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subs[channel])
}

// Close drops all subscriptions. Further calls return ErrClosed.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.subs = make(map[string][]Handler)
	return nil
}
