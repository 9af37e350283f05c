// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package transport abstracts the publish/subscribe channel fabric the
// viewer engine replicates over.
//
// The contract is deliberately weak, matching what the protocol needs:
// at-least-once, unordered, best-effort delivery of byte messages on
// named channels. Two implementations ship here: Memory (in-process
// fan-out, used in tests and transportless demos) and WebSocket (a
// client for the SceneLink relay).
package transport

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a closed transport.
var ErrClosed = errors.New("transport closed")

// Handler consumes one message delivered on a subscribed channel.
// Handlers run on the transport's delivery goroutine and should not
// block for long.
type Handler func(data []byte)

// Transport is a best-effort pub/sub fabric: unordered, at-least-once,
// no delivery guarantee. Implementations must be safe for concurrent
// use.
type Transport interface {
	// Publish sends data on the named channel. A nil error means the
	// message was handed to the fabric, not that anyone received it.
	Publish(ctx context.Context, channel string, data []byte) error

	// Subscribe registers fn for messages on the named channel. Multiple
	// handlers per channel are allowed; each receives every message.
	Subscribe(channel string, fn Handler) error

	// Close releases the transport. Pending deliveries may be dropped.
	Close() error
}
