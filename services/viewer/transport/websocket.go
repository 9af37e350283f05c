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
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/AleutianAI/SceneLink/pkg/logging"
)

// Frame ops exchanged with the relay.
const (
	OpPublish   = "publish"
	OpSubscribe = "subscribe"
)

// Frame is one relay message: a publish carrying payload bytes on a
// channel, or a subscribe registering interest in a channel. Data is
// base64 on the wire (encoding/json []byte convention), so arbitrary
// payload bytes survive the JSON framing.
type Frame struct {
	Op      string `json:"op"`
	Channel string `json:"channel"`
	Data    []byte `json:"data,omitempty"`
}

// WebSocket is a Transport connected to a SceneLink relay. A single
// background read pump dispatches inbound frames to subscribed
// handlers; writes are serialized on the connection.
type WebSocket struct {
	conn *websocket.Conn
	log  *logging.Logger

	// writeMu serializes writes; gorilla connections allow one
	// concurrent writer.
	writeMu sync.Mutex

	mu       sync.RWMutex
	handlers map[string][]Handler
	closed   bool

	closeOnce sync.Once
	done      chan struct{}
}

// DialWebSocket connects to a relay websocket endpoint, for example
// "ws://localhost:8085/ws", and starts the read pump.
func DialWebSocket(ctx context.Context, url string, log *logging.Logger) (*WebSocket, error) {
	if log == nil {
		log = logging.Default()
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial relay %s: %w", url, err)
	}

	ws := &WebSocket{
		conn:     conn,
		log:      log,
		handlers: make(map[string][]Handler),
		done:     make(chan struct{}),
	}
	go ws.readPump()
	return ws, nil
}

// Publish sends one publish frame on the named channel.
func (w *WebSocket) Publish(ctx context.Context, channel string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-w.done:
		return ErrClosed
	default:
	}

	return w.writeFrame(Frame{Op: OpPublish, Channel: channel, Data: data})
}

// Subscribe registers fn for channel and tells the relay to forward
// that channel's traffic to this connection. The relay treats repeated
// subscribes as one.
func (w *WebSocket) Subscribe(channel string, fn Handler) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	w.handlers[channel] = append(w.handlers[channel], fn)
	w.mu.Unlock()

	return w.writeFrame(Frame{Op: OpSubscribe, Channel: channel})
}

// Close tears down the connection. The read pump exits on the closed
// socket.
func (w *WebSocket) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
		close(w.done)
		err = w.conn.Close()
	})
	return err
}

// Done is closed when the connection is gone (local Close or remote
// hangup). Callers that need to outlive a dropped relay watch this.
func (w *WebSocket) Done() <-chan struct{} {
	return w.done
}

func (w *WebSocket) writeFrame(f Frame) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	if err := w.conn.WriteJSON(f); err != nil {
		return fmt.Errorf("write %s frame: %w", f.Op, err)
	}
	return nil
}

// readPump runs for the connection's lifetime, dispatching publish
// frames to handlers on this goroutine.
func (w *WebSocket) readPump() {
	defer w.Close()
	for {
		var f Frame
		if err := w.conn.ReadJSON(&f); err != nil {
			select {
			case <-w.done:
				// Local close, not worth logging.
			default:
				w.log.Warn("relay connection lost", "error", err)
			}
			return
		}
		if f.Op != OpPublish {
			w.log.Warn("ignoring unexpected frame from relay", "op", f.Op)
			continue
		}

		w.mu.RLock()
		handlers := make([]Handler, len(w.handlers[f.Channel]))
		copy(handlers, w.handlers[f.Channel])
		w.mu.RUnlock()

		for _, fn := range handlers {
			fn(f.Data)
		}
	}
}
