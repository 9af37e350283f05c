// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package viewer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/AleutianAI/SceneLink/pkg/logging"
	"github.com/AleutianAI/SceneLink/pkg/validation"
	"github.com/AleutianAI/SceneLink/services/viewer/transport"
)

// CoreVisualizer owns the scene tree, the pending-change queue, and the
// transport connection. It is the unit shared by all Visualizer handles.
//
// Description:
//
//	All mutation flows through Load, Draw, and Delete, so the tree is
//	always the authoritative scene state; the remote renderer is driven
//	toward it by diffs and, after a remote restart, by the full-tree
//	resync. In immediate-publish mode (the default) every mutation
//	flushes; otherwise callers batch and flush with Publish.
//
// Thread Safety:
//
//	Safe for concurrent use. One mutex guards tree and queue together;
//	the transport send happens outside the lock.
type CoreVisualizer struct {
	mu    sync.Mutex
	tree  *treeNode
	queue *commandQueue

	// publishImmediately makes every mutation flush the queue.
	publishImmediately bool

	tp              transport.Transport
	requestChannel  string
	responseChannel string

	listenerStarted bool

	log  *logging.Logger
	errs chan error
}

// NewCoreVisualizer creates a synchronizer over tp with an empty tree.
//
// A nil tp gets an in-process Memory transport, useful for tests and
// for building a scene before a relay is available. A nil logger gets
// logging.Default(). Immediate-publish mode starts on.
func NewCoreVisualizer(tp transport.Transport, log *logging.Logger) *CoreVisualizer {
	if tp == nil {
		tp = transport.NewMemory()
	}
	if log == nil {
		log = logging.Default()
	}
	return &CoreVisualizer{
		tree:               newTreeNode(),
		queue:              newCommandQueue(),
		publishImmediately: true,
		tp:                 tp,
		requestChannel:     DefaultRequestChannel,
		responseChannel:    DefaultResponseChannel,
		log:                log,
		errs:               make(chan error, 8),
	}
}

// SetChannels overrides the request/response channel names. Call before
// StartListener; an in-flight Publish keeps the name it snapshotted,
// later publishes use the new request channel.
func (c *CoreVisualizer) SetChannels(request, response string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requestChannel = request
	c.responseChannel = response
}

// SetPublishImmediately toggles immediate-publish mode. When off,
// mutations accumulate until an explicit Publish.
func (c *CoreVisualizer) SetPublishImmediately(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.publishImmediately = on
}

// Transport returns the underlying transport, shared by all handles.
func (c *CoreVisualizer) Transport() transport.Transport {
	return c.tp
}

// Errors delivers protocol errors raised by the background listener.
// The channel is buffered; if nobody drains it, errors are still logged
// and then dropped.
func (c *CoreVisualizer) Errors() <-chan error {
	return c.errs
}

// Load replaces the geometry list at path with the given items
// (bare primitives pick up default color and transform).
//
// Load does not touch the node's transform: a transform set by an
// earlier Draw survives a geometry reload. That continuity of placement
// across content swaps is intentional protocol behavior, not an
// oversight.
func (c *CoreVisualizer) Load(path Path, items ...GeometryLike) error {
	if err := validation.ValidateSegments(path); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	geoms, err := normalizeGeometries(items)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.tree.getOrCreateDescendant(path).geometries = geoms
	c.queue.markLoad(path)
	c.mu.Unlock()

	return c.maybePublish()
}

// Draw sets the transform at path (and, implicitly, the frame its
// descendants hang from). The node does not need geometry.
func (c *CoreVisualizer) Draw(path Path, tform mgl64.Mat4) error {
	if err := validation.ValidateSegments(path); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}

	c.mu.Lock()
	c.tree.getOrCreateDescendant(path).transform = tform
	c.queue.markDraw(path)
	c.mu.Unlock()

	return c.maybePublish()
}

// Delete removes the subtree at path. The empty path resets the whole
// scene.
func (c *CoreVisualizer) Delete(path Path) error {
	if err := validation.ValidateSegments(path); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}

	c.mu.Lock()
	if len(path) == 0 {
		c.tree = newTreeNode()
	} else {
		c.tree.deleteSubtree(path)
	}
	c.queue.markDelete(path)
	c.mu.Unlock()

	return c.maybePublish()
}

// Paths returns every path currently present in the tree, one entry per
// node, sibling order unspecified.
func (c *CoreVisualizer) Paths() []Path {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tree.descendants(nil)
}

func (c *CoreVisualizer) maybePublish() error {
	c.mu.Lock()
	immediate := c.publishImmediately
	c.mu.Unlock()
	if !immediate {
		return nil
	}
	return c.Publish()
}

// Publish flushes the pending-change queue as one wire message on the
// request channel. A no-op when nothing is pending.
//
// The queue is drained before the send, so a transport failure loses
// the batch: there is no retry queue, and the error is returned to the
// caller. The remote-initiated resync is the recovery path for state
// lost this way.
func (c *CoreVisualizer) Publish() error {
	c.mu.Lock()
	if c.queue.isEmpty() {
		c.mu.Unlock()
		return nil
	}
	msg := c.buildMessageLocked()
	channel := c.requestChannel
	c.mu.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		publishTotal.WithLabelValues("encode_error").Inc()
		return fmt.Errorf("encode update message: %w", err)
	}

	publishBytes.Observe(float64(len(data)))
	publishPaths.Observe(float64(len(msg.Delete) + len(msg.Load) + len(msg.Draw)))

	if err := c.tp.Publish(context.Background(), channel, data); err != nil {
		publishTotal.WithLabelValues("send_error").Inc()
		c.log.Error("publish failed, batch lost",
			"channel", channel,
			"records", len(msg.Delete)+len(msg.Load)+len(msg.Draw),
			"error", err,
		)
		return fmt.Errorf("publish update: %w", err)
	}

	publishTotal.WithLabelValues("ok").Inc()
	c.log.Debug("published update",
		"deletes", len(msg.Delete),
		"loads", len(msg.Load),
		"draws", len(msg.Draw),
		"bytes", len(data),
	)
	return nil
}

// buildMessageLocked drains the queue and serializes current tree state
// for each marked path. Caller holds c.mu.
//
// Records reflect the tree at flush time, not at mark time: repeated
// draws on one path coalesce into the latest transform, and a load mark
// whose node is now empty or deleted emits nothing (its path is still
// consumed). Lookups never create nodes, so flushing stale marks cannot
// resurrect deleted subtrees.
func (c *CoreVisualizer) buildMessageLocked() *Message {
	loads, draws, removes := c.queue.drain()

	msg := &Message{
		Format:        WireFormat,
		FormatVersion: WireFormatVersion,
		UTime:         time.Now().UnixMicro(),
		Delete:        make([]DeleteRecord, 0, len(removes)),
		Load:          make([]LoadRecord, 0, len(loads)),
		Draw:          make([]DrawRecord, 0, len(draws)),
	}

	for _, p := range removes {
		msg.Delete = append(msg.Delete, DeleteRecord{Path: wirePath(p)})
	}
	for _, p := range loads {
		node, ok := c.tree.findDescendant(p)
		if !ok || len(node.geometries) == 0 {
			continue
		}
		records := make([]Record, 0, len(node.geometries))
		for _, g := range node.geometries {
			records = append(records, g.Record())
		}
		msg.Load = append(msg.Load, LoadRecord{Path: wirePath(p), Geometries: records})
	}
	for _, p := range draws {
		node, ok := c.tree.findDescendant(p)
		if !ok {
			// Deleted after the draw; the delete record covers it.
			continue
		}
		msg.Draw = append(msg.Draw, DrawRecord{Path: wirePath(p), Transform: encodeTransform(node.transform)})
	}
	return msg
}

// wirePath keeps the root path marshaling as [] rather than null; every
// record path on the wire is a JSON array.
func wirePath(p Path) []string {
	if len(p) == 0 {
		return []string{}
	}
	return p
}

// StartListener subscribes the response handler on the response channel.
//
// The handler runs on the transport's delivery goroutine for the
// lifetime of the process; there is no cancellation. Starting an
// already-started listener is a no-op.
func (c *CoreVisualizer) StartListener() error {
	c.mu.Lock()
	if c.listenerStarted {
		c.mu.Unlock()
		return nil
	}
	c.listenerStarted = true
	channel := c.responseChannel
	c.mu.Unlock()

	err := c.tp.Subscribe(channel, func(data []byte) {
		if herr := c.handleResponse(data); herr != nil {
			c.log.Error("viewer response handling failed", "error", herr)
			select {
			case c.errs <- herr:
			default:
			}
		}
	})
	if err != nil {
		c.mu.Lock()
		c.listenerStarted = false
		c.mu.Unlock()
		return fmt.Errorf("subscribe %s: %w", channel, err)
	}
	return nil
}

// handleResponse processes one inbound response payload.
//
// status 0 acknowledges and changes nothing. status 1 re-enqueues every
// known path for load and draw, so the next flush rebuilds the remote
// renderer from the authoritative tree. Any other status is a protocol
// error: tree and queue are left untouched and the error is surfaced.
func (c *CoreVisualizer) handleResponse(data []byte) error {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		responsesTotal.WithLabelValues("undecodable").Inc()
		return fmt.Errorf("%w: undecodable payload: %v", ErrProtocol, err)
	}

	responsesTotal.WithLabelValues(strconv.Itoa(resp.Status)).Inc()

	switch resp.Status {
	case StatusAck:
		return nil
	case StatusResync:
		c.mu.Lock()
		paths := c.tree.descendants(nil)
		for _, p := range paths {
			c.queue.markLoad(p)
			c.queue.markDraw(p)
		}
		c.mu.Unlock()
		resyncTotal.Inc()
		c.log.Info("remote viewer requested full resync", "paths", len(paths))
		return nil
	default:
		return fmt.Errorf("%w: status %d", ErrProtocol, resp.Status)
	}
}
