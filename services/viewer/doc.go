// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package viewer implements the client side of the SceneLink scene-graph
// synchronization protocol.
//
// The engine maintains an in-memory tree of named, path-addressed 3D
// objects (geometry plus transform), tracks which parts of the tree have
// changed since the last flush, and replicates those changes to a remote
// renderer process over a best-effort publish/subscribe transport. When
// the remote side loses its state (for example after a restart) it asks
// for a full resync and the engine retransmits the entire tree.
//
// # Architecture
//
//	Visualizer ──▶ CoreVisualizer ──▶ lazy tree + command queue
//	                     │
//	                     ├── Publish: queue diff ──JSON──▶ request channel
//	                     └── listener: response channel ──▶ ack / resync
//
// Visualizer is a lightweight (core, path) handle; indexing into it with
// At returns a new handle for a subtree with zero tree mutation. Many
// handles share one CoreVisualizer, which owns the tree, the queue, and
// the transport connection.
//
// The protocol is state replication, not an event log: only the latest
// value per path per category matters, so mutations between two flushes
// coalesce into one record. A failed send loses the batch; the only
// recovery for lost state is the remote-initiated resync.
//
// # Thread Safety
//
// All CoreVisualizer and Visualizer methods are safe for concurrent use.
// One mutex guards the tree and the queue together so the background
// response listener never observes a half-updated tree. Transport sends
// happen outside the lock.
package viewer
