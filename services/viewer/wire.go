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

// Default channel names for the request/response pair. Override via
// CoreVisualizer.SetChannels before starting the listener.
const (
	DefaultRequestChannel  = "SCENE_TREE_VIEWER_REQUEST"
	DefaultResponseChannel = "SCENE_TREE_VIEWER_RESPONSE"
)

// WireFormat tags outbound messages so a renderer can reject payloads
// it does not understand.
const WireFormat = "scenelink_json"

// WireFormatVersion is bumped on incompatible envelope changes.
const WireFormatVersion = "1.0"

// Message is one outbound publish batch. The three lists carry no
// ordering relative to each other; a consumer seeing delete and load
// for the same path in one batch must apply delete before load.
type Message struct {
	Format        string `json:"format"`
	FormatVersion string `json:"format_version"`

	// UTime is the send timestamp in microseconds since the epoch,
	// monotonically non-decreasing across publishes.
	UTime int64 `json:"utime"`

	Delete []DeleteRecord `json:"delete"`
	Load   []LoadRecord   `json:"load"`
	Draw   []DrawRecord   `json:"draw"`
}

// DeleteRecord removes the subtree at Path on the remote side.
type DeleteRecord struct {
	Path []string `json:"path"`
}

// LoadRecord replaces the geometry list at Path on the remote side.
type LoadRecord struct {
	Path       []string `json:"path"`
	Geometries []Record `json:"geometries"`
}

// DrawRecord sets the transform at Path on the remote side.
type DrawRecord struct {
	Path      []string        `json:"path"`
	Transform TransformRecord `json:"transform"`
}

// Response statuses understood by this engine. Anything else is a
// protocol error.
const (
	// StatusAck acknowledges a request; no action needed.
	StatusAck = 0

	// StatusResync means the remote viewer lost its state (typically a
	// restart) and needs the full tree retransmitted.
	StatusResync = 1
)

// Response is the inbound envelope from the remote viewer. Only Status
// is interpreted here; renderers may attach extra diagnostic fields.
type Response struct {
	Status int `json:"status"`
}
