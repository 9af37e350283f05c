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
	"github.com/go-gl/mathgl/mgl64"

	"github.com/AleutianAI/SceneLink/pkg/logging"
	"github.com/AleutianAI/SceneLink/pkg/validation"
	"github.com/AleutianAI/SceneLink/services/viewer/transport"
)

// Visualizer is a lightweight handle: a CoreVisualizer reference plus a
// path. The core does all the work of storing geometry and publishing;
// keeping the path on the handle makes it cheap to hold or pass around
// a view onto a sub-part of the scene tree. Many Visualizers share one
// core.
//
// Indexing with At is pure handle arithmetic: no tree node exists until
// an operation actually touches it.
type Visualizer struct {
	core *CoreVisualizer
	path Path
}

// Options configures NewVisualizer. The zero value is a root handle
// over a fresh core on an in-process transport.
type Options struct {
	// Path is the handle's base path, e.g. "/robot/arm". Empty means
	// the tree root.
	Path string

	// Transport carries the wire messages. Nil means an in-process
	// Memory transport.
	Transport transport.Transport

	// Logger for the core. Nil means logging.Default().
	Logger *logging.Logger

	// Core shares an existing synchronizer instead of creating one.
	// When set, Transport and Logger are ignored.
	Core *CoreVisualizer
}

// NewVisualizer returns a handle at opts.Path.
func NewVisualizer(opts Options) *Visualizer {
	core := opts.Core
	if core == nil {
		core = NewCoreVisualizer(opts.Transport, opts.Logger)
	}
	return &Visualizer{
		core: core,
		path: validation.ParsePath(opts.Path),
	}
}

// At returns a new handle with name appended to this handle's path.
// The tree is not touched.
func (v *Visualizer) At(name string) *Visualizer {
	return &Visualizer{core: v.core, path: v.path.Child(name)}
}

// AtPath returns a new handle with the parsed path appended, e.g.
// v.AtPath("arm/gripper").
func (v *Visualizer) AtPath(path string) *Visualizer {
	p := v.path
	for _, name := range validation.ParsePath(path) {
		p = p.Child(name)
	}
	return &Visualizer{core: v.core, path: p}
}

// Path returns a copy of the handle's path.
func (v *Visualizer) Path() Path {
	out := make(Path, len(v.path))
	copy(out, v.path)
	return out
}

// Core returns the shared synchronizer.
func (v *Visualizer) Core() *CoreVisualizer {
	return v.core
}

// Load sets the geometries at this handle's path, replacing whatever
// was there before. Accepts bare primitives, full GeometryData values,
// or any mix. Returns the handle for chaining.
func (v *Visualizer) Load(items ...GeometryLike) (*Visualizer, error) {
	if err := v.core.Load(v.path, items...); err != nil {
		return v, err
	}
	return v, nil
}

// Draw sets the transform for this handle's path (and, implicitly, the
// frame its descendants hang from).
func (v *Visualizer) Draw(tform mgl64.Mat4) error {
	return v.core.Draw(v.path, tform)
}

// Delete removes the subtree at this handle's path.
func (v *Visualizer) Delete() error {
	return v.core.Delete(v.path)
}

// StartListener starts the shared core's response listener, enabling
// automatic reload of geometry if the remote viewer restarts. Idempotent.
func (v *Visualizer) StartListener() error {
	return v.core.StartListener()
}
