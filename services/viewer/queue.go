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

// commandQueue is the pending-change set: the minimal diff between the
// local tree and what the remote side has been told. Paths are keyed by
// their canonical form, so marking the same path twice is a no-op. A
// path may sit in more than one set at once (delete plus load in one
// batch reads as delete-then-recreate on the remote side); the queue
// imposes no ordering between the three categories.
//
// commandQueue carries no lock of its own: CoreVisualizer's mutex
// guards the tree and the queue together.
type commandQueue struct {
	load   map[string]Path
	draw   map[string]Path
	remove map[string]Path
}

func newCommandQueue() *commandQueue {
	return &commandQueue{
		load:   make(map[string]Path),
		draw:   make(map[string]Path),
		remove: make(map[string]Path),
	}
}

func (q *commandQueue) markLoad(p Path)   { q.load[p.Key()] = p }
func (q *commandQueue) markDraw(p Path)   { q.draw[p.Key()] = p }
func (q *commandQueue) markDelete(p Path) { q.remove[p.Key()] = p }

func (q *commandQueue) isEmpty() bool {
	return len(q.load) == 0 && len(q.draw) == 0 && len(q.remove) == 0
}

// drain returns the current contents of all three sets and resets them.
// Called exactly once per publish, under the core's mutex.
func (q *commandQueue) drain() (load, draw, remove []Path) {
	load = make([]Path, 0, len(q.load))
	for _, p := range q.load {
		load = append(load, p)
	}
	draw = make([]Path, 0, len(q.draw))
	for _, p := range q.draw {
		draw = append(draw, p)
	}
	remove = make([]Path, 0, len(q.remove))
	for _, p := range q.remove {
		remove = append(remove, p)
	}
	q.load = make(map[string]Path)
	q.draw = make(map[string]Path)
	q.remove = make(map[string]Path)
	return load, draw, remove
}
