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

	"github.com/AleutianAI/SceneLink/pkg/validation"
)

// Path addresses a node in the scene tree as an ordered sequence of
// non-empty name segments. The empty path addresses the root. Equality
// is structural; Key returns the canonical map-key form.
type Path []string

// Key returns the canonical string form of the path, usable as a map key.
func (p Path) Key() string { return validation.JoinPath(p) }

// Child returns a new path extended by one segment. The receiver is not
// modified and the result does not alias its backing array.
func (p Path) Child(name string) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = name
	return out
}

// treeNode is one node of the lazy scene tree. Nodes are created on
// first access and hold a geometry list (empty by default), a transform
// (identity by default), and their children by name.
//
// The tree carries no lock of its own: CoreVisualizer's mutex guards
// the tree and the command queue together.
type treeNode struct {
	geometries []GeometryData
	transform  mgl64.Mat4
	children   map[string]*treeNode
}

func newTreeNode() *treeNode {
	return &treeNode{
		transform: mgl64.Ident4(),
		children:  make(map[string]*treeNode),
	}
}

// getOrCreateDescendant walks from this node along path, creating any
// missing intermediate and leaf nodes, and returns the terminal node.
// The empty path returns the node itself. Never fails for a validated
// path.
func (n *treeNode) getOrCreateDescendant(path Path) *treeNode {
	node := n
	for _, name := range path {
		child, ok := node.children[name]
		if !ok {
			child = newTreeNode()
			node.children[name] = child
		}
		node = child
	}
	return node
}

// findDescendant returns the node at path without creating anything.
// Serialization uses this so that flushing a stale queue mark can never
// resurrect a deleted node.
func (n *treeNode) findDescendant(path Path) (*treeNode, bool) {
	node := n
	for _, name := range path {
		child, ok := node.children[name]
		if !ok {
			return nil, false
		}
		node = child
	}
	return node, true
}

// descendants returns the path of every node below this one, depth
// first, each exactly once, prefixed with prefix. Sibling order is
// unspecified (map iteration). The node itself is not included.
func (n *treeNode) descendants(prefix Path) []Path {
	var result []Path
	for name, child := range n.children {
		childPath := prefix.Child(name)
		result = append(result, childPath)
		result = append(result, child.descendants(childPath)...)
	}
	return result
}

// deleteSubtree removes the named child at path from its parent,
// discarding the entire subtree rooted there. Missing intermediate
// nodes are created on the way down, matching the access semantics of
// every other path operation. Deleting the empty path is the caller's
// whole-tree reset and is handled by CoreVisualizer.
func (n *treeNode) deleteSubtree(path Path) {
	if len(path) == 0 {
		return
	}
	parent := n.getOrCreateDescendant(path[:len(path)-1])
	delete(parent.children, path[len(path)-1])
}
