// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for scene paths.
//
// Scene paths address nodes in the viewer tree and are used as map keys
// and wire-protocol fields. Validating them at the API boundary keeps
// malformed input from ever reaching the tree or the wire.
package validation

import (
	"fmt"
	"strings"
)

// Separator joins path segments in the string form of a scene path.
const Separator = "/"

// ValidateSegments checks that every segment of a scene path is usable
// as a tree key.
//
// Valid segments:
//   - non-empty
//   - contain no path separator
//
// An empty segment sequence is valid and addresses the tree root.
//
// Returns an error naming the first offending segment, or nil.
//
// Example:
//
//	if err := validation.ValidateSegments(path); err != nil {
//	    return fmt.Errorf("invalid path: %w", err)
//	}
func ValidateSegments(segments []string) error {
	for i, s := range segments {
		if s == "" {
			return fmt.Errorf("path segment %d is empty", i)
		}
		if strings.Contains(s, Separator) {
			return fmt.Errorf("path segment %d contains %q: %q", i, Separator, s)
		}
	}
	return nil
}

// ParsePath splits a slash-separated path string into segments.
//
// Leading, trailing, and repeated separators are dropped, so
// "/robot/arm", "robot/arm" and "robot//arm/" all parse to
// ["robot", "arm"]. An empty or all-separator string parses to an
// empty sequence (the tree root).
func ParsePath(path string) []string {
	parts := strings.Split(path, Separator)
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

// JoinPath returns the canonical string form of a segment sequence.
//
// The result round-trips through ParsePath for validated segments and
// is suitable as a map key. The root is the empty string.
func JoinPath(segments []string) string {
	return strings.Join(segments, Separator)
}
