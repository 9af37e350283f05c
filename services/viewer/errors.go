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

import "errors"

// Sentinel errors for the viewer engine.
var (
	// ErrInvalidPath indicates a malformed scene path (empty segment or
	// embedded separator). The mutation was not applied.
	ErrInvalidPath = errors.New("invalid scene path")

	// ErrInvalidGeometry indicates an unusable geometry argument passed
	// to Load. The mutation was not applied.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrProtocol indicates an inbound viewer response that this engine
	// does not recognize. The contract with the remote side is broken;
	// this is fatal, not something to silently skip.
	ErrProtocol = errors.New("unrecognized viewer response")
)
