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

import "github.com/go-gl/mathgl/mgl64"

// TransformRecord is the transmissible form of an affine 4x4 transform:
// the translation vector plus the rotation as a [w, x, y, z] quaternion.
// The renderer recomposes its own matrices from these; this engine only
// ever encodes.
type TransformRecord struct {
	Translation [3]float64 `json:"translation"`
	Quaternion  [4]float64 `json:"quaternion"`
}

// encodeTransform extracts translation and rotation from a homogeneous
// transform. The rotation part must be a proper rotation (no shear);
// uniform scale is tolerated the same way the protocol always has been,
// by folding it into the quaternion extraction.
func encodeTransform(m mgl64.Mat4) TransformRecord {
	q := mgl64.Mat4ToQuat(m)
	return TransformRecord{
		Translation: [3]float64{m.At(0, 3), m.At(1, 3), m.At(2, 3)},
		Quaternion:  [4]float64{q.W, q.V.X(), q.V.Y(), q.V.Z()},
	}
}
