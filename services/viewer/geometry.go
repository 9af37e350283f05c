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
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Geometry type discriminators as they appear on the wire.
const (
	TypeBox       = "box"
	TypeSphere    = "sphere"
	TypeEllipsoid = "ellipsoid"
	TypeCylinder  = "cylinder"
	TypeTriad     = "triad"
)

// Record is one flat wire record for a geometry instance: the primitive
// parameters keyed by name, merged with "type", "color" and "transform".
type Record map[string]any

// Geometry is a drawable shape descriptor. The set of implementations
// is closed: Box, Sphere, Ellipsoid, Cylinder, Triad.
//
// Geometries are immutable values with no shared state. A bare Geometry
// used in Load gets the default color (opaque white) and an identity
// transform; wrap it in a GeometryData to override either.
type Geometry interface {
	GeometryLike

	// Type returns the wire discriminator for this primitive.
	Type() string

	// record returns the primitive's wire record: the type discriminator
	// plus the primitive-specific parameters.
	record() Record
}

// GeometryLike is the argument type accepted by Load: either a bare
// Geometry primitive or a full GeometryData instance. It replaces the
// loose "anything shape-like" calling convention with an explicit
// overload set resolved at the call boundary.
type GeometryLike interface {
	geometryData() GeometryData
}

// Box is an axis-aligned box with the given edge lengths.
type Box struct {
	Lengths [3]float64
}

func (b Box) Type() string { return TypeBox }

func (b Box) record() Record {
	return Record{"type": TypeBox, "lengths": b.Lengths[:]}
}

func (b Box) geometryData() GeometryData { return NewGeometryData(b) }

// Sphere is a sphere with the given radius.
type Sphere struct {
	Radius float64
}

func (s Sphere) Type() string { return TypeSphere }

func (s Sphere) record() Record {
	return Record{"type": TypeSphere, "radius": s.Radius}
}

func (s Sphere) geometryData() GeometryData { return NewGeometryData(s) }

// Ellipsoid is an axis-aligned ellipsoid with the given semi-axis radii.
type Ellipsoid struct {
	Radii [3]float64
}

func (e Ellipsoid) Type() string { return TypeEllipsoid }

func (e Ellipsoid) record() Record {
	return Record{"type": TypeEllipsoid, "radii": e.Radii[:]}
}

func (e Ellipsoid) geometryData() GeometryData { return NewGeometryData(e) }

// Cylinder is a cylinder with the given length and radius.
type Cylinder struct {
	Length float64
	Radius float64
}

func (c Cylinder) Type() string { return TypeCylinder }

func (c Cylinder) record() Record {
	return Record{"type": TypeCylinder, "length": c.Length, "radius": c.Radius}
}

func (c Cylinder) geometryData() GeometryData { return NewGeometryData(c) }

// Triad is a coordinate-frame marker (three axis arrows). It has no
// parameters.
type Triad struct{}

func (t Triad) Type() string { return TypeTriad }

func (t Triad) record() Record {
	return Record{"type": TypeTriad}
}

func (t Triad) geometryData() GeometryData { return NewGeometryData(t) }

// DefaultColor is opaque white, the color applied when a bare Geometry
// is loaded without an explicit GeometryData.
var DefaultColor = [4]float64{1, 1, 1, 1}

// GeometryData binds one primitive to an RGBA color and a local
// transform. Instances are replaced wholesale on Load, never patched
// field by field.
//
// Construct with NewGeometryData and override fields as needed:
//
//	g := viewer.NewGeometryData(viewer.Box{Lengths: [3]float64{1, 1, 1}})
//	g.Color = [4]float64{0, 1, 0, 0.5}
type GeometryData struct {
	Geometry  Geometry
	Color     [4]float64
	Transform mgl64.Mat4
}

// NewGeometryData returns a GeometryData for geom with the default
// opaque-white color and an identity local transform.
func NewGeometryData(geom Geometry) GeometryData {
	return GeometryData{
		Geometry:  geom,
		Color:     DefaultColor,
		Transform: mgl64.Ident4(),
	}
}

func (d GeometryData) geometryData() GeometryData { return d }

// Record returns the flat wire record for this instance: the primitive
// record merged with color and the encoded local transform.
func (d GeometryData) Record() Record {
	r := d.Geometry.record()
	r["color"] = d.Color[:]
	r["transform"] = encodeTransform(d.Transform)
	return r
}

// normalizeGeometries resolves Load arguments into a flat instance
// list. Bare primitives pick up default color and transform.
func normalizeGeometries(items []GeometryLike) ([]GeometryData, error) {
	geoms := make([]GeometryData, 0, len(items))
	for i, item := range items {
		if item == nil {
			return nil, fmt.Errorf("%w: item %d is nil", ErrInvalidGeometry, i)
		}
		d := item.geometryData()
		if d.Geometry == nil {
			return nil, fmt.Errorf("%w: item %d has no primitive", ErrInvalidGeometry, i)
		}
		geoms = append(geoms, d)
	}
	return geoms, nil
}
