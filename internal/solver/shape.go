package solver

import (
	"fmt"

	"github.com/impel-engine/impel/internal/mathf"
)

// ErrShapeCreation is returned when the solver rejects requested geometry.
var ErrShapeCreation = fmt.Errorf("solver: shape creation failed")

type ShapeKind uint8

const (
	ShapeSphere ShapeKind = iota
	ShapeBox
	ShapeCapsule
	ShapeCylinder
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeSphere:
		return "sphere"
	case ShapeBox:
		return "box"
	case ShapeCapsule:
		return "capsule"
	case ShapeCylinder:
		return "cylinder"
	}
	return "unknown"
}

// Shape is a solver-side collision shape. Dim encoding per kind:
// sphere radius in X; box half extents in XYZ; capsule and cylinder radius
// in X, half height in Y.
type Shape struct {
	Kind ShapeKind
	Dim  mathf.Vec3
}

// NewShape validates the geometry. Degenerate dimensions are fatal to the
// call; there is no fallback shape.
func NewShape(kind ShapeKind, dim mathf.Vec3) (*Shape, error) {
	switch kind {
	case ShapeSphere:
		if dim.X <= mathf.Epsilon {
			return nil, fmt.Errorf("%w: sphere radius %f", ErrShapeCreation, dim.X)
		}
	case ShapeBox:
		if dim.X <= mathf.Epsilon || dim.Y <= mathf.Epsilon || dim.Z <= mathf.Epsilon {
			return nil, fmt.Errorf("%w: box half extents %+v", ErrShapeCreation, dim)
		}
	case ShapeCapsule, ShapeCylinder:
		if dim.X <= mathf.Epsilon || dim.Y <= mathf.Epsilon {
			return nil, fmt.Errorf("%w: %s radius %f half height %f", ErrShapeCreation, kind, dim.X, dim.Y)
		}
	default:
		return nil, fmt.Errorf("%w: unknown kind %d", ErrShapeCreation, kind)
	}
	return &Shape{Kind: kind, Dim: dim}, nil
}

// HalfExtents is the shape's local-space AABB half extents.
func (s *Shape) HalfExtents() mathf.Vec3 {
	switch s.Kind {
	case ShapeSphere:
		r := s.Dim.X
		return mathf.V3(r, r, r)
	case ShapeBox:
		return s.Dim
	case ShapeCapsule:
		r, hh := s.Dim.X, s.Dim.Y
		return mathf.V3(r, hh+r, r)
	case ShapeCylinder:
		return mathf.V3(s.Dim.X, s.Dim.Y, s.Dim.X)
	}
	return mathf.Vec3{}
}

// Volume approximates the enclosed volume, used for mass properties.
func (s *Shape) Volume() float32 {
	const pi = 3.14159265
	switch s.Kind {
	case ShapeSphere:
		r := s.Dim.X
		return 4.0 / 3.0 * pi * r * r * r
	case ShapeBox:
		return 8 * s.Dim.X * s.Dim.Y * s.Dim.Z
	case ShapeCapsule:
		r, hh := s.Dim.X, s.Dim.Y
		return pi*r*r*2*hh + 4.0/3.0*pi*r*r*r
	case ShapeCylinder:
		return pi * s.Dim.X * s.Dim.X * 2 * s.Dim.Y
	}
	return 0
}
