/*
Package choreo implements the geometry shared by the choreography packages:
3D vectors, fixed point vectors for the drone wire format, axis aligned
boxes, coordinate frames and light colors.

Sub-packages build on it: bezier for curve math, keyframe for authored
tracks, polyn for power basis polynomials, planner for the multi-agent
pathfinder, formation for target shapes and export for the binary encoders.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package choreo

import (
	"fmt"
	"math"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'choreo'
func tracer() tracing.Trace {
	return tracing.Select("choreo")
}

// === Numeric Data Type =====================================================

// Epsilon : numbers below ε are considered 0
var Epsilon float64 = 0.0000001

// Is0 is a predicate: is n = 0 ?
func Is0(n float64) bool {
	return math.Abs(n) <= Epsilon
}

// Is1 is a predicate: is n = 1.0 ?
func Is1(n float64) bool {
	return math.Abs(1-n) <= Epsilon
}

// Zap makes n = 0 if n "means" to be zero
func Zap(n float64) float64 {
	if Is0(n) {
		n = 0
	}
	return n
}

// Approx is a predicate: |a-b| <= eps ?
func Approx(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

// Clamp01 clamps n to the unit interval.
func Clamp01(n float64) float64 {
	if n < 0 {
		return 0
	} else if n > 1 {
		return 1
	}
	return n
}

// === Axes ==================================================================

// Axis selects one component of a vector.
type Axis int8

// Axes of a right handed authoring frame.
const (
	X Axis = iota
	Y
	Z
)

// Axes lists all three axes in component order.
var Axes = [3]Axis{X, Y, Z}

func (a Axis) String() string {
	switch a {
	case X:
		return "X"
	case Y:
		return "Y"
	case Z:
		return "Z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// === Vector Data Type ======================================================

// Vec3 is a point or direction in 3D space, measured in meters.
type Vec3 struct {
	X, Y, Z float64
}

// Origin represents the frequently used constant (0,0,0).
var Origin = Vec3{}

// V is a quick notation for contructing a vector from floats.
func V(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Pretty Stringer for vectors.
func (v Vec3) String() string {
	return fmt.Sprintf("(%g,%g,%g)", v.X, v.Y, v.Z)
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z}
}

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z}
}

// Scaled returns a new vector scaled by factor a.
func (v Vec3) Scaled(a float64) Vec3 {
	return Vec3{v.X * a, v.Y * a, v.Z * a}
}

// Dot is the scalar product.
func (v Vec3) Dot(w Vec3) float64 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

// Cross is the vector product v × w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		v.Y*w.Z - v.Z*w.Y,
		v.Z*w.X - v.X*w.Z,
		v.X*w.Y - v.Y*w.X,
	}
}

// LenSq is the squared euclidean length.
func (v Vec3) LenSq() float64 {
	return v.Dot(v)
}

// Len is the euclidean length.
func (v Vec3) Len() float64 {
	return math.Sqrt(v.LenSq())
}

// Dist is the euclidean distance between v and w.
func (v Vec3) Dist(w Vec3) float64 {
	return v.Sub(w).Len()
}

// Normalized returns v scaled to unit length. The zero vector stays zero.
func (v Vec3) Normalized() Vec3 {
	l := v.Len()
	if Is0(l) {
		return Origin
	}
	return v.Scaled(1 / l)
}

// Lerp interpolates linearly between v (t=0) and w (t=1).
func (v Vec3) Lerp(w Vec3, t float64) Vec3 {
	return Vec3{
		v.X + (w.X-v.X)*t,
		v.Y + (w.Y-v.Y)*t,
		v.Z + (w.Z-v.Z)*t,
	}
}

// Get returns the component for axis a.
func (v Vec3) Get(a Axis) float64 {
	switch a {
	case X:
		return v.X
	case Y:
		return v.Y
	case Z:
		return v.Z
	}
	panic(fmt.Sprintf("invalid axis %d", int(a)))
}

// With returns a copy of v with component a set to n.
func (v Vec3) With(a Axis, n float64) Vec3 {
	switch a {
	case X:
		v.X = n
	case Y:
		v.Y = n
	case Z:
		v.Z = n
	default:
		panic(fmt.Sprintf("invalid axis %d", int(a)))
	}
	return v
}

// Min is the component-wise minimum.
func (v Vec3) Min(w Vec3) Vec3 {
	return Vec3{math.Min(v.X, w.X), math.Min(v.Y, w.Y), math.Min(v.Z, w.Z)}
}

// Max is the component-wise maximum.
func (v Vec3) Max(w Vec3) Vec3 {
	return Vec3{math.Max(v.X, w.X), math.Max(v.Y, w.Y), math.Max(v.Z, w.Z)}
}

// Zap rounds all components to Epsilon.
func (v Vec3) Zap() Vec3 {
	return Vec3{Zap(v.X), Zap(v.Y), Zap(v.Z)}
}

// Equal compares two vectors component-wise with tolerance Epsilon.
func (v Vec3) Equal(w Vec3) bool {
	return Is0(v.X-w.X) && Is0(v.Y-w.Y) && Is0(v.Z-w.Z)
}

// Near compares two vectors component-wise with tolerance eps.
func (v Vec3) Near(w Vec3, eps float64) bool {
	return Approx(v.X, w.X, eps) && Approx(v.Y, w.Y, eps) && Approx(v.Z, w.Z, eps)
}

// IsFinite is a predicate: no component is NaN or ±Inf.
func (v Vec3) IsFinite() bool {
	for _, n := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return false
		}
	}
	return true
}
