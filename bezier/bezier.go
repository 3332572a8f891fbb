/*
Package bezier implements piecewise cubic Bezier paths in 3D: evaluation,
natural spline interpolation through points, least-squares approximation
and recursive adaptive fitting.

Every segment carries the time interval it covers. Chains of segments are
expected to be contiguous in time, i.e. the end time of a segment equals the
start time of its successor.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package bezier

import (
	"errors"
	"fmt"

	"github.com/npillmayer/choreo"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'bezier'
func tracer() tracing.Trace {
	return tracing.Select("bezier")
}

var (
	ErrTooFewPoints     = errors.New("too few points")
	ErrNoCurves         = errors.New("curve chain is empty")
	ErrDegenerateFit    = errors.New("least-squares fit is singular")
	ErrInvalidPoint     = errors.New("point is not finite")
	ErrInvalidThreshold = errors.New("error threshold must not be negative")
	ErrInvalidTimes     = errors.New("segment times do not match the chain")
)

// Cubic is a cubic Bezier segment covering the time interval [Start,End).
type Cubic struct {
	Anchor1  choreo.Vec3
	Control1 choreo.Vec3
	Control2 choreo.Vec3
	Anchor2  choreo.Vec3
	Start    float64
	End      float64
}

// Line creates a straight segment from a to b. Its control points
// coincide with the anchors.
func Line(a, b choreo.Vec3, start, end float64) Cubic {
	return Cubic{Anchor1: a, Control1: a, Control2: b, Anchor2: b, Start: start, End: end}
}

func (c Cubic) String() string {
	return fmt.Sprintf("%v..%v..%v..%v[%g,%g)", c.Anchor1, c.Control1, c.Control2,
		c.Anchor2, c.Start, c.End)
}

// Points returns the control polygon.
func (c Cubic) Points() [4]choreo.Vec3 {
	return [4]choreo.Vec3{c.Anchor1, c.Control1, c.Control2, c.Anchor2}
}

// Eval evaluates the curve at parameter t ∈ [0,1]:
//
//	P(t) = (1-t)³⋅A1 + 3t(1-t)²⋅C1 + 3t²(1-t)⋅C2 + t³⋅A2
func (c Cubic) Eval(t float64) choreo.Vec3 {
	u := 1 - t
	c0 := u * u * u
	c1 := 3 * t * u * u
	c2 := 3 * u * t * t
	c3 := t * t * t
	return c.Anchor1.Scaled(c0).Add(c.Control1.Scaled(c1)).
		Add(c.Control2.Scaled(c2)).Add(c.Anchor2.Scaled(c3))
}

// Derivative returns dP/dt at parameter t.
func (c Cubic) Derivative(t float64) choreo.Vec3 {
	u := 1 - t
	d0 := c.Control1.Sub(c.Anchor1).Scaled(3 * u * u)
	d1 := c.Control2.Sub(c.Control1).Scaled(6 * u * t)
	d2 := c.Anchor2.Sub(c.Control2).Scaled(3 * t * t)
	return d0.Add(d1).Add(d2)
}

// Duration is End - Start.
func (c Cubic) Duration() float64 {
	return c.End - c.Start
}

// Contains is a predicate: Start ≤ time < End ?
func (c Cubic) Contains(time float64) bool {
	return time >= c.Start && time < c.End
}

// Param maps a time to the curve parameter, clamped to [0,1]. A segment
// of zero duration maps everything to 0.
func (c Cubic) Param(time float64) float64 {
	d := c.Duration()
	if choreo.Is0(d) {
		return 0
	}
	return choreo.Clamp01((time - c.Start) / d)
}

// At evaluates the curve at a point in time.
func (c Cubic) At(time float64) choreo.Vec3 {
	return c.Eval(c.Param(time))
}

// Velocity at a point in time, i.e. dP/dtime.
func (c Cubic) Velocity(time float64) choreo.Vec3 {
	d := c.Duration()
	if choreo.Is0(d) {
		return choreo.Origin
	}
	return c.Derivative(c.Param(time)).Scaled(1 / d)
}

func validatePoints(points []choreo.Vec3, min int) error {
	if len(points) < min {
		return fmt.Errorf("%w: need at least %d, have %d", ErrTooFewPoints, min, len(points))
	}
	for i, p := range points {
		if !p.IsFinite() {
			return fmt.Errorf("%w at index %d", ErrInvalidPoint, i)
		}
	}
	return nil
}
