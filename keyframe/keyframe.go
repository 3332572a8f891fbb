/*
Package keyframe holds authored drone tracks: timed waypoints with Bezier
handles and timed light colors. It finds the keyframes bracketing a point
in time and evaluates position, heading and color along a track.

A waypoint's tangent is relative to its position. The outgoing handle of a
waypoint lies at Position+Tangent, the incoming one at Position-Tangent.
Linear joints collapse both handles onto the position.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package keyframe

import (
	"errors"
	"fmt"

	"github.com/npillmayer/choreo"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'keyframe'
func tracer() tracing.Trace {
	return tracing.Select("keyframe")
}

var (
	ErrEmptyTrack       = errors.New("track has no waypoints")
	ErrNonMonotonicTime = errors.New("waypoint times must be strictly increasing")
	ErrDuplicateTime    = errors.New("two color keyframes share a time")
	ErrInvalidValue     = errors.New("keyframe value is not finite")
)

// JointType describes how a path passes through a waypoint.
type JointType int8

const (
	Linear     JointType = iota // handles collapse onto the waypoint
	Continuous                  // smooth joint, handles at ±Tangent
)

func (j JointType) String() string {
	switch j {
	case Linear:
		return "Linear"
	case Continuous:
		return "Continuous"
	}
	return fmt.Sprintf("JointType(%d)", int(j))
}

// DefaultTangent is the tangent of a freshly placed waypoint.
var DefaultTangent = choreo.V(0.25, 0, 0)

// Waypoint is a timed position keyframe.
type Waypoint struct {
	Time     float64
	Position choreo.Vec3
	Tangent  choreo.Vec3
	Joint    JointType
}

// NewWaypoint creates a linear waypoint with the default tangent.
func NewWaypoint(time float64, p choreo.Vec3) Waypoint {
	return Waypoint{Time: time, Position: p, Tangent: DefaultTangent, Joint: Linear}
}

// OutHandle is the control point leaving the waypoint.
func (w Waypoint) OutHandle() choreo.Vec3 {
	if w.Joint == Linear {
		return w.Position
	}
	return w.Position.Add(w.Tangent)
}

// InHandle is the control point entering the waypoint.
func (w Waypoint) InHandle() choreo.Vec3 {
	if w.Joint == Linear {
		return w.Position
	}
	return w.Position.Sub(w.Tangent)
}

func (w Waypoint) String() string {
	return fmt.Sprintf("wp@%g%v/%s", w.Time, w.Position, w.Joint)
}

// ColorKeyframe is a timed light color.
type ColorKeyframe struct {
	Time  float64
	Color choreo.Color
}

// MarkerKind discriminates the variants of a Marker.
type MarkerKind int8

const (
	WaypointMarker MarkerKind = iota
	ColorMarker
)

// Marker is a keyframe of either kind, as found in a mixed stream of
// timeline markers. Only the field selected by Kind is meaningful.
type Marker struct {
	Kind     MarkerKind
	Waypoint Waypoint
	Color    ColorKeyframe
}

// WaypointAt wraps a waypoint into a marker.
func WaypointAt(w Waypoint) Marker {
	return Marker{Kind: WaypointMarker, Waypoint: w}
}

// ColorAt wraps a color keyframe into a marker.
func ColorAt(c ColorKeyframe) Marker {
	return Marker{Kind: ColorMarker, Color: c}
}

// Time of the marker's keyframe.
func (m Marker) Time() float64 {
	if m.Kind == ColorMarker {
		return m.Color.Time
	}
	return m.Waypoint.Time
}
