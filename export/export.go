/*
Package export encodes drone tracks into the compact binary formats flown
by the drones, and decodes them again.

A trajectory is a start record followed by one record per pair of
consecutive waypoints. All positions are converted to the drone's frame and
stored as little-endian 16 bit millimetres:

	start:    x y z yaw(=0)                      4 × int16
	segment:  degrees                            1 byte, yaw<<6 | z<<4 | y<<2 | x
	          duration                           int16, milliseconds
	          for each axis x, y, z by degree:
	            Constant: nothing
	            Linear:   end
	            Cubic:    start handle, end handle, end

A light sequence is a list of 4 byte records, each a big-endian duration in
hundredths of a second followed by a big-endian RGB565 color, terminated by
an all-zero record. The first record holds the first color for 0.01 s.

There is no version byte in either format.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package export

import (
	"errors"
	"fmt"
	"math"

	"github.com/npillmayer/choreo"
	"github.com/npillmayer/choreo/keyframe"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'export'
func tracer() tracing.Trace {
	return tracing.Select("export")
}

var (
	ErrNoWaypoints   = errors.New("trajectory needs at least one waypoint")
	ErrNoKeyframes   = errors.New("light sequence needs at least one color keyframe")
	ErrDurationRange = errors.New("segment duration out of range")
	ErrMalformed     = errors.New("malformed binary data")
)

// Epsilon is the tolerance, in meters, below which tangents count as zero
// and positions as equal when classifying segments.
const Epsilon = 0.001

// Degree is the per-axis polynomial degree class of a segment.
type Degree uint8

const (
	Constant Degree = 0
	Linear   Degree = 1
	Cubic    Degree = 2
)

func (d Degree) String() string {
	switch d {
	case Constant:
		return "Constant"
	case Linear:
		return "Linear"
	case Cubic:
		return "Cubic"
	}
	return fmt.Sprintf("Degree(%d)", uint8(d))
}

// droneAxes lists, for drone axes x, y and z, the authoring axis feeding it.
var droneAxes = [3]choreo.Axis{choreo.Z, choreo.X, choreo.Y}

// Classify determines the degree of the segment from a to b along one
// authoring axis. Tangents of linear joints count as zero.
func Classify(a, b keyframe.Waypoint, axis choreo.Axis) Degree {
	var start, end float64
	if a.Joint != keyframe.Linear {
		start = a.Tangent.Get(axis)
	}
	if b.Joint != keyframe.Linear {
		end = -b.Tangent.Get(axis)
	}
	if math.Abs(start) > Epsilon || math.Abs(end) > Epsilon {
		return Cubic
	}
	if choreo.Approx(a.Position.Get(axis), b.Position.Get(axis), Epsilon) {
		return Constant
	}
	return Linear
}

// header packs four 2 bit degree codes into one byte.
func header(yaw, z, y, x Degree) byte {
	return byte(yaw&3)<<6 | byte(z&3)<<4 | byte(y&3)<<2 | byte(x&3)
}

func unpackHeader(h byte) (yaw Degree, axes [3]Degree) {
	axes[0] = Degree(h & 3)
	axes[1] = Degree(h >> 2 & 3)
	axes[2] = Degree(h >> 4 & 3)
	return Degree(h >> 6 & 3), axes
}
