package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/npillmayer/choreo"
	"github.com/npillmayer/choreo/bezier"
	"github.com/npillmayer/choreo/polyn"
)

// PolySegment is a segment imported from firmware polynomials. Coefficients
// and control values are held per authoring axis x, y, z, followed by yaw,
// and are parametrized over [0,1].
type PolySegment struct {
	Degree       int
	Duration     float64
	Coefficients [4][]float64
	Controls     [4][]float64
}

// ImportSegment expands a flat firmware segment: the duration, followed by
// four blocks of Degree+1 power coefficients for drone axes x, y, z and yaw,
// each parametrized over [0,duration].
func ImportSegment(data []float64) (PolySegment, error) {
	var seg PolySegment
	if len(data) < 5 || (len(data)-1)%4 != 0 {
		return seg, fmt.Errorf("%w: segment of %d values", ErrMalformed, len(data))
	}
	seg.Degree = (len(data)-1)/4 - 1
	seg.Duration = data[0]
	n := seg.Degree + 1
	for block := 0; block < 4; block++ {
		offset := 1 + n*block
		unscaled, err := polyn.Unscale(data[offset:offset+n], seg.Duration)
		if err != nil {
			return seg, err
		}
		axis, sign := fromDroneBlock(block)
		if sign < 0 {
			for i := range unscaled {
				unscaled[i] = -unscaled[i]
			}
		}
		ctrl, err := polyn.PowerToBezier(unscaled)
		if err != nil {
			return seg, err
		}
		seg.Coefficients[axis] = unscaled
		seg.Controls[axis] = ctrl
	}
	return seg, nil
}

// fromDroneBlock maps a drone coefficient block to the authoring axis it
// describes and the sign of that mapping.
func fromDroneBlock(block int) (int, float64) {
	switch block {
	case 0: // drone x is authoring z
		return int(choreo.Z), 1
	case 1: // drone y is authoring -x
		return int(choreo.X), -1
	case 2: // drone z is authoring y
		return int(choreo.Y), 1
	}
	return block, 1
}

// Eval evaluates the position at parameter t ∈ [0,1].
func (s PolySegment) Eval(t float64) choreo.Vec3 {
	var v choreo.Vec3
	for _, a := range choreo.Axes {
		v = v.With(a, polyn.FromCoefficients(s.Coefficients[a]).Eval(t))
	}
	return v
}

// Points returns the control polygon in the authoring frame.
func (s PolySegment) Points() []choreo.Vec3 {
	pts := make([]choreo.Vec3, s.Degree+1)
	for i := range pts {
		pts[i] = choreo.V(s.Controls[choreo.X][i], s.Controls[choreo.Y][i], s.Controls[choreo.Z][i])
	}
	return pts
}

// Cubic returns the segment as a cubic starting at time start. Segments of
// lower degree are degree-elevated; higher degrees cannot be represented and
// yield false.
func (s PolySegment) Cubic(start float64) (bezier.Cubic, bool) {
	if s.Degree > 3 {
		return bezier.Cubic{}, false
	}
	pts := s.Points()
	for len(pts) < 4 {
		pts = elevate(pts)
	}
	return bezier.Cubic{
		Anchor1: pts[0], Control1: pts[1], Control2: pts[2], Anchor2: pts[3],
		Start: start, End: start + s.Duration,
	}, true
}

// elevate raises the degree of a Bezier control polygon by one.
func elevate(p []choreo.Vec3) []choreo.Vec3 {
	n := len(p) // new degree
	q := make([]choreo.Vec3, n+1)
	q[0], q[n] = p[0], p[n-1]
	for i := 1; i < n; i++ {
		f := float64(i) / float64(n)
		q[i] = p[i-1].Scaled(f).Add(p[i].Scaled(1 - f))
	}
	return q
}

type jsonSegment struct {
	Data []float64 `json:"data"`
}

type jsonTrajectory struct {
	Segments []jsonSegment `json:"segments"`
}

type jsonSequence struct {
	Sequences []jsonTrajectory `json:"sequences"`
}

// ReadImport reads a JSON document of firmware trajectories,
//
//	{"sequences": [{"segments": [{"data": [duration, c…]}, …]}, …]}
//
// and expands every segment.
func ReadImport(r io.Reader) ([][]PolySegment, error) {
	var doc jsonSequence
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding import: %w", err)
	}
	out := make([][]PolySegment, len(doc.Sequences))
	for i, seq := range doc.Sequences {
		for j, s := range seq.Segments {
			seg, err := ImportSegment(s.Data)
			if err != nil {
				return nil, fmt.Errorf("sequence %d, segment %d: %w", i, j, err)
			}
			out[i] = append(out[i], seg)
		}
	}
	tracer().Debugf("imported %d sequences", len(out))
	return out, nil
}
