package export

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/npillmayer/choreo"
	"github.com/npillmayer/choreo/bezier"
	"github.com/npillmayer/choreo/keyframe"
)

// EncodeTrajectory encodes an ordered waypoint sequence.
func EncodeTrajectory(waypoints []keyframe.Waypoint) ([]byte, error) {
	if len(waypoints) == 0 {
		return nil, ErrNoWaypoints
	}
	start, err := dronePosition(waypoints[0].Position)
	if err != nil {
		return nil, fmt.Errorf("start position: %w", err)
	}
	buf := make([]byte, 0, 8+len(waypoints)*21)
	for _, c := range [4]int16{start.X, start.Y, start.Z, 0} {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(c))
	}
	emitted := start
	for i := 0; i < len(waypoints)-1; i++ {
		if buf, err = appendSegment(buf, waypoints[i], waypoints[i+1], &emitted); err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
	}
	tracer().Debugf("encoded %d waypoints into %d bytes", len(waypoints), len(buf))
	return buf, nil
}

// appendSegment encodes the segment from a to b. emitted is the drone
// position a decoder has reached so far; it is advanced to the segment end.
func appendSegment(buf []byte, a, b keyframe.Waypoint, emitted *choreo.Vec3i) ([]byte, error) {
	out, err := dronePosition(a.OutHandle())
	if err != nil {
		return buf, err
	}
	in, err := dronePosition(b.InHandle())
	if err != nil {
		return buf, err
	}
	end, err := dronePosition(b.Position)
	if err != nil {
		return buf, err
	}
	var deg [3]Degree
	for i, axis := range droneAxes {
		deg[i] = Classify(a, b, axis)
		// sub-epsilon moves still count once they change the emitted millimetre
		if deg[i] == Constant && end.Get(choreo.Axes[i]) != emitted.Get(choreo.Axes[i]) {
			deg[i] = Linear
		}
	}
	buf = append(buf, header(Constant, deg[2], deg[1], deg[0]))
	ms := math.RoundToEven((b.Time - a.Time) * 1000)
	if ms < 0 || ms > math.MaxInt16 {
		return buf, fmt.Errorf("%w: %g s", ErrDurationRange, b.Time-a.Time)
	}
	buf = binary.LittleEndian.AppendUint16(buf, uint16(int16(ms)))
	for i, d := range deg {
		axis := choreo.Axes[i]
		switch d {
		case Linear:
			buf = binary.LittleEndian.AppendUint16(buf, uint16(end.Get(axis)))
		case Cubic:
			buf = binary.LittleEndian.AppendUint16(buf, uint16(out.Get(axis)))
			buf = binary.LittleEndian.AppendUint16(buf, uint16(in.Get(axis)))
			buf = binary.LittleEndian.AppendUint16(buf, uint16(end.Get(axis)))
		}
	}
	*emitted = end // constant axes already hold end
	return buf, nil
}

// dronePosition converts an authoring position to drone frame millimetres.
func dronePosition(p choreo.Vec3) (choreo.Vec3i, error) {
	return choreo.ToFixedVec(choreo.ToDrone(p))
}

// Trajectory is a decoded trajectory. All positions are in the drone frame.
type Trajectory struct {
	Start    choreo.Vec3
	Segments []Segment
}

// Segment is one decoded trajectory record. Control points are given in
// the drone frame; for axes of lower degree they are filled in so that the
// cubic reproduces the encoded motion.
type Segment struct {
	Duration float64
	Degrees  [3]Degree // drone axes x, y, z
	Yaw      Degree
	Points   [4]choreo.Vec3
}

// DecodeTrajectory is the inverse of EncodeTrajectory.
func DecodeTrajectory(data []byte) (*Trajectory, error) {
	r := reader{data: data}
	var start [4]int16
	for i := range start {
		start[i] = r.int16()
	}
	if r.err != nil {
		return nil, fmt.Errorf("%w: trajectory start record", ErrMalformed)
	}
	traj := &Trajectory{Start: choreo.Vec3i{X: start[0], Y: start[1], Z: start[2]}.Float()}
	pos := traj.Start
	for !r.done() {
		yaw, deg := unpackHeader(r.byte())
		seg := Segment{Yaw: yaw, Degrees: deg, Duration: float64(r.int16()) / 1000}
		for i := range seg.Points {
			seg.Points[i] = pos
		}
		for i, d := range deg {
			axis := choreo.Axes[i]
			switch d {
			case Linear:
				end := choreo.FromFixed(r.int16())
				seg.Points[2] = seg.Points[2].With(axis, end)
				seg.Points[3] = seg.Points[3].With(axis, end)
			case Cubic:
				for j := 1; j < 4; j++ {
					seg.Points[j] = seg.Points[j].With(axis, choreo.FromFixed(r.int16()))
				}
			case Constant:
			default:
				return nil, fmt.Errorf("%w: degree %d in segment %d", ErrMalformed, d, len(traj.Segments))
			}
		}
		if r.err != nil {
			return nil, fmt.Errorf("%w: truncated segment %d", ErrMalformed, len(traj.Segments))
		}
		pos = seg.Points[3]
		traj.Segments = append(traj.Segments, seg)
	}
	return traj, nil
}

// Curves converts the trajectory back to cubics in the authoring frame,
// with the first segment starting at time t0.
func (traj *Trajectory) Curves(t0 float64) []bezier.Cubic {
	curves := make([]bezier.Cubic, len(traj.Segments))
	t := t0
	for i, s := range traj.Segments {
		curves[i] = bezier.Cubic{
			Anchor1:  choreo.FromDrone(s.Points[0]),
			Control1: choreo.FromDrone(s.Points[1]),
			Control2: choreo.FromDrone(s.Points[2]),
			Anchor2:  choreo.FromDrone(s.Points[3]),
			Start:    t,
			End:      t + s.Duration,
		}
		t += s.Duration
	}
	return curves
}

// reader is a minimal cursor over a byte slice. The first read beyond the
// end sets err; later reads return zero values.
type reader struct {
	data []byte
	pos  int
	err  error
}

func (r *reader) done() bool {
	return r.err != nil || r.pos >= len(r.data)
}

func (r *reader) byte() byte {
	if r.pos+1 > len(r.data) {
		r.err = ErrMalformed
		return 0
	}
	b := r.data[r.pos]
	r.pos++
	return b
}

func (r *reader) int16() int16 {
	if r.pos+2 > len(r.data) {
		r.err = ErrMalformed
		return 0
	}
	v := int16(binary.LittleEndian.Uint16(r.data[r.pos:]))
	r.pos += 2
	return v
}

func (r *reader) uint16BE() uint16 {
	if r.pos+2 > len(r.data) {
		r.err = ErrMalformed
		return 0
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v
}
