package keyframe

import (
	"github.com/npillmayer/choreo"
	"github.com/npillmayer/choreo/bezier"
)

// criticalDelta is the half width of the finite difference used for headings
// at points of zero velocity.
const criticalDelta = 0.1

// Bracket finds the pair of keyframes around a point in time. The n keyframes
// must be ordered; timeAt(i) returns the time of keyframe i.
//
// For left.time ≤ time < right.time it returns right = left+1 and the blend
// factor (time-left.time)/(right.time-left.time), clamped to [0,1].
// A single keyframe is returned as (0,0,0). If time lies outside all
// intervals and clamp is set, the nearest boundary keyframe is returned with
// blend 0; without clamp, ok is false. Zero keyframes never bracket.
func Bracket(n int, timeAt func(int) float64, time float64, clamp bool) (left, right int, blend float64, ok bool) {
	if n == 0 {
		return 0, 0, 0, false
	}
	if n == 1 {
		return 0, 0, 0, true
	}
	for i := 0; i < n-1; i++ {
		t0, t1 := timeAt(i), timeAt(i+1)
		if time >= t0 && time < t1 {
			return i, i + 1, choreo.Clamp01((time - t0) / (t1 - t0)), true
		}
	}
	if !clamp {
		return 0, 0, 0, false
	}
	if time < timeAt(0) {
		return 0, 0, 0, true
	}
	return n - 1, n - 1, 0, true
}

func waypointTimes(w []Waypoint) func(int) float64 {
	return func(i int) float64 { return w[i].Time }
}

// Segment creates the cubic from waypoint a to waypoint b.
func Segment(a, b Waypoint) bezier.Cubic {
	return bezier.Cubic{
		Anchor1:  a.Position,
		Control1: a.OutHandle(),
		Control2: b.InHandle(),
		Anchor2:  b.Position,
		Start:    a.Time,
		End:      b.Time,
	}
}

// Curves converts a waypoint sequence into a chain of cubics.
func Curves(waypoints []Waypoint) []bezier.Cubic {
	if len(waypoints) < 2 {
		return nil
	}
	c := make([]bezier.Cubic, len(waypoints)-1)
	for i := range c {
		c[i] = Segment(waypoints[i], waypoints[i+1])
	}
	return c
}

// Position evaluates the path of a waypoint sequence at a point in time.
// Before the first and after the last waypoint the position is held.
// An empty sequence yields deflt.
func Position(waypoints []Waypoint, time float64, deflt choreo.Vec3) choreo.Vec3 {
	l, r, blend, ok := Bracket(len(waypoints), waypointTimes(waypoints), time, true)
	if !ok {
		return deflt
	}
	if l == r {
		return waypoints[l].Position
	}
	return Segment(waypoints[l], waypoints[r]).Eval(blend)
}

// Tangent returns the direction of travel at a point in time, as the
// derivative with respect to the segment parameter. Outside the waypoint
// intervals it is zero.
//
// With critical set, a vanishing tangent (e.g. at rest on a linear joint)
// is replaced by the displacement over a small time window around time.
func Tangent(waypoints []Waypoint, time float64, normalize, critical bool) choreo.Vec3 {
	var tangent choreo.Vec3
	l, r, blend, ok := Bracket(len(waypoints), waypointTimes(waypoints), time, false)
	if ok && l != r {
		tangent = Segment(waypoints[l], waypoints[r]).Derivative(blend)
	}
	if critical && len(waypoints) > 0 && choreo.Is0(tangent.Len()) {
		last := waypoints[len(waypoints)-1].Time
		clamp := func(t float64) float64 {
			if t < 0 {
				return 0
			} else if t > last {
				return last
			}
			return t
		}
		t := clamp(time)
		from := Position(waypoints, clamp(t-criticalDelta), choreo.Origin)
		to := Position(waypoints, clamp(t+criticalDelta), choreo.Origin)
		tangent = to.Sub(from)
	}
	if normalize {
		return tangent.Normalized()
	}
	return tangent
}

// Color evaluates the light color at a point in time, blending linearly
// between keyframes. Outside the keyframes the color is held. An empty
// sequence yields deflt.
func Color(colors []ColorKeyframe, time float64, deflt choreo.Color) choreo.Color {
	l, r, blend, ok := Bracket(len(colors), func(i int) float64 { return colors[i].Time }, time, true)
	if !ok {
		return deflt
	}
	return colors[l].Color.Lerp(colors[r].Color, blend)
}

// FromCurves converts a chain of cubics into waypoints, one per anchor. The
// tangent of inner waypoints is taken from the outgoing control point, which
// presumes symmetric handles as produced by bezier.Interpolate. Both ends
// become linear joints.
func FromCurves(curves []bezier.Cubic) []Waypoint {
	if len(curves) == 0 {
		return nil
	}
	w := make([]Waypoint, 0, len(curves)+1)
	for _, c := range curves {
		w = append(w, Waypoint{
			Time:     c.Start,
			Position: c.Anchor1,
			Tangent:  c.Control1.Sub(c.Anchor1),
			Joint:    Continuous,
		})
	}
	last := curves[len(curves)-1]
	w = append(w, Waypoint{
		Time:     last.End,
		Position: last.Anchor2,
		Tangent:  last.Anchor2.Sub(last.Control2),
		Joint:    Linear,
	})
	w[0].Joint = Linear
	return w
}
