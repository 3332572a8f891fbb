package bezier

import (
	"fmt"

	"github.com/npillmayer/choreo"
)

// Locate finds the segment covering a point in time and the curve parameter
// for it. Times before the first segment map to the first segment, times
// at or after the end of the chain map to the last one; the parameter is
// clamped to [0,1].
func Locate(curves []Cubic, time float64) (Cubic, float64, error) {
	if len(curves) == 0 {
		return Cubic{}, 0, ErrNoCurves
	}
	for _, c := range curves {
		if c.Contains(time) {
			return c, c.Param(time), nil
		}
	}
	c := curves[len(curves)-1]
	if time < curves[0].Start {
		c = curves[0]
	}
	return c, c.Param(time), nil
}

// Position evaluates a chain at a point in time.
func Position(curves []Cubic, time float64) (choreo.Vec3, error) {
	c, t, err := Locate(curves, time)
	if err != nil {
		return choreo.Origin, err
	}
	return c.Eval(t), nil
}

// Velocity evaluates the time derivative of a chain at a point in time.
func Velocity(curves []Cubic, time float64) (choreo.Vec3, error) {
	c, _, err := Locate(curves, time)
	if err != nil {
		return choreo.Origin, err
	}
	return c.Velocity(time), nil
}

// Span returns the start time of the first and the end time of the last
// segment.
func Span(curves []Cubic) (float64, float64) {
	if len(curves) == 0 {
		return 0, 0
	}
	return curves[0].Start, curves[len(curves)-1].End
}

// Retime assigns segment i the interval [times[i], times[i+1]). times must
// hold one entry more than curves and be non-decreasing.
func Retime(curves []Cubic, times []float64) error {
	if len(times) != len(curves)+1 {
		return fmt.Errorf("%w: %d curves need %d times, have %d", ErrInvalidTimes,
			len(curves), len(curves)+1, len(times))
	}
	for i := range curves {
		if times[i+1] < times[i] {
			return fmt.Errorf("%w: not ordered at index %d: %g > %g", ErrInvalidTimes, i, times[i], times[i+1])
		}
		curves[i].Start = times[i]
		curves[i].End = times[i+1]
	}
	return nil
}

// ClampEnds pins the outer control points of a chain to its anchors, giving
// zero velocity at take-off and at arrival.
func ClampEnds(curves []Cubic) {
	if len(curves) == 0 {
		return
	}
	curves[0].Control1 = curves[0].Anchor1
	last := len(curves) - 1
	curves[last].Control2 = curves[last].Anchor2
}
