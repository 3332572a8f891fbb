package polyn

import (
	"fmt"

	"github.com/npillmayer/choreo"
)

// EnforceContinuity builds the control polygon of a degree 7 curve from two
// cubic control polygons q0…q3 (leading) and p4…p7 (trailing). The leading
// cubic is cut at t from its start, the trailing one at t from its end,
// using de Casteljau blending, so that the result starts at q0 with the
// direction of q0→q1 and ends at p7 with the direction of p6→p7.
func EnforceContinuity(points []choreo.Vec3, t float64) ([]choreo.Vec3, error) {
	if len(points) != 2*4 {
		return nil, fmt.Errorf("%w: need 8 control points, have %d", ErrDegree, len(points))
	}
	q := points[:4]
	p := []choreo.Vec3{points[7], points[6], points[5], points[4]}
	left := casteljauPrefix(q, t)
	right := casteljauPrefix(p, t)
	out := make([]choreo.Vec3, 0, 8)
	out = append(out, left...)
	for i := len(right) - 1; i >= 0; i-- {
		out = append(out, right[i])
	}
	return out, nil
}

// casteljauPrefix returns the control points of the sub-curve [0,t] of a
// cubic.
func casteljauPrefix(c []choreo.Vec3, t float64) []choreo.Vec3 {
	u := 1 - t
	return []choreo.Vec3{
		c[0],
		c[0].Scaled(u).Add(c[1].Scaled(t)),
		c[0].Scaled(u * u).Add(c[1].Scaled(2 * u * t)).Add(c[2].Scaled(t * t)),
		c[0].Scaled(u * u * u).Add(c[1].Scaled(3 * u * u * t)).
			Add(c[2].Scaled(3 * u * t * t)).Add(c[3].Scaled(t * t * t)),
	}
}
