package bezier

import (
	"fmt"
	"math"

	"github.com/npillmayer/choreo"
)

// Approximate finds the cubic segment from the first to the last of points
// that minimizes the sum of squared distances to the points, sampled at
// uniform parameters i/(n-1). Only the two control points are free.
//
// The normal equations are singular if fewer than two interior samples
// contribute, which is always the case for three points or less. Then
// ErrDegenerateFit is returned.
func Approximate(points []choreo.Vec3, start, end float64) (Cubic, error) {
	if err := validatePoints(points, 2); err != nil {
		return Cubic{}, err
	}
	n := len(points)
	curve := Cubic{Anchor1: points[0], Anchor2: points[n-1], Start: start, End: end}
	var a1, a2, a12 float64
	var c1, c2 choreo.Vec3
	for i, p := range points {
		t := float64(i) / float64(n-1)
		u := 1 - t
		a1 += t * t * u * u * u * u
		a2 += t * t * t * t * u * u
		a12 += t * t * t * u * u * u
		q := p.Sub(curve.Anchor1.Scaled(u * u * u)).Sub(curve.Anchor2.Scaled(t * t * t))
		c1 = c1.Add(q.Scaled(3 * t * u * u))
		c2 = c2.Add(q.Scaled(3 * t * t * u))
	}
	a1 *= 9
	a2 *= 9
	a12 *= 9
	det := a1*a2 - a12*a12
	if math.Abs(det) <= choreo.Epsilon*math.Max(1, a1*a2) {
		return curve, fmt.Errorf("%w: %d points", ErrDegenerateFit, n)
	}
	curve.Control1 = c1.Scaled(a2).Sub(c2.Scaled(a12)).Scaled(1 / det)
	curve.Control2 = c2.Scaled(a1).Sub(c1.Scaled(a12)).Scaled(1 / det)
	return curve, nil
}

// Fit approximates points by a chain of cubic segments covering [start,end).
// A single segment is accepted if its summed squared error does not exceed
// threshold. Otherwise the points are split at the worst fitting point,
// which both halves share, and each half is fitted recursively. The split
// time is proportional to the split index.
//
// Where the least-squares system is singular the chord from the first to
// the last point is used instead.
func Fit(points []choreo.Vec3, threshold, start, end float64) ([]Cubic, error) {
	if err := validatePoints(points, 2); err != nil {
		return nil, err
	}
	if threshold < 0 || math.IsNaN(threshold) {
		return nil, fmt.Errorf("%w: %g", ErrInvalidThreshold, threshold)
	}
	return fit(points, threshold, start, end), nil
}

func fit(points []choreo.Vec3, threshold, start, end float64) []Cubic {
	n := len(points)
	curve, err := Approximate(points, start, end)
	if err != nil {
		curve = chord(points[0], points[n-1], start, end)
	}
	sum, worst := fitError(curve, points)
	if sum <= threshold || n == 2 {
		return []Cubic{curve}
	}
	if worst < 1 {
		worst = 1
	} else if worst > n-2 {
		worst = n - 2
	}
	mid := start + (end-start)*float64(worst)/float64(n-1)
	tracer().Debugf("fit error %g > %g, split at %d of %d", sum, threshold, worst, n)
	curves := fit(points[:worst+1], threshold, start, mid)
	return append(curves, fit(points[worst:], threshold, mid, end)...)
}

// chord is a straight segment with controls at one and two thirds, i.e.
// parametrized by arc length.
func chord(a, b choreo.Vec3, start, end float64) Cubic {
	return Cubic{
		Anchor1:  a,
		Control1: a.Lerp(b, 1.0/3),
		Control2: a.Lerp(b, 2.0/3),
		Anchor2:  b,
		Start:    start,
		End:      end,
	}
}

// fitError returns the sum of squared distances and the index of the point
// with maximum error.
func fitError(c Cubic, points []choreo.Vec3) (float64, int) {
	n := len(points)
	sum, max, at := 0.0, -1.0, 0
	for i, p := range points {
		e := p.Sub(c.Eval(float64(i) / float64(n-1))).LenSq()
		sum += e
		if e > max {
			max, at = e, i
		}
	}
	return sum, at
}
