package bezier

import (
	"fmt"

	"github.com/npillmayer/choreo"
	"gonum.org/v1/gonum/mat"
)

// Interpolate finds a C²-continuous chain of cubic segments through all of
// points (natural cubic spline in Bezier form). Segment i covers the time
// interval [i/n, (i+1)/n) for n = len(points)-1; use Retime to map the chain
// onto other times.
//
// Two points result in a single straight segment.
func Interpolate(points []choreo.Vec3) ([]Cubic, error) {
	if err := validatePoints(points, 2); err != nil {
		return nil, err
	}
	n := len(points) - 1
	if n == 1 {
		return []Cubic{Line(points[0], points[1], 0, 1)}, nil
	}
	a, err := solveFirstControls(points)
	if err != nil {
		return nil, err
	}
	b := make([]choreo.Vec3, n)
	for i := 0; i < n-1; i++ {
		b[i] = points[i+1].Scaled(2).Sub(a[i+1])
	}
	b[n-1] = a[n-1].Add(points[n]).Scaled(0.5)
	curves := make([]Cubic, n)
	for i := range curves {
		curves[i] = Cubic{
			Anchor1:  points[i],
			Control1: a[i],
			Control2: b[i],
			Anchor2:  points[i+1],
			Start:    float64(i) / float64(n),
			End:      float64(i+1) / float64(n),
		}
	}
	return curves, nil
}

// MustInterpolate is a helper which panics on invalid points.
func MustInterpolate(points ...choreo.Vec3) []Cubic {
	curves, err := Interpolate(points)
	if err != nil {
		panic(err)
	}
	return curves
}

// solveFirstControls solves the tridiagonal system for the first control
// point of every segment, all three axes at once.
//
//	| 2 1         |       | p0 + 2p1        |
//	| 1 4 1       |       | 2(2p1 + p2)     |
//	|   ⋱ ⋱ ⋱     | ⋅ a = | ⋮               |
//	|     1 4 1   |       | 2(2p_{n-2}+p_{n-1}) |
//	|       2 7   |       | 8p_{n-1} + p_n  |
func solveFirstControls(p []choreo.Vec3) ([]choreo.Vec3, error) {
	n := len(p) - 1
	A := mat.NewDense(n, n, nil)
	B := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		if i > 0 {
			A.Set(i, i-1, 1)
		}
		A.Set(i, i, 4)
		if i < n-1 {
			A.Set(i, i+1, 1)
		}
		var r choreo.Vec3
		switch i {
		case 0:
			r = p[0].Add(p[1].Scaled(2))
		case n - 1:
			r = p[n-1].Scaled(8).Add(p[n])
		default:
			r = p[i].Scaled(2).Add(p[i+1]).Scaled(2)
		}
		for _, ax := range choreo.Axes {
			B.Set(i, int(ax), r.Get(ax))
		}
	}
	A.Set(0, 0, 2)
	A.Set(n-1, n-1, 7)
	A.Set(n-1, n-2, 2)
	var x mat.Dense
	if err := x.Solve(A, B); err != nil {
		return nil, fmt.Errorf("%w: spline system: %v", ErrDegenerateFit, err)
	}
	a := make([]choreo.Vec3, n)
	for i := range a {
		a[i] = choreo.V(x.At(i, 0), x.At(i, 1), x.At(i, 2))
	}
	tracer().Debugf("spline through %d points, first controls %v", len(p), a)
	return a, nil
}
