package polyn

import (
	"errors"
	"math"
	"testing"

	"github.com/npillmayer/choreo"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolynomialArithmetic(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	T().SetTraceLevel(tracing.LevelInfo)
	p, err := New(1, X{1, 2}, X{2, 3}) // 1 + 2t + 3t²
	require.NoError(t, err)
	assert.Equal(t, 2, p.Degree())
	assert.InDelta(t, 6.0, p.Eval(1), 1e-12)
	assert.InDelta(t, 17.0, p.Eval(2), 1e-12)
	d := p.Derivative() // 2 + 6t
	assert.Equal(t, []float64{2, 6}, d.Coefficients(1))
	q := p.Subtract(p)
	if c, ok := q.IsConstant(); !ok || c != 0 {
		t.Errorf("expected p - p = 0, is %s", q)
	}
	r := FromCoefficients([]float64{1, 1}).Multiply(FromCoefficients([]float64{-1, 1}))
	assert.Equal(t, []float64{-1, 0, 1}, r.Coefficients(2)) // t² - 1
	assert.InDelta(t, 12.0, p.Scaled(2).Eval(1), 1e-12)
	_, err = New(0, X{0, 1})
	assert.Error(t, err)
}

func TestBinomialTable(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	assert.Equal(t, 35, Binomial(7, 3))
	assert.Equal(t, 1, Binomial(0, 0))
	assert.Equal(t, 0, Binomial(8, 1))
	assert.Equal(t, 0, Binomial(3, 4))
	m, err := Coefficients(3)
	require.NoError(t, err)
	// cubic bezier in power basis
	want := [][]float64{
		{1, 0, 0, 0},
		{-3, 3, 0, 0},
		{3, -6, 3, 0},
		{-1, 3, -3, 1},
	}
	assert.Equal(t, want, m)
}

func TestBezierPowerRoundTrip(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	for degree := 1; degree <= MaxDegree; degree++ {
		ctrl := make([]float64, degree+1)
		for i := range ctrl {
			ctrl[i] = math.Sin(float64(i+degree)) * 3
		}
		c, err := BezierToPower(ctrl)
		require.NoError(t, err)
		back, err := PowerToBezier(c)
		require.NoError(t, err)
		for i := range ctrl {
			assert.InDelta(t, ctrl[i], back[i], 1e-9, "degree %d, index %d", degree, i)
		}
	}
	_, err := PowerToBezier(make([]float64, 9))
	if !errors.Is(err, ErrDegree) {
		t.Errorf("expected degree error, got %v", err)
	}
}

func TestPowerMatchesBernstein(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	ctrl := []float64{0, 1, 3, 2}
	c, err := BezierToPower(ctrl)
	require.NoError(t, err)
	p := FromCoefficients(c)
	for _, s := range []float64{0, 0.25, 0.5, 1} {
		u := 1 - s
		b := u*u*u*ctrl[0] + 3*u*u*s*ctrl[1] + 3*u*s*s*ctrl[2] + s*s*s*ctrl[3]
		assert.InDelta(t, b, p.Eval(s), 1e-12)
	}
}

func TestScaleUnscale(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	c := []float64{1, 2, 3}
	s, err := Scale(c, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 0.75}, s)
	// p(t) over [0,1] equals s(2t) over [0,2]
	assert.InDelta(t, FromCoefficients(c).Eval(0.5), FromCoefficients(s).Eval(1), 1e-12)
	u, err := Unscale(s, 2)
	require.NoError(t, err)
	assert.Equal(t, c, u)
	_, err = Scale(c, 0)
	assert.True(t, errors.Is(err, ErrZeroDuration))
}

func TestToPolynomial(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	pts := []choreo.Vec3{choreo.V(0, 0, 0), choreo.V(1, 2, 0), choreo.V(2, 2, 0), choreo.V(3, 0, 1)}
	c, err := ToPolynomial(pts)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, FromCoefficients(c[choreo.X]).Eval(1), 1e-12)
	assert.InDelta(t, 1.0, FromCoefficients(c[choreo.Z]).Eval(1), 1e-12)
	assert.InDelta(t, 0.0, FromCoefficients(c[choreo.Y]).Eval(0), 1e-12)
}

func TestEnforceContinuity(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	pts := make([]choreo.Vec3, 8)
	for i := range pts {
		pts[i] = choreo.V(float64(i), float64(i*i), 0)
	}
	out, err := EnforceContinuity(pts, 0.5)
	require.NoError(t, err)
	require.Len(t, out, 8)
	assert.Equal(t, pts[0], out[0])
	assert.Equal(t, pts[7], out[7])
	assert.True(t, out[1].Equal(pts[0].Lerp(pts[1], 0.5)), "out[1] = %v", out[1])
	assert.True(t, out[6].Equal(pts[7].Lerp(pts[6], 0.5)), "out[6] = %v", out[6])
	// t = 1 reproduces the input polygon
	same, err := EnforceContinuity(pts, 1)
	require.NoError(t, err)
	for i := range pts {
		assert.True(t, pts[i].Equal(same[i]), "index %d: %v ≠ %v", i, pts[i], same[i])
	}
	_, err = EnforceContinuity(pts[:5], 0.5)
	assert.Error(t, err)
}
