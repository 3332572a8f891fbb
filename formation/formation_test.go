package formation

import (
	"errors"
	"testing"

	"github.com/npillmayer/choreo"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func near(t *testing.T, expected, actual []choreo.Vec3) {
	t.Helper()
	require.Len(t, actual, len(expected))
	for i := range expected {
		assert.True(t, expected[i].Near(actual[i], 1e-9), "point %d: expected %v, got %v", i, expected[i], actual[i])
	}
}

func TestLine(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	near(t, []choreo.Vec3{choreo.V(-0.5, 0, 0), choreo.V(0, 0, 0), choreo.V(0.5, 0, 0)}, Line(3))
	near(t, []choreo.Vec3{{}}, Line(1))
	assert.Empty(t, Line(0))
}

func TestCircle(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	near(t, []choreo.Vec3{
		{},
		choreo.V(0.5, 0, 0), choreo.V(0, 0, 0.5), choreo.V(-0.5, 0, 0), choreo.V(0, 0, -0.5),
	}, Circle(4, 0))
	points := Circle(6, 1)
	require.Len(t, points, 13)
	assert.InDelta(t, 0.5, points[1].Len(), 1e-9)
	assert.InDelta(t, 0.25, points[7].Len(), 1e-9)
	assert.Nil(t, Circle(0, 0))
}

func TestRectangleAndCube(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	near(t, []choreo.Vec3{
		choreo.V(-0.5, 0, -0.5), choreo.V(-0.5, 0, 0.5),
		choreo.V(0.5, 0, -0.5), choreo.V(0.5, 0, 0.5),
	}, Rectangle(2, 2, 0))
	padded := Rectangle(2, 1, 1)
	near(t, []choreo.Vec3{choreo.V(-0.25, 0, 0), choreo.V(0.25, 0, 0)}, padded)
	cube := Cube(2, 3, 2, 0)
	require.Len(t, cube, 12)
	for _, p := range cube {
		assert.InDelta(t, 0.5, abs(p.X), 1e-9)
		assert.InDelta(t, 0.5, abs(p.Z), 1e-9)
	}
	assert.Equal(t, choreo.V(-0.5, 0, -0.5), cube[1])
	assert.Nil(t, Cube(1, 0, 1, 0))
}

func abs(n float64) float64 {
	if n < 0 {
		return -n
	}
	return n
}

func TestSphere(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	near(t, []choreo.Vec3{
		{},
		choreo.V(0.5, 0, 0), choreo.V(0, 0, 0.5), choreo.V(-0.5, 0, 0), choreo.V(0, 0, -0.5),
	}, Sphere(2, 1, 0))
	points := Sphere(3, 4, 2)
	assert.Len(t, points, 1+3*4*6)
	for _, p := range points {
		assert.LessOrEqual(t, p.Len(), 0.5+1e-9)
		assert.Greater(t, p.Y, -0.5)
		assert.Less(t, p.Y, 0.5)
	}
	assert.Nil(t, Sphere(0, 1, 0))
}

func TestPlace(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	placed := Place(Line(2), choreo.V(1, 2, 3), choreo.V(4, 1, 1))
	near(t, []choreo.Vec3{choreo.V(-1, 2, 3), choreo.V(3, 2, 3)}, placed)
}

func TestSpec(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	points, err := Spec{Shape: "Line", Count: 2, Center: [3]float64{0, 1, 0}}.Points()
	require.NoError(t, err)
	near(t, []choreo.Vec3{choreo.V(-0.5, 1, 0), choreo.V(0.5, 1, 0)}, points)
	points, err = Spec{Shape: "cube", Rows: []int{2, 2, 2}, Size: [3]float64{2, 2, 2}}.Points()
	require.NoError(t, err)
	assert.Len(t, points, 8)
	assert.Equal(t, choreo.V(-1, -1, -1), points[0])
	for _, bad := range []Spec{
		{Shape: "torus"},
		{Shape: "rectangle", Rows: []int{2}},
		{Shape: "circle"},
		{Shape: "line", Count: 2, Padding: -1},
	} {
		_, err := bad.Points()
		assert.True(t, errors.Is(err, ErrInvalidShape), "%+v", bad)
	}
}
