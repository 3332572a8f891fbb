package choreo

import (
	"errors"
	"math"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
)

func TestNumericBasic(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	a := 0.000000008
	if !Is0(a) {
		t.Errorf("Expected a to be zero, is not")
	}
	if Zap(-a) != 0 {
		t.Errorf("Expected zapped a to be zero")
	}
	assert.Equal(t, 0.0, Clamp01(-2))
	assert.Equal(t, 1.0, Clamp01(7))
}

func TestVectorBasic(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	p := V(3, 2, 1)
	q := V(-3, -2, -1)
	if !p.Add(q).Equal(Origin) {
		t.Errorf("Expected p + q to be origin, is %v", p.Add(q))
	}
	assert.InDelta(t, 14.0, p.LenSq(), 1e-12)
	assert.Equal(t, V(0, 0, 1), V(1, 0, 0).Cross(V(0, 1, 0)))
	assert.Equal(t, Origin, Origin.Normalized())
	assert.InDelta(t, 1.0, p.Normalized().Len(), 1e-12)
	assert.Equal(t, V(1.5, 1, 0.5), Origin.Lerp(p, 0.5))
	assert.Equal(t, 2.0, p.Get(Y))
	assert.Equal(t, V(3, 9, 1), p.With(Y, 9))
	assert.False(t, V(math.NaN(), 0, 0).IsFinite())
}

func TestFixedPoint(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	f, err := ToFixedVec(V(1.2344, -0.0625, 0.1875))
	assert.NoError(t, err)
	// half to even: -62.5mm rounds to -62, 187.5mm rounds to 188
	assert.Equal(t, Vec3i{1234, -62, 188}, f)
	assert.InDelta(t, 1.234, f.Float().X, 1e-12)
	_, err = ToFixed(40)
	if !errors.Is(err, ErrFixedOverflow) {
		t.Errorf("expected overflow error, got %v", err)
	}
}

func TestBoxIntersect(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	b := BoxAround(Origin, V(2, 2, 2))
	enter, exit, ok := b.Intersect(V(-5, 0, 0), V(1, 0, 0))
	assert.True(t, ok)
	assert.True(t, enter.Equal(V(-1, 0, 0)), "enter = %v", enter)
	assert.True(t, exit.Equal(V(1, 0, 0)), "exit = %v", exit)
	_, _, ok = b.Intersect(V(-5, 3, 0), V(1, 0, 0))
	assert.False(t, ok)
	_, _, ok = b.Intersect(V(-5, 0, 0), V(-1, 0, 0))
	assert.False(t, ok)
	enter, _, ok = b.Intersect(Origin, V(0, 1, 0))
	assert.True(t, ok)
	assert.Equal(t, Origin, enter)
}

func TestDroneFrame(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	v := V(1, 2, 3)
	d := ToDrone(v)
	assert.Equal(t, V(3, -1, 2), d)
	assert.Equal(t, v, FromDrone(d))
	id := DroneFrame.Combine(DroneFrame.Transpose())
	for i, n := range Identity() {
		assert.InDelta(t, n, id[i], 1e-12)
	}
}

func TestColorLerp(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	c := Black.Lerp(White, 0.25)
	assert.Equal(t, Color{0.25, 0.25, 0.25}, c)
	assert.Equal(t, Color{1, 0, 0.5}, Color{3, -1, 0.5}.Clamped())
}
