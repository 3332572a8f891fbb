package export

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/npillmayer/choreo"
	"github.com/npillmayer/choreo/keyframe"
	"github.com/npillmayer/choreo/polyn"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var v = choreo.V

func TestClassify(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	a := keyframe.NewWaypoint(0, v(0, 0, 0))
	b := keyframe.NewWaypoint(1, v(1, 0, 0.0005))
	assert.Equal(t, Linear, Classify(a, b, choreo.X))
	assert.Equal(t, Constant, Classify(a, b, choreo.Y))
	assert.Equal(t, Constant, Classify(a, b, choreo.Z)) // below epsilon
	b.Joint = keyframe.Continuous
	assert.Equal(t, Cubic, Classify(a, b, choreo.X)) // default tangent points along x
	assert.Equal(t, Constant, Classify(a, b, choreo.Y))
	a.Tangent = v(0, 0, 1) // ignored on a linear joint
	assert.Equal(t, Constant, Classify(a, b, choreo.Z))
}

func TestHeader(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	h := header(Constant, Cubic, Linear, Constant)
	assert.Equal(t, byte(0x24), h)
	yaw, axes := unpackHeader(h)
	assert.Equal(t, Constant, yaw)
	assert.Equal(t, [3]Degree{Constant, Linear, Cubic}, axes)
	assert.Equal(t, "Cubic", Cubic.String())
}

func TestEncodeLine(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	w := []keyframe.Waypoint{
		keyframe.NewWaypoint(0, v(0, 0, 0)),
		keyframe.NewWaypoint(1, v(1, 0, 0)),
	}
	data, err := EncodeTrajectory(w)
	require.NoError(t, err)
	// authoring x is drone -y
	want := []byte{
		0, 0, 0, 0, 0, 0, 0, 0,
		0x04,
		0xE8, 0x03,
		0x18, 0xFC,
	}
	assert.Equal(t, want, data)
	traj, err := DecodeTrajectory(data)
	require.NoError(t, err)
	require.Len(t, traj.Segments, 1)
	assert.Equal(t, 1.0, traj.Segments[0].Duration)
	assert.Equal(t, [3]Degree{Constant, Linear, Constant}, traj.Segments[0].Degrees)
	assert.Equal(t, v(0, -1, 0), traj.Segments[0].Points[3])
}

func TestTrajectoryRoundTrip(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	track := keyframe.NewTrack("cf").
		Linear(0, v(0, 0.5, 0)).
		Smooth(2, v(1, 1.5, -0.25), v(0.3, 0.2, 0.1)).
		Smooth(3.5, v(2.2, 1, 0.75), v(0.2, 0, -0.4)).
		Linear(5, v(2, 0.5, 1)).
		End()
	data, err := EncodeTrajectory(track.Waypoints)
	require.NoError(t, err)
	traj, err := DecodeTrajectory(data)
	require.NoError(t, err)
	assert.True(t, choreo.FromDrone(traj.Start).Near(v(0, 0.5, 0), 1e-9))
	want := keyframe.Curves(track.Waypoints)
	got := traj.Curves(0)
	require.Len(t, got, len(want))
	for i := range want {
		for j, p := range want[i].Points() {
			q := got[i].Points()[j]
			assert.True(t, p.Near(q, 1e-3), "segment %d point %d: %v ≠ %v", i, j, p, q)
		}
		assert.InDelta(t, want[i].Start, got[i].Start, 1e-9)
		assert.InDelta(t, want[i].End, got[i].End, 1e-9)
	}
}

func TestTrajectorySubMillimetreDrift(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	var waypoints []keyframe.Waypoint
	for k := 0; k <= 10; k++ {
		waypoints = append(waypoints, keyframe.NewWaypoint(float64(k), v(0.0009*float64(k), 0, 0)))
	}
	data, err := EncodeTrajectory(waypoints)
	require.NoError(t, err)
	traj, err := DecodeTrajectory(data)
	require.NoError(t, err)
	moved := 0
	for _, s := range traj.Segments {
		if s.Degrees[1] != Constant {
			moved++
		}
	}
	assert.Greater(t, moved, 0)
	curves := traj.Curves(0)
	require.Len(t, curves, 10)
	assert.InDelta(t, 0.009, curves[9].Anchor2.X, 1e-3)
	assert.InDelta(t, 0.0, curves[9].Anchor2.Y, 1e-9)
}

func TestEncodeTrajectoryErrors(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	_, err := EncodeTrajectory(nil)
	assert.True(t, errors.Is(err, ErrNoWaypoints))
	data, err := EncodeTrajectory([]keyframe.Waypoint{keyframe.NewWaypoint(3, v(1, 2, 3))})
	require.NoError(t, err)
	assert.Len(t, data, 8)
	long := []keyframe.Waypoint{keyframe.NewWaypoint(0, v(0, 0, 0)), keyframe.NewWaypoint(40, v(1, 0, 0))}
	_, err = EncodeTrajectory(long)
	assert.True(t, errors.Is(err, ErrDurationRange))
	far := []keyframe.Waypoint{keyframe.NewWaypoint(0, v(0, 0, 0)), keyframe.NewWaypoint(1, v(40, 0, 0))}
	_, err = EncodeTrajectory(far)
	assert.True(t, errors.Is(err, choreo.ErrFixedOverflow))
	_, err = DecodeTrajectory([]byte{1, 2, 3})
	assert.True(t, errors.Is(err, ErrMalformed))
	line, _ := EncodeTrajectory([]keyframe.Waypoint{keyframe.NewWaypoint(0, v(0, 0, 0)), keyframe.NewWaypoint(1, v(1, 0, 0))})
	_, err = DecodeTrajectory(line[:len(line)-1])
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestRGB565(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	assert.Equal(t, uint16(0xFFFF), PackRGB565(choreo.White))
	assert.Equal(t, uint16(0), PackRGB565(choreo.Black))
	assert.Equal(t, uint16(0xF800), PackRGB565(choreo.Color{R: 1}))
	assert.Equal(t, uint16(0x07E0), PackRGB565(choreo.Color{G: 1}))
	assert.Equal(t, uint16(0x001F), PackRGB565(choreo.Color{B: 1}))
	assert.Equal(t, choreo.Color{R: 1, B: 1}, UnpackRGB565(0xF81F))
	within := func(c choreo.Color) {
		u := UnpackRGB565(PackRGB565(c))
		assert.LessOrEqual(t, math.Abs(u.R-c.R), 1.0/31, "red of %v", c)
		assert.LessOrEqual(t, math.Abs(u.G-c.G), 1.0/63, "green of %v", c)
		assert.LessOrEqual(t, math.Abs(u.B-c.B), 1.0/31, "blue of %v", c)
	}
	for i := 0; i <= 1000; i++ {
		g := float64(i) / 1000
		within(choreo.Color{R: g, G: g, B: g})
	}
	for r := 0; r <= 20; r++ {
		for g := 0; g <= 20; g++ {
			for b := 0; b <= 20; b++ {
				within(choreo.Color{R: float64(r) / 20, G: float64(g) / 20, B: float64(b) / 20})
			}
		}
	}
}

func TestColorRoundTrip(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	keys := []keyframe.ColorKeyframe{
		{Time: 0, Color: choreo.Color{R: 1}},
		{Time: 2.5, Color: choreo.Color{B: 1}},
	}
	data, err := EncodeColors(keys)
	require.NoError(t, err)
	want := []byte{
		0x00, 0x01, 0xF8, 0x00,
		0x00, 0xFA, 0x00, 0x1F,
		0x00, 0x00, 0x00, 0x00,
	}
	assert.Equal(t, want, data)
	back, err := DecodeColors(data)
	require.NoError(t, err)
	assert.Equal(t, keys, back)
}

func TestColorErrors(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	_, err := EncodeColors(nil)
	assert.True(t, errors.Is(err, ErrNoKeyframes))
	_, err = EncodeColors([]keyframe.ColorKeyframe{{Time: 0, Color: choreo.White}, {Time: 700, Color: choreo.White}})
	assert.True(t, errors.Is(err, ErrDurationRange))
	// gaps are rejected at the 16 bit boundary, not wrapped
	data, err := EncodeColors([]keyframe.ColorKeyframe{{Time: 0, Color: choreo.White}, {Time: 655, Color: choreo.White}})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xDC}, data[4:6])
	_, err = EncodeColors([]keyframe.ColorKeyframe{{Time: 0, Color: choreo.White}, {Time: 655.36, Color: choreo.White}})
	assert.True(t, errors.Is(err, ErrDurationRange))
	_, err = EncodeColors([]keyframe.ColorKeyframe{{Time: 1, Color: choreo.White}, {Time: 0.5, Color: choreo.White}})
	assert.True(t, errors.Is(err, ErrDurationRange))
	_, err = EncodeColors([]keyframe.ColorKeyframe{{Time: 0, Color: choreo.White}, {Time: 0, Color: choreo.Black}})
	assert.True(t, errors.Is(err, ErrDurationRange))
	_, err = DecodeColors([]byte{0, 1, 0xFF, 0xFF})
	assert.True(t, errors.Is(err, ErrMalformed))
	_, err = DecodeColors([]byte{0, 1, 0xFF, 0xFF, 0, 0, 0, 0, 7})
	assert.True(t, errors.Is(err, ErrMalformed))
}

// firmware flattens a cubic given in the authoring frame
func firmware(t *testing.T, pts []choreo.Vec3, duration float64) []float64 {
	data := []float64{duration}
	for _, axis := range choreo.Axes {
		ctrl := make([]float64, len(pts))
		for i, p := range pts {
			ctrl[i] = choreo.ToDrone(p).Get(axis)
		}
		c, err := polyn.BezierToPower(ctrl)
		require.NoError(t, err)
		c, err = polyn.Scale(c, duration)
		require.NoError(t, err)
		data = append(data, c...)
	}
	return append(data, make([]float64, len(pts))...) // yaw
}

func TestImportSegment(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	pts := []choreo.Vec3{v(0, 1, 0), v(0.5, 1.5, -0.5), v(1, 1.25, 0.25), v(2, 1, 1)}
	seg, err := ImportSegment(firmware(t, pts, 2))
	require.NoError(t, err)
	assert.Equal(t, 3, seg.Degree)
	assert.Equal(t, 2.0, seg.Duration)
	for i, p := range seg.Points() {
		assert.True(t, p.Near(pts[i], 1e-9), "control %d: %v ≠ %v", i, p, pts[i])
	}
	c, ok := seg.Cubic(1)
	require.True(t, ok)
	assert.Equal(t, 3.0, c.End)
	assert.True(t, c.Eval(0.3).Near(seg.Eval(0.3), 1e-9))
}

func TestImportElevation(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	seg, err := ImportSegment(firmware(t, []choreo.Vec3{v(0, 0, 0), v(3, 0, 0)}, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, seg.Degree)
	c, ok := seg.Cubic(0)
	require.True(t, ok)
	assert.True(t, c.Control1.Near(v(1, 0, 0), 1e-9), "C1 = %v", c.Control1)
	assert.True(t, c.Control2.Near(v(2, 0, 0), 1e-9), "C2 = %v", c.Control2)
	pts := make([]choreo.Vec3, 6)
	for i := range pts {
		pts[i] = v(float64(i), 0, 0)
	}
	seg, err = ImportSegment(firmware(t, pts, 1))
	require.NoError(t, err)
	_, ok = seg.Cubic(0)
	assert.False(t, ok)
}

func TestImportErrors(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	_, err := ImportSegment([]float64{1, 2, 3})
	assert.True(t, errors.Is(err, ErrMalformed))
	_, err = ImportSegment([]float64{0, 1, 1, 1, 1})
	assert.True(t, errors.Is(err, polyn.ErrZeroDuration))
}

func TestReadImport(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	doc := `{"sequences": [
		{"segments": [{"data": [1, 0, 1, 0, 0, 0, 0, 0, 0]}, {"data": [2, 1, 0, 0, 0, 0, 0, 0, 0]}]},
		{"segments": []}
	]}`
	seqs, err := ReadImport(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, seqs, 2)
	require.Len(t, seqs[0], 2)
	assert.Empty(t, seqs[1])
	// drone x moves from 0 to 1, which is authoring z
	assert.True(t, seqs[0][0].Eval(1).Near(v(0, 0, 1), 1e-9))
	_, err = ReadImport(strings.NewReader(`{"sequences": [{"segments": [{"data": [1, 2]}]}]}`))
	assert.True(t, errors.Is(err, ErrMalformed))
}
