package keyframe

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/choreo"
	"github.com/npillmayer/choreo/bezier"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var v = choreo.V

func testtrack() *Track {
	return NewTrack("cf1").
		Linear(0, v(0, 0, 0)).
		Smooth(2, v(1, 1, 0), v(0.5, 0, 0)).
		Linear(4, v(2, 0, 0)).
		Light(0, choreo.Color{R: 1}).
		Light(4, choreo.Color{B: 1}).
		End()
}

func TestBracket(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	times := []float64{1, 2, 4}
	at := func(i int) float64 { return times[i] }
	l, r, b, ok := Bracket(3, at, 3, false)
	assert.True(t, ok)
	assert.Equal(t, []int{1, 2}, []int{l, r})
	assert.Equal(t, 0.5, b)
	l, r, b, ok = Bracket(3, at, 1, false)
	assert.True(t, ok)
	assert.Equal(t, []int{0, 1}, []int{l, r})
	assert.Equal(t, 0.0, b)
	_, _, _, ok = Bracket(3, at, 0, false)
	assert.False(t, ok)
	l, r, b, ok = Bracket(3, at, 0, true)
	assert.True(t, ok)
	assert.Equal(t, []int{0, 0}, []int{l, r})
	assert.Equal(t, 0.0, b)
	l, r, _, ok = Bracket(3, at, 4, true) // end time is not inside [2,4)
	assert.True(t, ok)
	assert.Equal(t, []int{2, 2}, []int{l, r})
	_, _, _, ok = Bracket(0, at, 1, true)
	assert.False(t, ok)
	l, r, b, ok = Bracket(1, at, 17, false)
	assert.True(t, ok)
	assert.Equal(t, []int{0, 0}, []int{l, r})
	assert.Equal(t, 0.0, b)
}

func TestBuilderEnd(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	track := NewTrack("x").
		Smooth(3, v(3, 0, 0), v(1, 0, 0)).
		Smooth(1, v(1, 0, 0), v(1, 0, 0)).
		Smooth(2, v(2, 0, 0), v(1, 0, 0)).
		End()
	require.Len(t, track.Waypoints, 3)
	assert.Equal(t, 1.0, track.Waypoints[0].Time)
	assert.Equal(t, 3.0, track.Waypoints[2].Time)
	assert.Equal(t, Linear, track.Waypoints[0].Joint)
	assert.Equal(t, Continuous, track.Waypoints[1].Joint)
	assert.Equal(t, Linear, track.Waypoints[2].Joint)
	assert.NoError(t, track.Validate())
	assert.Equal(t, 3.0, track.Length())
}

func TestValidate(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	assert.True(t, errors.Is(NewTrack("e").Validate(), ErrEmptyTrack))
	dup := NewTrack("d").Linear(1, v(0, 0, 0)).Linear(1, v(1, 0, 0)).End()
	assert.True(t, errors.Is(dup.Validate(), ErrNonMonotonicTime))
	nan := NewTrack("n").Linear(0, v(math.NaN(), 0, 0))
	assert.True(t, errors.Is(nan.Validate(), ErrInvalidValue))
	col := NewTrack("c").Linear(0, v(0, 0, 0)).Light(1, choreo.White).Light(1, choreo.Black)
	assert.True(t, errors.Is(col.Validate(), ErrDuplicateTime))
}

func TestHandles(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	w := NewWaypoint(0, v(1, 1, 1))
	assert.Equal(t, w.Position, w.OutHandle())
	assert.Equal(t, w.Position, w.InHandle())
	w.Joint = Continuous
	assert.Equal(t, v(1.25, 1, 1), w.OutHandle())
	assert.Equal(t, v(0.75, 1, 1), w.InHandle())
}

func TestPosition(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	track := testtrack()
	w := track.Waypoints
	assert.Equal(t, w[0].Position, Position(w, -1, choreo.Origin))
	assert.Equal(t, w[2].Position, Position(w, 99, choreo.Origin))
	assert.Equal(t, w[1].Position, Position(w, 2, choreo.Origin))
	assert.Equal(t, v(7, 7, 7), Position(nil, 1, v(7, 7, 7)))
	line := []Waypoint{NewWaypoint(0, v(0, 0, 0)), NewWaypoint(2, v(2, 0, 0))}
	assert.True(t, Position(line, 1, choreo.Origin).Equal(v(1, 0, 0)))
	// the smooth waypoint's in-handle shapes the first segment
	seg := Segment(w[0], w[1])
	assert.Equal(t, v(0.5, 1, 0), seg.Control2)
	assert.Equal(t, seg.Eval(0.25), Position(w, 0.5, choreo.Origin))
}

func TestTangent(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	line := []Waypoint{NewWaypoint(0, v(0, 0, 0)), NewWaypoint(2, v(2, 0, 0))}
	// at rest on a linear joint the derivative vanishes
	assert.True(t, Tangent(line, 0, false, false).Equal(choreo.Origin))
	tan := Tangent(line, 0, true, true)
	assert.True(t, tan.Equal(v(1, 0, 0)), "tangent = %v", tan)
	tan = Tangent(line, 1, true, false)
	assert.True(t, tan.Equal(v(1, 0, 0)), "tangent = %v", tan)
	assert.True(t, Tangent(line, 5, false, false).Equal(choreo.Origin))
}

func TestColor(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	track := testtrack()
	c := Color(track.Colors, 1, choreo.Black)
	assert.Equal(t, choreo.Color{R: 0.75, B: 0.25}, c)
	assert.Equal(t, choreo.Color{B: 1}, Color(track.Colors, 10, choreo.Black))
	assert.Equal(t, choreo.White, Color(nil, 10, choreo.White))
}

func TestMarkers(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	markers := []Marker{
		ColorAt(ColorKeyframe{Time: 2, Color: choreo.White}),
		WaypointAt(NewWaypoint(1, v(1, 0, 0))),
		WaypointAt(NewWaypoint(0, v(0, 0, 0))),
		ColorAt(ColorKeyframe{Time: 0, Color: choreo.Black}),
	}
	assert.Equal(t, 2.0, markers[0].Time())
	track := FromMarkers("m", markers)
	require.Len(t, track.Waypoints, 2)
	require.Len(t, track.Colors, 2)
	assert.Equal(t, 0.0, track.Waypoints[0].Time)
	assert.Equal(t, choreo.Black, track.Colors[0].Color)
	assert.NoError(t, track.Validate())
}

func TestFromCurves(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	curves, err := bezier.Interpolate([]choreo.Vec3{v(0, 0, 0), v(1, 2, 0), v(2, 0, 1), v(3, 1, 1)})
	require.NoError(t, err)
	bezier.ClampEnds(curves)
	w := FromCurves(curves)
	require.Len(t, w, 4)
	assert.Equal(t, Linear, w[0].Joint)
	assert.Equal(t, Continuous, w[1].Joint)
	assert.Equal(t, Linear, w[3].Joint)
	back := Curves(w)
	require.Len(t, back, len(curves))
	for i := range curves {
		for j, p := range curves[i].Points() {
			q := back[i].Points()[j]
			assert.True(t, p.Near(q, 1e-9), "segment %d point %d: %v ≠ %v", i, j, p, q)
		}
		assert.Equal(t, curves[i].Start, back[i].Start)
		assert.Equal(t, curves[i].End, back[i].End)
	}
}

func TestCollectionRoundTrip(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	coll := NewCollection(testtrack(), testtrack())
	coll.Tracks[1].Name = "cf2"
	assert.Equal(t, 2, coll.DroneCount)
	assert.Equal(t, 4.0, coll.Length)
	var buf bytes.Buffer
	require.NoError(t, coll.Write(&buf))
	assert.Contains(t, buf.String(), `"LightColor"`)
	back, err := ReadCollection(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(coll, back); diff != "" {
		t.Errorf("collection changed in round trip (-want +got):\n%s", diff)
	}
}

func TestReadEditorJSON(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	doc := `{
    "DroneCount": 1,
    "Length": 3.0,
    "Tracks": [{
        "Name": "Crazyflie 1",
        "Length": 3.0,
        "ColorKeyframes": [{"Time": 0.0, "LightColor": {"r": 1.0, "g": 0.5, "b": 0.0, "a": 1.0}}],
        "Waypoints": [
            {"Time": 3.0, "JointType": 0, "Position": {"x": 1.0, "y": 1.0, "z": 0.0}, "Tangent": {"x": 0.25, "y": 0.0, "z": 0.0}},
            {"Time": 0.0, "JointType": 1, "Position": {"x": 0.0, "y": 0.0, "z": 0.0}, "Tangent": {"x": 0.25, "y": 0.0, "z": 0.0}}
        ]
    }]
}`
	coll, err := ReadCollection(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, coll.Tracks, 1)
	track := coll.Tracks[0]
	assert.Equal(t, "Crazyflie 1", track.Name)
	assert.Equal(t, 0.0, track.Waypoints[0].Time)
	assert.Equal(t, Linear, track.Waypoints[0].Joint) // ends become linear
	assert.Equal(t, choreo.Color{R: 1, G: 0.5}, track.Colors[0].Color)
	_, err = ReadCollection(strings.NewReader(`{"Tracks": [{"Name": "empty"}]}`))
	assert.True(t, errors.Is(err, ErrEmptyTrack))
}
