package keyframe

import (
	"fmt"
	"math"
	"sort"

	"github.com/npillmayer/choreo"
)

// Track is the keyframe sequence of one drone. Waypoints and colors are kept
// in separate, time ordered sequences.
type Track struct {
	Name      string
	Waypoints []Waypoint
	Colors    []ColorKeyframe
}

// NewTrack creates an empty track, to be extended by subsequent builder
// calls. The following example builds a track which takes off, swings
// through a smooth waypoint and turns its light from red to blue:
//
//	track := NewTrack("cf1").
//		Linear(0, choreo.V(0, 0, 0)).
//		Smooth(2, choreo.V(1, 1, 0), choreo.V(0.5, 0, 0)).
//		Linear(4, choreo.V(2, 0, 0)).
//		Light(0, choreo.Color{R: 1}).Light(4, choreo.Color{B: 1}).
//		End()
//
// Calling End() orders the keyframes and makes both path ends linear.
func NewTrack(name string) *Track {
	return &Track{Name: name}
}

// Linear adds a waypoint with a linear joint. Part of builder functionality.
func (t *Track) Linear(time float64, p choreo.Vec3) *Track {
	t.Waypoints = append(t.Waypoints, NewWaypoint(time, p))
	return t
}

// Smooth adds a waypoint with a continuous joint. Part of builder functionality.
func (t *Track) Smooth(time float64, p, tangent choreo.Vec3) *Track {
	t.Waypoints = append(t.Waypoints, Waypoint{Time: time, Position: p, Tangent: tangent, Joint: Continuous})
	return t
}

// Add appends pre-built waypoints. Part of builder functionality.
func (t *Track) Add(w ...Waypoint) *Track {
	t.Waypoints = append(t.Waypoints, w...)
	return t
}

// Light adds a color keyframe. Part of builder functionality.
func (t *Track) Light(time float64, c choreo.Color) *Track {
	t.Colors = append(t.Colors, ColorKeyframe{Time: time, Color: c})
	return t
}

// End finishes a track. Part of builder functionality.
//
// Both sequences are sorted by time (stable, so keyframes at equal times keep
// their insertion order). The first and last waypoint become linear joints,
// as a drone has to be at rest there.
func (t *Track) End() *Track {
	sort.SliceStable(t.Waypoints, func(i, j int) bool {
		return t.Waypoints[i].Time < t.Waypoints[j].Time
	})
	sort.SliceStable(t.Colors, func(i, j int) bool {
		return t.Colors[i].Time < t.Colors[j].Time
	})
	if n := len(t.Waypoints); n > 0 {
		t.Waypoints[0].Joint = Linear
		t.Waypoints[n-1].Joint = Linear
	}
	return t
}

// FromMarkers splits a mixed marker stream into a finished track.
func FromMarkers(name string, markers []Marker) *Track {
	t := NewTrack(name)
	for _, m := range markers {
		switch m.Kind {
		case WaypointMarker:
			t.Add(m.Waypoint)
		case ColorMarker:
			t.Colors = append(t.Colors, m.Color)
		default:
			tracer().Errorf("track %s: skipping marker of unknown kind %d", name, m.Kind)
		}
	}
	return t.End()
}

// Validate checks if a track can be evaluated and exported: it must have at
// least one waypoint, waypoint times must be strictly increasing, color times
// must be unique, and all values must be finite.
func (t *Track) Validate() error {
	if t == nil || len(t.Waypoints) == 0 {
		return ErrEmptyTrack
	}
	for i, w := range t.Waypoints {
		if !finite(w.Time) || !w.Position.IsFinite() || !w.Tangent.IsFinite() {
			return fmt.Errorf("%w: waypoint %d of track %q", ErrInvalidValue, i, t.Name)
		}
		if i > 0 && w.Time <= t.Waypoints[i-1].Time {
			return fmt.Errorf("%w: waypoint %d at %g after %g", ErrNonMonotonicTime, i,
				w.Time, t.Waypoints[i-1].Time)
		}
	}
	for i, c := range t.Colors {
		if !finite(c.Time) || !finite(c.Color.R) || !finite(c.Color.G) || !finite(c.Color.B) {
			return fmt.Errorf("%w: color %d of track %q", ErrInvalidValue, i, t.Name)
		}
		if i > 0 && c.Time == t.Colors[i-1].Time {
			return fmt.Errorf("%w: %g", ErrDuplicateTime, c.Time)
		}
	}
	return nil
}

// Length is the time of the latest keyframe of either kind.
func (t *Track) Length() float64 {
	l := 0.0
	for _, w := range t.Waypoints {
		l = math.Max(l, w.Time)
	}
	for _, c := range t.Colors {
		l = math.Max(l, c.Time)
	}
	return l
}

func finite(n float64) bool {
	return !math.IsNaN(n) && !math.IsInf(n, 0)
}
