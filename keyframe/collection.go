package keyframe

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/npillmayer/choreo"
)

// Collection is the set of tracks making up a show.
type Collection struct {
	DroneCount int
	Length     float64
	Tracks     []*Track
}

// NewCollection creates a collection of tracks. Drone count and length are
// derived from the tracks.
func NewCollection(tracks ...*Track) *Collection {
	c := &Collection{Tracks: tracks, DroneCount: len(tracks)}
	for _, t := range tracks {
		c.Length = math.Max(c.Length, t.Length())
	}
	return c
}

// JSON layout of a sequence collection, as written by the show editor.

type jsonVec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type jsonColor struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

type jsonWaypoint struct {
	Time      float64
	JointType JointType
	Position  jsonVec
	Tangent   jsonVec
}

type jsonColorKeyframe struct {
	Time       float64
	LightColor jsonColor
}

type jsonTrack struct {
	Name           string
	Length         float64
	ColorKeyframes []jsonColorKeyframe
	Waypoints      []jsonWaypoint
}

type jsonCollection struct {
	DroneCount int
	Length     float64
	Tracks     []jsonTrack
}

func toVec(v jsonVec) choreo.Vec3 {
	return choreo.V(v.X, v.Y, v.Z)
}

func fromVec(v choreo.Vec3) jsonVec {
	return jsonVec{v.X, v.Y, v.Z}
}

// ReadCollection decodes a sequence collection. Every track is finished
// with End() and validated.
func ReadCollection(r io.Reader) (*Collection, error) {
	var jc jsonCollection
	if err := json.NewDecoder(r).Decode(&jc); err != nil {
		return nil, fmt.Errorf("decoding sequence collection: %w", err)
	}
	c := &Collection{DroneCount: jc.DroneCount, Length: jc.Length}
	for _, jt := range jc.Tracks {
		t := NewTrack(jt.Name)
		for _, w := range jt.Waypoints {
			t.Add(Waypoint{
				Time:     w.Time,
				Position: toVec(w.Position),
				Tangent:  toVec(w.Tangent),
				Joint:    w.JointType,
			})
		}
		for _, k := range jt.ColorKeyframes {
			t.Light(k.Time, choreo.Color{R: k.LightColor.R, G: k.LightColor.G, B: k.LightColor.B})
		}
		if err := t.End().Validate(); err != nil {
			return nil, fmt.Errorf("track %q: %w", jt.Name, err)
		}
		c.Tracks = append(c.Tracks, t)
	}
	if c.DroneCount != len(c.Tracks) {
		tracer().Infof("collection claims %d drones, has %d tracks", c.DroneCount, len(c.Tracks))
		c.DroneCount = len(c.Tracks)
	}
	tracer().Debugf("read %d tracks, length %g", len(c.Tracks), c.Length)
	return c, nil
}

// Write encodes the collection as indented JSON.
func (c *Collection) Write(w io.Writer) error {
	jc := jsonCollection{DroneCount: c.DroneCount, Length: c.Length, Tracks: []jsonTrack{}}
	for _, t := range c.Tracks {
		jt := jsonTrack{
			Name:           t.Name,
			Length:         t.Length(),
			ColorKeyframes: []jsonColorKeyframe{},
			Waypoints:      []jsonWaypoint{},
		}
		for _, k := range t.Colors {
			jt.ColorKeyframes = append(jt.ColorKeyframes, jsonColorKeyframe{
				Time:       k.Time,
				LightColor: jsonColor{k.Color.R, k.Color.G, k.Color.B, 1},
			})
		}
		for _, p := range t.Waypoints {
			jt.Waypoints = append(jt.Waypoints, jsonWaypoint{
				Time:      p.Time,
				JointType: p.Joint,
				Position:  fromVec(p.Position),
				Tangent:   fromVec(p.Tangent),
			})
		}
		jc.Tracks = append(jc.Tracks, jt)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(jc)
}
