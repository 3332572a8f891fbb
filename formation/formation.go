/*
Package formation generates target formations for a swarm.

Generators work in unit space: shapes fit into the cube [-0.5, 0.5]³ and,
where flat, lie in the horizontal plane y = 0. Place maps unit space
formations into the world.

	targets := formation.Place(formation.Circle(8, 1), choreo.V(0, 1.5, 0), choreo.V(2, 2, 2))

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package formation

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/npillmayer/choreo"
)

var ErrInvalidShape = errors.New("invalid formation")

// Line places n points evenly on the x-axis, from -0.5 to 0.5. A single
// point sits at the origin.
func Line(n int) []choreo.Vec3 {
	points := make([]choreo.Vec3, 0, max(n, 0))
	for i := 0; i < n; i++ {
		points = append(points, choreo.V(division(n, 0, i)-0.5, 0, 0))
	}
	return points
}

// Circle places the origin plus innerRings+1 concentric rings of
// spotsPerRing points each. The outer ring has diameter 1, inner rings
// shrink evenly towards the centre.
func Circle(spotsPerRing, innerRings int) []choreo.Vec3 {
	if spotsPerRing < 1 || innerRings < 0 {
		return nil
	}
	points := []choreo.Vec3{{}}
	interval := 1 / float64(innerRings+1)
	for i := 0; i <= innerRings; i++ {
		r := 0.5 * (1 - float64(i)*interval)
		for j := 0; j < spotsPerRing; j++ {
			a := 2 * math.Pi * float64(j) / float64(spotsPerRing)
			points = append(points, choreo.V(r*math.Cos(a), 0, r*math.Sin(a)).Zap())
		}
	}
	return points
}

// Rectangle places an nx × nz grid of points in the unit square. padding is
// the margin around the grid, in grid intervals.
func Rectangle(nx, nz int, padding float64) []choreo.Vec3 {
	if nx < 1 || nz < 1 {
		return nil
	}
	points := make([]choreo.Vec3, 0, nx*nz)
	for i := 0; i < nx; i++ {
		x := division(nx, padding, i) - 0.5
		for j := 0; j < nz; j++ {
			points = append(points, choreo.V(x, 0, division(nz, padding, j)-0.5))
		}
	}
	return points
}

// Cube places an nx × ny × nz lattice of points in the unit cube.
func Cube(nx, ny, nz int, padding float64) []choreo.Vec3 {
	if nx < 1 || ny < 1 || nz < 1 {
		return nil
	}
	points := make([]choreo.Vec3, 0, nx*ny*nz)
	for i := 0; i < nx; i++ {
		x := division(nx, padding, i) - 0.5
		for j := 0; j < nz; j++ {
			z := division(nz, padding, j) - 0.5
			for k := 0; k < ny; k++ {
				points = append(points, choreo.V(x, division(ny, padding, k)-0.5, z))
			}
		}
	}
	return points
}

// Sphere places the origin plus innerSpheres+1 concentric spheres. Each
// sphere carries latitudes rings, the poles excluded, of 2·longitudes
// points each.
func Sphere(longitudes, latitudes, innerSpheres int) []choreo.Vec3 {
	if longitudes < 1 || latitudes < 1 || innerSpheres < 0 {
		return nil
	}
	points := []choreo.Vec3{{}}
	interval := 1 / float64(innerSpheres+1)
	for s := 0; s <= innerSpheres; s++ {
		size := 1 - float64(s)*interval
		for i := 1; i <= latitudes; i++ {
			theta := math.Pi * float64(i) / float64(latitudes+1)
			y := 0.5 * math.Cos(theta) * size
			r := 0.5 * math.Sin(theta) * size
			for j := 0; j < 2*longitudes; j++ {
				a := math.Pi * float64(j) / float64(longitudes)
				points = append(points, choreo.V(r*math.Cos(a), y, r*math.Sin(a)).Zap())
			}
		}
	}
	return points
}

// division returns the position of point i out of n on [0,1], keeping a
// margin of padding/2 intervals at both ends.
func division(n int, padding float64, i int) float64 {
	if n == 1 {
		return 0.5
	}
	interval := 1 / (float64(n-1) + padding)
	return (padding/2 + float64(i)) * interval
}

// Place scales unit space points by size, per axis, and moves them to
// center.
func Place(points []choreo.Vec3, center, size choreo.Vec3) []choreo.Vec3 {
	placed := make([]choreo.Vec3, len(points))
	for i, p := range points {
		placed[i] = choreo.V(p.X*size.X, p.Y*size.Y, p.Z*size.Z).Add(center)
	}
	return placed
}

// Spec describes a formation in configuration files. Which counts are used
// depends on the shape:
//
//	line       Count
//	circle     Count (spots per ring), Inner
//	rectangle  Rows (x, z), Padding
//	cube       Rows (x, y, z), Padding
//	sphere     Longitudes, Latitudes, Inner
type Spec struct {
	Shape      string     `json:"shape"`
	Count      int        `json:"count,omitempty"`
	Inner      int        `json:"inner,omitempty"`
	Rows       []int      `json:"rows,omitempty"`
	Padding    float64    `json:"padding,omitempty"`
	Longitudes int        `json:"longitudes,omitempty"`
	Latitudes  int        `json:"latitudes,omitempty"`
	Center     [3]float64 `json:"center"`
	Size       [3]float64 `json:"size"`
}

// Points generates the formation in world space.
func (s Spec) Points() ([]choreo.Vec3, error) {
	var unit []choreo.Vec3
	rows := func(n int) error {
		if len(s.Rows) != n {
			return fmt.Errorf("%w: %s needs %d row counts, have %d", ErrInvalidShape, s.Shape, n, len(s.Rows))
		}
		return nil
	}
	switch strings.ToLower(s.Shape) {
	case "line":
		unit = Line(s.Count)
	case "circle":
		unit = Circle(s.Count, s.Inner)
	case "rectangle":
		if err := rows(2); err != nil {
			return nil, err
		}
		unit = Rectangle(s.Rows[0], s.Rows[1], s.Padding)
	case "cube":
		if err := rows(3); err != nil {
			return nil, err
		}
		unit = Cube(s.Rows[0], s.Rows[1], s.Rows[2], s.Padding)
	case "sphere":
		unit = Sphere(s.Longitudes, s.Latitudes, s.Inner)
	default:
		return nil, fmt.Errorf("%w: unknown shape %q", ErrInvalidShape, s.Shape)
	}
	if len(unit) == 0 {
		return nil, fmt.Errorf("%w: %s yields no points", ErrInvalidShape, s.Shape)
	}
	if s.Padding < 0 {
		return nil, fmt.Errorf("%w: negative padding %g", ErrInvalidShape, s.Padding)
	}
	size := choreo.V(s.Size[0], s.Size[1], s.Size[2])
	if size == (choreo.Vec3{}) {
		size = choreo.V(1, 1, 1)
	}
	return Place(unit, choreo.V(s.Center[0], s.Center[1], s.Center[2]), size), nil
}
