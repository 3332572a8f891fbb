package choreo

import "fmt"

// === Coordinate Frames =====================================================

// Frame is a linear transformation between coordinate systems.
type Frame []float64 // a 3x3 matrix, flattened by rows

// Internal constructor. Clients implicitely use this as a starting point for
// frame combinations.
func newFrame() Frame {
	m := make([]float64, 9)
	return m
}

func (m Frame) get(row, col int) float64 {
	return m[row*3+col]
}

func (m Frame) set(row, col int, value float64) {
	m[row*3+col] = value
}

func (m Frame) row(row int) []float64 {
	return m[row*3 : (row+1)*3]
}

func (m Frame) col(col int) []float64 {
	return []float64{m[col], m[3+col], m[6+col]}
}

// Identity frame. Will transform a vector onto itself.
func Identity() Frame {
	m := newFrame()
	m.set(0, 0, 1.0)
	m.set(1, 1, 1.0)
	m.set(2, 2, 1.0)
	return m
}

// DroneFrame maps the authoring frame (x right, y up, z forward) onto the
// drone's native frame (x forward, y left, z up): (x,y,z) ↦ (z,-x,y).
var DroneFrame = Frame{
	0, 0, 1,
	-1, 0, 0,
	0, 1, 0,
}

// Debug Stringer for a frame.
func (m Frame) String() string {
	return fmt.Sprintf("[%g,%g,%g|%g,%g,%g|%g,%g,%g]",
		m[0], m[1], m[2], m[3], m[4], m[5], m[6], m[7], m[8])
}

// v1 × v2, v.n = [a,b,c]
func dotProd(vec1, vec2 []float64) float64 {
	return vec1[0]*vec2[0] + vec1[1]*vec2[1] + vec1[2]*vec2[2]
}

// Combine 2 frames to a new one: first m, then n. Returns a new frame
// without changing the argument(s).
func (m Frame) Combine(n Frame) Frame {
	o := newFrame()
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			o.set(row, col, dotProd(n.row(row), m.col(col)))
		}
	}
	return o
}

// Transpose returns the transposed matrix. For the rotation and permutation
// frames used here this is the inverse.
func (m Frame) Transpose() Frame {
	o := newFrame()
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			o.set(col, row, m.get(row, col))
		}
	}
	return o
}

// Transform a vector. The argument is unchanged and a new vector is returned.
func (m Frame) Transform(v Vec3) Vec3 {
	c := []float64{v.X, v.Y, v.Z}
	return Vec3{dotProd(m.row(0), c), dotProd(m.row(1), c), dotProd(m.row(2), c)}
}

var droneInverse = DroneFrame.Transpose()

// ToDrone converts a vector from authoring coordinates to drone coordinates.
func ToDrone(v Vec3) Vec3 {
	return DroneFrame.Transform(v)
}

// FromDrone converts a vector from drone coordinates back to authoring
// coordinates.
func FromDrone(v Vec3) Vec3 {
	return droneInverse.Transform(v)
}
