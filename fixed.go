package choreo

import (
	"errors"
	"fmt"
	"math"
)

// ErrFixedOverflow is returned if a value does not fit into the signed 16 bit
// fixed point range of the drone wire format.
var ErrFixedOverflow = errors.New("value out of 16 bit fixed point range")

// FixedScale is the number of fixed point units per meter (millimetres).
const FixedScale = 1000

// Vec3i is a vector in millimetres.
type Vec3i struct {
	X, Y, Z int16
}

// ToFixed converts a value in meters to millimetres. Rounding is half to even,
// matching the firmware tooling the binaries are checked against.
func ToFixed(n float64) (int16, error) {
	m := math.RoundToEven(n * FixedScale)
	if math.IsNaN(m) || m > math.MaxInt16 || m < math.MinInt16 {
		tracer().Debugf("fixed point overflow for %g", n)
		return 0, fmt.Errorf("%w: %g m", ErrFixedOverflow, n)
	}
	return int16(m), nil
}

// FromFixed converts millimetres to meters.
func FromFixed(n int16) float64 {
	return float64(n) / FixedScale
}

// ToFixedVec converts a vector in meters to millimetres.
func ToFixedVec(v Vec3) (Vec3i, error) {
	var f Vec3i
	var err error
	if f.X, err = ToFixed(v.X); err != nil {
		return f, err
	}
	if f.Y, err = ToFixed(v.Y); err != nil {
		return f, err
	}
	f.Z, err = ToFixed(v.Z)
	return f, err
}

// Float converts back to meters.
func (f Vec3i) Float() Vec3 {
	return Vec3{FromFixed(f.X), FromFixed(f.Y), FromFixed(f.Z)}
}

// Get returns the component for axis a.
func (f Vec3i) Get(a Axis) int16 {
	switch a {
	case X:
		return f.X
	case Y:
		return f.Y
	case Z:
		return f.Z
	}
	panic(fmt.Sprintf("invalid axis %d", int(a)))
}

func (f Vec3i) String() string {
	return fmt.Sprintf("[%d,%d,%d]mm", f.X, f.Y, f.Z)
}
