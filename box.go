package choreo

import (
	"fmt"
	"math"
)

// Box is an axis aligned bounding box.
type Box struct {
	Min, Max Vec3
}

// BoxAround creates a box of extent size centered at c.
func BoxAround(c Vec3, size Vec3) Box {
	h := size.Scaled(0.5)
	return Box{Min: c.Sub(h), Max: c.Add(h)}
}

// Bounds returns the smallest box containing all points. For an empty
// slice it returns the zero box.
func Bounds(points ...Vec3) Box {
	if len(points) == 0 {
		return Box{}
	}
	b := Box{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	return b
}

func (b Box) String() string {
	return fmt.Sprintf("box[%v..%v]", b.Min, b.Max)
}

// Center of the box.
func (b Box) Center() Vec3 {
	return b.Min.Lerp(b.Max, 0.5)
}

// Size is the extent of the box per axis.
func (b Box) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// Contains is a predicate: p inside b, borders included?
func (b Box) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Expand grows the box by pad on every side.
func (b Box) Expand(pad float64) Box {
	d := Vec3{pad, pad, pad}
	return Box{Min: b.Min.Sub(d), Max: b.Max.Add(d)}
}

// Intersect clips the ray origin + t⋅dir, t ≥ 0, against b (slab method).
// It returns the entry and exit points. If the ray misses the box, ok is false.
// A ray starting inside the box enters at its origin.
func (b Box) Intersect(origin, dir Vec3) (enter, exit Vec3, ok bool) {
	tmin, tmax := 0.0, math.Inf(1)
	for _, a := range Axes {
		o, d := origin.Get(a), dir.Get(a)
		lo, hi := b.Min.Get(a), b.Max.Get(a)
		if Is0(d) {
			if o < lo || o > hi {
				return Origin, Origin, false
			}
			continue
		}
		t1, t2 := (lo-o)/d, (hi-o)/d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return Origin, Origin, false
		}
	}
	if math.IsInf(tmax, 1) { // zero direction, origin inside
		tmax = 0
	}
	return origin.Add(dir.Scaled(tmin)), origin.Add(dir.Scaled(tmax)), true
}
