package choreo

import "fmt"

// Color is a light color with components in [0,1].
type Color struct {
	R, G, B float64
}

// Some frequently used colors.
var (
	Black = Color{}
	White = Color{1, 1, 1}
)

func (c Color) String() string {
	return fmt.Sprintf("rgb(%.3f,%.3f,%.3f)", c.R, c.G, c.B)
}

// Lerp interpolates component-wise between c (t=0) and d (t=1).
func (c Color) Lerp(d Color, t float64) Color {
	return Color{
		R: c.R + (d.R-c.R)*t,
		G: c.G + (d.G-c.G)*t,
		B: c.B + (d.B-c.B)*t,
	}
}

// Clamped returns c with every component clamped to [0,1].
func (c Color) Clamped() Color {
	return Color{Clamp01(c.R), Clamp01(c.G), Clamp01(c.B)}
}
