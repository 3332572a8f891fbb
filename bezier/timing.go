package bezier

import (
	"math"

	"github.com/npillmayer/choreo"
)

// DefaultSamples is the number of chords used by the sampling functions.
const DefaultSamples = 100

// PeakSpeed samples the segment with the given number of chords and returns
// the highest chord speed in meters per time unit.
func PeakSpeed(c Cubic, samples int) float64 {
	if samples < 1 {
		samples = DefaultSamples
	}
	dt := c.Duration() / float64(samples)
	if choreo.Is0(dt) {
		return 0
	}
	peak := 0.0
	last := c.Anchor1
	for i := 1; i <= samples; i++ {
		p := c.Eval(float64(i) / float64(samples))
		peak = math.Max(peak, p.Dist(last)/dt)
		last = p
	}
	return peak
}

// ArcLength approximates the length of the segment by summing chords.
func ArcLength(c Cubic, samples int) float64 {
	if samples < 1 {
		samples = DefaultSamples
	}
	l := 0.0
	last := c.Anchor1
	for i := 1; i <= samples; i++ {
		p := c.Eval(float64(i) / float64(samples))
		l += p.Dist(last)
		last = p
	}
	return l
}

// TimeScale returns the factor by which the duration of c would have to be
// stretched to keep its peak speed at maxSpeed. Values below 1 mean the
// segment could be flown faster.
func TimeScale(c Cubic, maxSpeed float64) float64 {
	if !(maxSpeed > 0) {
		return math.Inf(1)
	}
	return PeakSpeed(c, DefaultSamples) / maxSpeed
}
