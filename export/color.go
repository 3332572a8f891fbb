package export

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/npillmayer/choreo"
	"github.com/npillmayer/choreo/keyframe"
)

// startDuration is the hold time of the first light record, in hundredths.
const startDuration = 1

// EncodeColors encodes an ordered color keyframe sequence.
func EncodeColors(keyframes []keyframe.ColorKeyframe) ([]byte, error) {
	if len(keyframes) == 0 {
		return nil, ErrNoKeyframes
	}
	buf := make([]byte, 0, 4*(len(keyframes)+1))
	buf = appendLight(buf, startDuration, keyframes[0].Color)
	for i := 0; i < len(keyframes)-1; i++ {
		d := keyframes[i+1].Time - keyframes[i].Time
		h := math.RoundToEven(100 * d)
		if h < 0 || h > math.MaxUint16 {
			return nil, fmt.Errorf("%w: light keyframe %d, %g s", ErrDurationRange, i+1, d)
		}
		led := PackRGB565(keyframes[i+1].Color)
		if h == 0 && led == 0 {
			return nil, fmt.Errorf("%w: light keyframe %d would encode as terminator", ErrDurationRange, i+1)
		}
		buf = appendLight(buf, uint16(h), keyframes[i+1].Color)
	}
	buf = append(buf, 0, 0, 0, 0)
	return buf, nil
}

func appendLight(buf []byte, hundredths uint16, c choreo.Color) []byte {
	buf = binary.BigEndian.AppendUint16(buf, hundredths)
	return binary.BigEndian.AppendUint16(buf, PackRGB565(c))
}

// toByte scales a color component to 0…255, rounding half to even.
func toByte(c float64) uint32 {
	return uint32(math.RoundToEven(255*choreo.Clamp01(c))) & 0xFF
}

// PackRGB565 reduces a color to 5 bits red, 6 bits green and 5 bits blue.
func PackRGB565(c choreo.Color) uint16 {
	r, g, b := toByte(c.R), toByte(c.G), toByte(c.B)
	r5 := (r*249 + 1014) >> 11
	g6 := (g*253 + 505) >> 10
	b5 := (b*249 + 1014) >> 11
	return uint16((r5<<11 | g6<<5 | b5) & 0xFFFF)
}

// UnpackRGB565 expands an RGB565 value to a color.
func UnpackRGB565(v uint16) choreo.Color {
	return choreo.Color{
		R: float64(v>>11&0x1F) / 31,
		G: float64(v>>5&0x3F) / 63,
		B: float64(v&0x1F) / 31,
	}
}

// DecodeColors is the inverse of EncodeColors. The first keyframe is placed
// at time 0.
func DecodeColors(data []byte) ([]keyframe.ColorKeyframe, error) {
	r := reader{data: data}
	var keys []keyframe.ColorKeyframe
	t := 0.0
	for {
		h, led := r.uint16BE(), r.uint16BE()
		if r.err != nil {
			return nil, fmt.Errorf("%w: light sequence is not terminated", ErrMalformed)
		}
		if h == 0 && led == 0 {
			break
		}
		if len(keys) > 0 {
			t += float64(h) / 100
		}
		keys = append(keys, keyframe.ColorKeyframe{Time: t, Color: UnpackRGB565(led)})
	}
	if !r.done() {
		return keys, fmt.Errorf("%w: %d bytes after terminator", ErrMalformed, len(data)-r.pos)
	}
	return keys, nil
}
