package bacs

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
)

// Mix blends contributions by averaging them. Every contribution receives
// the seed value, not the running blend, so contributors state independent
// opinions and the strategy weighs them equally. The canonical use is tint
// blending, with colors carried as RGBA vectors.
type Mix[C any] struct{}

func (Mix[C]) Resolve(original mgl64.Vec4, ctx C, contribs []Contribution[mgl64.Vec4, C]) mgl64.Vec4 {
	var sum mgl64.Vec4
	for _, f := range contribs {
		sum = sum.Add(f(original, ctx))
	}
	return sum.Mul(1 / float64(len(contribs)))
}

func (Mix[C]) Cap() int { return 0 }

// ColorVec converts a color to the RGBA vector form Mix operates on, with
// channels normalised to [0, 1].
func ColorVec(c color.RGBA) mgl64.Vec4 {
	return mgl64.Vec4{
		float64(c.R) / 255,
		float64(c.G) / 255,
		float64(c.B) / 255,
		float64(c.A) / 255,
	}
}

// VecColor converts an RGBA vector back to a color, clamping each channel
// to [0, 1].
func VecColor(v mgl64.Vec4) color.RGBA {
	return color.RGBA{
		R: channelByte(v.X()),
		G: channelByte(v.Y()),
		B: channelByte(v.Z()),
		A: channelByte(v.W()),
	}
}

func channelByte(f float64) uint8 {
	if f <= 0 {
		return 0
	}
	if f >= 1 {
		return 255
	}
	return uint8(f*255 + 0.5)
}
