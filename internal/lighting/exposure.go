package lighting

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Log2 bounds accepted for LuminanceMin, LuminanceMax and ExposureCorrection:
// the normal float32 exponent range.
const (
	MinExposureLog2 = -126
	MaxExposureLog2 = 127
)

// WantedExposure evaluates the exposure equation for an observed scene
// luminance. The clamp is applied in log2 space and the result is limited to
// the finite positive float32 range, so finite bounds never yield 0, Inf or
// NaN. A non-positive or NaN observation meters as the lower bound; inverted
// bounds saturate at 2^LuminanceMax.
func (e AutoExposure) WantedExposure(observed float32) float32 {
	lo := float64(e.LuminanceMin)
	hi := float64(e.LuminanceMax)

	lum := lo
	if obs := float64(observed); obs > 0 {
		lum = math.Log2(obs)
	}
	if lo <= hi {
		lum = mgl64.Clamp(lum, lo, hi)
	} else {
		lum = hi
	}

	v := math.Exp2(float64(e.ExposureCorrection) - lum)
	return float32(mgl64.Clamp(v, math.SmallestNonzeroFloat32, math.MaxFloat32))
}
