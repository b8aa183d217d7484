package lighting

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	amb := DefaultAmbientLight()
	assert.Equal(t, uint8(0), amb.Luminance)
	assert.Equal(t, Color{255, 255, 255, 255}, amb.Color)

	l := Default()
	assert.Equal(t, float32(0), l.ShadowIntensity)
	assert.Equal(t, float32(1), l.Saturation)
	assert.Equal(t, float32(0), l.VolumetricLightStrength)
	assert.LessOrEqual(t, l.Exposure.LuminanceMin, l.Exposure.LuminanceMax)
	assert.NoError(t, Validate(l))
}

func TestCopyIsValue(t *testing.T) {
	a := Default()
	a.Exposure.ExposureCorrection = 0.5
	a.AmbientLight.Color = Color{10, 20, 30, 40}

	b := a
	assert.True(t, a == b, "copy must compare equal")

	b.AmbientLight.Color.R = 99
	b.Exposure.LuminanceMax = 4
	assert.Equal(t, uint8(10), a.AmbientLight.Color.R)
	assert.Equal(t, float32(-3), a.Exposure.LuminanceMax)
	assert.False(t, a == b)
}

func TestWantedExposure(t *testing.T) {
	e := AutoExposure{LuminanceMin: -3, LuminanceMax: 3, ExposureCorrection: 0}
	assert.InDelta(t, 1.0, e.WantedExposure(1), 1e-6)

	// clamped to 2^3 and 2^-3
	assert.InDelta(t, 1.0/8, e.WantedExposure(100), 1e-6)
	assert.InDelta(t, 8.0, e.WantedExposure(0), 1e-6)

	e.ExposureCorrection = 1
	assert.InDelta(t, 2.0, e.WantedExposure(1), 1e-6)
}

func TestWantedExposureCollapsedClamp(t *testing.T) {
	e := DefaultAutoExposure()
	for _, observed := range []float32{0, 0.001, 1, 1000} {
		assert.InDelta(t, 8.0, e.WantedExposure(observed), 1e-5)
	}
}

func TestWantedExposureAlwaysFinite(t *testing.T) {
	cases := []AutoExposure{
		{LuminanceMin: -126, LuminanceMax: -120},
		{LuminanceMin: -200, LuminanceMax: 0},
		{LuminanceMin: -1100, LuminanceMax: -1090},
		{LuminanceMin: 5, LuminanceMax: -5},
		{LuminanceMin: 0, LuminanceMax: 0, ExposureCorrection: -4},
		{LuminanceMin: 0, LuminanceMax: 500, ExposureCorrection: -300},
	}
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	for _, e := range cases {
		for _, observed := range []float32{0, -1, 1, 1e30, nan, inf} {
			got := float64(e.WantedExposure(observed))
			assert.False(t, math.IsNaN(got) || math.IsInf(got, 0), "%+v observed %v", e, observed)
			assert.Greater(t, got, 0.0, "%+v observed %v", e, observed)
		}
	}

	inv := AutoExposure{LuminanceMin: 5, LuminanceMax: -5}
	assert.InDelta(t, 32.0, inv.WantedExposure(1), 1e-4)

	// NaN meters as the lower bound
	e := AutoExposure{LuminanceMin: -3, LuminanceMax: 3}
	assert.InDelta(t, 8.0, e.WantedExposure(nan), 1e-6)
	assert.Equal(t, float32(math.MaxFloat32), AutoExposure{LuminanceMin: -200}.WantedExposure(0))
}

func TestValidateExposureLog2Range(t *testing.T) {
	l := Default()
	l.Exposure.LuminanceMin = -200
	l.Exposure.LuminanceMax = 0
	l.Exposure.ExposureCorrection = 128
	err := Validate(l)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exposure.luminance_min must be in [-126,127]")
	assert.Contains(t, err.Error(), "exposure.exposure_correction must be in [-126,127]")

	l.Exposure.LuminanceMin = MinExposureLog2
	l.Exposure.ExposureCorrection = MaxExposureLog2
	assert.NoError(t, Validate(l))

	l.Exposure.LuminanceMin = -1100
	got := Clamp(l)
	assert.Equal(t, float32(MinExposureLog2), got.Exposure.LuminanceMin)
	assert.NoError(t, Validate(got))
}

func TestColor(t *testing.T) {
	c := Color{R: 0x11, G: 0x22, B: 0x33, A: 0x44}
	assert.Equal(t, uint32(0x44112233), c.ARGB())
	assert.Equal(t, c, ColorFromARGB(c.ARGB()))
	assert.Equal(t, "#11223344", c.String())
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, White().Vec4())
	assert.Equal(t, uint8(0x44), c.NRGBA().A)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ff8000")
	require.NoError(t, err)
	assert.Equal(t, Color{255, 128, 0, 255}, c)

	c, err = ParseColor(" #FF800080 ")
	require.NoError(t, err)
	assert.Equal(t, Color{255, 128, 0, 128}, c)

	c, err = ParseColor("SkyBlue")
	require.NoError(t, err)
	assert.Equal(t, Color{135, 206, 235, 255}, c)

	for _, bad := range []string{"", "#fff", "#zzzzzz", "notacolor", "#1122334455"} {
		_, err := ParseColor(bad)
		assert.ErrorIs(t, err, ErrInvalidColor, bad)
	}
}

func TestLightingJSON(t *testing.T) {
	l := Default()
	l.AmbientLight.Color = Color{1, 2, 3, 4}
	b, err := json.Marshal(l)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"color":"#01020304"`)

	var back Lighting
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, l, back)
}

func TestValidate(t *testing.T) {
	l := Default()
	l.Exposure.LuminanceMin = 2
	l.Exposure.LuminanceMax = 1
	l.AmbientLight.Luminance = 15
	l.ShadowIntensity = 1.5
	l.Saturation = -1
	l.VolumetricLightStrength = float32(math.NaN())

	err := Validate(l)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidLighting)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Problems, 5)
	assert.Contains(t, err.Error(), "ambient_light.luminance must be in [0,14]")

	l = Default()
	l.Exposure.LuminanceMin = 1
	l.Exposure.LuminanceMax = 1
	l.AmbientLight.Luminance = MaxAmbientLuminance
	assert.NoError(t, Validate(l))
}

func TestClamp(t *testing.T) {
	l := Default()
	l.Exposure.LuminanceMin = 3
	l.Exposure.LuminanceMax = -1
	l.Exposure.CenterWeightPower = float32(math.Inf(1))
	l.AmbientLight.Luminance = 200
	l.ShadowIntensity = 3
	l.Saturation = -2
	l.VolumetricLightStrength = -1

	got := Clamp(l)
	assert.Equal(t, float32(-1), got.Exposure.LuminanceMin)
	assert.Equal(t, float32(3), got.Exposure.LuminanceMax)
	assert.Equal(t, float32(1), got.Exposure.CenterWeightPower)
	assert.Equal(t, uint8(14), got.AmbientLight.Luminance)
	assert.Equal(t, float32(1), got.ShadowIntensity)
	assert.Equal(t, float32(0), got.Saturation)
	assert.Equal(t, float32(0), got.VolumetricLightStrength)
	assert.NoError(t, Validate(got))

	// input untouched
	assert.Equal(t, uint8(200), l.AmbientLight.Luminance)
	assert.Equal(t, Default(), Clamp(Default()))
}
