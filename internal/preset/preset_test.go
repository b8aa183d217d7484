package preset

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/lighting-backend/internal/lighting"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func newTree(t *testing.T) *Loader {
	t.Helper()
	l := NewLoader(t.TempDir())
	p := l.Paths()
	writeFile(t, p.DefaultPath(), `
version: "1"
lighting:
  exposure:
    luminance_min: -3
    luminance_max: 3
  ambient_light:
    luminance: 2
    color: "#ffffff"
  saturation: 1
`)
	writeFile(t, p.ScenePath("cave"), `
version: "2"
notes: dark and dusty
lighting:
  exposure:
    exposure_correction: -1
  shadow_intensity: 0.8
  volumetric_light_strength: 0.4
`)
	writeFile(t, p.PlayerPath("alice"), `
lighting:
  ambient_light:
    color: slategray
  saturation: 0.5
  shadow_intensity: 0.6
`)
	return l
}

func TestLoadMergedPrecedence(t *testing.T) {
	l := newTree(t)

	raw, err := l.LoadMerged("cave", "alice")
	require.NoError(t, err)
	assert.Equal(t, "2", raw.Version)
	assert.Equal(t, "dark and dusty", raw.Notes)

	got := Apply(lighting.Default(), raw.Lighting)
	assert.Equal(t, float32(-3), got.Exposure.LuminanceMin)
	assert.Equal(t, float32(3), got.Exposure.LuminanceMax)
	assert.Equal(t, float32(-1), got.Exposure.ExposureCorrection)
	assert.Equal(t, float32(1000), got.Exposure.SpeedDarkBright)
	assert.Equal(t, uint8(2), got.AmbientLight.Luminance)
	assert.Equal(t, lighting.Color{R: 112, G: 128, B: 144, A: 255}, got.AmbientLight.Color)
	assert.Equal(t, float32(0.6), got.ShadowIntensity)
	assert.Equal(t, float32(0.5), got.Saturation)
	assert.Equal(t, float32(0.4), got.VolumetricLightStrength)
}

func TestLoadMergedMissingLayers(t *testing.T) {
	l := NewLoader(t.TempDir())
	raw, err := l.LoadMerged("nowhere", "nobody")
	require.NoError(t, err)
	assert.Equal(t, lighting.Default(), Apply(lighting.Default(), raw.Lighting))

	l = newTree(t)
	raw, err = l.LoadMerged("", "")
	require.NoError(t, err)
	assert.Nil(t, raw.Lighting.ShadowIntensity)
	assert.Equal(t, float32(1), *raw.Lighting.Saturation)
}

func TestLoadMergedErrors(t *testing.T) {
	l := newTree(t)
	_, err := l.LoadMerged("../etc", "")
	assert.ErrorIs(t, err, ErrBadName)
	_, err = l.LoadMerged("", "a/b")
	assert.ErrorIs(t, err, ErrBadName)

	writeFile(t, l.Paths().ScenePath("broken"), "lighting: [oops")
	_, err = l.LoadMerged("broken", "")
	assert.ErrorContains(t, err, "read scene broken")

	writeFile(t, l.Paths().PlayerPath("bob"), `
lighting:
  ambient_light:
    color: "#nothex"
`)
	_, err = l.LoadMerged("", "bob")
	assert.ErrorIs(t, err, lighting.ErrInvalidColor)
}

func TestCacheAndInvalidate(t *testing.T) {
	l := newTree(t)
	first, err := l.LoadMerged("cave", "")
	require.NoError(t, err)

	writeFile(t, l.Paths().ScenePath("cave"), `
lighting:
  shadow_intensity: 0.1
`)
	cached, err := l.LoadMerged("cave", "")
	require.NoError(t, err)
	assert.Equal(t, *first.Lighting.ShadowIntensity, *cached.Lighting.ShadowIntensity)

	l.Invalidate()
	fresh, err := l.LoadMerged("cave", "")
	require.NoError(t, err)
	assert.Equal(t, float32(0.1), *fresh.Lighting.ShadowIntensity)
}

func TestValidateRaw(t *testing.T) {
	f := func(v float32) *float32 { return &v }
	i := func(v int) *int { return &v }

	assert.NoError(t, ValidateRaw(RawConfig{}))

	err := ValidateRaw(RawConfig{Lighting: RawLighting{
		Exposure:                &RawExposure{LuminanceMin: f(4), LuminanceMax: f(1), CenterWeightPower: f(0)},
		AmbientLight:            &RawAmbient{Luminance: i(15)},
		ShadowIntensity:         f(-0.1),
		Saturation:              f(-1),
		VolumetricLightStrength: f(2),
	}})
	require.Error(t, err)
	for _, want := range []string{
		"lighting.exposure.luminance_min must be <= luminance_max",
		"lighting.exposure.center_weight_power must be > 0",
		"lighting.ambient_light.luminance must be in [0,14]",
		"lighting.shadow_intensity must be in [0,1]",
		"lighting.saturation must be >= 0",
		"lighting.volumetric_light_strength must be in [0,1]",
	} {
		assert.Contains(t, err.Error(), want)
	}

	err = ValidateRaw(RawConfig{Lighting: RawLighting{
		Exposure: &RawExposure{LuminanceMin: f(-1100), LuminanceMax: f(200), ExposureCorrection: f(-126)},
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lighting.exposure.luminance_min must be in [-126,127]")
	assert.Contains(t, err.Error(), "lighting.exposure.luminance_max must be in [-126,127]")
	assert.NotContains(t, err.Error(), "exposure_correction")
	assert.NotContains(t, err.Error(), "must be <= luminance_max")
}

func TestResolve(t *testing.T) {
	l := newTree(t)

	_, got, err := l.Resolve("cave", "alice", Overrides{})
	require.NoError(t, err)
	assert.Equal(t, float32(0.6), got.ShadowIntensity)

	sat := float32(1.5)
	_, got, err = l.Resolve("cave", "alice", Overrides{Lighting: RawLighting{Saturation: &sat}})
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), got.Saturation)

	lum := 40
	bad := Overrides{Lighting: RawLighting{AmbientLight: &RawAmbient{Luminance: &lum}}}
	_, _, err = l.Resolve("cave", "", bad)
	assert.ErrorIs(t, err, lighting.ErrInvalidLighting)

	bad.Clamp = true
	_, got, err = l.Resolve("cave", "", bad)
	require.NoError(t, err)
	assert.Equal(t, uint8(lighting.MaxAmbientLuminance), got.AmbientLight.Luminance)
}

func TestResolveRejectsBadPreset(t *testing.T) {
	l := newTree(t)
	writeFile(t, l.Paths().ScenePath("noon"), `
lighting:
  shadow_intensity: 4
`)
	_, _, err := l.Resolve("noon", "", Overrides{Clamp: true})
	assert.ErrorContains(t, err, "preset validation failed")
}

func TestFileWatcher(t *testing.T) {
	l := newTree(t)
	p := l.Paths()

	var changed []string
	w := NewFileWatcher(p.Patterns(), time.Hour, func(path string) { changed = append(changed, path) })
	w.scanAll(true)
	assert.Empty(t, changed)
	assert.Len(t, w.lastMTime, 3)

	w.scanAll(false)
	assert.Empty(t, changed)

	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(p.ScenePath("cave"), future, future))
	w.scanAll(false)
	assert.Equal(t, []string{p.ScenePath("cave")}, changed)

	changed = nil
	writeFile(t, p.PlayerPath("bob"), "lighting: {}\n")
	w.scanAll(false)
	assert.Equal(t, []string{p.PlayerPath("bob")}, changed)

	changed = nil
	require.NoError(t, os.Remove(p.PlayerPath("alice")))
	w.scanAll(false)
	assert.Equal(t, []string{p.PlayerPath("alice")}, changed)

	w.Stop()
	w.Stop()
}
