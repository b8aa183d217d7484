package lighting

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrInvalidLighting = errors.New("invalid lighting")

// ValidationError lists every problem found by Validate.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("lighting validation failed: %s", strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidLighting }

// Validate checks the semantic ranges the renderer expects. Values are never
// rejected at construction; callers that accept untrusted input call this.
func Validate(l Lighting) error {
	var errs []string

	finite := func(name string, v float32) bool {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			errs = append(errs, name+" must be finite")
			return false
		}
		return true
	}

	log2Range := func(name string, v float32) bool {
		if !finite(name, v) {
			return false
		}
		if v < MinExposureLog2 || v > MaxExposureLog2 {
			errs = append(errs, fmt.Sprintf("%s must be in [%d,%d]", name, MinExposureLog2, MaxExposureLog2))
			return false
		}
		return true
	}

	ex := l.Exposure
	minOK := log2Range("exposure.luminance_min", ex.LuminanceMin)
	maxOK := log2Range("exposure.luminance_max", ex.LuminanceMax)
	if minOK && maxOK && ex.LuminanceMin > ex.LuminanceMax {
		errs = append(errs, "exposure.luminance_min must be <= exposure.luminance_max")
	}
	log2Range("exposure.exposure_correction", ex.ExposureCorrection)
	if finite("exposure.speed_dark_bright", ex.SpeedDarkBright) && ex.SpeedDarkBright < 0 {
		errs = append(errs, "exposure.speed_dark_bright must be >= 0")
	}
	if finite("exposure.speed_bright_dark", ex.SpeedBrightDark) && ex.SpeedBrightDark < 0 {
		errs = append(errs, "exposure.speed_bright_dark must be >= 0")
	}
	if finite("exposure.center_weight_power", ex.CenterWeightPower) && ex.CenterWeightPower <= 0 {
		errs = append(errs, "exposure.center_weight_power must be > 0")
	}

	if l.AmbientLight.Luminance > MaxAmbientLuminance {
		errs = append(errs, fmt.Sprintf("ambient_light.luminance must be in [0,%d]", MaxAmbientLuminance))
	}

	if finite("shadow_intensity", l.ShadowIntensity) && (l.ShadowIntensity < 0 || l.ShadowIntensity > 1) {
		errs = append(errs, "shadow_intensity must be in [0,1]")
	}
	if finite("saturation", l.Saturation) && l.Saturation < 0 {
		errs = append(errs, "saturation must be >= 0")
	}
	if finite("volumetric_light_strength", l.VolumetricLightStrength) &&
		(l.VolumetricLightStrength < 0 || l.VolumetricLightStrength > 1) {
		errs = append(errs, "volumetric_light_strength must be in [0,1]")
	}

	if len(errs) > 0 {
		return &ValidationError{Problems: errs}
	}
	return nil
}

// Clamp returns a copy of l with range-limited fields, the way a scripting
// API limits user edits before handing them to the renderer. Non-finite
// values fall back to the field default.
func Clamp(l Lighting) Lighting {
	def := Default()
	out := l

	fix := func(v, fallback float32) float32 {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fallback
		}
		return v
	}

	ex := &out.Exposure
	ex.LuminanceMin = mgl32.Clamp(fix(ex.LuminanceMin, def.Exposure.LuminanceMin), MinExposureLog2, MaxExposureLog2)
	ex.LuminanceMax = mgl32.Clamp(fix(ex.LuminanceMax, def.Exposure.LuminanceMax), MinExposureLog2, MaxExposureLog2)
	if ex.LuminanceMin > ex.LuminanceMax {
		ex.LuminanceMin, ex.LuminanceMax = ex.LuminanceMax, ex.LuminanceMin
	}
	ex.ExposureCorrection = mgl32.Clamp(fix(ex.ExposureCorrection, def.Exposure.ExposureCorrection), MinExposureLog2, MaxExposureLog2)
	ex.SpeedDarkBright = max(fix(ex.SpeedDarkBright, def.Exposure.SpeedDarkBright), 0)
	ex.SpeedBrightDark = max(fix(ex.SpeedBrightDark, def.Exposure.SpeedBrightDark), 0)
	ex.CenterWeightPower = fix(ex.CenterWeightPower, def.Exposure.CenterWeightPower)
	if ex.CenterWeightPower <= 0 {
		ex.CenterWeightPower = def.Exposure.CenterWeightPower
	}

	out.AmbientLight.Luminance = min(out.AmbientLight.Luminance, MaxAmbientLuminance)
	out.ShadowIntensity = mgl32.Clamp(fix(out.ShadowIntensity, def.ShadowIntensity), 0, 1)
	out.Saturation = max(fix(out.Saturation, def.Saturation), 0)
	out.VolumetricLightStrength = mgl32.Clamp(fix(out.VolumetricLightStrength, def.VolumetricLightStrength), 0, 1)
	return out
}
