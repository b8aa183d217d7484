package preset

import (
	"fmt"
	"math"
	"strings"

	"github.com/xtding233/lighting-backend/internal/lighting"
)

// ValidateRaw checks semantic constraints of a merged RawConfig.
func ValidateRaw(cfg RawConfig) error {
	var errs []string
	l := cfg.Lighting

	finite := func(path string, v *float32) bool {
		if v == nil {
			return false
		}
		f := float64(*v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			errs = append(errs, path+" must be finite")
			return false
		}
		return true
	}

	log2Range := func(path string, v *float32) bool {
		if !finite(path, v) {
			return false
		}
		if *v < lighting.MinExposureLog2 || *v > lighting.MaxExposureLog2 {
			errs = append(errs, fmt.Sprintf("%s must be in [%d,%d]", path, lighting.MinExposureLog2, lighting.MaxExposureLog2))
			return false
		}
		return true
	}

	// exposure
	if e := l.Exposure; e != nil {
		minSet := log2Range("lighting.exposure.luminance_min", e.LuminanceMin)
		maxSet := log2Range("lighting.exposure.luminance_max", e.LuminanceMax)
		if minSet && maxSet && *e.LuminanceMin > *e.LuminanceMax {
			errs = append(errs, "lighting.exposure.luminance_min must be <= luminance_max")
		}
		log2Range("lighting.exposure.exposure_correction", e.ExposureCorrection)
		if finite("lighting.exposure.speed_dark_bright", e.SpeedDarkBright) && *e.SpeedDarkBright < 0 {
			errs = append(errs, "lighting.exposure.speed_dark_bright must be >= 0")
		}
		if finite("lighting.exposure.speed_bright_dark", e.SpeedBrightDark) && *e.SpeedBrightDark < 0 {
			errs = append(errs, "lighting.exposure.speed_bright_dark must be >= 0")
		}
		if finite("lighting.exposure.center_weight_power", e.CenterWeightPower) && *e.CenterWeightPower <= 0 {
			errs = append(errs, "lighting.exposure.center_weight_power must be > 0")
		}
	}

	// ambient
	if a := l.AmbientLight; a != nil && a.Luminance != nil {
		if *a.Luminance < 0 || *a.Luminance > lighting.MaxAmbientLuminance {
			errs = append(errs, fmt.Sprintf("lighting.ambient_light.luminance must be in [0,%d]", lighting.MaxAmbientLuminance))
		}
	}

	// scalars
	if finite("lighting.shadow_intensity", l.ShadowIntensity) && (*l.ShadowIntensity < 0 || *l.ShadowIntensity > 1) {
		errs = append(errs, "lighting.shadow_intensity must be in [0,1]")
	}
	if finite("lighting.saturation", l.Saturation) && *l.Saturation < 0 {
		errs = append(errs, "lighting.saturation must be >= 0")
	}
	if finite("lighting.volumetric_light_strength", l.VolumetricLightStrength) &&
		(*l.VolumetricLightStrength < 0 || *l.VolumetricLightStrength > 1) {
		errs = append(errs, "lighting.volumetric_light_strength must be in [0,1]")
	}

	if len(errs) > 0 {
		return fmt.Errorf("preset validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
