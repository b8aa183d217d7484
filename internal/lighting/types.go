// types.go
package lighting

// AutoExposure holds the parameters for automatic exposure compensation:
//
//	wanted_exposure = 2^ExposureCorrection / clamp(observed_luminance, 2^LuminanceMin, 2^LuminanceMax)
//
// LuminanceMin <= LuminanceMax is expected by consumers but not enforced here.
type AutoExposure struct {
	LuminanceMin       float32 `json:"luminance_min"`       // lower clamp bound, log2 scale
	LuminanceMax       float32 `json:"luminance_max"`       // upper clamp bound, log2 scale
	ExposureCorrection float32 `json:"exposure_correction"` // higher values darken the scene; may be negative
	SpeedDarkBright    float32 `json:"speed_dark_bright"`   // adaptation speed, dark -> bright
	SpeedBrightDark    float32 `json:"speed_bright_dark"`   // adaptation speed, bright -> dark
	CenterWeightPower  float32 `json:"center_weight_power"` // 1.0 meters the whole screen uniformly
}

// AmbientLight is the ambient term applied to node and entity colors.
type AmbientLight struct {
	Luminance uint8 `json:"luminance"` // 0..14
	Color     Color `json:"color"`
}

// Lighting describes the lighting and exposure settings for one player.
type Lighting struct {
	Exposure                AutoExposure `json:"exposure"`
	AmbientLight            AmbientLight `json:"ambient_light"`
	ShadowIntensity         float32      `json:"shadow_intensity"`
	Saturation              float32      `json:"saturation"`
	VolumetricLightStrength float32      `json:"volumetric_light_strength"`
}

// MaxAmbientLuminance is the highest meaningful AmbientLight.Luminance.
const MaxAmbientLuminance = 14

// DefaultAutoExposure returns the baseline exposure parameters. Equal bounds
// pin the exposure to a fixed value.
func DefaultAutoExposure() AutoExposure {
	return AutoExposure{
		LuminanceMin:       -3,
		LuminanceMax:       -3,
		ExposureCorrection: 0,
		SpeedDarkBright:    1000,
		SpeedBrightDark:    1000,
		CenterWeightPower:  1,
	}
}

// DefaultAmbientLight returns luminance 0 in opaque white.
func DefaultAmbientLight() AmbientLight {
	return AmbientLight{Luminance: 0, Color: White()}
}

// Default returns a Lighting with every field at its default.
func Default() Lighting {
	return Lighting{
		Exposure:                DefaultAutoExposure(),
		AmbientLight:            DefaultAmbientLight(),
		ShadowIntensity:         0,
		Saturation:              1,
		VolumetricLightStrength: 0,
	}
}
