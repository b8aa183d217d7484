// types.go
package preset

import "github.com/xtding233/lighting-backend/internal/lighting"

// RawConfig is one preset file as read from YAML. Pointer fields tell the
// merge which values a layer actually sets.
type RawConfig struct {
	Version  string      `yaml:"version"`
	Notes    string      `yaml:"notes,omitempty"`
	Lighting RawLighting `yaml:"lighting"`
}

type RawLighting struct {
	Exposure                *RawExposure `yaml:"exposure,omitempty" json:"exposure,omitempty"`
	AmbientLight            *RawAmbient  `yaml:"ambient_light,omitempty" json:"ambient_light,omitempty"`
	ShadowIntensity         *float32     `yaml:"shadow_intensity,omitempty" json:"shadow_intensity,omitempty"`
	Saturation              *float32     `yaml:"saturation,omitempty" json:"saturation,omitempty"`
	VolumetricLightStrength *float32     `yaml:"volumetric_light_strength,omitempty" json:"volumetric_light_strength,omitempty"`
}

type RawExposure struct {
	LuminanceMin       *float32 `yaml:"luminance_min,omitempty" json:"luminance_min,omitempty"`
	LuminanceMax       *float32 `yaml:"luminance_max,omitempty" json:"luminance_max,omitempty"`
	ExposureCorrection *float32 `yaml:"exposure_correction,omitempty" json:"exposure_correction,omitempty"`
	SpeedDarkBright    *float32 `yaml:"speed_dark_bright,omitempty" json:"speed_dark_bright,omitempty"`
	SpeedBrightDark    *float32 `yaml:"speed_bright_dark,omitempty" json:"speed_bright_dark,omitempty"`
	CenterWeightPower  *float32 `yaml:"center_weight_power,omitempty" json:"center_weight_power,omitempty"`
}

type RawAmbient struct {
	Luminance *int            `yaml:"luminance,omitempty" json:"luminance,omitempty"` // int so out-of-range input can be reported
	Color     *lighting.Color `yaml:"color,omitempty" json:"color,omitempty"`
}

// Overrides are per-request edits applied on top of the merged layers.
// With Clamp set, out-of-range values are limited instead of rejected.
type Overrides struct {
	Lighting RawLighting `json:"lighting"`
	Clamp    bool        `json:"clamp,omitempty"`
}

// Resolver produces the final Lighting for a scene/player pair.
type Resolver interface {
	// Returns the merged RawConfig and the resolved Lighting.
	Resolve(scene, player string, o Overrides) (RawConfig, lighting.Lighting, error)
	Invalidate()
}
