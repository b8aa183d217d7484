package preset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/xtding233/lighting-backend/internal/lighting"
)

var ErrBadName = errors.New("invalid scene or player name")

var validName = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Paths helper for default/scene/player files.
type Paths struct {
	BaseDir string // e.g. /opt/app/config
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "lighting", "default.yaml")
}
func (p Paths) ScenePath(scene string) string {
	return filepath.Join(p.BaseDir, "lighting", "scenes", scene+".yaml")
}
func (p Paths) PlayerPath(player string) string {
	return filepath.Join(p.BaseDir, "lighting", "players", player+".yaml")
}

// Patterns lists the globs a FileWatcher should follow.
func (p Paths) Patterns() []string {
	return []string{
		p.DefaultPath(),
		filepath.Join(p.BaseDir, "lighting", "scenes", "*.yaml"),
		filepath.Join(p.BaseDir, "lighting", "players", "*.yaml"),
	}
}

// Loader reads YAML presets and merges default → scene → player.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: scene + "/" + player
}

// NewLoader creates a preset loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

func (l *Loader) Paths() Paths { return l.paths }

// LoadMerged loads and merges default → scene → player. Scene and player
// may be empty, and their files may not exist.
func (l *Loader) LoadMerged(scene, player string) (RawConfig, error) {
	if err := checkName(scene); err != nil {
		return RawConfig{}, err
	}
	if err := checkName(player); err != nil {
		return RawConfig{}, err
	}

	key := scene + "/" + player
	l.mu.RLock()
	cfg, ok := l.cache[key]
	l.mu.RUnlock()
	if ok {
		return cfg, nil
	}

	merged, err := readYAML(l.paths.DefaultPath())
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	if scene != "" {
		sceneCfg, err := readYAML(l.paths.ScenePath(scene))
		if err != nil {
			return RawConfig{}, fmt.Errorf("read scene %s: %w", scene, err)
		}
		merged = mergeRaw(merged, sceneCfg)
	}
	if player != "" {
		playerCfg, err := readYAML(l.paths.PlayerPath(player))
		if err != nil {
			return RawConfig{}, fmt.Errorf("read player %s: %w", player, err)
		}
		merged = mergeRaw(merged, playerCfg)
	}

	l.mu.Lock()
	l.cache[key] = merged
	l.mu.Unlock()

	return merged, nil
}

// Resolve merges the preset layers, applies the overrides and validates the
// result.
func (l *Loader) Resolve(scene, player string, o Overrides) (RawConfig, lighting.Lighting, error) {
	raw, err := l.LoadMerged(scene, player)
	if err != nil {
		return RawConfig{}, lighting.Lighting{}, err
	}
	if err := ValidateRaw(raw); err != nil {
		return raw, lighting.Lighting{}, err
	}

	out := Apply(lighting.Default(), raw.Lighting)
	out = Apply(out, o.Lighting)
	if o.Clamp {
		out = lighting.Clamp(out)
	}
	if err := lighting.Validate(out); err != nil {
		return raw, lighting.Lighting{}, err
	}
	return raw, out, nil
}

// Invalidate clears the loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

func checkName(name string) error {
	if name == "" || validName.MatchString(name) {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrBadName, name)
}

// readYAML loads a YAML file into RawConfig. Missing files return zero cfg, no error.
func readYAML(path string) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// mergeRaw overlays b on a: every field b sets replaces the one in a.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a
	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}
	out.Lighting = mergeLighting(a.Lighting, b.Lighting)
	return out
}

func mergeLighting(a, b RawLighting) RawLighting {
	out := a

	switch {
	case b.Exposure == nil:
	case a.Exposure == nil:
		c := *b.Exposure
		out.Exposure = &c
	default:
		c := *a.Exposure
		overlay(&c.LuminanceMin, b.Exposure.LuminanceMin)
		overlay(&c.LuminanceMax, b.Exposure.LuminanceMax)
		overlay(&c.ExposureCorrection, b.Exposure.ExposureCorrection)
		overlay(&c.SpeedDarkBright, b.Exposure.SpeedDarkBright)
		overlay(&c.SpeedBrightDark, b.Exposure.SpeedBrightDark)
		overlay(&c.CenterWeightPower, b.Exposure.CenterWeightPower)
		out.Exposure = &c
	}

	switch {
	case b.AmbientLight == nil:
	case a.AmbientLight == nil:
		c := *b.AmbientLight
		out.AmbientLight = &c
	default:
		c := *a.AmbientLight
		overlay(&c.Luminance, b.AmbientLight.Luminance)
		overlay(&c.Color, b.AmbientLight.Color)
		out.AmbientLight = &c
	}

	overlay(&out.ShadowIntensity, b.ShadowIntensity)
	overlay(&out.Saturation, b.Saturation)
	overlay(&out.VolumetricLightStrength, b.VolumetricLightStrength)
	return out
}

func overlay[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}

// Apply copies every field raw sets onto base.
func Apply(base lighting.Lighting, raw RawLighting) lighting.Lighting {
	out := base
	if e := raw.Exposure; e != nil {
		set(&out.Exposure.LuminanceMin, e.LuminanceMin)
		set(&out.Exposure.LuminanceMax, e.LuminanceMax)
		set(&out.Exposure.ExposureCorrection, e.ExposureCorrection)
		set(&out.Exposure.SpeedDarkBright, e.SpeedDarkBright)
		set(&out.Exposure.SpeedBrightDark, e.SpeedBrightDark)
		set(&out.Exposure.CenterWeightPower, e.CenterWeightPower)
	}
	if a := raw.AmbientLight; a != nil {
		if a.Luminance != nil {
			// out-of-range values are caught by ValidateRaw or saturate here
			out.AmbientLight.Luminance = uint8(min(max(*a.Luminance, 0), 255))
		}
		set(&out.AmbientLight.Color, a.Color)
	}
	set(&out.ShadowIntensity, raw.ShadowIntensity)
	set(&out.Saturation, raw.Saturation)
	set(&out.VolumetricLightStrength, raw.VolumetricLightStrength)
	return out
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
