package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/iburimskiy/herobg/internal/ring"
	"gopkg.in/yaml.v3"
)

const (
	WindowWidth  = 1024
	WindowHeight = 512
	WindowTitle  = "herobg - Space: pause, S: snapshot, D: debug, Esc/Q: quit"

	FadeAlpha         = 20
	ColorHistorySize  = 64
	SnapshotFileName  = "herobg.png"
	DefaultConfigFile = "herobg.yaml"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the on-disk configuration.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Hero    HeroConfig    `yaml:"hero"`
	Ring    RingConfig    `yaml:"ring"`
	Palette PaletteConfig `yaml:"palette"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// HeroConfig holds the props and host signals of the hero component.
// Height 0 means "measure the host".
type HeroConfig struct {
	Height        int    `yaml:"height"`
	ReducedMotion bool   `yaml:"reduced_motion"`
	Seed          uint64 `yaml:"seed"`
	FadeAlpha     uint8  `yaml:"fade_alpha"`
}

type RingConfig struct {
	Size         int     `yaml:"size"`
	Tension      float64 `yaml:"tension"`
	Sympathy     float64 `yaml:"sympathy"`
	Damping      float64 `yaml:"damping"`
	KickPull     float64 `yaml:"kick_pull"`
	KickNoise    float64 `yaml:"kick_noise"`
	ColorDecay   float64 `yaml:"color_decay"`
	ColorNoise   float64 `yaml:"color_noise"`
	StrokeAlpha  uint8   `yaml:"stroke_alpha"`
	StrokeWeight float64 `yaml:"stroke_weight"`
}

// Range is an inclusive channel bound.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

type PaletteConfig struct {
	Red   Range `yaml:"red"`
	Green Range `yaml:"green"`
	Blue  Range `yaml:"blue"`
}

// DefaultConfig returns the orange ring at 60 fps. Ring tunables and the
// palette come from ring.DefaultParams.
func DefaultConfig() *Config {
	p := ring.DefaultParams()
	return &Config{
		Window: WindowConfig{
			Width:  WindowWidth,
			Height: WindowHeight,
			Title:  WindowTitle,
		},
		Hero: HeroConfig{
			FadeAlpha: FadeAlpha,
		},
		Ring: RingConfig{
			Size:         p.Size,
			Tension:      p.Tension,
			Sympathy:     p.Sympathy,
			Damping:      p.Damping,
			KickPull:     p.KickPull,
			KickNoise:    p.KickNoise,
			ColorDecay:   p.ColorDecay,
			ColorNoise:   p.ColorNoise,
			StrokeAlpha:  p.StrokeAlpha,
			StrokeWeight: p.StrokeWeight,
		},
		Palette: PaletteConfig{
			Red:   rangeOf(p.Palette.Red),
			Green: rangeOf(p.Palette.Green),
			Blue:  rangeOf(p.Palette.Blue),
		},
	}
}

func rangeOf(b ring.Bound) Range { return Range{Min: b.Min, Max: b.Max} }

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied before validation.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("HEROBG_HEIGHT"); v != "" {
		h, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: HEROBG_HEIGHT=%q: %v", ErrInvalid, v, err)
		}
		c.Hero.Height = h
	}
	if v := os.Getenv("HEROBG_REDUCED_MOTION"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: HEROBG_REDUCED_MOTION=%q: %v", ErrInvalid, v, err)
		}
		c.Hero.ReducedMotion = b
	}
	if v := os.Getenv("HEROBG_SEED"); v != "" {
		s, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: HEROBG_SEED=%q: %v", ErrInvalid, v, err)
		}
		c.Hero.Seed = s
	}
	return nil
}

// Validate reports the first out-of-range setting.
func (c *Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	case c.Hero.Height < 0:
		return fmt.Errorf("%w: hero height %d", ErrInvalid, c.Hero.Height)
	case c.Ring.Size < 3:
		return fmt.Errorf("%w: ring size %d (need at least 3)", ErrInvalid, c.Ring.Size)
	case c.Ring.Damping <= 0 || c.Ring.Damping > 1:
		return fmt.Errorf("%w: damping %g not in (0, 1]", ErrInvalid, c.Ring.Damping)
	case c.Ring.ColorDecay <= 0 || c.Ring.ColorDecay > 1:
		return fmt.Errorf("%w: color decay %g not in (0, 1]", ErrInvalid, c.Ring.ColorDecay)
	case c.Ring.StrokeWeight <= 0:
		return fmt.Errorf("%w: stroke weight %g", ErrInvalid, c.Ring.StrokeWeight)
	}
	palette := []struct {
		name string
		r    Range
	}{
		{"red", c.Palette.Red},
		{"green", c.Palette.Green},
		{"blue", c.Palette.Blue},
	}
	for _, ch := range palette {
		if ch.r.Min > ch.r.Max || ch.r.Min < 0 || ch.r.Max > 255 {
			return fmt.Errorf("%w: palette %s [%g, %g]", ErrInvalid, ch.name, ch.r.Min, ch.r.Max)
		}
	}
	return nil
}
