// Package config handles configuration for the thumbgrid front-end binaries:
// TOML loading, defaults, validation, and change watching. The engine
// packages never read configuration themselves; the cmd surfaces map these
// values onto driver and renderer options.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"thumbgrid/internal/render"
	"thumbgrid/pkg/gridipc"
)

// ErrInvalid wraps every validation failure so callers can branch on it.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the complete front-end configuration.
type Config struct {
	// Screen describes the virtual framebuffer geometry.
	Screen ScreenConfig `toml:"screen"`

	// Timing holds the interaction timing knobs.
	Timing TimingConfig `toml:"timing"`

	// IPC configures the shared snapshot region.
	IPC IPCConfig `toml:"ipc"`

	// Sound configures keystroke click feedback.
	Sound SoundConfig `toml:"sound"`

	// Logging configures structured log output.
	Logging LoggingConfig `toml:"logging"`
}

// ScreenConfig describes the simulated framebuffer.
type ScreenConfig struct {
	// Width and Height in pixels.
	Width  int `toml:"width"`
	Height int `toml:"height"`

	// Pitch is the row stride in pixels. Zero means Width rounded up to
	// the next multiple of 64, matching typical display-buffer alignment.
	Pitch int `toml:"pitch"`

	// Tiling selects the pixel layout: "tiled" or "linear".
	Tiling string `toml:"tiling"`
}

// TimingConfig holds the interaction timing knobs, all in milliseconds.
type TimingConfig struct {
	// GraceMs is the input-ignore window after a dialog opens.
	GraceMs int `toml:"grace_ms"`

	// BackspaceDelayMs is the hold time before backspace starts repeating.
	BackspaceDelayMs int `toml:"backspace_delay_ms"`

	// BackspaceIntervalMs is the repeat cadence after the delay.
	BackspaceIntervalMs int `toml:"backspace_interval_ms"`

	// PollHz is the simulator tick rate.
	PollHz int `toml:"poll_hz"`
}

// IPCConfig configures the shared snapshot region.
type IPCConfig struct {
	// Enabled controls whether the engine publishes snapshots at all.
	Enabled bool `toml:"enabled"`

	// Path is the backing file for the shared region.
	Path string `toml:"path"`
}

// SoundConfig configures the optional keystroke click.
type SoundConfig struct {
	Enabled bool `toml:"enabled"`

	// Volume in [0, 1].
	Volume float64 `toml:"volume"`
}

// LoggingConfig configures structured log output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`

	// Format is "text" or "json".
	Format string `toml:"format"`

	// File receives log output when set; empty logs to stderr.
	File string `toml:"file"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Screen: ScreenConfig{
			Width:  960,
			Height: 540,
			Pitch:  1024,
			Tiling: "tiled",
		},
		Timing: TimingConfig{
			GraceMs:             300,
			BackspaceDelayMs:    400,
			BackspaceIntervalMs: 60,
			PollHz:              60,
		},
		IPC: IPCConfig{
			Enabled: true,
			Path:    gridipc.DefaultPath,
		},
		Sound: SoundConfig{
			Enabled: false,
			Volume:  0.5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the TOML file at path over the defaults and validates the
// result. A missing file is not an error: the defaults apply unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown keys %v in %s", ErrInvalid, undecoded, path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every field and normalizes the derived ones (pitch).
func (c *Config) Validate() error {
	if c.Screen.Width < 64 || c.Screen.Height < 64 {
		return fmt.Errorf("%w: screen %dx%d below the 64x64 minimum",
			ErrInvalid, c.Screen.Width, c.Screen.Height)
	}
	if c.Screen.Pitch == 0 {
		c.Screen.Pitch = (c.Screen.Width + 63) &^ 63
	}
	if c.Screen.Pitch < c.Screen.Width {
		return fmt.Errorf("%w: pitch %d narrower than width %d",
			ErrInvalid, c.Screen.Pitch, c.Screen.Width)
	}
	if c.Screen.Pitch%64 != 0 {
		return fmt.Errorf("%w: pitch %d not a multiple of 64", ErrInvalid, c.Screen.Pitch)
	}
	switch c.Screen.Tiling {
	case "tiled", "linear":
	default:
		return fmt.Errorf("%w: tiling %q (want tiled or linear)", ErrInvalid, c.Screen.Tiling)
	}

	if c.Timing.GraceMs < 0 || c.Timing.GraceMs > 5000 {
		return fmt.Errorf("%w: grace_ms %d outside 0..5000", ErrInvalid, c.Timing.GraceMs)
	}
	if c.Timing.BackspaceDelayMs < 50 {
		return fmt.Errorf("%w: backspace_delay_ms %d below 50", ErrInvalid, c.Timing.BackspaceDelayMs)
	}
	if c.Timing.BackspaceIntervalMs < 10 {
		return fmt.Errorf("%w: backspace_interval_ms %d below 10", ErrInvalid, c.Timing.BackspaceIntervalMs)
	}
	if c.Timing.PollHz < 10 || c.Timing.PollHz > 240 {
		return fmt.Errorf("%w: poll_hz %d outside 10..240", ErrInvalid, c.Timing.PollHz)
	}

	if c.IPC.Enabled && c.IPC.Path == "" {
		return fmt.Errorf("%w: ipc enabled without a path", ErrInvalid)
	}

	if c.Sound.Volume < 0 || c.Sound.Volume > 1 {
		return fmt.Errorf("%w: sound volume %g outside 0..1", ErrInvalid, c.Sound.Volume)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalid, c.Logging.Format)
	}
	return nil
}

// TilingMode returns the renderer mode for the screen section.
func (c *Config) TilingMode() render.TilingMode {
	if c.Screen.Tiling == "linear" {
		return render.TilingLinear
	}
	return render.TilingTile
}

// Grace returns the grace window as a duration.
func (c *Config) Grace() time.Duration {
	return time.Duration(c.Timing.GraceMs) * time.Millisecond
}

// BackspaceDelay returns the repeat delay as a duration.
func (c *Config) BackspaceDelay() time.Duration {
	return time.Duration(c.Timing.BackspaceDelayMs) * time.Millisecond
}

// BackspaceInterval returns the repeat interval as a duration.
func (c *Config) BackspaceInterval() time.Duration {
	return time.Duration(c.Timing.BackspaceIntervalMs) * time.Millisecond
}

// TickInterval returns the poll period for the configured rate.
func (c *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.Timing.PollHz)
}
