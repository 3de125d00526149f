// Package config loads guineaday settings from YAML. Every field has a
// default, so a config file only needs the values it changes.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/guineaday/internal/completion"
	"github.com/ayusman/guineaday/internal/engine"
	"github.com/ayusman/guineaday/internal/gesture"
	"github.com/ayusman/guineaday/internal/input"
	"github.com/ayusman/guineaday/internal/physics"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Physics    physics.Config    `yaml:"physics"`
	Bodies     BodiesConfig      `yaml:"bodies"`
	Zones      []ZoneConfig      `yaml:"zones"`
	Completion completion.Config `yaml:"completion"`
	Gesture    GestureConfig     `yaml:"gesture"`
	Input      InputConfig       `yaml:"input"`
	Camera     CameraConfig      `yaml:"camera"`
	Server     ServerConfig      `yaml:"server"`
	Store      StoreConfig       `yaml:"store"`
	Hooks      HooksConfig       `yaml:"hooks"`
	Logging    LoggingConfig     `yaml:"logging"`
	Term       TermConfig        `yaml:"term"`
}

type BodiesConfig struct {
	Labels []string `yaml:"labels"`
}

type ZoneConfig struct {
	Label  string  `yaml:"label"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Size   float64 `yaml:"size"`
	Random bool    `yaml:"random"`
}

type GestureConfig struct {
	CurlSlack    float64 `yaml:"curl_slack"`
	CurlRequired int     `yaml:"curl_required"`
	ScreenWidth  float64 `yaml:"screen_width"`
	ScreenHeight float64 `yaml:"screen_height"`
	// StaleTicks is how many ticks without a frame are tolerated.
	StaleTicks int `yaml:"stale_ticks"`
	// FallbackToPointer switches to pointer input when the gesture source fails.
	FallbackToPointer bool `yaml:"fallback_to_pointer"`
	// Source is "camera" or "remote".
	Source string `yaml:"source"`
}

type InputConfig struct {
	Mode string `yaml:"mode"`
}

// CameraConfig is used when gesture.source is camera.
type CameraConfig struct {
	Device          int     `yaml:"device"`
	IdleFPS         int     `yaml:"idle_fps"`
	ActiveFPS       int     `yaml:"active_fps"`
	MotionThreshold float64 `yaml:"motion_threshold"`
	// IdleAfter is how long the scene must be still before dropping to IdleFPS.
	IdleAfter time.Duration `yaml:"idle_after"`
	Preview   bool          `yaml:"preview"`
}

type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type HooksConfig struct {
	Dir     string        `yaml:"dir"`
	Timeout time.Duration `yaml:"timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
	// Output is a file path, or "stderr".
	Output string `yaml:"output"`
}

// TermConfig controls the terminal host. One cell spans CellWidth by
// CellHeight distance units.
type TermConfig struct {
	CellWidth  float64 `yaml:"cell_width"`
	CellHeight float64 `yaml:"cell_height"`
	Chime      bool    `yaml:"chime"`
}

// Gesture source kinds.
const (
	SourceCamera = "camera"
	SourceRemote = "remote"
)

// Default returns the built-in configuration.
func Default() *Config {
	ec := engine.DefaultConfig()
	zones := make([]ZoneConfig, len(ec.Zones))
	for i, z := range ec.Zones {
		zones[i] = ZoneConfig{Label: z.Label, X: z.X, Y: z.Y, Size: z.Size, Random: z.Random}
	}
	gc := gesture.DefaultClassifierConfig()

	return &Config{
		Physics:    ec.Physics,
		Bodies:     BodiesConfig{Labels: ec.Bodies},
		Zones:      zones,
		Completion: ec.Completion,
		Gesture: GestureConfig{
			CurlSlack:         gc.CurlSlack,
			CurlRequired:      gc.CurlRequired,
			ScreenWidth:       gc.ScreenWidth,
			ScreenHeight:      gc.ScreenHeight,
			StaleTicks:        input.DefaultStaleTicks,
			FallbackToPointer: true,
			Source:            SourceRemote,
		},
		Input:   InputConfig{Mode: string(input.ModePointer)},
		Camera:  CameraConfig{Device: 0, IdleFPS: 5, ActiveFPS: 15, MotionThreshold: 1.0, IdleAfter: 2 * time.Second, Preview: true},
		Server:  ServerConfig{Addr: "127.0.0.1:8080", StaticDir: "web"},
		Store:   StoreConfig{Path: "guineaday.db"},
		Hooks:   HooksConfig{Dir: "hooks", Timeout: 5 * time.Second},
		Logging: LoggingConfig{Level: "info", Format: "console", Output: "stderr"},
		Term:    TermConfig{CellWidth: 10, CellHeight: 20, Chime: true},
	}
}

// Load reads path and overlays it on the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse overlays YAML data on the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first out-of-range setting.
func (c *Config) Validate() error {
	p := c.Physics
	switch {
	case p.MaxSpeed <= 0:
		return invalid("physics.max_speed must be positive, got %v", p.MaxSpeed)
	case p.Restitution < 0 || p.Restitution > 1:
		return invalid("physics.restitution must be within [0,1], got %v", p.Restitution)
	case p.Jitter < 0:
		return invalid("physics.jitter must not be negative, got %v", p.Jitter)
	case p.TickRate <= 0 || p.NominalRate <= 0:
		return invalid("physics.tick_rate and nominal_rate must be positive")
	case p.BodySize <= 0:
		return invalid("physics.body_size must be positive, got %v", p.BodySize)
	case p.Padding < 0:
		return invalid("physics.padding must not be negative, got %v", p.Padding)
	}

	if len(c.Bodies.Labels) == 0 {
		return invalid("bodies.labels needs at least one body")
	}
	for i, z := range c.Zones {
		if z.Label == "" {
			return invalid("zones[%d].label is empty", i)
		}
		if z.Size < 0 {
			return invalid("zones[%d].size must not be negative", i)
		}
	}

	cp := c.Completion
	switch cp.Policy {
	case completion.PolicyZone:
		if len(c.Zones) == 0 {
			return invalid("completion.policy zone needs at least one zone")
		}
	case completion.PolicyProgress:
	default:
		return invalid("completion.policy must be zone or progress, got %q", cp.Policy)
	}
	if cp.ZoneThreshold <= 0 {
		return invalid("completion.zone_threshold must be positive, got %v", cp.ZoneThreshold)
	}
	if cp.ProgressThreshold <= 0 || cp.ProgressThreshold > 100 {
		return invalid("completion.progress_threshold must be within (0,100], got %v", cp.ProgressThreshold)
	}

	g := c.Gesture
	if g.CurlRequired < 1 || g.CurlRequired > 4 {
		return invalid("gesture.curl_required must be within 1..4, got %d", g.CurlRequired)
	}
	if g.CurlSlack < 0 {
		return invalid("gesture.curl_slack must not be negative, got %v", g.CurlSlack)
	}
	if g.StaleTicks < 0 {
		return invalid("gesture.stale_ticks must not be negative, got %d", g.StaleTicks)
	}
	if g.Source != SourceCamera && g.Source != SourceRemote {
		return invalid("gesture.source must be camera or remote, got %q", g.Source)
	}

	if c.Gesture.Source == SourceCamera {
		cam := c.Camera
		if cam.IdleFPS <= 0 || cam.ActiveFPS < cam.IdleFPS {
			return invalid("camera fps must satisfy 0 < idle_fps <= active_fps, got %d and %d", cam.IdleFPS, cam.ActiveFPS)
		}
		if cam.MotionThreshold <= 0 || cam.IdleAfter <= 0 {
			return invalid("camera.motion_threshold and camera.idle_after must be positive")
		}
	}

	if _, err := input.ParseMode(c.Input.Mode); err != nil {
		return fmt.Errorf("%w: input.mode: %v", ErrInvalid, err)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return invalid("logging.format must be json or console, got %q", c.Logging.Format)
	}
	if c.Hooks.Timeout <= 0 {
		return invalid("hooks.timeout must be positive, got %v", c.Hooks.Timeout)
	}
	if c.Term.CellWidth <= 0 || c.Term.CellHeight <= 0 {
		return invalid("term cell size must be positive")
	}
	return nil
}

// Engine converts the session settings into an engine configuration.
func (c *Config) Engine() engine.Config {
	zones := make([]engine.ZoneSpec, len(c.Zones))
	for i, z := range c.Zones {
		zones[i] = engine.ZoneSpec{Label: z.Label, X: z.X, Y: z.Y, Size: z.Size, Random: z.Random}
	}
	return engine.Config{
		Physics:    c.Physics,
		Completion: c.Completion,
		Gesture: gesture.ClassifierConfig{
			CurlSlack:    c.Gesture.CurlSlack,
			CurlRequired: c.Gesture.CurlRequired,
			ScreenWidth:  c.Gesture.ScreenWidth,
			ScreenHeight: c.Gesture.ScreenHeight,
		},
		Bodies:     append([]string(nil), c.Bodies.Labels...),
		Zones:      zones,
		Mode:       input.Mode(c.Input.Mode),
		StaleTicks: c.Gesture.StaleTicks,
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}
