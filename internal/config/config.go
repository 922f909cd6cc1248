package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/taigrr/prism/pkg/bounce"
)

// Prefix is prepended to every environment variable, e.g. PRISM_BOUNCES.
const Prefix = "PRISM"

// Config is the frame driver's configuration. Command-line flags override it.
type Config struct {
	Bounces  int     `envconfig:"BOUNCES" default:"8"`
	Far      float64 `envconfig:"FAR" default:"200"`
	FPS      int     `envconfig:"FPS" default:"60"`
	LogLevel string  `envconfig:"LOG_LEVEL" default:"info"`

	// The light orbits clockwise on an ellipse in the plane z = OrbitDepth.
	OrbitRadiusX float64 `envconfig:"ORBIT_RADIUS_X" default:"20"`
	OrbitRadiusY float64 `envconfig:"ORBIT_RADIUS_Y" default:"10"`
	OrbitDepth   float64 `envconfig:"ORBIT_DEPTH" default:"-100"`
	OrbitSpeed   float64 `envconfig:"ORBIT_SPEED" default:"0.6"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields the tracer does not.
func (c *Config) Validate() error {
	if c.FPS < 1 {
		return fmt.Errorf("fps must be at least 1, got %d", c.FPS)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return c.Tracer().Validate()
}

// Tracer returns the bounce configuration.
func (c *Config) Tracer() bounce.Config {
	return bounce.Config{MaxBounces: c.Bounces, FarDistance: c.Far}
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}
