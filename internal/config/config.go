package config

import (
	"fmt"
	"os"

	"github.com/san-kum/wcsph/internal/sph"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"
)

const (
	DefaultScreenWidth  = 400
	DefaultScreenHeight = 200
	DefaultRadius       = 2.0
	DefaultFrames       = 600
)

type Config struct {
	Physics PhysicsConfig `yaml:"physics" json:"physics"`
	Run     RunConfig     `yaml:"run" json:"run"`
	Render  RenderConfig  `yaml:"render" json:"render"`
}

type Vec2 struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

type PhysicsConfig struct {
	Particles        int     `yaml:"particles" json:"particles"`
	Width            float64 `yaml:"width" json:"width"`
	Height           float64 `yaml:"height" json:"height"`
	Dt               float64 `yaml:"dt" json:"dt"`
	Mass             float64 `yaml:"mass" json:"mass"`
	SupportRadius    float64 `yaml:"support_radius" json:"support_radius"`
	ReferenceDensity float64 `yaml:"reference_density" json:"reference_density"`
	Stiffness        float64 `yaml:"stiffness" json:"stiffness"`
	Gamma            float64 `yaml:"gamma" json:"gamma"`
	Gravity          Vec2    `yaml:"gravity" json:"gravity"`
	Epsilon          float64 `yaml:"epsilon" json:"epsilon"`
	Damping          Vec2    `yaml:"damping" json:"damping"`
	ForcingScale     float64 `yaml:"forcing_scale" json:"forcing_scale"`
	DensityFloor     float64 `yaml:"density_floor" json:"density_floor"`
}

type RunConfig struct {
	Frames        int   `yaml:"frames" json:"frames"`
	Substeps      int   `yaml:"substeps" json:"substeps"`
	Seed          int64 `yaml:"seed" json:"seed"`
	Workers       int   `yaml:"workers" json:"workers"`
	RecordEvery   int   `yaml:"record_every" json:"record_every"`
	ValidateState bool  `yaml:"validate_state" json:"validate_state"`
}

type RenderConfig struct {
	ScreenWidth  int     `yaml:"screen_width" json:"screen_width"`
	ScreenHeight int     `yaml:"screen_height" json:"screen_height"`
	Radius       float64 `yaml:"radius" json:"radius"`
}

// DefaultConfig is the reference setup. The domain is the screen
// resolution divided by ten.
func DefaultConfig() *Config {
	prm := sph.DefaultParams()
	return &Config{
		Physics: PhysicsConfig{
			Particles:        prm.N,
			Width:            DefaultScreenWidth / 10,
			Height:           DefaultScreenHeight / 10,
			Dt:               prm.Dt,
			Mass:             prm.Mass,
			SupportRadius:    prm.H,
			ReferenceDensity: prm.Rho0,
			Stiffness:        prm.Stiffness,
			Gamma:            prm.Gamma,
			Gravity:          Vec2{prm.Gravity.X, prm.Gravity.Y},
			Epsilon:          prm.Epsilon,
			Damping:          Vec2{prm.Damping.X, prm.Damping.Y},
			ForcingScale:     prm.ForcingScale,
			DensityFloor:     prm.DensityFloor,
		},
		Run: RunConfig{
			Frames:        DefaultFrames,
			Substeps:      sph.DefaultSubsteps,
			RecordEvery:   1,
			ValidateState: true,
		},
		Render: RenderConfig{
			ScreenWidth:  DefaultScreenWidth,
			ScreenHeight: DefaultScreenHeight,
			Radius:       DefaultRadius,
		},
	}
}

// Load reads a YAML file over the defaults, so a file only needs the keys
// it changes.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads a YAML file over base, which it modifies and returns.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, base); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return base, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Params converts the physics section into solver parameters.
func (c *Config) Params() sph.Params {
	p := c.Physics
	return sph.Params{
		N:            p.Particles,
		Width:        p.Width,
		Height:       p.Height,
		Dt:           p.Dt,
		Mass:         p.Mass,
		H:            p.SupportRadius,
		Rho0:         p.ReferenceDensity,
		Stiffness:    p.Stiffness,
		Gamma:        p.Gamma,
		Gravity:      r2.Vec{X: p.Gravity.X, Y: p.Gravity.Y},
		Epsilon:      p.Epsilon,
		Damping:      r2.Vec{X: p.Damping.X, Y: p.Damping.Y},
		ForcingScale: p.ForcingScale,
		DensityFloor: p.DensityFloor,
	}
}

// SolverOptions returns the solver options carried by the run section.
func (c *Config) SolverOptions() []sph.Option {
	opts := []sph.Option{sph.WithSubsteps(c.Run.Substeps)}
	if c.Run.Workers > 0 {
		opts = append(opts, sph.WithWorkers(c.Run.Workers))
	}
	return opts
}

func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return err
	}
	switch {
	case c.Run.Frames < 0:
		return fmt.Errorf("frames must not be negative, got %d", c.Run.Frames)
	case c.Run.Substeps < 1:
		return fmt.Errorf("substeps must be positive, got %d", c.Run.Substeps)
	case c.Run.Workers < 0:
		return fmt.Errorf("workers must not be negative, got %d", c.Run.Workers)
	case c.Run.RecordEvery < 0:
		return fmt.Errorf("record_every must not be negative, got %d", c.Run.RecordEvery)
	case c.Render.ScreenWidth <= 0 || c.Render.ScreenHeight <= 0:
		return fmt.Errorf("screen must have positive size, got %dx%d", c.Render.ScreenWidth, c.Render.ScreenHeight)
	case c.Render.Radius <= 0:
		return fmt.Errorf("radius must be positive, got %g", c.Render.Radius)
	}
	return nil
}

// Tunable lists the physics knobs that Set accepts.
var Tunable = []string{
	"dt", "mass", "support_radius", "reference_density", "stiffness", "gamma",
	"gravity_y", "forcing_scale", "density_floor", "damping",
}

// Set changes one physics value by its YAML name. damping sets both
// components.
func (c *Config) Set(name string, v float64) error {
	p := &c.Physics
	switch name {
	case "dt":
		p.Dt = v
	case "mass":
		p.Mass = v
	case "support_radius":
		p.SupportRadius = v
	case "reference_density":
		p.ReferenceDensity = v
	case "stiffness":
		p.Stiffness = v
	case "gamma":
		p.Gamma = v
	case "gravity_y":
		p.Gravity.Y = v
	case "forcing_scale":
		p.ForcingScale = v
	case "density_floor":
		p.DensityFloor = v
	case "damping":
		p.Damping = Vec2{v, v}
	default:
		return fmt.Errorf("unknown parameter %q (tunable: %v)", name, Tunable)
	}
	return nil
}
