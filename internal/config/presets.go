package config

import "sort"

// Presets adjust the default configuration for a named scenario.
var Presets = map[string]func(*Config){
	"reference": func(c *Config) {},
	// no gravity, pressure or forcing: particles keep their velocity
	"drift": func(c *Config) {
		c.Physics.Gravity = Vec2{}
		c.Physics.Stiffness = 0
		c.Physics.ForcingScale = 0
	},
	"calm": func(c *Config) {
		c.Physics.Particles = 200
		c.Physics.ReferenceDensity = 1
		c.Physics.Stiffness = 20
		c.Physics.DensityFloor = 0.05
		c.Physics.ForcingScale = 0.2
	},
	"dense": func(c *Config) {
		c.Physics.Particles = 400
		c.Physics.Width = 20
		c.Physics.Height = 10
		c.Physics.ReferenceDensity = 3
		c.Physics.Stiffness = 10
		c.Physics.DensityFloor = 0.1
		c.Physics.ForcingScale = 0.5
	},
}

// GetPreset returns a fresh config for the named preset, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
