// Package config loads the immutable game configuration the simulation
// core is threaded with. Grounded on the teacher's
// reinforcement.FromYaml/TrainingConfig: viper reads a YAML file into an
// outer envelope, which is then strictly unmarshaled into a typed Go
// struct, rather than keeping constants as mutable package-level vars
// (design note §9, "Global state").
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// SpawnGroup describes one batch of asteroids seeded at game start.
type SpawnGroup struct {
	Material string  `yaml:"material"`
	Count    int     `yaml:"count"`
	Mass     float64 `yaml:"mass"`
}

// GameConfig is the immutable set of tunables the whole core is threaded
// with, constructed once at startup (spec §6.2, §9). Every field has the
// spec-mandated default and a yaml tag, MaxThings included; world bounds
// and the wire codec are not part of GameConfig and stay fixed.
type GameConfig struct {
	Port     int `yaml:"port"`
	NumTeams int `yaml:"numTeams"`

	TurnDuration   float64 `yaml:"turnDuration"`   // T_game
	PhysicsDt      float64 `yaml:"physicsDt"`      // dt
	MaxSpeed       float64 `yaml:"maxSpeed"`       // v_max
	MaxThrustOrder float64 `yaml:"maxThrustOrder"` // not applied by orders.SetOrder
	MaxTurns       int     `yaml:"maxTurns"`
	MinMass        float64 `yaml:"minMass"`
	MaxThings      int     `yaml:"maxThings"`
	LaunchDistance float64 `yaml:"launchDistance"`
	MaxLaserLength float64 `yaml:"maxLaserLength"`

	PerTurnTimeout   time.Duration `yaml:"perTurnTimeout"`
	CumulativeBudget time.Duration `yaml:"cumulativeBudget"`

	InitialSpawn []SpawnGroup `yaml:"initialSpawn"`
}

// Default returns the spec-mandated default configuration (spec §6.2).
func Default() GameConfig {
	return GameConfig{
		Port:     2323,
		NumTeams: 4,

		TurnDuration:   1.0,
		PhysicsDt:      0.2,
		MaxSpeed:       30.0,
		MaxThrustOrder: 60.0,
		MaxTurns:       300,
		MinMass:        3.0,
		MaxThings:      512,
		LaunchDistance: 48.0,
		MaxLaserLength: 512.0,

		PerTurnTimeout:   60 * time.Second,
		CumulativeBudget: 300 * time.Second,

		InitialSpawn: []SpawnGroup{
			{Material: "Vinyl", Count: 5, Mass: 40},
			{Material: "Uranium", Count: 5, Mass: 40},
		},
	}
}

// outerConfig mirrors the teacher's OuterConfig envelope: a "kind"
// discriminator plus an opaque "def" payload, allowing one YAML file to
// host more than one config shape in the future without a breaking
// change to this loader.
type outerConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// Load reads a YAML config file at path and overlays it onto Default().
// A file without a "def" section yields Default() unchanged; a file that
// cannot be read is an error. Callers with no config file use Default()
// directly instead.
func Load(path string) (GameConfig, error) {
	cfg := Default()

	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	if err := vp.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	outer := &outerConfig{}
	if err := vp.Unmarshal(outer); err != nil {
		return cfg, fmt.Errorf("config: unmarshal envelope: %w", err)
	}
	if outer.Def == nil {
		return cfg, nil
	}

	raw, err := yaml.Marshal(outer.Def)
	if err != nil {
		return cfg, fmt.Errorf("config: remarshal def: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("config: unmarshal game config: %w", err)
	}
	return cfg, nil
}
