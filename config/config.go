// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	World      WorldConfig      `yaml:"world"`
	Sim        SimConfig        `yaml:"sim"`
	Mode       Mode             `yaml:"mode"`
	Toggles    TogglesConfig    `yaml:"toggles"`
	Population PopulationConfig `yaml:"population"`
	Agents     AgentsConfig     `yaml:"agents"`
	Forces     ForcesConfig     `yaml:"forces"`
	Flocking   FlockingConfig   `yaml:"flocking"`
	Pheromone  PheromoneConfig  `yaml:"pheromone"`
	Forager    ForagerConfig    `yaml:"forager"`
	Builder    BuilderConfig    `yaml:"builder"`
	Structure  StructureConfig  `yaml:"structure"`
	Scout      ScoutConfig      `yaml:"scout"`
	Signal     SignalConfig     `yaml:"signal"`
	Food       FoodConfig       `yaml:"food"`
	Obstacle   ObstacleConfig   `yaml:"obstacle"`
	Base       BaseConfig       `yaml:"base"`
	Layout     LayoutConfig     `yaml:"layout"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	UI         UIConfig         `yaml:"ui"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds simulation world dimensions.
type WorldConfig struct {
	Width  int `yaml:"width"`  // 0 = use screen width
	Height int `yaml:"height"` // 0 = use screen height
}

// SimConfig holds integration parameters.
type SimConfig struct {
	MaxDT           float64 `yaml:"max_dt"`           // Upper clamp for the normalized frame delta
	SpeedMultiplier float64 `yaml:"speed_multiplier"` // Scales every agent's max speed
	ForceScale      float64 `yaml:"force_scale"`      // Steering force to acceleration
	Damping         float64 `yaml:"damping"`          // Velocity retained per tick
}

// TogglesConfig holds the global behavior switches.
type TogglesConfig struct {
	Flocking bool `yaml:"flocking"`
	Trails   bool `yaml:"trails"`
	Signals  bool `yaml:"signals"`
}

// PopulationConfig holds the target agent count per kind.
type PopulationConfig struct {
	Foragers int `yaml:"foragers"`
	Builders int `yaml:"builders"`
	Scouts   int `yaml:"scouts"`
}

// Total returns the sum of all population targets.
func (p PopulationConfig) Total() int {
	return max(0, p.Foragers) + max(0, p.Builders) + max(0, p.Scouts)
}

// KindConfig holds movement parameters shared by every agent of one kind.
type KindConfig struct {
	MaxSpeed    float64 `yaml:"max_speed"`
	SenseRadius float64 `yaml:"sense_radius"`
}

// AgentsConfig holds per-kind movement parameters.
type AgentsConfig struct {
	Forager KindConfig `yaml:"forager"`
	Builder KindConfig `yaml:"builder"`
	Scout   KindConfig `yaml:"scout"`
}

// ForcesConfig holds steering weights.
type ForcesConfig struct {
	Wander         float64 `yaml:"wander"`
	WanderJitter   float64 `yaml:"wander_jitter"` // Radians of heading change per tick (full width)
	Seek           float64 `yaml:"seek"`
	Return         float64 `yaml:"return"`
	Trail          float64 `yaml:"trail"`
	Obstacle       float64 `yaml:"obstacle"`
	ObstacleRange  float64 `yaml:"obstacle_range"`
	Boundary       float64 `yaml:"boundary"`
	BoundaryMargin float64 `yaml:"boundary_margin"`
	Signal         float64 `yaml:"signal"`
	SignalBand     float64 `yaml:"signal_band"`
	Frontier       float64 `yaml:"frontier"`
}

// FlockingConfig holds forager flocking and scout spacing parameters.
type FlockingConfig struct {
	AlignRadius           float64 `yaml:"align_radius"`
	CohesionRadius        float64 `yaml:"cohesion_radius"`
	SeparationRadius      float64 `yaml:"separation_radius"`
	AlignWeight           float64 `yaml:"align_weight"`
	CohesionWeight        float64 `yaml:"cohesion_weight"`
	SeparationWeight      float64 `yaml:"separation_weight"`
	ScoutSeparationRadius float64 `yaml:"scout_separation_radius"`
	ScoutSeparationWeight float64 `yaml:"scout_separation_weight"`
}

// PheromoneConfig holds trail field parameters.
type PheromoneConfig struct {
	CellSize          float64 `yaml:"cell_size"` // Cell edge in world units
	Decay             float64 `yaml:"decay"`     // Multiplier applied once per tick
	Deposit           float64 `yaml:"deposit"`   // Amount laid by a returning forager per tick
	GradientRadius    float64 `yaml:"gradient_radius"`
	GradientThreshold float64 `yaml:"gradient_threshold"`
	CoverageThreshold float64 `yaml:"coverage_threshold"`
}

// ForagerConfig holds forager state machine parameters.
type ForagerConfig struct {
	PickupMargin float64 `yaml:"pickup_margin"` // Added to food radius
	ReturnMargin float64 `yaml:"return_margin"` // Added to base radius
	Take         float64 `yaml:"take"`          // Food units removed per pickup
}

// BuilderConfig holds structure placement parameters.
type BuilderConfig struct {
	AreaRadius    float64 `yaml:"area_radius"` // Radius of the pheromone area sample
	Threshold     float64 `yaml:"threshold"`
	CooldownMin   float64 `yaml:"cooldown_min"`
	CooldownMax   float64 `yaml:"cooldown_max"`
	Spacing       float64 `yaml:"spacing"`
	MaxNearby     int     `yaml:"max_nearby"`
	MaxStructures int     `yaml:"max_structures"`
}

// StructureConfig holds structure lifecycle parameters.
type StructureConfig struct {
	MaxAge   float64 `yaml:"max_age"`   // Ticks before fading starts
	FadeRate float64 `yaml:"fade_rate"` // Opacity lost per tick once old
	Radius   float64 `yaml:"radius"`    // Drawn size
}

// ScoutConfig holds exploration parameters.
type ScoutConfig struct {
	BucketSize     float64 `yaml:"bucket_size"`
	SignalCooldown float64 `yaml:"signal_cooldown"`
}

// SignalConfig holds expanding signal parameters.
type SignalConfig struct {
	MaxRadius float64 `yaml:"max_radius"`
	Speed     float64 `yaml:"speed"`
	FadeRate  float64 `yaml:"fade_rate"`
}

// FoodConfig holds food source parameters.
type FoodConfig struct {
	Initial   int     `yaml:"initial"`
	AmountMin float64 `yaml:"amount_min"`
	AmountMax float64 `yaml:"amount_max"`
	RadiusMin float64 `yaml:"radius_min"`
	RadiusMax float64 `yaml:"radius_max"`
	RegenMin  float64 `yaml:"regen_min"`
	RegenMax  float64 `yaml:"regen_max"`
}

// ObstacleConfig holds obstacle generation parameters.
type ObstacleConfig struct {
	Initial      int     `yaml:"initial"`
	CircleChance float64 `yaml:"circle_chance"`
	RadiusMin    float64 `yaml:"radius_min"`
	RadiusMax    float64 `yaml:"radius_max"`
	SideMin      float64 `yaml:"side_min"`
	SideMax      float64 `yaml:"side_max"`
	BaseClear    float64 `yaml:"base_clear"` // Minimum gap kept around bases
}

// BaseConfig holds base placement parameters.
type BaseConfig struct {
	Count  int     `yaml:"count"`
	Radius float64 `yaml:"radius"`
}

// LayoutConfig holds noise-driven placement parameters.
type LayoutConfig struct {
	Enabled     bool    `yaml:"enabled"`
	NoiseScale  float64 `yaml:"noise_scale"`
	Threshold   float64 `yaml:"threshold"` // Normalized noise value a candidate must exceed
	MaxAttempts int     `yaml:"max_attempts"`
	Margin      float64 `yaml:"margin"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`          // Seconds of simulated time per window
	PerfCollectorWindow int     `yaml:"perf_collector_window"` // Ticks averaged by the perf collector
}

// UIConfig holds viewer parameters.
type UIConfig struct {
	StatsRefreshTicks int     `yaml:"stats_refresh_ticks"`
	PanelWidth        int     `yaml:"panel_width"`
	MaxPopulation     int     `yaml:"max_population"` // Slider upper bound per kind
	MaxSpeed          float64 `yaml:"max_speed"`      // Slider upper bound for the speed multiplier
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	WorldW   float64
	WorldH   float64
	GridCols int
	GridRows int
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path (or embedded defaults if empty).
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only fields present in the file are overwritten
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Default returns the embedded defaults. Panics if they fail to parse.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

func (c *Config) validate() error {
	if c.Pheromone.CellSize <= 0 {
		return fmt.Errorf("pheromone.cell_size must be positive, got %v", c.Pheromone.CellSize)
	}
	if c.Pheromone.Decay < 0 || c.Pheromone.Decay >= 1 {
		return fmt.Errorf("pheromone.decay must be in [0,1), got %v", c.Pheromone.Decay)
	}
	if c.Builder.CooldownMax < c.Builder.CooldownMin {
		return fmt.Errorf("builder.cooldown_max (%v) below cooldown_min (%v)", c.Builder.CooldownMax, c.Builder.CooldownMin)
	}
	if c.Base.Count < 1 {
		return fmt.Errorf("base.count must be at least 1, got %d", c.Base.Count)
	}
	if c.Scout.BucketSize <= 0 {
		return fmt.Errorf("scout.bucket_size must be positive, got %v", c.Scout.BucketSize)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	// World dimensions default to screen size if not specified
	worldW := c.World.Width
	if worldW == 0 {
		worldW = c.Screen.Width
	}
	worldH := c.World.Height
	if worldH == 0 {
		worldH = c.Screen.Height
	}
	c.SetWorldSize(float64(worldW), float64(worldH))
}

// SetWorldSize updates the world dimensions and the grid shape derived from them.
func (c *Config) SetWorldSize(w, h float64) {
	c.Derived.WorldW = w
	c.Derived.WorldH = h
	c.Derived.GridCols = int(math.Ceil(w / c.Pheromone.CellSize))
	c.Derived.GridRows = int(math.Ceil(h / c.Pheromone.CellSize))
}

// Clone returns an independent copy. Config holds no reference types, so a
// value copy is deep.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// WriteYAML writes the config to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
