package simulation

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/geometry"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed config.schema.json
var schemaJSON string

const schemaURL = "config.schema.json"

const (
	ObstacleSphere = "sphere"
	ObstacleBox    = "box"
)

// FlockConfig places one flock: count boids in a sphere of given radius
// resting on origin.
type FlockConfig struct {
	Name   string            `json:"name" toml:"name"`
	Count  int               `json:"count" toml:"count"`
	Radius float64           `json:"radius" toml:"radius"`
	Origin geometry.Vector3D `json:"origin" toml:"origin"`
	// Settings overrides the world settings for this flock only.
	Settings *behavior.Settings `json:"settings,omitempty" toml:"settings,omitempty"`
}

// ObstacleConfig describes a static obstacle of the scene.
// Spheres use Center and Radius, boxes use Min and Max.
type ObstacleConfig struct {
	Name   string            `json:"name" toml:"name"`
	Kind   string            `json:"kind" toml:"kind"`
	Center geometry.Vector3D `json:"center" toml:"center"`
	Radius float64           `json:"radius" toml:"radius"`
	Min    geometry.Vector3D `json:"min" toml:"min"`
	Max    geometry.Vector3D `json:"max" toml:"max"`
}

type Config struct {
	// Simulation
	TickRate int    `json:"tickRate" toml:"tickRate"` // ticks per second
	Seed     uint64 `json:"seed" toml:"seed"`         // 0 picks a random seed

	// Boids
	Settings            behavior.Settings `json:"settings" toml:"settings"`
	AvoidanceDirections int               `json:"avoidanceDirections" toml:"avoidanceDirections"`

	// Viewer
	ScreenWidth    int     `json:"screenWidth" toml:"screenWidth"`
	ScreenHeight   int     `json:"screenHeight" toml:"screenHeight"`
	Scale          float64 `json:"scale" toml:"scale"` // pixels per world unit
	ShowBoundaries bool    `json:"showBoundaries" toml:"showBoundaries"`

	Flocks    []FlockConfig    `json:"flocks" toml:"flocks"`
	Obstacles []ObstacleConfig `json:"obstacles" toml:"obstacles"`
}

// DefaultConfig places the fish schools of the museum halls.
func DefaultConfig() *Config {
	flock := func(name string, count int, radius, x, y, z float64) FlockConfig {
		return FlockConfig{Name: name, Count: count, Radius: radius, Origin: geometry.NewVector(x, y, z)}
	}
	return &Config{
		TickRate:            60,
		Seed:                0,
		Settings:            behavior.DefaultSettings(),
		AvoidanceDirections: behavior.DefaultDirectionCount,
		ScreenWidth:         1280,
		ScreenHeight:        800,
		Scale:               6,
		ShowBoundaries:      false,
		Flocks: []FlockConfig{
			flock("entrance", 15, 10, 26, 4, 31),
			flock("entrance-low", 5, 7, 31, 2, 24),
			flock("entrance-pond", 3, 10, 25, 2, 30),
			flock("great-hall", 50, 15, -51, 1.5, 18),
			flock("north-wing", 20, 10, -77, 1.5, -25),
			flock("corridor", 10, 5, -37, 1.5, -8),
			flock("west-gallery", 20, 10, -30, 1.5, -30),
			flock("east-gallery", 20, 10, -30, 1.5, 25),
			flock("aquarium", 30, 15, -80, 1.5, 18),
			flock("atrium", 30, 15, -30, 6, 0),
			flock("mezzanine", 30, 15, -70, 5, -5),
			flock("alcove", 2, 6, -12, 1.5, -12),
		},
		Obstacles: []ObstacleConfig{
			{Name: "atrium-pillar", Kind: ObstacleBox, Min: geometry.NewVector(-32, 0, -2), Max: geometry.NewVector(-28, 30, 2)},
			{Name: "great-hall-statue", Kind: ObstacleSphere, Center: geometry.NewVector(-51, 12, 18), Radius: 3},
			{Name: "aquarium-rock", Kind: ObstacleSphere, Center: geometry.NewVector(-80, 10, 18), Radius: 4},
			{Name: "entrance-desk", Kind: ObstacleBox, Min: geometry.NewVector(22, 0, 28), Max: geometry.NewVector(30, 6, 32)},
		},
	}
}

// Validate checks what the schema cannot express.
func (c *Config) Validate() error {
	if c.TickRate <= 0 {
		return fmt.Errorf("tickRate %d: %w", c.TickRate, ErrInvalidConfig)
	}
	if err := validateSettings(c.Settings); err != nil {
		return err
	}
	seen := make(map[string]bool, len(c.Flocks))
	for _, f := range c.Flocks {
		if f.Name == "" {
			return fmt.Errorf("flock without a name: %w", ErrInvalidConfig)
		}
		if seen[f.Name] {
			return fmt.Errorf("flock %q: %w", f.Name, ErrDuplicateFlock)
		}
		seen[f.Name] = true
		if f.Count < 0 || f.Radius <= 0 {
			return fmt.Errorf("flock %q with %d boids in radius %v: %w", f.Name, f.Count, f.Radius, ErrInvalidConfig)
		}
		if f.Settings != nil {
			if err := validateSettings(*f.Settings); err != nil {
				return fmt.Errorf("flock %q: %w", f.Name, err)
			}
		}
	}
	for _, o := range c.Obstacles {
		if o.Kind != ObstacleSphere && o.Kind != ObstacleBox {
			return fmt.Errorf("obstacle %q of kind %q: %w", o.Name, o.Kind, ErrInvalidConfig)
		}
	}
	return nil
}

func validateSettings(s behavior.Settings) error {
	if s.MinSpeed > s.MaxSpeed {
		return fmt.Errorf("minSpeed %v above maxSpeed %v: %w", s.MinSpeed, s.MaxSpeed, ErrInvalidConfig)
	}
	return nil
}

// LoadConfig loads configuration from a JSON or TOML file and validates it
// against the schema. An empty schemaFile uses the embedded schema.
// Keys missing from the file keep their DefaultConfig value.
func LoadConfig(configFile string, schemaFile string) (*Config, error) {
	// 1. Compile Schema
	sch, err := compileSchema(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	// 2. Read Config File, TOML is normalised to JSON
	raw, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	doc, err := toJSON(configFile, raw)
	if err != nil {
		return nil, err
	}

	// 3. Validate
	var v interface{}
	if err := json.Unmarshal(doc, &v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 4. Unmarshal over the defaults
	cfg := DefaultConfig()
	if err := json.Unmarshal(doc, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := overlayFlockSettings(doc, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flock settings: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", configFile, err)
	}
	return cfg, nil
}

// overlayFlockSettings makes per flock settings start from the world
// settings, so a flock only lists the values it changes.
func overlayFlockSettings(doc []byte, cfg *Config) error {
	var partial struct {
		Flocks []struct {
			Settings json.RawMessage `json:"settings"`
		} `json:"flocks"`
	}
	if err := json.Unmarshal(doc, &partial); err != nil {
		return err
	}
	for i, f := range partial.Flocks {
		if len(f.Settings) == 0 || i >= len(cfg.Flocks) {
			continue
		}
		s := cfg.Settings
		if err := json.Unmarshal(f.Settings, &s); err != nil {
			return err
		}
		cfg.Flocks[i].Settings = &s
	}
	return nil
}

func compileSchema(schemaFile string) (*jsonschema.Schema, error) {
	if schemaFile == "" {
		return jsonschema.CompileString(schemaURL, schemaJSON)
	}
	return jsonschema.Compile(schemaFile)
}

func toJSON(configFile string, raw []byte) ([]byte, error) {
	switch ext := strings.ToLower(filepath.Ext(configFile)); ext {
	case ".json":
		return raw, nil
	case ".toml":
		var m map[string]interface{}
		if err := toml.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("failed to decode config toml: %w", err)
		}
		doc, err := json.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("failed to convert toml to json: %w", err)
		}
		return doc, nil
	default:
		return nil, fmt.Errorf("config file extension %q: %w", ext, ErrUnsupportedFormat)
	}
}
