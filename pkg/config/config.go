// Package config loads and validates a scenario configuration: the seed,
// profile geometry, extrude/render/solve parameters cmd/solvecore needs to
// build a sketch and drive a regeneration pass without hand-authoring Go
// code per scenario. It is grounded directly on pkg/dungeon/config.go's
// Config (struct shape, yaml+json tags, per-sub-struct Validate, sha256
// Hash for deterministic derivation), deliberately dropping its
// generateSeed() wall-clock fallback: spec.md S4.3/S9's determinism
// guarantee requires every run to be reproducible from its inputs alone, so
// an unset Seed is a validation error here instead of a silently
// time-seeded default.
package config

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes one sketch-generation scenario end to end: a closed
// profile polygon drawn on the XY workplane, how it is extruded into a
// solid, how the result is rendered, and how hard the solver is allowed to
// work.
type Config struct {
	// Seed identifies the scenario: cmd/solvecore uses it in output file
	// names and messages. pkg/raycast does not read it; its ray directions
	// are seeded from the query point. Zero is rejected by Validate rather than
	// auto-generated, so a scenario file always reproduces byte-identical
	// output across runs and machines.
	Seed uint64 `yaml:"seed" json:"seed"`

	Profile ProfileCfg `yaml:"profile" json:"profile"`
	Extrude ExtrudeCfg `yaml:"extrude" json:"extrude"`
	Render  RenderCfg  `yaml:"render,omitempty" json:"render,omitempty"`
	Solve   SolveCfg   `yaml:"solve,omitempty" json:"solve,omitempty"`
}

// ProfileCfg is the closed polygon (SPEC_FULL.md's drawing-workplane
// Group's source geometry) a scenario extrudes.
type ProfileCfg struct {
	// Points is the ordered list of (u,v) corners on the XY workplane,
	// closed implicitly from the last point back to the first.
	Points [][2]float64 `yaml:"points" json:"points"`
}

// ExtrudeCfg drives the extrude Group's (x,y,z) translation vector.
type ExtrudeCfg struct {
	Vector [3]float64 `yaml:"vector" json:"vector"`
}

// RenderCfg configures the SVG render sink (pkg/render.Options), with the
// same validated-defaults shape pkg/export's SVGOptions uses.
type RenderCfg struct {
	Width          int    `yaml:"width,omitempty" json:"width,omitempty"`
	Height         int    `yaml:"height,omitempty" json:"height,omitempty"`
	Margin         int    `yaml:"margin,omitempty" json:"margin,omitempty"`
	Title          string `yaml:"title,omitempty" json:"title,omitempty"`
	ShowWireframe  bool   `yaml:"showWireframe" json:"showWireframe"`
	ShowMesh       bool   `yaml:"showMesh" json:"showMesh"`
	ShowDimensions bool   `yaml:"showDimensions" json:"showDimensions"`
}

// SolveCfg holds a solver iteration budget (spec.md S5's "iteration caps"
// resource model); Validate defaults MaxIterations to 50. The value is not
// passed to pkg/regen or pkg/solve, whose Newton stage uses its own fixed
// cap of 50 iterations.
type SolveCfg struct {
	MaxIterations int `yaml:"maxIterations,omitempty" json:"maxIterations,omitempty"`
}

// LoadConfigFile reads, parses, and validates a YAML scenario file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading file: %w", err)
	}
	return LoadConfigFromBytes(data)
}

// LoadConfigFromBytes parses and validates YAML scenario bytes.
func LoadConfigFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks every field's constraints, filling in RenderCfg/SolveCfg
// defaults for zero-valued numeric fields along the way.
func (c *Config) Validate() error {
	if c.Seed == 0 {
		return errors.New("seed must be explicitly set and nonzero (no time-based fallback)")
	}
	if err := c.Profile.Validate(); err != nil {
		return fmt.Errorf("profile: %w", err)
	}
	if c.Extrude.Vector == ([3]float64{}) {
		return errors.New("extrude.vector must not be the zero vector")
	}
	c.Render.applyDefaults()
	if c.Solve.MaxIterations <= 0 {
		c.Solve.MaxIterations = 50
	}
	return nil
}

// Validate checks ProfileCfg constraints: a profile must be a genuine
// closed polygon, at least a triangle.
func (p *ProfileCfg) Validate() error {
	if len(p.Points) < 3 {
		return fmt.Errorf("points must list at least 3 corners, got %d", len(p.Points))
	}
	return nil
}

func (r *RenderCfg) applyDefaults() {
	if r.Width <= 0 {
		r.Width = 1200
	}
	if r.Height <= 0 {
		r.Height = 900
	}
	if r.Margin <= 0 {
		r.Margin = 60
	}
	if r.Title == "" {
		r.Title = "solvecore sketch"
	}
}

// ToYAML serializes the config back to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// Hash computes a deterministic sha256 digest of the configuration's YAML
// serialization, falling back to a digest of Seed if marshalling fails. No
// code in this module derives RNG seeds from it.
func (c *Config) Hash() []byte {
	data, err := c.ToYAML()
	if err != nil {
		h := sha256.New()
		fmt.Fprintf(h, "%d", c.Seed)
		return h.Sum(nil)
	}
	h := sha256.New()
	h.Write(data)
	return h.Sum(nil)
}
