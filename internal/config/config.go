// Package config loads bridgegen settings from YAML, .env and BRIDGEGEN_* variables.
package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/peterkuimelis/bridgegen/internal/bridge"
	"github.com/peterkuimelis/bridgegen/internal/constraint"
	"github.com/peterkuimelis/bridgegen/internal/session"
)

// Environment variables read on top of the file.
const (
	EnvConfig        = "BRIDGEGEN_CONFIG"
	EnvBoards        = "BRIDGEGEN_BOARDS"
	EnvPolicy        = "BRIDGEGEN_POLICY"
	EnvVulnerability = "BRIDGEGEN_VULNERABILITY"
	EnvSeed          = "BRIDGEGEN_SEED"
	EnvWebAddr       = "BRIDGEGEN_WEB_ADDR"
)

const schemaURL = "bridgegen://config.schema.json"

//go:embed config.schema.json
var schemaJSON string

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

var ErrUnknownPreset = errors.New("unknown preset")

type Config struct {
	Boards               int                    `yaml:"boards"` // default count, and fallback for unparsable input
	Policy               string                 `yaml:"policy"`
	DefaultVulnerability string                 `yaml:"default_vulnerability"`
	Seed                 int64                  `yaml:"seed"` // 0 seeds from the clock
	Budget               constraint.BudgetTable `yaml:"budget"`
	Web                  struct {
		Addr        string `yaml:"addr"`
		SessionIdle int    `yaml:"session_idle_minutes"` // 0 keeps sessions forever
	} `yaml:"web"`
	Presets []Preset `yaml:"presets"`
}

// Preset is a named constraint set.
type Preset struct {
	Name         string                     `yaml:"name" json:"name"`
	Description  string                     `yaml:"description,omitempty" json:"description,omitempty"`
	Boards       int                        `yaml:"boards,omitempty" json:"boards,omitempty"`
	HCP          constraint.HCPSet          `yaml:"hcp" json:"hcp"`
	Distribution constraint.DistributionSet `yaml:"distribution" json:"distribution"`
}

// Constraints returns the preset as a generation constraint set.
func (p Preset) Constraints() constraint.Set {
	return constraint.Set{HCP: p.HCP, Distribution: p.Distribution}
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{
		Boards:               1,
		Policy:               string(session.PolicyRotating),
		DefaultVulnerability: bridge.VulNone.String(),
		Budget:               constraint.DefaultBudget,
		Presets:              builtinPresets(),
	}
	cfg.Web.Addr = ":8080"
	cfg.Web.SessionIdle = 120
	return cfg
}

// Load reads .env, then the YAML file at path (or $BRIDGEGEN_CONFIG when path is
// empty), then BRIDGEGEN_* overrides. With no file at all the defaults apply.
func Load(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv(EnvConfig)
	}

	// 2. Load YAML config
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		cfg, err = Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	// 3. Override with Environment Variables if present
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse validates data against the embedded schema and decodes it over the defaults.
// File presets replace the built-in ones when present.
func Parse(data []byte) (*Config, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc != nil {
		if err := validateSchema(doc); err != nil {
			return nil, err
		}
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Budget = cfg.Budget.WithDefaults()
	return cfg, cfg.Validate()
}

func validateSchema(doc any) error {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
	})
	if schemaErr != nil {
		return fmt.Errorf("failed to compile config schema: %w", schemaErr)
	}

	var v any
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal config for schema validation: %w", err)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("failed to normalize config for schema validation: %w", err)
	}
	if err := compiledSchema.Validate(v); err != nil {
		return fmt.Errorf("config schema validation failed: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvBoards); v != "" {
		c.Boards = session.ClampBoardCount(v, c.Boards)
	}
	if v := os.Getenv(EnvPolicy); v != "" {
		c.Policy = v
	}
	if v := os.Getenv(EnvVulnerability); v != "" {
		c.DefaultVulnerability = v
	}
	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		c.Seed = seed
	}
	if v := os.Getenv(EnvWebAddr); v != "" {
		c.Web.Addr = v
	}
	return nil
}

// Validate checks the fields the schema cannot.
func (c *Config) Validate() error {
	if _, err := session.ParsePolicy(c.Policy); err != nil {
		return err
	}
	if _, err := bridge.ParseVulnerability(c.DefaultVulnerability); err != nil {
		return err
	}
	seen := make(map[string]bool, len(c.Presets))
	for _, p := range c.Presets {
		if seen[p.Name] {
			return fmt.Errorf("duplicate preset %q", p.Name)
		}
		seen[p.Name] = true
		if _, _, err := p.Constraints().Compile(); err != nil {
			return fmt.Errorf("preset %q: %w", p.Name, err)
		}
	}
	return nil
}

// SessionOptions turns the config into options for a new session.
func (c *Config) SessionOptions() session.Options {
	policy, _ := session.ParsePolicy(c.Policy)
	vul, _ := bridge.ParseVulnerability(c.DefaultVulnerability)
	return session.Options{Policy: policy, DefaultVulnerability: vul}
}

// Preset finds a preset by name.
func (c *Config) Preset(name string) (Preset, error) {
	for _, p := range c.Presets {
		if p.Name == name {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w %q", ErrUnknownPreset, name)
}

// Resolve merges a named preset with explicit constraint classes. A class given with a
// mode other than none replaces the preset's class. The returned count is the preset's
// board count, or 0 when it sets none.
func (c *Config) Resolve(preset string, hcp constraint.HCPSet, dist constraint.DistributionSet) (constraint.Set, int, error) {
	var set constraint.Set
	boards := 0
	if preset != "" {
		p, err := c.Preset(preset)
		if err != nil {
			return constraint.Set{}, 0, err
		}
		set = p.Constraints()
		boards = p.Boards
	}
	if m, err := constraint.ParseMode(string(hcp.Mode)); err != nil {
		return constraint.Set{}, 0, err
	} else if m != constraint.ModeNone {
		set.HCP = hcp
	}
	if m, err := constraint.ParseMode(string(dist.Mode)); err != nil {
		return constraint.Set{}, 0, err
	} else if m != constraint.ModeNone {
		set.Distribution = dist
	}
	return set, boards, nil
}
