// Package config loads the CUE-validated stackdock configuration.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var schemaSource string

// Config is the decoded configuration.
type Config struct {
	Database string        `json:"database"`
	LogLevel string        `json:"log_level"`
	Gateway  GatewayConfig `json:"gateway"`
	Engine   EngineConfig  `json:"engine"`
}

// GatewayConfig selects and tunes the remote gateway.
type GatewayConfig struct {
	Mode         string  `json:"mode"`
	URL          string  `json:"url,omitempty"`
	MinLatencyMS int     `json:"min_latency_ms"`
	MaxLatencyMS int     `json:"max_latency_ms"`
	FailureRate  float64 `json:"failure_rate"`
	Seed         uint64  `json:"seed"`
}

// EngineConfig names the engine policies.
type EngineConfig struct {
	StatusPolicy   string `json:"status_policy"`
	ConflictPolicy string `json:"conflict_policy"`
}

// Gateway modes.
const (
	ModeSimulated = "simulated"
	ModeHTTP      = "http"
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg, err := LoadBytes(nil, "default.cue")
	if err != nil {
		panic(fmt.Sprintf("config: embedded schema is invalid: %v", err))
	}
	return cfg
}

// Load reads a CUE file and applies the schema defaults. An empty path
// returns Default().
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return LoadBytes(data, path)
}

// LoadBytes unifies src with #Config, checks the result is concrete and
// decodes it. filename is used in error positions.
func LoadBytes(src []byte, filename string) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	user := ctx.CompileBytes(src, cue.Filename(filename))
	if err := user.Err(); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	value := def.Unify(user)
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validate %s: %w", filename, err)
	}

	var cfg Config
	if err := value.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filename, err)
	}
	if err := cfg.check(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", filename, err)
	}
	return &cfg, nil
}

// check covers the cross-field rules the schema does not express.
func (c *Config) check() error {
	if c.Gateway.Mode == ModeHTTP && c.Gateway.URL == "" {
		return errors.New("gateway.url is required in http mode")
	}
	if c.Gateway.MaxLatencyMS < c.Gateway.MinLatencyMS {
		return fmt.Errorf("gateway.max_latency_ms (%d) is below gateway.min_latency_ms (%d)",
			c.Gateway.MaxLatencyMS, c.Gateway.MinLatencyMS)
	}
	return nil
}
