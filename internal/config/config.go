// Package config provides configuration management for the schemaflow CLI.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/leapstack-labs/schemaflow/pkg/ddl"
	"github.com/spf13/pflag"
)

// Default configuration values.
const (
	DefaultOutput = "table"
	envPrefix     = "SCHEMAFLOW_"
)

// GeneratorConfig holds the kind-specific clause values the DDL
// generator emits.
type GeneratorConfig struct {
	TargetLag      string `koanf:"target_lag"`
	IcebergCatalog string `koanf:"iceberg_catalog"`
	ExternalVolume string `koanf:"external_volume"`
}

// Options converts the config to generator options.
func (g GeneratorConfig) Options() ddl.Options {
	return ddl.Options{
		TargetLag:      g.TargetLag,
		IcebergCatalog: g.IcebergCatalog,
		ExternalVolume: g.ExternalVolume,
	}
}

// Config holds all CLI configuration options.
type Config struct {
	Output    string          `koanf:"output"` // table or json
	Verbose   bool            `koanf:"verbose"`
	Generator GeneratorConfig `koanf:"generator"`
}

// findConfigFile finds the config file to use.
// Priority: explicit path > schemaflow.yaml > schemaflow.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"schemaflow.yaml", "schemaflow.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load loads configuration from file, environment variables, and flags.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"output":                    DefaultOutput,
		"verbose":                   false,
		"generator.target_lag":      ddl.DefaultTargetLag,
		"generator.iceberg_catalog": ddl.DefaultIcebergCatalog,
		"generator.external_volume": ddl.DefaultExternalVolume,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if configFile := findConfigFile(cfgFile); configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	}

	// 3. Environment variables: SCHEMAFLOW_GENERATOR_TARGET_LAG is
	// ambiguous between nesting and snake_case, so only the top-level
	// keys map from env; generator values come from file or flags.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (highest priority), kebab-case mapped to config keys
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			switch key {
			case "target_lag", "iceberg_catalog", "external_volume":
				key = "generator." + key
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}
