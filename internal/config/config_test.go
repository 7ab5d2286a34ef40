package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/schemaflow/pkg/ddl"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schemaflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, ddl.DefaultTargetLag, cfg.Generator.TargetLag)
	assert.Equal(t, ddl.DefaultIcebergCatalog, cfg.Generator.IcebergCatalog)
	assert.Equal(t, ddl.DefaultExternalVolume, cfg.Generator.ExternalVolume)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfigFile(t, `
output: json
generator:
  target_lag: 10 minutes
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, "10 minutes", cfg.Generator.TargetLag)
	// untouched keys keep their defaults
	assert.Equal(t, ddl.DefaultIcebergCatalog, cfg.Generator.IcebergCatalog)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "output: json\n")
	t.Setenv("SCHEMAFLOW_OUTPUT", "table")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "table", cfg.Output)
}

func TestLoadFlagsOverrideEverything(t *testing.T) {
	path := writeConfigFile(t, "output: json\n")
	t.Setenv("SCHEMAFLOW_OUTPUT", "json")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", DefaultOutput, "")
	flags.String("target-lag", "", "")
	require.NoError(t, flags.Parse([]string{"--output", "table", "--target-lag", "30 seconds"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "table", cfg.Output)
	assert.Equal(t, "30 seconds", cfg.Generator.TargetLag)
}

func TestLoadUnchangedFlagsIgnored(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", "flagdefault", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load("", flags)
	require.NoError(t, err)

	// an unset flag must not shadow the configured default
	assert.Equal(t, DefaultOutput, cfg.Output)
}

func TestGeneratorConfigOptions(t *testing.T) {
	gc := GeneratorConfig{TargetLag: "1 hour", IcebergCatalog: "GLUE", ExternalVolume: "vol"}
	opts := gc.Options()

	assert.Equal(t, "1 hour", opts.TargetLag)
	assert.Equal(t, "GLUE", opts.IcebergCatalog)
	assert.Equal(t, "vol", opts.ExternalVolume)
}
