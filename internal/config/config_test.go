package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	cfg, used, err := Load("", nil)
	require.NoError(t, err)

	assert.Empty(t, used, "no config file present")
	assert.Equal(t, "table", cfg.Output)
	assert.True(t, filepath.IsAbs(cfg.ProjectDir))
	assert.Equal(t, filepath.Join(cfg.ProjectDir, DefaultStateFile), cfg.StatePath)
	assert.False(t, cfg.Verbose)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	content := "output: json\nexcludes:\n  - generated\n  - third_party\nverbose: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644))

	cfg, used, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, ConfigFileName), used)
	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, []string{"generated", "third_party"}, cfg.Excludes)
	assert.True(t, cfg.Verbose)
}

func TestLoad_FindsConfigUpward(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte("output: yaml\n"), 0o644))

	nested := filepath.Join(root, "sub", "dir")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	chdir(t, nested)

	cfg, used, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ConfigFileName), used)
	assert.Equal(t, "yaml", cfg.Output)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("output: json\n"), 0o644))
	t.Setenv("DEPSCAN_OUTPUT", "yaml")

	cfg, _, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Output)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	t.Setenv("DEPSCAN_OUTPUT", "yaml")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", DefaultOutput, "")
	flags.String("state", "", "")
	require.NoError(t, flags.Parse([]string{"--output=json", "--state=:memory:"}))

	cfg, _, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, ":memory:", cfg.StatePath, "--state maps onto state_path")
}

func TestLoad_UnchangedFlagsIgnored(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("output: json\n"), 0o644))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", DefaultOutput, "")
	require.NoError(t, flags.Parse(nil))

	cfg, _, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output, "default flag value does not override the file")
}

func TestLoad_InvalidOutput(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("output: csv\n"), 0o644))

	_, _, err := Load("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: yaml\n"), 0o644))

	cfg, used, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, "yaml", cfg.Output)
}
