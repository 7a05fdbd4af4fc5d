package config_test

import (
	"path/filepath"
	"testing"

	"bennypowers.dev/ivory/internal/compiler"
	"bennypowers.dev/ivory/internal/config"
	"bennypowers.dev/ivory/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("testdata/none")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultMaxDepth, cfg.MaxDepth)
	assert.Equal(t, config.DefaultMaxIterations, cfg.MaxIterations)
	assert.Equal(t, "testdata/none", cfg.Dir)
	assert.Empty(t, cfg.IncludePaths)
}

func TestLoadYAML(t *testing.T) {
	cfg, err := config.Load("testdata/yaml")
	require.NoError(t, err)
	assert.Equal(t, "testdata/yaml", cfg.Dir)
	assert.Equal(t, []string{"partials"}, cfg.IncludePaths)
	assert.Equal(t, "px", cfg.DefaultUnit)
	assert.Equal(t, 64, cfg.MaxDepth)
	assert.Equal(t, config.DefaultMaxIterations, cfg.MaxIterations)
	assert.True(t, cfg.Validate)
	require.Len(t, cfg.TokensFiles, 1)
	assert.Equal(t, "ds", cfg.TokensFiles[0].Prefix)
	assert.Equal(t, 4, cfg.Variables["gap"])
}

func TestLoadJSONWithComments(t *testing.T) {
	cfg, err := config.Load("testdata/json")
	require.NoError(t, err)
	assert.Equal(t, "em", cfg.DefaultUnit)
	assert.Equal(t, 50, cfg.MaxIterations)
	assert.Equal(t, config.DefaultMaxDepth, cfg.MaxDepth)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := config.LoadFile("testdata/missing.json")
	assert.ErrorContains(t, err, "failed to read config")

	dir := t.TempDir()
	path := filepath.Join(dir, "ivory.yaml")
	require.NoError(t, writeFile(path, "maxDepth: [nope"))
	_, err = config.LoadFile(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestLoadVariables(t *testing.T) {
	vars, err := config.LoadVariables("testdata/vars/vars.json")
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), float64(2), float64(3)}, vars["sizes"])
	assert.Equal(t, true, vars["wide"])
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("IVORY_DEFAULT_UNIT", "rem")
	t.Setenv("IVORY_INCLUDE_PATH", "a"+string(filepath.ListSeparator)+"b")
	t.Setenv("IVORY_MAX_DEPTH", "12")
	t.Setenv("IVORY_LOG_LEVEL", "debug")
	t.Setenv("IVORY_VALIDATE", "true")

	cfg := config.Default()
	cfg.ApplyEnv()
	assert.Equal(t, "rem", cfg.DefaultUnit)
	assert.Equal(t, []string{"a", "b"}, cfg.IncludePaths)
	assert.Equal(t, 12, cfg.MaxDepth)
	assert.Equal(t, config.DefaultMaxIterations, cfg.MaxIterations)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Validate)
}

func TestSetupLogging(t *testing.T) {
	level := log.GetLevel()
	t.Cleanup(func() { log.SetLevel(level) })

	cfg := config.Default()
	cfg.LogLevel = "warn"
	require.NoError(t, cfg.SetupLogging())
	assert.Equal(t, log.LevelWarn, log.GetLevel())

	cfg.LogLevel = "loud"
	assert.Error(t, cfg.SetupLogging())
	assert.Equal(t, log.LevelWarn, log.GetLevel())
}

func TestApply(t *testing.T) {
	cfg, err := config.Load("testdata/yaml")
	require.NoError(t, err)

	c := compiler.New()
	require.NoError(t, cfg.Apply(c))
	assert.Equal(t, "px", c.DefaultUnit())
	assert.Equal(t, 64, c.MaxDepth)
	assert.True(t, c.Validate)
	require.Len(t, c.IncludePaths(), 1)
	assert.Equal(t, "partials", filepath.Base(c.IncludePaths()[0]))

	got, err := c.CompileString(`@include 'lib.iss';
a { gap: $gap; font: $font; color: $accent; fg: $brand[fg]; pad: $ds-space-small; }`)
	require.NoError(t, err)
	assert.Equal(t, "a {\ngap: 4px;\nfont: 'Open Sans';\ncolor: red;\nfg: black;\npad: 2px;\n}\n", got)
}

func TestApplyErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{"bad unit", config.Config{DefaultUnit: "furlong"}},
		{"bad variable", config.Config{Variables: map[string]any{"no good": 1}}},
		{"missing variable file", config.Config{VariableFiles: []string{"testdata/absent.json"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cfg.Apply(compiler.New()))
		})
	}
}
