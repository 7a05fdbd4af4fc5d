// Package config loads compiler settings from ivory.yaml or ivory.json and
// from IVORY_* environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"bennypowers.dev/ivory/internal/compiler"
	"bennypowers.dev/ivory/internal/log"
	"bennypowers.dev/ivory/internal/tokens"
	"github.com/tidwall/jsonc"
	"github.com/xyproto/env/v2"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxDepth      = 256
	DefaultMaxIterations = 10000
)

// Config holds the settings applied to a compiler
type Config struct {
	// IncludePaths are searched by @include, in order
	IncludePaths []string `json:"includePaths,omitempty" yaml:"includePaths,omitempty"`
	// DefaultUnit is printed after numbers written without a unit
	DefaultUnit string `json:"defaultUnit,omitempty" yaml:"defaultUnit,omitempty"`
	// Variables are injected as globals
	Variables map[string]any `json:"variables,omitempty" yaml:"variables,omitempty"`
	// VariableFiles are JSON or YAML files of further variables
	VariableFiles []string `json:"variableFiles,omitempty" yaml:"variableFiles,omitempty"`
	// TokensFiles are design token files injected as variables
	TokensFiles     []tokens.File `json:"tokensFiles,omitempty" yaml:"tokensFiles,omitempty"`
	OutputDirectory string        `json:"outputDirectory,omitempty" yaml:"outputDirectory,omitempty"`
	MaxDepth        int           `json:"maxDepth,omitempty" yaml:"maxDepth,omitempty"`
	MaxIterations   int           `json:"maxIterations,omitempty" yaml:"maxIterations,omitempty"`
	Validate        bool          `json:"validate,omitempty" yaml:"validate,omitempty"`
	LogLevel        string        `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`

	// Dir is the directory relative paths resolve against
	Dir string `json:"-" yaml:"-"`
}

// Default returns the configuration used when no file is found
func Default() *Config {
	return &Config{
		MaxDepth:      DefaultMaxDepth,
		MaxIterations: DefaultMaxIterations,
		LogLevel:      "info",
	}
}

// candidates in search order
var candidates = []string{
	".config/ivory.yaml",
	".config/ivory.yml",
	".config/ivory.json",
	"ivory.yaml",
	"ivory.yml",
	"ivory.json",
}

// Load reads the first config file found in dir. Defaults are returned when
// there is none.
func Load(dir string) (*Config, error) {
	for _, name := range candidates {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return LoadFile(path)
	}
	cfg := Default()
	cfg.Dir = dir
	return cfg, nil
}

// LoadFile reads a config file. Fields it leaves out keep their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg := Default()
	if err := decode(data, path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.Dir = filepath.Dir(path)
	if filepath.Base(cfg.Dir) == ".config" {
		cfg.Dir = filepath.Dir(cfg.Dir)
	}
	log.Debug("Loaded config from %s", path)
	return cfg, nil
}

// decode reads YAML or JSON with comments, by extension
func decode(data []byte, path string, v any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, v)
	default:
		return json.Unmarshal(jsonc.ToJSON(data), v)
	}
}

// ApplyEnv overlays IVORY_* environment variables
func (c *Config) ApplyEnv() {
	env.Load()
	if env.Has("IVORY_DEFAULT_UNIT") {
		c.DefaultUnit = env.Str("IVORY_DEFAULT_UNIT")
	}
	if env.Has("IVORY_INCLUDE_PATH") {
		for _, p := range filepath.SplitList(env.Str("IVORY_INCLUDE_PATH")) {
			if p != "" {
				c.IncludePaths = append(c.IncludePaths, p)
			}
		}
	}
	c.MaxDepth = env.Int("IVORY_MAX_DEPTH", c.MaxDepth)
	c.MaxIterations = env.Int("IVORY_MAX_ITERATIONS", c.MaxIterations)
	if env.Has("IVORY_LOG_LEVEL") {
		c.LogLevel = env.Str("IVORY_LOG_LEVEL")
	}
	if env.Has("IVORY_VALIDATE") {
		c.Validate = env.Bool("IVORY_VALIDATE")
	}
}

// LoadVariables reads a JSON or YAML file of variables
func LoadVariables(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read variables %s: %w", path, err)
	}
	vars := make(map[string]any)
	if err := decode(data, path, &vars); err != nil {
		return nil, fmt.Errorf("failed to parse variables %s: %w", path, err)
	}
	return vars, nil
}

func (c *Config) resolve(path string) string {
	if c.Dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir, path)
}

// SetupLogging sets the log level named by LogLevel
func (c *Config) SetupLogging() error {
	if c.LogLevel == "" {
		return nil
	}
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	return nil
}

// Apply configures comp. Later sources override earlier ones: variable
// files, then token files, then inline variables.
func (c *Config) Apply(comp *compiler.Compiler) error {
	for _, p := range c.IncludePaths {
		if err := comp.AddIncludePath(c.resolve(p)); err != nil {
			return err
		}
	}
	if c.DefaultUnit != "" {
		if err := comp.SetDefaultUnit(c.DefaultUnit); err != nil {
			return err
		}
	}
	if c.OutputDirectory != "" {
		comp.OutputDirectory = c.resolve(c.OutputDirectory)
	}
	comp.MaxDepth = c.MaxDepth
	comp.MaxIterations = c.MaxIterations
	comp.Validate = comp.Validate || c.Validate

	var problems []error
	for _, f := range c.VariableFiles {
		vars, err := LoadVariables(c.resolve(f))
		if err != nil {
			return err
		}
		problems = append(problems, addVariables(comp, vars)...)
	}
	for _, f := range c.TokensFiles {
		f.Path = c.resolve(f.Path)
		vars, err := tokens.Load(f)
		if err != nil {
			return err
		}
		for _, v := range vars {
			if err := comp.AddVariable(v.Name, v.Value); err != nil {
				problems = append(problems, err)
			}
		}
	}
	problems = append(problems, addVariables(comp, c.Variables)...)
	return errors.Join(problems...)
}

// addVariables adds vars in name order
func addVariables(comp *compiler.Compiler, vars map[string]any) []error {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	var problems []error
	for _, name := range names {
		if err := comp.AddVariable(name, vars[name]); err != nil {
			problems = append(problems, err)
		}
	}
	return problems
}
