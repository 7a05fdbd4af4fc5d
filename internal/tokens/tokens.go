// Package tokens turns design token files into stylesheet variables.
//
// Token files follow the DTCG format in JSON or YAML and are read with
// asimonim. Aliases are resolved and each token becomes a variable named
// after its path, so {"color": {"primary": {"$value": "#036"}}} with the
// prefix "brand" is available as $brand-color-primary.
package tokens

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	asimonimParser "bennypowers.dev/asimonim/parser"
	"bennypowers.dev/asimonim/resolver"
	"bennypowers.dev/asimonim/schema"
	"bennypowers.dev/asimonim/validator"
	"bennypowers.dev/ivory/internal/log"
	"bennypowers.dev/ivory/internal/parser"
	"bennypowers.dev/ivory/internal/value"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// File is a token file and the prefix of the variables made from it
type File struct {
	Path   string `json:"path" yaml:"path"`
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	// GroupMarkers name terminal tokens that are also groups
	GroupMarkers []string `json:"groupMarkers,omitempty" yaml:"groupMarkers,omitempty"`
}

// Variable is a design token converted to a stylesheet value
type Variable struct {
	Name  string
	Value value.Value
	// Token is the token's own name
	Token string
	// Type is the token's $type
	Type string
}

// Load reads and converts a token file
func Load(f File) ([]Variable, error) {
	if !isTokenFile(f.Path) {
		return nil, fmt.Errorf("unsupported file type %s: %s", filepath.Ext(f.Path), f.Path)
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", f.Path, err)
	}
	vars, err := Parse(data, f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tokens in %s: %w", f.Path, err)
	}
	log.Info("Loaded %d tokens from %s", len(vars), f.Path)
	return vars, nil
}

// Parse converts token file content. YAML is recognised by the extension of
// f.Path, anything else is read as JSON with comments. Tokens whose value
// cannot be expressed as a stylesheet value are skipped.
func Parse(data []byte, f File) ([]Variable, error) {
	data, err := normalize(data, f.Path)
	if err != nil {
		return nil, err
	}
	p := asimonimParser.NewJSONParser()
	parsed, err := p.Parse(data, asimonimParser.Options{GroupMarkers: f.GroupMarkers})
	if err != nil {
		return nil, err
	}

	version := schema.Draft
	for _, t := range parsed {
		if t.SchemaVersion != schema.Unknown {
			version = t.SchemaVersion
			break
		}
	}
	for _, ve := range validator.ValidateConsistencyWithPath(data, version, f.Path) {
		log.Warn("Schema validation: %s", ve.Error())
	}
	if err := resolver.ResolveAliases(parsed, version); err != nil {
		return nil, err
	}

	vars := make([]Variable, 0, len(parsed))
	for _, t := range parsed {
		v, ok := convert(t.ResolvedValue, t.Value)
		if !ok {
			log.Debug("Skipping token %s with value %v", t.Name, t.ResolvedValue)
			continue
		}
		vars = append(vars, Variable{
			Name:  VariableName(f.Prefix, t.Name),
			Value: v,
			Token: t.Name,
			Type:  t.Type,
		})
	}
	return vars, nil
}

func isTokenFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// normalize returns plain JSON for a token file
func normalize(data []byte, path string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
		return json.Marshal(raw)
	}
	return jsonc.ToJSON(data), nil
}

// VariableName returns the variable name for a token, e.g. "brand-color-primary"
func VariableName(prefix, token string) string {
	name := strings.ReplaceAll(token, ".", "-")
	if prefix == "" {
		return name
	}
	return strings.ReplaceAll(prefix, ".", "-") + "-" + name
}

// convert parses a resolved token value
func convert(resolved any, raw string) (value.Value, bool) {
	switch x := resolved.(type) {
	case string:
		return fromText(x)
	case float64:
		return value.Unit{Number: x}, true
	case int:
		return value.Unit{Number: float64(x)}, true
	case bool:
		return value.Bool{V: x}, true
	case map[string]any:
		if _, ok := x["colorSpace"]; ok {
			return structuredColor(x)
		}
		if hex, ok := x["hex"].(string); ok {
			return fromText(hex)
		}
		if v, ok := x["value"]; ok {
			if u, ok := x["unit"].(string); ok {
				return fromText(fmt.Sprintf("%v%s", v, u))
			}
		}
		return nil, false
	case nil:
		if raw == "" || strings.Contains(raw, "{") {
			return nil, false
		}
		return fromText(raw)
	}
	return nil, false
}

// fromText parses a token value with the stylesheet value grammar, falling
// back to a string
func fromText(text string) (value.Value, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}
	if v, err := parser.ParseValue(text); err == nil {
		return v, true
	}
	return value.NewString(text), true
}
