// Package ruleset loads patch rules from YAML files and from the presets
// compiled into the binary.
package ruleset

import (
	"embed"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/typelate/docpatch/internal/patch"
)

//go:embed presets/*.yaml
var presetFS embed.FS

// File is a parsed rule file. Target, when set, names the document the rules
// were written for and is used as the default target by the CLI.
type File struct {
	Target string `yaml:"target,omitempty"`
	Rules  []Rule `yaml:"rules"`
}

// Rule mirrors patch.Rule with YAML field names.
type Rule struct {
	Name    string `yaml:"name"`
	Anchor  string `yaml:"anchor,omitempty"`
	Pattern string `yaml:"pattern,omitempty"`
	Insert  string `yaml:"insert"`
	Where   string `yaml:"where,omitempty"`
}

// PatchRules converts the file's rules for use with patch.Apply.
func (f *File) PatchRules() []patch.Rule {
	rules := make([]patch.Rule, 0, len(f.Rules))
	for _, r := range f.Rules {
		rules = append(rules, patch.Rule{
			Name:    r.Name,
			Anchor:  r.Anchor,
			Pattern: r.Pattern,
			Insert:  r.Insert,
			Where:   patch.Placement(r.Where),
		})
	}
	return rules
}

// Parse decodes and validates a YAML rule file.
func Parse(in []byte) (*File, error) {
	var file File
	if err := yaml.Unmarshal(in, &file); err != nil {
		return nil, fmt.Errorf("parse rule file: %w", err)
	}
	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("rule file has no rules")
	}
	seen := make(map[string]struct{}, len(file.Rules))
	for i, r := range file.Rules {
		if r.Name == "" {
			return nil, fmt.Errorf("rule %d: name is required", i+1)
		}
		if _, dup := seen[r.Name]; dup {
			return nil, fmt.Errorf("rule %q: duplicate name", r.Name)
		}
		seen[r.Name] = struct{}{}
	}
	for _, r := range file.PatchRules() {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}
	return &file, nil
}

// Load reads and parses the rule file at filePath.
func Load(filePath string) (*File, error) {
	buf, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	file, err := Parse(buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return file, nil
}

// Preset returns the named built-in rule set.
func Preset(name string) (*File, error) {
	buf, err := presetFS.ReadFile(path.Join("presets", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("unknown preset %q (have %s)", name, strings.Join(Presets(), ", "))
	}
	file, err := Parse(buf)
	if err != nil {
		return nil, fmt.Errorf("preset %q: %w", name, err)
	}
	return file, nil
}

// Presets lists the names of the built-in rule sets.
func Presets() []string {
	entries, err := presetFS.ReadDir("presets")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}
