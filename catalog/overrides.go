package catalog

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/goccy/go-yaml"
)

// OverrideFields adjusts one or more profile fields. Kind is only
// meaningful under Set.
type OverrideFields struct {
	Kind       string   `yaml:"kind,omitempty" json:"kind,omitempty"`
	Categories []string `yaml:"categories,omitempty" json:"categories,omitempty"`
	Behaviors  []string `yaml:"behaviors,omitempty" json:"behaviors,omitempty"`
	Sources    []string `yaml:"sources,omitempty" json:"sources,omitempty"`
	Slots      []string `yaml:"slots,omitempty" json:"slots,omitempty"`
}

// OverrideRule rewrites the profile of ids matching a glob. The first
// matching rule fires; Set replaces, Add unions, Remove subtracts.
type OverrideRule struct {
	Match  string          `yaml:"match" json:"match"`
	Set    *OverrideFields `yaml:"set,omitempty" json:"set,omitempty"`
	Add    *OverrideFields `yaml:"add,omitempty" json:"add,omitempty"`
	Remove *OverrideFields `yaml:"remove,omitempty" json:"remove,omitempty"`
}

type overrideFile struct {
	Rules []OverrideRule `yaml:"rules"`
}

// LoadOverrides reads the tag-override rules file. A missing file is
// treated as an empty rule list.
func LoadOverrides(path string) ([]OverrideRule, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read overrides: %w", err)
	}
	var doc overrideFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse overrides: %w", err)
	}
	return doc.Rules, nil
}

func globMatch(pattern, id string) bool {
	if pattern == id {
		return true
	}
	ok, err := path.Match(pattern, id)
	return err == nil && ok
}

// ApplyOverrides mutates profile per the first rule whose glob matches
// the id.
func ApplyOverrides(id string, profile *Profile, rules []OverrideRule) {
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}

	for _, rule := range rules {
		pat := strings.TrimSpace(rule.Match)
		if pat == "" || !globMatch(pat, id) {
			continue
		}

		if rule.Set != nil {
			if rule.Set.Kind != "" {
				profile.Kind = rule.Set.Kind
			}
			if rule.Set.Categories != nil {
				profile.Categories = toSet(rule.Set.Categories)
			}
			if rule.Set.Behaviors != nil {
				profile.Behaviors = toSet(rule.Set.Behaviors)
			}
			if rule.Set.Sources != nil {
				profile.Sources = toSet(rule.Set.Sources)
			}
			if rule.Set.Slots != nil {
				profile.Slots = toSet(rule.Set.Slots)
			}
		}
		if rule.Add != nil {
			addAll(profile.Categories, rule.Add.Categories)
			addAll(profile.Behaviors, rule.Add.Behaviors)
			addAll(profile.Sources, rule.Add.Sources)
			addAll(profile.Slots, rule.Add.Slots)
		}
		if rule.Remove != nil {
			removeAll(profile.Categories, rule.Remove.Categories)
			removeAll(profile.Behaviors, rule.Remove.Behaviors)
			removeAll(profile.Sources, rule.Remove.Sources)
			removeAll(profile.Slots, rule.Remove.Slots)
		}
		return
	}
}

func addAll(set map[string]bool, xs []string) {
	for _, x := range xs {
		if x != "" {
			set[x] = true
		}
	}
}

func removeAll(set map[string]bool, xs []string) {
	for _, x := range xs {
		delete(set, x)
	}
}
