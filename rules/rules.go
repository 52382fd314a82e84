// Package rules holds ordered, data-driven pattern tables. A table is a list of
// (pattern, label) pairs evaluated in declaration order; callers pick either the
// first match or every match.
package rules

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

type Rule struct {
	Name     string `yaml:"name" json:"name"`
	Label    string `yaml:"label" json:"label"`
	Pattern  string `yaml:"pattern" json:"pattern"`
	Speaker  string `yaml:"speaker,omitempty" json:"speaker,omitempty"`
	Disabled bool   `yaml:"disabled,omitempty" json:"disabled,omitempty"`
}

type compiledRule struct {
	rule Rule
	re   *regexp.Regexp
}

// Table is an immutable compiled rule list.
type Table struct {
	rules []compiledRule
}

// Compile builds a Table. Patterns are matched case-insensitively.
func Compile(rs []Rule) (*Table, error) {
	compiled := make([]compiledRule, 0, len(rs))
	for i, r := range rs {
		if r.Disabled {
			continue
		}
		if r.Label == "" {
			return nil, fmt.Errorf("rule %d (%s): empty label", i, r.Name)
		}
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, r.Name, err)
		}
		compiled = append(compiled, compiledRule{rule: r, re: re})
	}
	return &Table{rules: compiled}, nil
}

// MustCompile is Compile for built-in tables.
func MustCompile(rs []Rule) *Table {
	t, err := Compile(rs)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rules)
}

func applies(r Rule, speaker string) bool {
	return r.Speaker == "" || strings.EqualFold(r.Speaker, speaker)
}

// First returns the first rule, in declaration order, whose pattern matches text
// and whose speaker filter accepts speaker.
func (t *Table) First(speaker, text string) (Rule, bool) {
	if t == nil {
		return Rule{}, false
	}
	for _, cr := range t.rules {
		if applies(cr.rule, speaker) && cr.re.MatchString(text) {
			return cr.rule, true
		}
	}
	return Rule{}, false
}

// All returns every matching rule in declaration order.
func (t *Table) All(speaker, text string) []Rule {
	if t == nil {
		return nil
	}
	var out []Rule
	for _, cr := range t.rules {
		if applies(cr.rule, speaker) && cr.re.MatchString(text) {
			out = append(out, cr.rule)
		}
	}
	return out
}

// Find returns the text matched by the first applicable rule along with it.
func (t *Table) Find(speaker, text string) (Rule, string, bool) {
	r, loc, ok := t.FindIndex(speaker, text)
	if !ok {
		return Rule{}, "", false
	}
	return r, text[loc[0]:loc[1]], true
}

// FindIndex is Find returning the byte offsets of the match.
func (t *Table) FindIndex(speaker, text string) (Rule, []int, bool) {
	if t == nil {
		return Rule{}, nil, false
	}
	for _, cr := range t.rules {
		if !applies(cr.rule, speaker) {
			continue
		}
		if loc := cr.re.FindStringIndex(text); loc != nil && loc[1] > loc[0] {
			return cr.rule, loc, true
		}
	}
	return Rule{}, nil, false
}

// LoadYAML decodes the YAML document at path into v, rejecting unknown keys.
func LoadYAML(path string, v interface{}) error {
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
