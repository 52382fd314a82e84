package affect

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/maastricht-university/clinote/rules"
)

// Cues are keyword lists scored when the classifier is unavailable or neutral.
type Cues struct {
	Anxious   []string `yaml:"anxious" json:"anxious"`
	Reassured []string `yaml:"reassured" json:"reassured"`
}

// SentimentConfig is the YAML form of the sentiment mapping. Labels is the
// complete label set of the configured classifier.
type SentimentConfig struct {
	Labels  []string       `yaml:"labels" json:"labels"`
	Mapping []MappingEntry `yaml:"mapping" json:"mapping"`
	Cues    Cues           `yaml:"cues" json:"cues"`
}

// IntentConfig is the ordered intent rule list; Default applies when no rule
// matches.
type IntentConfig struct {
	Default string       `yaml:"default" json:"default"`
	Rules   []rules.Rule `yaml:"rules" json:"rules"`
}

func LoadSentiment(path string) (SentimentConfig, error) {
	if path == "" {
		return DefaultSentiment(), nil
	}
	var cfg SentimentConfig
	if err := rules.LoadYAML(path, &cfg); err != nil {
		return SentimentConfig{}, err
	}
	return cfg, nil
}

func LoadIntents(path string) (IntentConfig, error) {
	if path == "" {
		return DefaultIntents(), nil
	}
	var cfg IntentConfig
	if err := rules.LoadYAML(path, &cfg); err != nil {
		return IntentConfig{}, err
	}
	if cfg.Default == "" {
		cfg.Default = ReportingSymptoms
	}
	return cfg, nil
}

func cueTable(c Cues) (*rules.Table, error) {
	var rs []rules.Rule
	add := func(words []string, s Sentiment) {
		for _, w := range words {
			rs = append(rs, rules.Rule{Name: w, Label: string(s), Pattern: `\b` + regexp.QuoteMeta(w) + `\b`})
		}
	}
	add(c.Anxious, Anxious)
	add(c.Reassured, Reassured)
	return rules.Compile(rs)
}

func compileIntents(cfg IntentConfig) (*rules.Table, string, error) {
	if cfg.Default == "" {
		return nil, "", errors.New("affect: intent default must not be empty")
	}
	t, err := rules.Compile(cfg.Rules)
	if err != nil {
		return nil, "", fmt.Errorf("affect: intents: %w", err)
	}
	return t, cfg.Default, nil
}
