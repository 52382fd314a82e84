package affect

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// MappingEntry maps one upstream label. Verdicts scoring below MinScore map to
// Neutral.
type MappingEntry struct {
	Label     string  `yaml:"label" json:"label"`
	Sentiment string  `yaml:"sentiment" json:"sentiment"`
	MinScore  float64 `yaml:"min_score,omitempty" json:"min_score,omitempty"`
}

type mapped struct {
	sentiment Sentiment
	minScore  float64
}

// Mapping is the table from a classifier's native labels to Sentiment.
// Labels compare case-insensitively.
type Mapping struct {
	entries map[string]mapped
}

var ErrUnmappedLabel = errors.New("affect: label has no mapping")

func NewMapping(entries []MappingEntry) (*Mapping, error) {
	m := &Mapping{entries: make(map[string]mapped, len(entries))}
	for _, e := range entries {
		key := strings.ToLower(strings.TrimSpace(e.Label))
		if key == "" {
			return nil, errors.New("affect: mapping entry without label")
		}
		if _, dup := m.entries[key]; dup {
			return nil, fmt.Errorf("affect: label %q mapped twice", e.Label)
		}
		s, err := ParseSentiment(e.Sentiment)
		if err != nil {
			return nil, fmt.Errorf("affect: label %q: %w", e.Label, err)
		}
		if e.MinScore < 0 || e.MinScore > 1 {
			return nil, fmt.Errorf("affect: label %q: min_score %v outside [0,1]", e.Label, e.MinScore)
		}
		m.entries[key] = mapped{sentiment: s, minScore: e.MinScore}
	}
	return m, nil
}

// Validate checks that every label the classifier can emit is mapped.
func (m *Mapping) Validate(labels []string) error {
	var missing []string
	for _, l := range labels {
		if _, ok := m.entries[strings.ToLower(strings.TrimSpace(l))]; !ok {
			missing = append(missing, l)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: %s", ErrUnmappedLabel, strings.Join(missing, ", "))
	}
	return nil
}

func (m *Mapping) Map(l Label) (Sentiment, error) {
	e, ok := m.entries[strings.ToLower(strings.TrimSpace(l.Name))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnmappedLabel, l.Name)
	}
	if l.Score < e.minScore {
		return Neutral, nil
	}
	return e.sentiment, nil
}
