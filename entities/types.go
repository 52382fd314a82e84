// Package entities reconciles statistical NER spans with a keyword lexicon
// fallback into one deduplicated, categorized entity set.
package entities

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

type Category string

const (
	Symptom   Category = "Symptom"
	Diagnosis Category = "Diagnosis"
	Treatment Category = "Treatment"
	Prognosis Category = "Prognosis"
	Other     Category = "Other"
)

// Categories lists every category in output order.
var Categories = []Category{Symptom, Diagnosis, Treatment, Prognosis, Other}

func (c Category) clinical() bool { return c != Other && c.Valid() }

func (c Category) Valid() bool {
	switch c {
	case Symptom, Diagnosis, Treatment, Prognosis, Other:
		return true
	}
	return false
}

// ParseCategory maps a collaborator or config label onto a Category. Unknown
// labels map to Other.
func ParseCategory(label string) Category {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "symptom", "symptoms", "sign", "finding", "sign_symptom", "signsymptommention":
		return Symptom
	case "diagnosis", "diagnoses", "disease", "disorder", "condition", "problem", "diseasedisordermention":
		return Diagnosis
	case "treatment", "treatments", "chemical", "drug", "medication", "procedure", "therapy", "medicationmention", "proceduremention":
		return Treatment
	case "prognosis", "outcome":
		return Prognosis
	}
	return Other
}

type Source string

const (
	Model    Source = "Model"
	Fallback Source = "Fallback"
)

// Span is one extracted mention. Start and End are byte offsets into the
// analysed text; End == 0 means the producer did not report a position.
type Span struct {
	Text       string   `json:"text"`
	Category   Category `json:"category"`
	Source     Source   `json:"source"`
	Confidence *float64 `json:"confidence,omitempty"`
	Start      int      `json:"start"`
	End        int      `json:"end"`
}

func (s Span) located() bool { return s.End > s.Start }

// Normalize is the comparison key for entity text: NFKC, lowercase, trimmed of
// surrounding punctuation, inner whitespace collapsed.
func Normalize(text string) string {
	text = norm.NFKC.String(text)
	text = strings.ToLower(text)
	text = strings.Join(strings.Fields(text), " ")
	return strings.TrimFunc(text, func(r rune) bool {
		return unicode.IsPunct(r) && r != '%'
	})
}
