// Package transcript turns raw "Speaker: text" dialogue into speaker-attributed
// utterances and sentences.
package transcript

import (
	"fmt"
	"regexp"
	"strings"
)

type Speaker string

const (
	Doctor  Speaker = "Doctor"
	Patient Speaker = "Patient"
	Other   Speaker = "Other"
)

// Utterance is one speaker turn. Tag keeps the speaker label exactly as written.
type Utterance struct {
	Index   int     `json:"index"`
	Speaker Speaker `json:"speaker"`
	Tag     string  `json:"tag,omitempty"`
	Text    string  `json:"text"`
}

func (u Utterance) Sentences() []string { return Sentences(u.Text) }

// FormatError reports a transcript from which no utterance could be parsed.
type FormatError struct {
	Reason string
	Lines  int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("transcript format: %s (%d non-empty lines)", e.Reason, e.Lines)
}

// A candidate speaker tag is one to three words at line start followed by a
// colon. It only counts as a tag when its first word is a known role.
var tagRe = regexp.MustCompile(`^([A-Za-z][A-Za-z.'-]*(?:\s+[A-Za-z0-9][A-Za-z0-9.'-]*){0,2})\s*:\s*(.*)$`)

var (
	doctorAliases  = []string{"doctor", "dr", "physician", "doc", "gp", "clinician"}
	patientAliases = []string{"patient", "pt"}

	// DefaultRoles are the non-clinician speakers recognised out of the box.
	DefaultRoles = []string{
		"nurse", "caregiver", "carer", "parent", "mother", "father", "mom", "mum", "dad",
		"wife", "husband", "partner", "spouse", "son", "daughter", "relative", "family",
		"friend", "guardian", "interpreter", "translator", "resident", "student",
		"assistant", "receptionist", "therapist", "physiotherapist", "pharmacist",
		"paramedic", "speaker", "mr", "mrs", "ms", "mx", "miss",
	}
)

var spaceRe = regexp.MustCompile(`\s+`)

// Segmenter splits transcripts using a fixed set of speaker roles.
type Segmenter struct {
	speakers map[string]Speaker
}

// NewSegmenter recognises Doctor and Patient aliases plus DefaultRoles and
// roles. Tags whose first word is none of these are continuation text.
func NewSegmenter(roles ...string) *Segmenter {
	s := &Segmenter{speakers: make(map[string]Speaker)}
	for _, r := range append(append([]string{}, DefaultRoles...), roles...) {
		if r = strings.ToLower(strings.TrimSpace(r)); r != "" {
			s.speakers[r] = Other
		}
	}
	for _, a := range doctorAliases {
		s.speakers[a] = Doctor
	}
	for _, a := range patientAliases {
		s.speakers[a] = Patient
	}
	return s
}

var defaultSegmenter = NewSegmenter()

// Segment splits raw with the default roles.
func Segment(raw string) ([]Utterance, error) { return defaultSegmenter.Segment(raw) }

func (s *Segmenter) speaker(tag string) (Speaker, bool) {
	first := strings.ToLower(strings.Fields(tag)[0])
	sp, ok := s.speakers[strings.TrimSuffix(first, ".")]
	return sp, ok
}

// Segment splits raw into utterances. Untagged lines continue the previous
// utterance; untagged lines before the first tag form a leading Other utterance.
// It fails with *FormatError only when no tagged line exists at all.
func (s *Segmenter) Segment(raw string) ([]Utterance, error) {
	var (
		out      []Utterance
		parts    [][]string
		tagged   bool
		nonEmpty int
	)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		nonEmpty++
		if m := tagRe.FindStringSubmatch(line); m != nil {
			if sp, ok := s.speaker(m[1]); ok {
				tagged = true
				out = append(out, Utterance{Speaker: sp, Tag: m[1]})
				parts = append(parts, nil)
				if m[2] != "" {
					parts[len(parts)-1] = append(parts[len(parts)-1], m[2])
				}
				continue
			}
		}
		if len(out) == 0 {
			out = append(out, Utterance{Speaker: Other})
			parts = append(parts, nil)
		}
		parts[len(parts)-1] = append(parts[len(parts)-1], line)
	}

	if nonEmpty == 0 {
		return nil, &FormatError{Reason: "empty transcript"}
	}
	if !tagged {
		return nil, &FormatError{Reason: "no speaker-tagged line", Lines: nonEmpty}
	}

	utts := make([]Utterance, 0, len(out))
	for i, u := range out {
		text := normalize(strings.Join(parts[i], " "))
		if text == "" {
			continue
		}
		u.Text = text
		u.Index = len(utts)
		utts = append(utts, u)
	}
	if len(utts) == 0 {
		return nil, &FormatError{Reason: "speaker tags carry no text", Lines: nonEmpty}
	}
	return utts, nil
}

func normalize(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

func join(utts []Utterance, keep func(Utterance) bool) string {
	var b strings.Builder
	for _, u := range utts {
		if !keep(u) {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(u.Text)
	}
	return b.String()
}

func FullText(utts []Utterance) string {
	return join(utts, func(Utterance) bool { return true })
}

func SpeakerText(utts []Utterance, s Speaker) string {
	return join(utts, func(u Utterance) bool { return u.Speaker == s })
}

// BySpeaker returns the utterances authored by s, in order.
func BySpeaker(utts []Utterance, s Speaker) []Utterance {
	var out []Utterance
	for _, u := range utts {
		if u.Speaker == s {
			out = append(out, u)
		}
	}
	return out
}
