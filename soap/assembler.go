package soap

import (
	"regexp"
	"strings"

	"github.com/maastricht-university/clinote/affect"
	"github.com/maastricht-university/clinote/entities"
	"github.com/maastricht-university/clinote/narrative"
	"github.com/maastricht-university/clinote/rules"
	"github.com/maastricht-university/clinote/transcript"
)

const (
	maxComplaint = 200
	maxItems     = 5
)

type Assembler struct {
	leaves map[string]*rules.Table
}

func NewAssembler(cfg RuleConfig) (*Assembler, error) {
	leaves, err := compile(cfg)
	if err != nil {
		return nil, err
	}
	return &Assembler{leaves: leaves}, nil
}

// bucket collects deduplicated sentences in first-seen order.
type bucket struct {
	items []string
	seen  map[string]bool
}

func (b *bucket) add(s string) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" || b.seen[key] {
		return
	}
	if b.seen == nil {
		b.seen = map[string]bool{}
	}
	b.seen[key] = true
	b.items = append(b.items, s)
}

// Classify sorts every sentence into the leaves whose rules it matches. A
// sentence may land in several leaves.
func (a *Assembler) Classify(utts []transcript.Utterance) map[string][]string {
	buckets := make(map[string]*bucket, len(textLeaves))
	for _, l := range textLeaves {
		buckets[l] = &bucket{}
	}
	for _, u := range utts {
		speaker := string(u.Speaker)
		for _, s := range u.Sentences() {
			for _, l := range textLeaves {
				if _, ok := a.leaves[l].First(speaker, s); ok {
					buckets[l].add(s)
				}
			}
		}
	}
	out := make(map[string][]string, len(buckets))
	for l, b := range buckets {
		out[l] = b.items
	}
	return out
}

// Assemble fills all eight leaves, using the sentinel where nothing applies.
func (a *Assembler) Assemble(utts []transcript.Utterance, set *entities.Set, profile affect.Profile, n narrative.Narrative) Note {
	if set == nil {
		set = entities.NewSet()
	}
	b := a.Classify(utts)
	symptoms := set.Names(entities.Symptom)

	return Note{
		Subjective: Subjective{
			ChiefComplaint:          chiefComplaint(symptoms, b[ChiefComplaint]),
			HistoryOfPresentIllness: history(b[HistoryOfPresentIllness], symptoms, n),
		},
		Objective: Objective{
			PhysicalExam: joined(b[PhysicalExam]),
			Observations: entries(capped(b[Observations])),
		},
		Assessment: Assessment{
			Diagnosis: entries(set.Names(entities.Diagnosis)),
			Severity:  a.severity(utts, profile),
		},
		Plan: Plan{
			Treatment: entries(set.Names(entities.Treatment)),
			FollowUp:  joined(b[FollowUp]),
		},
	}
}

func chiefComplaint(symptoms, sentences []string) string {
	if len(symptoms) > 0 {
		return symptoms[0]
	}
	if len(sentences) > 0 {
		s, _ := narrative.BoundWords(sentences[0], maxComplaint)
		return s
	}
	return NotSpecified
}

func history(sentences, symptoms []string, n narrative.Narrative) string {
	switch {
	case len(sentences) > 0:
		return joined(sentences)
	case len(symptoms) > 0:
		return "Patient reports " + strings.Join(symptoms, ", ") + "."
	case n.Text != "":
		return n.Text
	}
	return NotSpecified
}

// negatedRe matches a negation ending at most one word before a grade.
var negatedRe = regexp.MustCompile(`(?i)(\b(not|no|nothing|never|hardly|without)|n['’]t)\s+(\S+\s+)?$`)

// severity prefers the most recent graded statement, then the recovery
// intent. Questions and negated grades ("nothing serious") are not gradings.
func (a *Assembler) severity(utts []transcript.Utterance, profile affect.Profile) string {
	t := a.leaves[Severity]
	for i := len(utts) - 1; i >= 0; i-- {
		sentences := utts[i].Sentences()
		for j := len(sentences) - 1; j >= 0; j-- {
			s := sentences[j]
			if strings.HasSuffix(s, "?") {
				continue
			}
			_, loc, ok := t.FindIndex(string(utts[i].Speaker), s)
			if !ok || negatedRe.MatchString(s[:loc[0]]) {
				continue
			}
			m := strings.ToLower(s[loc[0]:loc[1]])
			return strings.ToUpper(m[:1]) + m[1:]
		}
	}
	if profile.Intent == affect.ConfirmingRecovery {
		return "Improving"
	}
	return NotSpecified
}

func joined(sentences []string) string {
	if len(sentences) == 0 {
		return NotSpecified
	}
	return strings.Join(capped(sentences), " ")
}

func capped(items []string) []string {
	if len(items) > maxItems {
		return items[:maxItems]
	}
	return items
}

func entries(items []string) Entries {
	if len(items) == 0 {
		return Sentinel()
	}
	return Entries(append([]string(nil), items...))
}
