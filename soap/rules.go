package soap

import (
	"fmt"

	"github.com/maastricht-university/clinote/rules"
)

// Leaf paths. Rule labels name the leaf a matching sentence feeds.
const (
	ChiefComplaint          = "Subjective.Chief_Complaint"
	HistoryOfPresentIllness = "Subjective.History_of_Present_Illness"
	PhysicalExam            = "Objective.Physical_Exam"
	Observations            = "Objective.Observations"
	Diagnosis               = "Assessment.Diagnosis"
	Severity                = "Assessment.Severity"
	Treatment               = "Plan.Treatment"
	FollowUp                = "Plan.Follow_Up"
)

// textLeaves are fed by sentence rules. Diagnosis and Treatment come from the
// entity set only.
var textLeaves = []string{ChiefComplaint, HistoryOfPresentIllness, PhysicalExam, Observations, Severity, FollowUp}

type RuleConfig struct {
	Rules []rules.Rule `yaml:"rules" json:"rules"`
}

func LoadRules(path string) (RuleConfig, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	var cfg RuleConfig
	if err := rules.LoadYAML(path, &cfg); err != nil {
		return RuleConfig{}, err
	}
	return cfg, nil
}

// compile splits the rule list into one ordered table per leaf.
func compile(cfg RuleConfig) (map[string]*rules.Table, error) {
	grouped := map[string][]rules.Rule{}
	for i, r := range cfg.Rules {
		known := false
		for _, l := range textLeaves {
			if r.Label == l {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("soap: rule %d (%s): %q is not a rule-fed leaf", i, r.Name, r.Label)
		}
		grouped[r.Label] = append(grouped[r.Label], r)
	}
	tables := make(map[string]*rules.Table, len(textLeaves))
	for _, l := range textLeaves {
		t, err := rules.Compile(grouped[l])
		if err != nil {
			return nil, fmt.Errorf("soap: %s: %w", l, err)
		}
		tables[l] = t
	}
	return tables, nil
}

func DefaultRules() RuleConfig {
	return RuleConfig{Rules: []rules.Rule{
		{Name: "complaint", Label: ChiefComplaint, Speaker: "Patient",
			Pattern: `\b(pain|aches?|hurts?|hurting|discomfort|stiff(ness)?|sore(ness)?|problem|issue|trouble)\b`},
		{Name: "onset", Label: HistoryOfPresentIllness, Speaker: "Patient",
			Pattern: `\b(since|ago|started|began|after|last (week|month|year)|weeks?|months?|days?|accident|initially|at first)\b`},
		{Name: "exam", Label: PhysicalExam, Speaker: "Doctor",
			Pattern: `\b(exam(ine|ined|ination)?|range of (motion|movement)|tender(ness)?|palpat\w*|reflexes|swelling|bruising|spine|observed|noted|appears)\b`},
		{Name: "progress", Label: Observations, Speaker: "Doctor",
			Pattern: `\b(progress|improv\w*|heal\w*|recover\w*|better|no signs? of|looks? (good|fine)|degeneration)\b`},
		{Name: "grade", Label: Severity,
			Pattern: `\b(mild|moderate|severe|serious|minor|significant)\b`},
		{Name: "follow-up", Label: FollowUp, Speaker: "Doctor",
			Pattern: `\b(follow[- ]?up|come back|return|appointment|schedule|next visit|check in|see you)\b`},
	}}
}
