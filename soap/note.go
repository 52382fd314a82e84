// Package soap assembles the SOAP clinical note from classified sentences,
// resolved entities and the affect profile.
package soap

import (
	"encoding/json"
	"fmt"

	"github.com/maastricht-university/clinote/transcript"
)

const NotSpecified = transcript.NotSpecified

// Entries is a list leaf. A list holding only the sentinel is written as the
// bare sentinel string; both forms are accepted on input.
type Entries []string

func Sentinel() Entries { return Entries{NotSpecified} }

func (e Entries) Specified() bool {
	return len(e) > 0 && !(len(e) == 1 && e[0] == NotSpecified)
}

func (e Entries) MarshalJSON() ([]byte, error) {
	if !e.Specified() {
		return json.Marshal(NotSpecified)
	}
	return json.Marshal([]string(e))
}

func (e *Entries) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*e = Entries{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return fmt.Errorf("soap: entries must be a string or a list of strings: %w", err)
	}
	*e = Entries(list)
	return nil
}

type Subjective struct {
	ChiefComplaint          string `json:"Chief_Complaint"`
	HistoryOfPresentIllness string `json:"History_of_Present_Illness"`
}

type Objective struct {
	PhysicalExam string  `json:"Physical_Exam"`
	Observations Entries `json:"Observations"`
}

type Assessment struct {
	Diagnosis Entries `json:"Diagnosis"`
	Severity  string  `json:"Severity"`
}

type Plan struct {
	Treatment Entries `json:"Treatment"`
	FollowUp  string  `json:"Follow_Up"`
}

type Note struct {
	Subjective Subjective `json:"Subjective"`
	Objective  Objective  `json:"Objective"`
	Assessment Assessment `json:"Assessment"`
	Plan       Plan       `json:"Plan"`
}

// Missing lists the leaves that hold neither a value nor the sentinel.
func (n Note) Missing() []string {
	var out []string
	check := func(leaf string, ok bool) {
		if !ok {
			out = append(out, leaf)
		}
	}
	check(ChiefComplaint, n.Subjective.ChiefComplaint != "")
	check(HistoryOfPresentIllness, n.Subjective.HistoryOfPresentIllness != "")
	check(PhysicalExam, n.Objective.PhysicalExam != "")
	check(Observations, len(n.Objective.Observations) > 0)
	check(Diagnosis, len(n.Assessment.Diagnosis) > 0)
	check(Severity, n.Assessment.Severity != "")
	check(Treatment, len(n.Plan.Treatment) > 0)
	check(FollowUp, n.Plan.FollowUp != "")
	return out
}
