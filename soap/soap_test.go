package soap

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/maastricht-university/clinote/affect"
	"github.com/maastricht-university/clinote/entities"
	"github.com/maastricht-university/clinote/narrative"
	"github.com/maastricht-university/clinote/transcript"
)

func newAssembler(t *testing.T) *Assembler {
	t.Helper()
	a, err := NewAssembler(DefaultRules())
	if err != nil {
		t.Fatalf("new assembler: %v", err)
	}
	return a
}

func segment(t *testing.T, raw string) []transcript.Utterance {
	t.Helper()
	utts, err := transcript.Segment(raw)
	if err != nil {
		t.Fatalf("segment: %v", err)
	}
	return utts
}

func entitySet(items map[entities.Category][]string) *entities.Set {
	set := entities.NewSet()
	for _, c := range entities.Categories {
		for _, text := range items[c] {
			set.Add(entities.Span{Text: text, Category: c, Source: entities.Fallback})
		}
	}
	return set
}

func TestAssembleBackPainScenario(t *testing.T) {
	utts := segment(t, "Doctor: How is the back pain?\n\nPatient: Much better, thank you.")
	set := entitySet(map[entities.Category][]string{entities.Symptom: {"back pain"}})
	profile := affect.Profile{Sentiment: affect.Reassured, Intent: affect.ConfirmingRecovery}

	note := newAssembler(t).Assemble(utts, set, profile, narrative.Narrative{})

	if note.Subjective.ChiefComplaint != "back pain" {
		t.Fatalf("chief complaint = %q", note.Subjective.ChiefComplaint)
	}
	if !strings.Contains(note.Subjective.HistoryOfPresentIllness, "back pain") {
		t.Fatalf("history = %q", note.Subjective.HistoryOfPresentIllness)
	}
	if note.Plan.Treatment.Specified() {
		t.Fatalf("treatment = %v", note.Plan.Treatment)
	}
	if note.Assessment.Severity != "Improving" {
		t.Fatalf("severity = %q", note.Assessment.Severity)
	}
	if missing := note.Missing(); len(missing) != 0 {
		t.Fatalf("missing leaves: %v", missing)
	}

	raw, err := json.Marshal(note.Plan)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `{"Treatment":"Not specified","Follow_Up":"Not specified"}` {
		t.Fatalf("plan json = %s", raw)
	}
}

func TestAssembleFullConsultation(t *testing.T) {
	utts := segment(t, `Doctor: Good morning. How are you feeling today?
Patient: I had a car accident last month. My neck and back hurt a lot for four weeks.
Doctor: Let me examine you. Your range of motion looks good and there is no tenderness.
Patient: It was severe at first. It is mild now.
Doctor: You are making good progress. Come back if the pain returns.`)
	set := entitySet(map[entities.Category][]string{
		entities.Diagnosis: {"whiplash injury"},
		entities.Treatment: {"physiotherapy", "painkillers"},
	})
	note := newAssembler(t).Assemble(utts, set, affect.Profile{Sentiment: affect.Neutral, Intent: affect.ReportingSymptoms}, narrative.Narrative{})

	want := Note{
		Subjective: Subjective{
			ChiefComplaint: "My neck and back hurt a lot for four weeks.",
			HistoryOfPresentIllness: "I had a car accident last month. My neck and back hurt a lot for four weeks. " +
				"It was severe at first.",
		},
		Objective: Objective{
			PhysicalExam: "Let me examine you. Your range of motion looks good and there is no tenderness.",
			Observations: Entries{"Your range of motion looks good and there is no tenderness.", "You are making good progress."},
		},
		Assessment: Assessment{
			Diagnosis: Entries{"whiplash injury"},
			Severity:  "Mild",
		},
		Plan: Plan{
			Treatment: Entries{"physiotherapy", "painkillers"},
			FollowUp:  "Come back if the pain returns.",
		},
	}
	if !reflect.DeepEqual(note, want) {
		t.Fatalf("note =\n%+v\nwant\n%+v", note, want)
	}
}

func TestClassifyDeduplicatesAndAllowsSeveralLeaves(t *testing.T) {
	utts := segment(t, "Doctor: Your range of motion looks good.\nPatient: Okay.\nDoctor: Your range of motion looks good.")
	b := newAssembler(t).Classify(utts)
	if len(b[PhysicalExam]) != 1 || len(b[Observations]) != 1 {
		t.Fatalf("buckets = %v", b)
	}
	if len(b[ChiefComplaint]) != 0 {
		t.Fatalf("doctor sentence leaked into a patient leaf: %v", b[ChiefComplaint])
	}
}

func TestAssembleSparseInputUsesSentinels(t *testing.T) {
	utts := segment(t, "Nurse: Hello there.")
	note := newAssembler(t).Assemble(utts, nil, affect.Profile{Sentiment: affect.Neutral, Intent: affect.ReportingSymptoms}, narrative.Narrative{})
	if missing := note.Missing(); len(missing) != 0 {
		t.Fatalf("missing leaves: %v", missing)
	}
	for leaf, v := range map[string]string{
		ChiefComplaint:          note.Subjective.ChiefComplaint,
		HistoryOfPresentIllness: note.Subjective.HistoryOfPresentIllness,
		PhysicalExam:            note.Objective.PhysicalExam,
		Severity:                note.Assessment.Severity,
		FollowUp:                note.Plan.FollowUp,
	} {
		if v != NotSpecified {
			t.Errorf("%s = %q", leaf, v)
		}
	}
	for leaf, e := range map[string]Entries{
		Observations: note.Objective.Observations,
		Diagnosis:    note.Assessment.Diagnosis,
		Treatment:    note.Plan.Treatment,
	} {
		if e.Specified() {
			t.Errorf("%s = %v", leaf, e)
		}
	}
}

func TestHistoryFallsBackToNarrative(t *testing.T) {
	utts := segment(t, "Patient: Okay.")
	n := narrative.Narrative{Text: "Routine visit.", Method: narrative.Extractive}
	note := newAssembler(t).Assemble(utts, entities.NewSet(), affect.Profile{Sentiment: affect.Neutral, Intent: affect.ReportingSymptoms}, n)
	if note.Subjective.HistoryOfPresentIllness != "Routine visit." {
		t.Fatalf("history = %q", note.Subjective.HistoryOfPresentIllness)
	}
}

func TestEntriesJSON(t *testing.T) {
	tests := []struct {
		in   Entries
		want string
	}{
		{Sentinel(), `"Not specified"`},
		{nil, `"Not specified"`},
		{Entries{"whiplash injury"}, `["whiplash injury"]`},
		{Entries{"a", "b"}, `["a","b"]`},
	}
	for _, tc := range tests {
		raw, err := json.Marshal(tc.in)
		if err != nil || string(raw) != tc.want {
			t.Errorf("Marshal(%v) = %s, %v; want %s", tc.in, raw, err, tc.want)
		}
	}

	var e Entries
	if err := json.Unmarshal([]byte(`"Not specified"`), &e); err != nil || !reflect.DeepEqual(e, Sentinel()) {
		t.Fatalf("unmarshal sentinel = %v, %v", e, err)
	}
	if err := json.Unmarshal([]byte(`["x","y"]`), &e); err != nil || !reflect.DeepEqual(e, Entries{"x", "y"}) {
		t.Fatalf("unmarshal list = %v, %v", e, err)
	}
	if err := json.Unmarshal([]byte(`42`), &e); err == nil {
		t.Fatal("expected error for a number")
	}
}

func TestNewAssemblerRejectsEntityLeaves(t *testing.T) {
	cfg := DefaultRules()
	cfg.Rules = append(cfg.Rules, cfg.Rules[0])
	cfg.Rules[len(cfg.Rules)-1].Label = Treatment
	if _, err := NewAssembler(cfg); err == nil {
		t.Fatal("expected error for a rule targeting Plan.Treatment")
	}
}

func TestLoadRulesFile(t *testing.T) {
	cfg, err := LoadRules("../config/rules/soap.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	a, err := NewAssembler(cfg)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	b := a.Classify(segment(t, "Patient: My neck hurts since the accident.\nDoctor: Come back in two weeks."))
	if len(b[ChiefComplaint]) != 1 || len(b[HistoryOfPresentIllness]) != 1 || len(b[FollowUp]) != 1 {
		t.Fatalf("buckets = %v", b)
	}
}

func TestSeveritySkipsQuestionsAndNegations(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		profile affect.Profile
		want    string
	}{
		{"doctor negation", "Patient: My back hurts.\nDoctor: It's nothing serious.", affect.Profile{Intent: affect.ReportingSymptoms}, NotSpecified},
		{"patient question", "Patient: Is it serious?\nDoctor: Let me look.", affect.Profile{Intent: affect.SeekingReassurance}, NotSpecified},
		{"contraction", "Doctor: The sprain isn't too severe.", affect.Profile{Intent: affect.ConfirmingRecovery}, "Improving"},
		{"earlier grading survives", "Patient: The pain is moderate.\nDoctor: Nothing serious though.", affect.Profile{Intent: affect.ReportingSymptoms}, "Moderate"},
		{"plain grading", "Doctor: This is a mild strain.", affect.Profile{Intent: affect.ReportingSymptoms}, "Mild"},
	}
	a := newAssembler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			note := a.Assemble(segment(t, tt.raw), nil, tt.profile, narrative.Narrative{})
			if note.Assessment.Severity != tt.want {
				t.Errorf("severity = %q, want %q", note.Assessment.Severity, tt.want)
			}
		})
	}
}
