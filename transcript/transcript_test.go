package transcript

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestSegmentBasicDialogue(t *testing.T) {
	utts, err := Segment("Doctor: How is the back pain?\n\nPatient: Much better, thank you.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Utterance{
		{Index: 0, Speaker: Doctor, Tag: "Doctor", Text: "How is the back pain?"},
		{Index: 1, Speaker: Patient, Tag: "Patient", Text: "Much better, thank you."},
	}
	if !reflect.DeepEqual(utts, want) {
		t.Fatalf("got %+v, want %+v", utts, want)
	}
}

func TestSegmentContinuationAndOtherTags(t *testing.T) {
	raw := strings.Join([]string{
		"Physician: Good morning, Ms. Jones.",
		"  How are you   feeling today?",
		"Patient: My neck still hurts",
		"at night.",
		"Nurse Kelly: Blood pressure is 120 over 80.",
		"Pt: Thanks.",
	}, "\r\n")

	utts, err := Segment(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(utts) != 4 {
		t.Fatalf("expected 4 utterances, got %d: %+v", len(utts), utts)
	}
	if utts[0].Speaker != Doctor || utts[0].Text != "Good morning, Ms. Jones. How are you feeling today?" {
		t.Errorf("unexpected first utterance: %+v", utts[0])
	}
	if utts[1].Text != "My neck still hurts at night." {
		t.Errorf("continuation not joined: %q", utts[1].Text)
	}
	if utts[2].Speaker != Other || utts[2].Tag != "Nurse Kelly" {
		t.Errorf("expected Other with verbatim tag, got %+v", utts[2])
	}
	if utts[3].Speaker != Patient || utts[3].Index != 3 {
		t.Errorf("expected Pt alias to map to Patient, got %+v", utts[3])
	}
}

func TestSegmentColonInContinuation(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []Utterance
	}{
		{
			name: "phrase before colon",
			raw:  "Doctor: How are you?\nPatient: Not great.\nTo be honest: I am worried about the pain.",
			want: []Utterance{
				{Index: 0, Speaker: Doctor, Tag: "Doctor", Text: "How are you?"},
				{Index: 1, Speaker: Patient, Tag: "Patient", Text: "Not great. To be honest: I am worried about the pain."},
			},
		},
		{
			name: "label inside doctor turn",
			raw:  "Dr. Smith: Plan as follows.\nMedication: ibuprofen twice daily.",
			want: []Utterance{
				{Index: 0, Speaker: Doctor, Tag: "Dr. Smith", Text: "Plan as follows. Medication: ibuprofen twice daily."},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			utts, err := Segment(tt.raw)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(utts, tt.want) {
				t.Errorf("got %+v, want %+v", utts, tt.want)
			}
		})
	}
}

func TestSegmenterExtraRoles(t *testing.T) {
	raw := "Doctor: Who is with you today?\nCoach: I drove her in.\nPatient: Thanks."
	if utts, _ := Segment(raw); len(utts) != 2 {
		t.Fatalf("default roles: expected Coach line as continuation, got %+v", utts)
	}
	utts, err := NewSegmenter("Coach").Segment(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(utts) != 3 || utts[1].Speaker != Other || utts[1].Tag != "Coach" {
		t.Fatalf("expected Coach as Other speaker, got %+v", utts)
	}
}

func TestSegmentLeadingUntaggedLines(t *testing.T) {
	utts, err := Segment("Visit recorded 2024-01-02\nDoctor: Hello.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(utts) != 2 || utts[0].Speaker != Other || utts[0].Tag != "" {
		t.Fatalf("expected leading Other utterance, got %+v", utts)
	}
}

func TestSegmentFormatErrors(t *testing.T) {
	for name, raw := range map[string]string{
		"empty":      "",
		"whitespace": "  \n\t\n",
		"untagged":   "just some notes\nwithout any speaker",
		"tags only":  "Doctor:\nPatient:   ",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Segment(raw)
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *FormatError, got %v", err)
			}
		})
	}
}

func TestSegmentPreservesTokens(t *testing.T) {
	raw := "Doctor: Any  numbness\nor tingling?\nPatient: No.\nJust stiffness, really."
	utts, err := Segment(raw)
	if err != nil {
		t.Fatal(err)
	}
	var in []string
	for _, line := range strings.Split(raw, "\n") {
		in = append(in, strings.Fields(line)...)
	}
	var out []string
	for _, u := range utts {
		out = append(out, u.Tag+":")
		out = append(out, strings.Fields(u.Text)...)
	}
	if strings.Join(in, " ") != strings.Join(out, " ") {
		t.Fatalf("token content changed:\n in: %v\nout: %v", in, out)
	}
}

func TestSentences(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"How is the back pain?", []string{"How is the back pain?"}},
		{"Dr. Smith saw me. It was fine!  Really?!", []string{"Dr. Smith saw me.", "It was fine!", "Really?!"}},
		{"Take 2.5 mg daily. Then stop", []string{"Take 2.5 mg daily.", "Then stop"}},
		{"", nil},
	}
	for _, tt := range tests {
		if got := Sentences(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Sentences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSpeakerHelpers(t *testing.T) {
	utts, _ := Segment("Doctor: A.\nPatient: B.\nDoctor: C.")
	if got := SpeakerText(utts, Doctor); got != "A. C." {
		t.Errorf("doctor text = %q", got)
	}
	if got := FullText(utts); got != "A. B. C." {
		t.Errorf("full text = %q", got)
	}
	if got := BySpeaker(utts, Patient); len(got) != 1 || got[0].Index != 1 {
		t.Errorf("patient utterances = %+v", got)
	}
}

func TestPatientName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Doctor: Good morning, Ms. Jones. How are you?\nPatient: Fine.", "Jones"},
		{"Doctor: Janet, how are you feeling?\nPatient: Better.", "Janet"},
		{"Doctor: Hello.\nPatient: Hi, my name is Tom Baker.", "Tom Baker"},
		{"Doctor: How is the back pain?\nPatient: Much better, thank you.", NotSpecified},
		{"Doctor: Well, let's begin.\nPatient: Okay.", NotSpecified},
	}
	for _, tt := range tests {
		utts, err := Segment(tt.raw)
		if err != nil {
			t.Fatal(err)
		}
		if got := PatientName(utts); got != tt.want {
			t.Errorf("PatientName(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
