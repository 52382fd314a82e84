package orchestrator

import (
	"errors"
	"fmt"
	"time"

	"github.com/maastricht-university/clinote/affect"
	"github.com/maastricht-university/clinote/narrative"
	"github.com/maastricht-university/clinote/soap"
)

// DateLayout formats Medical_Report.Date.
const DateLayout = "2006-01-02"

// MedicalReport is the entity view of the conversation. List fields are
// never null.
type MedicalReport struct {
	PatientName   string              `json:"Patient_Name"`
	Date          string              `json:"Date"`
	Symptoms      []string            `json:"Symptoms"`
	Diagnosis     []string            `json:"Diagnosis"`
	Treatment     []string            `json:"Treatment"`
	Prognosis     []string            `json:"Prognosis"`
	Keywords      []string            `json:"Keywords"`
	CurrentStatus string              `json:"Current_Status"`
	Summary       narrative.Narrative `json:"Summary"`
}

type StructuredReport struct {
	MedicalReport   MedicalReport  `json:"Medical_Report"`
	SentimentIntent affect.Profile `json:"Sentiment_Intent"`
	SOAPNote        soap.Note      `json:"SOAP_Note"`
}

// Validate checks that every declared field is present, sentinel values
// included.
func (r *StructuredReport) Validate() error {
	var errs []error
	missing := func(field string) {
		errs = append(errs, fmt.Errorf("%s is missing", field))
	}

	m := r.MedicalReport
	if m.PatientName == "" {
		missing("Medical_Report.Patient_Name")
	}
	if _, err := time.Parse(DateLayout, m.Date); err != nil {
		errs = append(errs, fmt.Errorf("Medical_Report.Date %q is not a %s date", m.Date, DateLayout))
	}
	lists := []struct {
		name string
		v    []string
	}{
		{"Symptoms", m.Symptoms},
		{"Diagnosis", m.Diagnosis},
		{"Treatment", m.Treatment},
		{"Prognosis", m.Prognosis},
		{"Keywords", m.Keywords},
	}
	for _, l := range lists {
		if l.v == nil {
			missing("Medical_Report." + l.name)
		}
	}
	if m.CurrentStatus == "" {
		missing("Medical_Report.Current_Status")
	}
	if m.Summary.Text == "" {
		missing("Medical_Report.Summary.Text")
	}
	if m.Summary.Method != narrative.Abstractive && m.Summary.Method != narrative.Extractive {
		errs = append(errs, fmt.Errorf("Medical_Report.Summary.Method %q is not a known method", m.Summary.Method))
	}

	if _, err := affect.ParseSentiment(string(r.SentimentIntent.Sentiment)); err != nil {
		errs = append(errs, fmt.Errorf("Sentiment_Intent.Sentiment: %w", err))
	}
	if r.SentimentIntent.Intent == "" {
		missing("Sentiment_Intent.Intent")
	}
	for _, leaf := range r.SOAPNote.Missing() {
		missing("SOAP_Note." + leaf)
	}
	return errors.Join(errs...)
}

// IncompletePipelineError means a stage had neither its collaborator nor a
// fallback, so no complete report can exist.
type IncompletePipelineError struct {
	Stage string
	Err   error
}

func (e *IncompletePipelineError) Error() string {
	return fmt.Sprintf("pipeline incomplete at %s: %v", e.Stage, e.Err)
}

func (e *IncompletePipelineError) Unwrap() error { return e.Err }
