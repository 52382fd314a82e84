// Package affect derives the conversation-level sentiment and intent of the
// patient.
package affect

import "fmt"

type Sentiment string

const (
	Anxious   Sentiment = "Anxious"
	Neutral   Sentiment = "Neutral"
	Reassured Sentiment = "Reassured"
)

var Sentiments = []Sentiment{Anxious, Neutral, Reassured}

func ParseSentiment(s string) (Sentiment, error) {
	for _, v := range Sentiments {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown sentiment %q", s)
}

const (
	SeekingReassurance = "Seeking reassurance"
	ConfirmingRecovery = "Confirming recovery"
	AskingQuestions    = "Asking questions"
	ReportingSymptoms  = "Reporting symptoms"
)

// Profile is one sentiment and one intent for the whole conversation.
type Profile struct {
	Sentiment Sentiment `json:"Sentiment"`
	Intent    string    `json:"Intent"`
}

// Label is a raw classifier verdict in the collaborator's own label set.
type Label struct {
	Name  string  `json:"label"`
	Score float64 `json:"score"`
}
