package affect

import "github.com/maastricht-university/clinote/rules"

// DefaultSentiment covers the binary SST-2 labels and a seven-way emotion
// label set. Labels compare case-insensitively, so NEUTRAL serves both.
func DefaultSentiment() SentimentConfig {
	return SentimentConfig{
		Labels: []string{
			"POSITIVE", "NEGATIVE", "NEUTRAL",
			"joy", "fear", "sadness", "anger", "surprise", "disgust",
		},
		Mapping: []MappingEntry{
			{Label: "POSITIVE", Sentiment: string(Reassured), MinScore: 0.7},
			{Label: "NEGATIVE", Sentiment: string(Anxious), MinScore: 0.7},
			{Label: "NEUTRAL", Sentiment: string(Neutral)},
			{Label: "joy", Sentiment: string(Reassured), MinScore: 0.5},
			{Label: "fear", Sentiment: string(Anxious), MinScore: 0.5},
			{Label: "sadness", Sentiment: string(Anxious), MinScore: 0.5},
			{Label: "anger", Sentiment: string(Anxious), MinScore: 0.6},
			{Label: "surprise", Sentiment: string(Neutral)},
			{Label: "disgust", Sentiment: string(Neutral)},
		},
		Cues: Cues{
			Anxious: []string{
				"worried", "worry", "concerned", "anxious", "nervous", "afraid", "fear",
				"scared", "uncertain", "doubt", "apprehensive", "stress", "stressed", "panic",
			},
			Reassured: []string{
				"better", "improved", "improving", "reassuring", "reassured", "confident",
				"relieved", "grateful", "thank", "thanks", "thankful", "appreciate", "hopeful",
				"optimistic", "good news", "great",
			},
		},
	}
}

func DefaultIntents() IntentConfig {
	return IntentConfig{
		Default: ReportingSymptoms,
		Rules: []rules.Rule{
			{
				Name:    "reassurance",
				Label:   SeekingReassurance,
				Pattern: `\b(worried|concerned|afraid|should i|is (it|that|this) (normal|serious)|what if|will i|anything to worry)\b`,
			},
			{
				Name:    "recovery",
				Label:   ConfirmingRecovery,
				Pattern: `\b(much better|getting better|feel(ing)? better|improv(ed|ing)|recover(ed|ing)|heal(ed|ing)|doing (well|fine|great)|back to normal)\b`,
			},
			{
				Name:    "question",
				Label:   AskingQuestions,
				Pattern: `\?`,
			},
		},
	}
}
