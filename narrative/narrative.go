// Package narrative produces the bounded free-text summary of a conversation.
package narrative

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/maastricht-university/clinote/collab"
	"github.com/maastricht-university/clinote/logger"
	"github.com/maastricht-university/clinote/transcript"
)

type Method string

const (
	Abstractive Method = "abstractive"
	Extractive  Method = "extractive"
)

// Narrative is the synthesized summary. Truncated is set whenever the text was
// cut to fit the configured bound.
type Narrative struct {
	Text      string `json:"Text"`
	Method    Method `json:"Method"`
	Truncated bool   `json:"Truncated"`
}

// Summarizer is the abstractive summarization collaborator. maxLength is a
// character budget the collaborator should aim for; it is enforced locally.
type Summarizer interface {
	Summarize(ctx context.Context, text string, maxLength int) (string, error)
}

var errEmptySummary = errors.New("empty summary")

type Synthesizer struct {
	summarizer Summarizer
	maxLength  int
	topK       int
	timeout    time.Duration
}

// New returns a Synthesizer. summarizer may be nil, in which case every
// narrative is extractive.
func New(summarizer Summarizer, maxLength, topK int, timeout time.Duration) *Synthesizer {
	if maxLength <= 0 {
		maxLength = 600
	}
	if topK <= 0 {
		topK = 3
	}
	return &Synthesizer{summarizer: summarizer, maxLength: maxLength, topK: topK, timeout: timeout}
}

// Synthesize never fails: a missing, failing or slow summarizer selects the
// extractive path.
func (s *Synthesizer) Synthesize(ctx context.Context, utts []transcript.Utterance) Narrative {
	log := logger.Stage("narrative")
	text := transcript.FullText(utts)

	if s.summarizer != nil {
		summary, err := collab.Call(ctx, "summarizer", s.timeout, func(ctx context.Context) (string, error) {
			out, err := s.summarizer.Summarize(ctx, text, s.maxLength)
			if err == nil && strings.TrimSpace(out) == "" {
				err = errEmptySummary
			}
			return out, err
		})
		if err == nil {
			bounded, cut := Bound(strings.Join(strings.Fields(summary), " "), s.maxLength)
			return Narrative{Text: bounded, Method: Abstractive, Truncated: cut}
		}
		log.WithError(err).WithField("collaborator", "summarizer").Warn("summarizer failed, using extractive summary")
	}

	var sentences []string
	for _, u := range utts {
		sentences = append(sentences, u.Sentences()...)
	}
	bounded, cut := Bound(strings.Join(TopSentences(sentences, s.topK), " "), s.maxLength)
	return Narrative{Text: bounded, Method: Extractive, Truncated: cut}
}
