package affect

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/maastricht-university/clinote/collab"
	"github.com/maastricht-university/clinote/logger"
	"github.com/maastricht-university/clinote/rules"
	"github.com/maastricht-university/clinote/transcript"
)

// SentimentClassifier is the per-utterance sentiment collaborator.
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) (Label, error)
}

type Classifier struct {
	model         SentimentClassifier
	mapping       *Mapping
	cues          *rules.Table
	intents       *rules.Table
	defaultIntent string
	timeout       time.Duration
	parallel      int
}

// New compiles the mapping, cue and intent tables. The mapping must cover
// every label in sc.Labels. model may be nil.
func New(model SentimentClassifier, sc SentimentConfig, ic IntentConfig, timeout time.Duration) (*Classifier, error) {
	mapping, err := NewMapping(sc.Mapping)
	if err != nil {
		return nil, err
	}
	if err := mapping.Validate(sc.Labels); err != nil {
		return nil, err
	}
	cues, err := cueTable(sc.Cues)
	if err != nil {
		return nil, fmt.Errorf("affect: cues: %w", err)
	}
	intents, def, err := compileIntents(ic)
	if err != nil {
		return nil, err
	}
	return &Classifier{
		model:         model,
		mapping:       mapping,
		cues:          cues,
		intents:       intents,
		defaultIntent: def,
		timeout:       timeout,
		parallel:      4,
	}, nil
}

// Classify aggregates over the Patient utterances only. Without any it returns
// Neutral and the default intent.
func (c *Classifier) Classify(ctx context.Context, utts []transcript.Utterance) Profile {
	patient := transcript.BySpeaker(utts, transcript.Patient)
	profile := Profile{Sentiment: Neutral, Intent: c.defaultIntent}
	if len(patient) == 0 {
		return profile
	}

	votes := make([]Sentiment, len(patient))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallel)
	for i, u := range patient {
		i, u := i, u
		g.Go(func() error {
			votes[i] = c.utterance(gctx, u)
			return nil
		})
	}
	_ = g.Wait()

	profile.Sentiment = Majority(votes)
	if r, ok := c.intents.First(string(transcript.Patient), transcript.SpeakerText(utts, transcript.Patient)); ok {
		profile.Intent = r.Label
	}
	return profile
}

func (c *Classifier) utterance(ctx context.Context, u transcript.Utterance) Sentiment {
	if c.model != nil {
		label, err := collab.Call(ctx, "sentiment", c.timeout, func(ctx context.Context) (Label, error) {
			return c.model.Classify(ctx, u.Text)
		})
		if err == nil {
			var s Sentiment
			s, err = c.mapping.Map(label)
			if err == nil && s != Neutral {
				return s
			}
		}
		if err != nil {
			logger.Stage("affect").WithError(err).WithFields(map[string]interface{}{
				"collaborator": "sentiment",
				"utterance":    u.Index,
			}).Warn("sentiment classifier unusable, scoring cues")
		}
	}
	return c.cueSentiment(u.Text)
}

func (c *Classifier) cueSentiment(text string) Sentiment {
	var anxious, reassured int
	for _, r := range c.cues.All(string(transcript.Patient), text) {
		switch Sentiment(r.Label) {
		case Anxious:
			anxious++
		case Reassured:
			reassured++
		}
	}
	switch {
	case anxious > reassured:
		return Anxious
	case reassured > anxious:
		return Reassured
	default:
		return Neutral
	}
}

// Majority returns the most frequent vote. Ties go to the label of the most
// recent vote among the tied ones.
func Majority(votes []Sentiment) Sentiment {
	if len(votes) == 0 {
		return Neutral
	}
	counts := map[Sentiment]int{}
	best := 0
	for _, v := range votes {
		counts[v]++
		if counts[v] > best {
			best = counts[v]
		}
	}
	for i := len(votes) - 1; i >= 0; i-- {
		if counts[votes[i]] == best {
			return votes[i]
		}
	}
	return Neutral
}
