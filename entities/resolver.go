package entities

import (
	"context"
	"errors"
	"time"

	"github.com/maastricht-university/clinote/collab"
	"github.com/maastricht-university/clinote/logger"
)

// Tagger is the statistical NER collaborator.
type Tagger interface {
	Tag(ctx context.Context, text string) ([]Span, error)
}

// PhraseExtractor is the keyword scorer used for uncategorized terms.
type PhraseExtractor interface {
	Phrases(ctx context.Context, text string, n int) ([]string, error)
}

var ErrNoSource = errors.New("entities: neither a tagger nor a fallback lexicon is configured")

type Option func(*Resolver)

func WithPhraseExtractor(p PhraseExtractor) Option {
	return func(r *Resolver) { r.phrases = p }
}

// WithTimeout bounds each collaborator call.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.timeout = d }
}

func WithMaxKeywords(n int) Option {
	return func(r *Resolver) { r.maxKeywords = n }
}

type Resolver struct {
	tagger      Tagger
	lexicon     *Lexicon
	phrases     PhraseExtractor
	timeout     time.Duration
	maxKeywords int
}

// NewResolver builds a resolver. tagger and lexicon may each be nil, but not
// both; Check reports that condition.
func NewResolver(tagger Tagger, lexicon *Lexicon, opts ...Option) *Resolver {
	r := &Resolver{tagger: tagger, lexicon: lexicon, maxKeywords: 10}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Resolver) Check() error {
	if r.tagger == nil && r.lexicon.Empty() {
		return ErrNoSource
	}
	return nil
}

// Resolve runs the tagger and the lexicon fallback over text and merges them.
// Model-sourced spans are merged first, so they win every collision. A tagger
// failure only degrades the result.
func (r *Resolver) Resolve(ctx context.Context, text string) (*Set, error) {
	if err := r.Check(); err != nil {
		return nil, err
	}
	log := logger.Stage("entities")
	set := NewSet()

	if r.tagger != nil {
		spans, err := collab.Call(ctx, "tagger", r.timeout, func(ctx context.Context) ([]Span, error) {
			return r.tagger.Tag(ctx, text)
		})
		if err != nil {
			log.WithError(err).WithField("collaborator", "tagger").Warn("tagger failed, using lexicon fallback only")
		}
		for _, s := range collapseNested(text, spans) {
			s.Source = Model
			set.Add(s)
		}
	}

	if !r.lexicon.Empty() {
		for _, s := range r.lexicon.Extract(text) {
			set.Add(s)
		}
	}

	for _, p := range r.keywords(ctx, text) {
		set.Add(Span{Text: p, Category: Other, Source: Fallback})
	}

	log.WithField("entities", set.Len()).Debug("entities resolved")
	return set, nil
}

func (r *Resolver) keywords(ctx context.Context, text string) []string {
	if r.maxKeywords <= 0 {
		return nil
	}
	if r.phrases != nil {
		ps, err := collab.Call(ctx, "keyphrases", r.timeout, func(ctx context.Context) ([]string, error) {
			return r.phrases.Phrases(ctx, text, r.maxKeywords)
		})
		if err == nil && len(ps) > 0 {
			if len(ps) > r.maxKeywords {
				ps = ps[:r.maxKeywords]
			}
			return ps
		}
		logger.Stage("entities").WithError(err).WithField("collaborator", "keyphrases").Warn("keyphrase scorer failed, using noun phrases")
	}
	if r.lexicon == nil {
		return nil
	}
	return r.lexicon.NounPhrases(text, r.maxKeywords)
}
