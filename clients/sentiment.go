package clients

import (
	"context"
	"errors"
	"strings"

	"github.com/maastricht-university/clinote/affect"
)

// --- Sentiment (/classify) ---
type ClassifyReq struct {
	Text string `json:"text"`
}

type EmoScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ClassifyResp accepts both a single verdict and an emotion distribution.
type ClassifyResp struct {
	Label           string     `json:"label"`
	Score           float64    `json:"score"`
	Emotions        []EmoScore `json:"emotions,omitempty"`
	DominantEmotion string     `json:"dominant_emotion,omitempty"`
}

var errNoLabel = errors.New("sentiment: response carries no label")

type Sentiment struct {
	h   *HTTP
	url string
}

func NewSentiment(h *HTTP, url string) *Sentiment {
	return &Sentiment{h: h, url: strings.TrimRight(url, "/")}
}

// Classify implements affect.SentimentClassifier.
func (s *Sentiment) Classify(ctx context.Context, text string) (affect.Label, error) {
	resp, err := cached(ctx, s.h, "sentiment", []string{s.url, text}, func(ctx context.Context) (ClassifyResp, error) {
		var out ClassifyResp
		err := s.h.postJSON(ctx, "sentiment", s.url+"/classify", ClassifyReq{Text: text}, &out)
		return out, err
	})
	if err != nil {
		return affect.Label{}, err
	}
	return resp.verdict()
}

// verdict prefers the single label, then the dominant emotion, then the
// highest scoring emotion.
func (r ClassifyResp) verdict() (affect.Label, error) {
	if r.Label != "" {
		return affect.Label{Name: r.Label, Score: r.Score}, nil
	}
	best := -1
	for i, e := range r.Emotions {
		if e.Label == "" {
			continue
		}
		if r.DominantEmotion != "" && e.Label == r.DominantEmotion {
			best = i
			break
		}
		if best < 0 || e.Score > r.Emotions[best].Score {
			best = i
		}
	}
	if best < 0 {
		return affect.Label{}, errNoLabel
	}
	return affect.Label{Name: r.Emotions[best].Label, Score: r.Emotions[best].Score}, nil
}
