package clients

import (
	"context"
	"strconv"
	"strings"
)

// --- Summarizer (/summarize) ---
type SummarizeReq struct {
	Text      string `json:"text"`
	MaxLength int    `json:"max_length"`
}

type SummarizeResp struct {
	Summary string `json:"summary"`
}

type Summarizer struct {
	h   *HTTP
	url string
}

func NewSummarizer(h *HTTP, url string) *Summarizer {
	return &Summarizer{h: h, url: strings.TrimRight(url, "/")}
}

// Summarize implements narrative.Summarizer.
func (s *Summarizer) Summarize(ctx context.Context, text string, maxLength int) (string, error) {
	key := []string{s.url, strconv.Itoa(maxLength), text}
	resp, err := cached(ctx, s.h, "summarizer", key, func(ctx context.Context) (SummarizeResp, error) {
		var out SummarizeResp
		err := s.h.postJSON(ctx, "summarizer", s.url+"/summarize", SummarizeReq{Text: text, MaxLength: maxLength}, &out)
		return out, err
	})
	if err != nil {
		return "", err
	}
	return resp.Summary, nil
}
