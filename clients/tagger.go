package clients

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/maastricht-university/clinote/entities"
)

// --- Entity tagger (/tag) ---
type TagReq struct {
	Text string `json:"text"`
}

// TaggedSpan offsets count characters (code points), as Python NER services
// report them. Tag converts them to byte offsets into the request text.
type TaggedSpan struct {
	Text       string   `json:"text"`
	Label      string   `json:"label"`
	Confidence *float64 `json:"confidence,omitempty"`
	Start      int      `json:"start,omitempty"`
	End        int      `json:"end,omitempty"`
}

type TagResp struct {
	Entities []TaggedSpan `json:"entities"`
}

type Tagger struct {
	h   *HTTP
	url string
}

func NewTagger(h *HTTP, url string) *Tagger {
	return &Tagger{h: h, url: strings.TrimRight(url, "/")}
}

// Tag implements entities.Tagger. Spans are validated on the way in: labels
// go through the category table, out-of-range offsets and confidences are
// dropped, empty spans are skipped. Offsets that do not point at the span
// text are dropped too.
func (t *Tagger) Tag(ctx context.Context, text string) ([]entities.Span, error) {
	resp, err := cached(ctx, t.h, "tagger", []string{t.url, text}, func(ctx context.Context) (TagResp, error) {
		var out TagResp
		err := t.h.postJSON(ctx, "tagger", t.url+"/tag", TagReq{Text: text}, &out)
		return out, err
	})
	if err != nil {
		return nil, err
	}

	offsets := runeOffsets(text)
	spans := make([]entities.Span, 0, len(resp.Entities))
	for _, e := range resp.Entities {
		if strings.TrimSpace(e.Text) == "" {
			continue
		}
		s := entities.Span{
			Text:     e.Text,
			Category: entities.ParseCategory(e.Label),
			Source:   entities.Model,
		}
		if c := e.Confidence; c != nil && *c >= 0 && *c <= 1 {
			v := *c
			s.Confidence = &v
		}
		if e.Start >= 0 && e.End > e.Start && e.End < len(offsets) {
			start, end := offsets[e.Start], offsets[e.End]
			if strings.EqualFold(text[start:end], strings.TrimSpace(e.Text)) {
				s.Start, s.End = start, end
			}
		}
		spans = append(spans, s)
	}
	return spans, nil
}

// runeOffsets maps each character index of text, plus the end, to its byte
// offset.
func runeOffsets(text string) []int {
	out := make([]int, 0, utf8.RuneCountInString(text)+1)
	for i := range text {
		out = append(out, i)
	}
	return append(out, len(text))
}
