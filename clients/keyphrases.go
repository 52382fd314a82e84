package clients

import (
	"context"
	"sort"
	"strconv"
	"strings"
)

// --- Keyphrase scorer (/keyphrases) ---
type KeyphraseReq struct {
	Text string `json:"text"`
	TopN int    `json:"top_n"`
}

type ScoredPhrase struct {
	Phrase string  `json:"phrase"`
	Score  float64 `json:"score"`
}

type KeyphraseResp struct {
	Keyphrases []ScoredPhrase `json:"keyphrases"`
}

type Keyphrases struct {
	h   *HTTP
	url string
}

func NewKeyphrases(h *HTTP, url string) *Keyphrases {
	return &Keyphrases{h: h, url: strings.TrimRight(url, "/")}
}

// Phrases implements entities.PhraseExtractor: best score first, at most n.
func (k *Keyphrases) Phrases(ctx context.Context, text string, n int) ([]string, error) {
	key := []string{k.url, strconv.Itoa(n), text}
	resp, err := cached(ctx, k.h, "keyphrases", key, func(ctx context.Context) (KeyphraseResp, error) {
		var out KeyphraseResp
		err := k.h.postJSON(ctx, "keyphrases", k.url+"/keyphrases", KeyphraseReq{Text: text, TopN: n}, &out)
		return out, err
	})
	if err != nil {
		return nil, err
	}

	ranked := append([]ScoredPhrase(nil), resp.Keyphrases...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	out := make([]string, 0, len(ranked))
	for _, p := range ranked {
		if len(out) == n {
			break
		}
		if strings.TrimSpace(p.Phrase) != "" {
			out = append(out, p.Phrase)
		}
	}
	return out, nil
}
