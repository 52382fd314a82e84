package entities

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/maastricht-university/clinote/rules"
)

// TermGroup is a list of trigger phrases for one category.
type TermGroup struct {
	Category string   `yaml:"category" json:"category"`
	Phrases  []string `yaml:"phrases" json:"phrases"`
}

// LexiconConfig is the YAML form of the fallback lexicon.
type LexiconConfig struct {
	Terms     []TermGroup `yaml:"terms" json:"terms"`
	StopWords []string    `yaml:"stop_words" json:"stop_words"`
	// MaxLeft and MaxRight bound how many neighbouring words a trigger match
	// absorbs into its noun phrase.
	MaxLeft  int `yaml:"max_left" json:"max_left"`
	MaxRight int `yaml:"max_right" json:"max_right"`
}

type trigger struct {
	words    []string
	category Category
}

// Lexicon is a compiled LexiconConfig.
type Lexicon struct {
	triggers []trigger
	byWord   map[string]Category
	stop     map[string]bool
	maxLeft  int
	maxRight int
}

func LoadLexicon(path string) (*Lexicon, error) {
	if path == "" {
		return NewLexicon(DefaultLexicon())
	}
	var cfg LexiconConfig
	if err := rules.LoadYAML(path, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.StopWords) == 0 {
		cfg.StopWords = DefaultLexicon().StopWords
	}
	return NewLexicon(cfg)
}

func NewLexicon(cfg LexiconConfig) (*Lexicon, error) {
	l := &Lexicon{
		byWord:   make(map[string]Category),
		stop:     make(map[string]bool, len(cfg.StopWords)),
		maxLeft:  cfg.MaxLeft,
		maxRight: cfg.MaxRight,
	}
	if l.maxLeft < 0 || l.maxRight < 0 {
		return nil, errors.New("lexicon: max_left and max_right must not be negative")
	}
	for _, w := range cfg.StopWords {
		l.stop[strings.ToLower(w)] = true
	}

	rank := map[Category]int{}
	for i, c := range Categories {
		rank[c] = i
	}
	for _, g := range cfg.Terms {
		cat := ParseCategory(g.Category)
		if !cat.clinical() {
			return nil, fmt.Errorf("lexicon: %q is not a clinical category", g.Category)
		}
		for _, p := range g.Phrases {
			words := tokenWords(p)
			if len(words) == 0 {
				continue
			}
			l.triggers = append(l.triggers, trigger{words: words, category: cat})
			for _, w := range words {
				if _, seen := l.byWord[w]; !seen {
					l.byWord[w] = cat
				}
			}
		}
	}
	// Longer phrases first so "back pain" is tried before "pain".
	sort.SliceStable(l.triggers, func(i, j int) bool {
		if len(l.triggers[i].words) != len(l.triggers[j].words) {
			return len(l.triggers[i].words) > len(l.triggers[j].words)
		}
		return rank[l.triggers[i].category] < rank[l.triggers[j].category]
	})
	return l, nil
}

// Empty reports whether the lexicon has no triggers.
func (l *Lexicon) Empty() bool { return l == nil || len(l.triggers) == 0 }

func (l *Lexicon) isStop(w string) bool { return l.stop[w] }

var wordRe = regexp.MustCompile(`[A-Za-z0-9]+(?:['’-][A-Za-z0-9]+)*`)

type token struct {
	lower      string
	start, end int
	// breakBefore marks punctuation between this token and the previous one.
	breakBefore bool
}

func tokenize(text string) []token {
	locs := wordRe.FindAllStringIndex(text, -1)
	out := make([]token, 0, len(locs))
	prev := 0
	for i, loc := range locs {
		gap := text[prev:loc[0]]
		out = append(out, token{
			lower:       strings.ToLower(text[loc[0]:loc[1]]),
			start:       loc[0],
			end:         loc[1],
			breakBefore: i > 0 && strings.TrimSpace(gap) != "",
		})
		prev = loc[1]
	}
	return out
}

func tokenWords(s string) []string {
	var out []string
	for _, t := range tokenize(s) {
		out = append(out, t.lower)
	}
	return out
}

func wordMatches(tok, want string) bool {
	return tok == want || tok == want+"s" || tok == want+"es"
}

func (l *Lexicon) matchAt(toks []token, i int, tr trigger) bool {
	if i+len(tr.words) > len(toks) {
		return false
	}
	for k, w := range tr.words {
		if k > 0 && toks[i+k].breakBefore {
			return false
		}
		if !wordMatches(toks[i+k].lower, w) {
			return false
		}
	}
	return true
}

func (l *Lexicon) wordCategory(w string) (Category, bool) {
	for _, cand := range []string{w, strings.TrimSuffix(w, "s"), strings.TrimSuffix(w, "es")} {
		if c, ok := l.byWord[cand]; ok {
			return c, true
		}
	}
	return "", false
}

// absorbLeft reports whether tok may prefix a phrase of category cat: any
// content word that is not another category's trigger.
func (l *Lexicon) absorbLeft(tok token, cat Category) bool {
	if l.isStop(tok.lower) || len(tok.lower) < 2 || isNumber(tok.lower) {
		return false
	}
	c, ok := l.wordCategory(tok.lower)
	return !ok || c == cat
}

// absorbRight reports whether tok may extend a phrase of category cat to the
// right. Only words of the same category qualify ("whiplash injury").
func (l *Lexicon) absorbRight(tok token, cat Category) bool {
	c, ok := l.wordCategory(tok.lower)
	return ok && c == cat && !l.isStop(tok.lower)
}

// Extract finds every trigger occurrence in text and expands it into its
// surrounding noun phrase. Results are ordered by position.
func (l *Lexicon) Extract(text string) []Span {
	if l.Empty() {
		return nil
	}
	toks := tokenize(text)
	covered := make([]bool, len(toks))
	var spans []Span
	for _, tr := range l.triggers {
		for i := range toks {
			if covered[i] || !l.matchAt(toks, i, tr) {
				continue
			}
			lo, hi := i, i+len(tr.words)-1
			for n := 0; n < l.maxLeft && lo > 0 && !toks[lo].breakBefore && l.absorbLeft(toks[lo-1], tr.category); n++ {
				lo--
			}
			for n := 0; n < l.maxRight && hi+1 < len(toks) && !toks[hi+1].breakBefore && l.absorbRight(toks[hi+1], tr.category); n++ {
				hi++
			}
			for k := lo; k <= hi; k++ {
				covered[k] = true
			}
			spans = append(spans, Span{
				Text:     text[toks[lo].start:toks[hi].end],
				Category: tr.category,
				Source:   Fallback,
				Start:    toks[lo].start,
				End:      toks[hi].end,
			})
		}
	}
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	return spans
}

// NounPhrases returns up to n candidate keyword phrases: maximal runs of
// non-stop words (at most three) ranked by frequency, then first occurrence.
func (l *Lexicon) NounPhrases(text string, n int) []string {
	if n <= 0 {
		return nil
	}
	toks := tokenize(text)
	type cand struct {
		phrase string
		count  int
		first  int
	}
	var (
		order []*cand
		index = map[string]*cand{}
		run   []token
	)
	flush := func() {
		for len(run) > 0 {
			size := len(run)
			if size > 3 {
				size = 3
			}
			words := make([]string, 0, size)
			for _, t := range run[:size] {
				words = append(words, t.lower)
			}
			phrase := strings.Join(words, " ")
			if c, ok := index[phrase]; ok {
				c.count++
			} else {
				c := &cand{phrase: phrase, count: 1, first: len(order)}
				index[phrase] = c
				order = append(order, c)
			}
			run = run[size:]
		}
	}
	for _, t := range toks {
		if t.breakBefore {
			flush()
		}
		if l.isStop(t.lower) || len(t.lower) < 3 || isNumber(t.lower) {
			flush()
			continue
		}
		run = append(run, t)
	}
	flush()

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].count != order[j].count {
			return order[i].count > order[j].count
		}
		return order[i].first < order[j].first
	})
	out := make([]string, 0, n)
	for _, c := range order {
		if len(out) == n {
			break
		}
		out = append(out, c.phrase)
	}
	return out
}

func isNumber(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
