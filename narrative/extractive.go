package narrative

import (
	"regexp"
	"sort"
	"strings"

	"github.com/maastricht-university/clinote/transcript"
)

var termRe = regexp.MustCompile(`[a-z0-9]+(?:'[a-z]+)?`)

var stopWords = map[string]bool{}

func init() {
	for _, w := range strings.Fields(`a an the and or but if so of to in on at by for with from as is are was
		were be been being am do does did have has had i i'm i've you you're your we our he she it it's they
		them my me this that these those there here what which who how when where why not no yes can could
		will would should may might just very much really also then than too about into over up out some
		any all okay ok well oh thank thanks please doctor patient`) {
		stopWords[w] = true
	}
}

func terms(sentence string) []string {
	var out []string
	for _, t := range termRe.FindAllString(strings.ToLower(sentence), -1) {
		if len(t) > 2 && !stopWords[t] {
			out = append(out, t)
		}
	}
	return out
}

// TopSentences picks the k sentences whose distinct content words carry the
// most weight in the document term frequencies, and returns them in their
// original order. Equal scores prefer the earlier sentence.
func TopSentences(sentences []string, k int) []string {
	if k <= 0 || len(sentences) == 0 {
		return nil
	}
	if len(sentences) <= k {
		return append([]string(nil), sentences...)
	}

	tf := map[string]int{}
	perSentence := make([][]string, len(sentences))
	for i, s := range sentences {
		perSentence[i] = terms(s)
		for _, t := range perSentence[i] {
			tf[t]++
		}
	}

	type scored struct {
		idx   int
		score int
	}
	ranked := make([]scored, len(sentences))
	for i, ts := range perSentence {
		seen := map[string]bool{}
		score := 0
		for _, t := range ts {
			if !seen[t] {
				seen[t] = true
				score += tf[t]
			}
		}
		ranked[i] = scored{idx: i, score: score}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	picked := make([]int, 0, k)
	for _, r := range ranked[:k] {
		picked = append(picked, r.idx)
	}
	sort.Ints(picked)
	out := make([]string, 0, k)
	for _, i := range picked {
		out = append(out, sentences[i])
	}
	return out
}

// Bound cuts text to at most max characters. Whole sentences are kept while
// they fit; if even the first sentence is too long it is cut at the last word
// boundary. A first word longer than max is kept whole. The bool reports
// whether anything was removed.
func Bound(text string, max int) (string, bool) {
	if max <= 0 || len([]rune(text)) <= max {
		return text, false
	}

	var kept []string
	size := 0
	for _, s := range transcript.Sentences(text) {
		n := len([]rune(s))
		if len(kept) > 0 {
			n++
		}
		if size+n > max {
			break
		}
		kept = append(kept, s)
		size += n
	}
	if len(kept) > 0 {
		return strings.Join(kept, " "), true
	}
	return BoundWords(text, max)
}

// BoundWords cuts text at the last word boundary that fits in max characters.
func BoundWords(text string, max int) (string, bool) {
	words := strings.Fields(text)
	if max <= 0 || len(words) == 0 || len([]rune(text)) <= max {
		return text, false
	}
	out := words[0]
	for _, w := range words[1:] {
		if len([]rune(out))+1+len([]rune(w)) > max {
			break
		}
		out += " " + w
	}
	return out, true
}
