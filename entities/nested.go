package entities

import (
	"sort"
	"strings"
)

// locate fills in offsets for spans the producer did not position, using the
// first case-insensitive occurrence in text.
func locate(text string, spans []Span) []Span {
	lower := strings.ToLower(text)
	out := make([]Span, len(spans))
	for i, s := range spans {
		if !s.located() {
			if at := strings.Index(lower, strings.ToLower(s.Text)); at >= 0 && s.Text != "" {
				s.Start, s.End = at, at+len(s.Text)
			}
		}
		out[i] = s
	}
	return out
}

// collapseNested drops spans fully contained in a longer kept span.
// Partially overlapping spans both survive. Spans without a position are
// always kept. Survivors keep their emission order.
func collapseNested(text string, spans []Span) []Span {
	spans = locate(text, spans)
	idx := make([]int, len(spans))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		sa, sb := spans[idx[a]], spans[idx[b]]
		if la, lb := sa.End-sa.Start, sb.End-sb.Start; la != lb {
			return la > lb
		}
		return sa.Start < sb.Start
	})

	keep := make([]bool, len(spans))
	var kept []Span
	for _, i := range idx {
		s := spans[i]
		if !s.located() {
			keep[i] = true
			continue
		}
		nested := false
		for _, k := range kept {
			if k.Start <= s.Start && s.End <= k.End {
				nested = true
				break
			}
		}
		if !nested {
			keep[i] = true
			kept = append(kept, s)
		}
	}

	out := make([]Span, 0, len(kept))
	for i, s := range spans {
		if keep[i] {
			out = append(out, s)
		}
	}
	return out
}
