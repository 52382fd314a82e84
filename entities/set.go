package entities

// Entry is one resolved entity string.
type Entry struct {
	Text       string   `json:"text"`
	Source     Source   `json:"source"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Set is an ordered, per-category collection of unique normalized strings.
// A string belongs to at most one clinical category: Model-sourced entries win
// over Fallback-sourced ones, otherwise the first seen wins. Other holds only
// strings that no clinical category claims.
type Set struct {
	entries map[Category][]Entry
	owner   map[string]Category
}

func NewSet() *Set {
	s := &Set{
		entries: make(map[Category][]Entry, len(Categories)),
		owner:   make(map[string]Category),
	}
	for _, c := range Categories {
		s.entries[c] = []Entry{}
	}
	return s
}

func (s *Set) indexOf(c Category, key string) int {
	for i, e := range s.entries[c] {
		if e.Text == key {
			return i
		}
	}
	return -1
}

func (s *Set) remove(c Category, key string) {
	if i := s.indexOf(c, key); i >= 0 {
		s.entries[c] = append(s.entries[c][:i:i], s.entries[c][i+1:]...)
	}
}

// Add merges span into the set and reports whether the set changed.
func (s *Set) Add(span Span) bool {
	key := Normalize(span.Text)
	if key == "" {
		return false
	}
	cat := span.Category
	if !cat.Valid() {
		cat = Other
	}
	entry := Entry{Text: key, Source: span.Source, Confidence: span.Confidence}

	if !cat.clinical() {
		if _, claimed := s.owner[key]; claimed {
			return false
		}
		if i := s.indexOf(Other, key); i >= 0 {
			if s.entries[Other][i].Source == Fallback && entry.Source == Model {
				s.entries[Other][i] = entry
				return true
			}
			return false
		}
		s.entries[Other] = append(s.entries[Other], entry)
		return true
	}

	if cur, ok := s.owner[key]; ok {
		i := s.indexOf(cur, key)
		existing := s.entries[cur][i]
		if existing.Source != Fallback || entry.Source != Model {
			return false
		}
		if cur == cat {
			s.entries[cat][i] = entry
			return true
		}
		s.remove(cur, key)
	}
	s.owner[key] = cat
	s.remove(Other, key)
	s.entries[cat] = append(s.entries[cat], entry)
	return true
}

// Entries returns the entries of c in first-seen order. Never nil.
func (s *Set) Entries(c Category) []Entry {
	out := make([]Entry, len(s.entries[c]))
	copy(out, s.entries[c])
	return out
}

// Names returns the normalized strings of c in order. Never nil.
func (s *Set) Names(c Category) []string {
	out := make([]string, 0, len(s.entries[c]))
	for _, e := range s.entries[c] {
		out = append(out, e.Text)
	}
	return out
}

// Lookup returns the category and entry for text, if present.
func (s *Set) Lookup(text string) (Category, Entry, bool) {
	key := Normalize(text)
	if c, ok := s.owner[key]; ok {
		return c, s.entries[c][s.indexOf(c, key)], true
	}
	if i := s.indexOf(Other, key); i >= 0 {
		return Other, s.entries[Other][i], true
	}
	return "", Entry{}, false
}

func (s *Set) Len() int {
	n := 0
	for _, c := range Categories {
		n += len(s.entries[c])
	}
	return n
}
