package transcript

import (
	"regexp"
	"strings"
	"unicode"
)

var abbreviations = map[string]bool{
	"dr": true, "mr": true, "mrs": true, "ms": true, "st": true,
	"e.g": true, "i.e": true, "etc": true, "vs": true, "approx": true,
}

// Sentences splits text at '.', '!' and '?' runs followed by whitespace or end
// of text. Terminal punctuation stays with its sentence; common abbreviations
// and decimal points do not end a sentence.
func Sentences(text string) []string {
	rs := []rune(text)
	var (
		out   []string
		start int
	)
	for i := 0; i < len(rs); i++ {
		if !isTerminal(rs[i]) {
			continue
		}
		j := i
		for j+1 < len(rs) && (isTerminal(rs[j+1]) || rs[j+1] == '"' || rs[j+1] == '\'' || rs[j+1] == ')') {
			j++
		}
		if j+1 < len(rs) && !unicode.IsSpace(rs[j+1]) {
			i = j
			continue
		}
		if rs[i] == '.' && i == j && abbreviations[strings.ToLower(lastWord(rs[start:i]))] {
			i = j
			continue
		}
		if s := strings.TrimSpace(string(rs[start : j+1])); s != "" {
			out = append(out, s)
		}
		start = j + 1
		i = j
	}
	if s := strings.TrimSpace(string(rs[start:])); s != "" {
		out = append(out, s)
	}
	return out
}

func isTerminal(r rune) bool { return r == '.' || r == '!' || r == '?' }

func lastWord(rs []rune) string {
	end := len(rs)
	i := end
	for i > 0 && !unicode.IsSpace(rs[i-1]) {
		i--
	}
	return string(rs[i:end])
}

const NotSpecified = "Not specified"

var (
	greetingRe = regexp.MustCompile(`^(?i:good\s+(?:morning|afternoon|evening)|hello|hi|hey|welcome(?:\s+back)?)[,!.]?\s+(?:(?:Mr|Mrs|Ms|Miss)\.?\s+)?([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)\b`)
	addressRe  = regexp.MustCompile(`^(?:(?:Mr|Mrs|Ms|Miss)\.?\s+)?([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?),\s+(?i:how|are|can|could|have|please|what|when|i)\b`)
	selfRe     = regexp.MustCompile(`(?i:my name is|my name's|this is)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)\b`)
)

var notNames = map[string]bool{
	"How": true, "What": true, "Well": true, "So": true, "Yes": true, "No": true,
	"Okay": true, "Thanks": true, "Thank": true, "Doctor": true, "Patient": true,
	"There": true, "Everyone": true, "Again": true, "Good": true, "Great": true,
	"Now": true, "Right": true, "Sure": true, "Please": true,
}

func acceptName(name string) (string, bool) {
	first := strings.Fields(name)[0]
	if notNames[first] {
		return "", false
	}
	return name, true
}

// PatientName guesses the patient's name from doctor greetings, direct address
// or patient self-introduction. It returns NotSpecified when nothing matches.
func PatientName(utts []Utterance) string {
	for _, u := range utts {
		if u.Speaker != Doctor {
			continue
		}
		for _, re := range []*regexp.Regexp{greetingRe, addressRe} {
			if m := re.FindStringSubmatch(u.Text); m != nil {
				if name, ok := acceptName(m[1]); ok {
					return name
				}
			}
		}
	}
	for _, u := range utts {
		if u.Speaker != Patient {
			continue
		}
		if m := selfRe.FindStringSubmatch(u.Text); m != nil {
			if name, ok := acceptName(m[1]); ok {
				return name
			}
		}
	}
	return NotSpecified
}
