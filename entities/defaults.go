package entities

// DefaultLexicon is the built-in fallback lexicon.
func DefaultLexicon() LexiconConfig {
	return LexiconConfig{
		Terms: []TermGroup{
			{Category: "Symptom", Phrases: []string{
				"pain", "ache", "headache", "discomfort", "soreness", "stiffness", "numbness",
				"tingling", "dizziness", "nausea", "vomiting", "fever", "fatigue", "weakness",
				"swelling", "rash", "itching", "cough", "shortness of breath", "insomnia",
				"tenderness", "cramps", "bleeding", "trouble sleeping",
			}},
			{Category: "Diagnosis", Phrases: []string{
				"whiplash", "injury", "fracture", "sprain", "strain", "infection", "syndrome",
				"disorder", "disease", "concussion", "arthritis", "hypertension", "diabetes",
				"asthma", "migraine", "pneumonia", "tendinitis", "herniated disc",
			}},
			{Category: "Treatment", Phrases: []string{
				"physiotherapy", "physical therapy", "therapy", "painkiller", "analgesic",
				"medication", "ibuprofen", "paracetamol", "acetaminophen", "antibiotic",
				"surgery", "injection", "x-ray", "session", "prescription", "exercises",
				"ice pack", "brace",
			}},
			{Category: "Prognosis", Phrases: []string{
				"full recovery", "recovery", "prognosis", "outlook", "long-term damage",
				"long-term", "improvement", "expected to heal",
			}},
		},
		StopWords: defaultStopWords,
		MaxLeft:   2,
		MaxRight:  1,
	}
}

var defaultStopWords = []string{
	"a", "an", "the", "and", "or", "but", "if", "so", "of", "to", "in", "on", "at", "for",
	"with", "by", "from", "about", "as", "into", "over", "after", "before", "since", "until",
	"during", "through", "under", "because", "while", "than", "then", "once", "up", "down",
	"out", "off", "i", "me", "my", "mine", "you", "your", "he", "him", "his", "she", "her",
	"it", "its", "we", "us", "our", "they", "them", "their", "i'm", "i've", "i'd", "i'll",
	"it's", "you're", "that's", "there's", "don't", "didn't", "doesn't", "can't", "won't",
	"isn't", "wasn't", "haven't", "is", "am", "are", "was", "were", "be", "been", "being",
	"have", "has", "had", "having", "do", "does", "did", "doing", "can", "could", "will",
	"would", "should", "may", "might", "must", "shall", "not", "no", "yes", "that", "this",
	"these", "those", "there", "here", "what", "which", "who", "whom", "when", "where",
	"why", "how", "all", "any", "some", "much", "many", "more", "most", "very", "really",
	"just", "still", "also", "too", "quite", "bit", "lot", "little", "now", "again", "well",
	"okay", "ok", "oh", "um", "uh", "thank", "thanks", "please", "good", "great", "fine",
	"better", "worse", "feel", "feels", "feeling", "felt", "get", "gets", "getting", "got",
	"go", "going", "went", "take", "taking", "took", "make", "made", "say", "said", "know",
	"think", "see", "seem", "seems", "like", "mean", "want", "need", "let", "let's", "right",
	"sure", "sorry", "experience", "experienced", "experiencing", "noticed", "started",
	"every", "other", "own", "same", "such", "only", "both", "each", "few", "nor", "doctor",
	"patient", "hello", "hi", "morning", "afternoon", "evening", "today", "yesterday",
	"anything", "something", "everything", "nothing", "around", "kind", "sort", "things",
	"thing", "way", "definitely", "probably", "maybe", "actually", "one", "two", "three",
	"four", "five", "six", "seven", "eight", "nine", "ten", "several", "couple", "diagnose",
	"diagnosed", "prescribe", "prescribed", "recommend", "recommended", "suggest",
	"suggested", "continue", "continuing", "start", "helped", "help", "helps", "caused",
	"cause", "report", "reports", "reported", "complain", "complains", "complained",
	"describe", "describes", "mention", "mentioned", "saw", "seen", "says", "use", "used",
	"using", "try", "tried", "trying", "keep", "avoid", "any", "since",
}
