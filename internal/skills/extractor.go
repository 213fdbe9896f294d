package skills

import "strings"

type Extractor struct {
	lexicon *Lexicon
}

func NewExtractor(lexicon *Lexicon) *Extractor {
	return &Extractor{lexicon: lexicon}
}

func (e *Extractor) Lexicon() *Lexicon {
	return e.lexicon
}

// Extract returns the catalog terms found as whole words in text, in catalog order.
// Empty text yields an empty, non-nil slice.
func (e *Extractor) Extract(text string) []string {
	matched := make([]string, 0)
	if strings.TrimSpace(text) == "" {
		return matched
	}

	lower := strings.ToLower(text)
	for _, term := range e.lexicon.terms {
		// cheap prefilter before the regexp
		if !strings.Contains(lower, term.Name) {
			continue
		}
		if term.matcher.MatchString(lower) {
			matched = append(matched, term.Name)
		}
	}
	return matched
}
