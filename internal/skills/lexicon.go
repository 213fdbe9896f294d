package skills

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yaml
var defaultCatalog []byte

// Term is a single catalog entry. Name is always lower-case.
type Term struct {
	Name     string
	Category string

	matcher *regexp.Regexp
}

// Lexicon is the immutable, ordered skill catalog. It is safe for concurrent use.
type Lexicon struct {
	terms      []Term
	index      map[string]int
	categories []string
}

type catalogGroup struct {
	Category string   `yaml:"category"`
	Terms    []string `yaml:"terms"`
}

// Default parses the embedded catalog.
func Default() (*Lexicon, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file, or the embedded catalog when path is empty.
func Load(path string) (*Lexicon, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file: %w", err)
	}
	return Parse(data)
}

// Parse builds a Lexicon from YAML. Terms are lower-cased and trimmed,
// duplicates keep their first position.
func Parse(data []byte) (*Lexicon, error) {
	var groups []catalogGroup
	if err := yaml.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon: %w", err)
	}

	lex := &Lexicon{index: make(map[string]int)}
	seenCategory := make(map[string]struct{})

	for _, group := range groups {
		category := strings.TrimSpace(group.Category)
		if _, ok := seenCategory[category]; !ok && category != "" {
			seenCategory[category] = struct{}{}
			lex.categories = append(lex.categories, category)
		}

		for _, raw := range group.Terms {
			name := strings.ToLower(strings.TrimSpace(raw))
			if name == "" {
				continue
			}
			if _, dup := lex.index[name]; dup {
				continue
			}

			matcher, err := compileBoundary(name)
			if err != nil {
				return nil, fmt.Errorf("failed to compile term %q: %w", name, err)
			}

			lex.index[name] = len(lex.terms)
			lex.terms = append(lex.terms, Term{Name: name, Category: category, matcher: matcher})
		}
	}

	if len(lex.terms) == 0 {
		return nil, fmt.Errorf("lexicon has no terms")
	}

	return lex, nil
}

// RE2 has no lookaround, so the boundary is a non-word rune or a text edge on
// each side. Escaping keeps c++, c# and ci/cd literal, and the trailing
// boundary still applies after the punctuation.
func compileBoundary(term string) (*regexp.Regexp, error) {
	const word = `\p{L}\p{N}_`
	return regexp.Compile(`(?:^|[^` + word + `])` + regexp.QuoteMeta(term) + `(?:[^` + word + `]|$)`)
}

func (l *Lexicon) Len() int {
	return len(l.terms)
}

// Terms returns a copy of the catalog in order.
func (l *Lexicon) Terms() []Term {
	out := make([]Term, len(l.terms))
	copy(out, l.terms)
	return out
}

func (l *Lexicon) Categories() []string {
	out := make([]string, len(l.categories))
	copy(out, l.categories)
	return out
}

// Position returns the catalog index of a term.
func (l *Lexicon) Position(name string) (int, bool) {
	i, ok := l.index[strings.ToLower(strings.TrimSpace(name))]
	return i, ok
}

func (l *Lexicon) Category(name string) (string, bool) {
	i, ok := l.Position(name)
	if !ok {
		return "", false
	}
	return l.terms[i].Category, true
}
