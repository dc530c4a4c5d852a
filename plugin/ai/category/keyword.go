package category

import (
	"regexp"
	"strings"
)

// KeywordScorer counts whole-word keyword hits per category.
// Matchers are compiled once at construction.
type KeywordScorer struct {
	categories []Category
	matchers   [][]*regexp.Regexp
}

// NewKeywordScorer compiles a case-insensitive whole-word matcher for every corpus keyword.
func NewKeywordScorer(c *Corpus) *KeywordScorer {
	s := &KeywordScorer{}
	for _, e := range c.Categories {
		var ms []*regexp.Regexp
		for _, kw := range e.Keywords {
			kw = strings.TrimSpace(kw)
			if kw == "" {
				continue
			}
			ms = append(ms, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(kw)+`\b`))
		}
		s.categories = append(s.categories, e.Name)
		s.matchers = append(s.matchers, ms)
	}
	return s
}

// Scores returns the number of keyword matches in text for every category.
func (s *KeywordScorer) Scores(text string) map[Category]int {
	out := make(map[Category]int, len(s.categories))
	for i, c := range s.categories {
		n := 0
		for _, m := range s.matchers[i] {
			n += len(m.FindAllStringIndex(text, -1))
		}
		out[c] = n
	}
	return out
}

// Best returns the category with the strictly highest score.
// A tie for first place or no match at all yields Default.
func (s *KeywordScorer) Best(text string) (Category, int) {
	scores := s.Scores(text)
	best, top, tied := Default, 0, false
	for _, c := range s.categories {
		switch n := scores[c]; {
		case n > top:
			best, top, tied = c, n, false
		case n == top && n > 0:
			tied = true
		}
	}
	if top == 0 || tied {
		return Default, top
	}
	return best, top
}
