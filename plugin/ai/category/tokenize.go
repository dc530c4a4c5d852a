package category

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minTokenLen is the shortest token kept; shorter ones carry no signal.
const minTokenLen = 3

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {}, "this": {}, "that": {},
	"are": {}, "was": {}, "were": {}, "will": {}, "would": {}, "should": {}, "could": {},
	"have": {}, "has": {}, "had": {}, "been": {}, "being": {}, "into": {}, "onto": {},
	"about": {}, "after": {}, "before": {}, "over": {}, "under": {}, "then": {}, "than": {},
	"there": {}, "their": {}, "them": {}, "they": {}, "you": {}, "your": {}, "our": {},
	"ours": {}, "his": {}, "her": {}, "its": {}, "who": {}, "what": {}, "when": {},
	"where": {}, "which": {}, "why": {}, "how": {}, "all": {}, "any": {}, "some": {},
	"not": {}, "but": {}, "can": {}, "just": {}, "also": {}, "very": {}, "off": {},
	"out": {}, "per": {}, "via": {}, "again": {}, "each": {}, "other": {}, "more": {},
	"most": {}, "such": {}, "only": {}, "own": {}, "same": {}, "too": {}, "these": {},
	"those": {}, "today": {}, "tomorrow": {}, "tonight": {}, "next": {}, "week": {},
}

// tokenize lower-cases s and splits it on anything that is not a letter or digit.
// Short tokens, stop words and pure numbers are dropped.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) < minTokenLen {
			continue
		}
		if _, ok := stopWords[f]; ok {
			continue
		}
		if isNumeric(f) {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
