package category

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed corpus.yaml
var defaultCorpusYAML []byte

// Corpus maps every category to its curated keyword list.
type Corpus struct {
	Categories []CorpusEntry `yaml:"categories"`
}

// CorpusEntry is the keyword list of one category.
type CorpusEntry struct {
	Name     Category `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// DefaultCorpus parses the embedded corpus.
func DefaultCorpus() (*Corpus, error) {
	return ParseCorpus(defaultCorpusYAML)
}

// ParseCorpus decodes and validates a YAML corpus.
func ParseCorpus(data []byte) (*Corpus, error) {
	var c Corpus
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode category corpus: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that every entry names a known category at most once and has keywords.
func (c *Corpus) Validate() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("category corpus is empty")
	}
	seen := make(map[Category]bool, len(c.Categories))
	for i, e := range c.Categories {
		if !e.Name.IsValid() {
			return fmt.Errorf("corpus entry %d: unknown category %q", i, e.Name)
		}
		if seen[e.Name] {
			return fmt.Errorf("corpus entry %d: duplicate category %q", i, e.Name)
		}
		seen[e.Name] = true

		n := 0
		for _, kw := range e.Keywords {
			if strings.TrimSpace(kw) != "" {
				n++
			}
		}
		if n == 0 {
			return fmt.Errorf("corpus entry %q has no keywords", e.Name)
		}
	}
	return nil
}
