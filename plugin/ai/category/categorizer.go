package category

import (
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hrygo/planwise/internal/observability"
)

// DefaultConfidenceThreshold is the model confidence above which the model's top
// category is trusted over keyword scoring. The value is empirical.
const DefaultConfidenceThreshold = 0.1

// DefaultCacheSize is the number of categorized texts kept in memory.
const DefaultCacheSize = 512

// Path names the step that decided a categorization.
type Path string

const (
	PathEmpty   Path = "empty"
	PathNoToken Path = "no_token"
	PathModel   Path = "model"
	PathKeyword Path = "keyword"
)

// Result is a categorization with the deciding path.
type Result struct {
	Category   Category `json:"category"`
	Path       Path     `json:"path"`
	Confidence float64  `json:"confidence"`
}

// Config configures a Categorizer. Zero values take the defaults; a negative
// CacheSize disables the cache.
type Config struct {
	Corpus    *Corpus
	Model     *ModelHolder
	Threshold float64
	CacheSize int
	Metrics   *observability.Metrics
}

// Categorizer labels events. It is safe for concurrent use.
type Categorizer struct {
	model     *ModelHolder
	keywords  *KeywordScorer
	threshold float64
	cache     *lru.Cache[string, Result]
	metrics   *observability.Metrics
}

// NewCategorizer prepares a categorizer. The model itself is built on first use.
func NewCategorizer(cfg Config) (*Categorizer, error) {
	corpus := cfg.Corpus
	if corpus == nil {
		var err error
		corpus, err = DefaultCorpus()
		if err != nil {
			return nil, err
		}
	} else if err := corpus.Validate(); err != nil {
		return nil, err
	}

	holder := cfg.Model
	if holder == nil {
		holder = NewModelHolder(corpus)
	}

	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}

	c := &Categorizer{
		model:     holder,
		keywords:  NewKeywordScorer(corpus),
		threshold: threshold,
		metrics:   cfg.Metrics,
	}
	if cfg.CacheSize >= 0 {
		size := cfg.CacheSize
		if size == 0 {
			size = DefaultCacheSize
		}
		cache, err := lru.New[string, Result](size)
		if err != nil {
			return nil, err
		}
		c.cache = cache
	}
	return c, nil
}

// Threshold returns the model confidence threshold in use.
func (c *Categorizer) Threshold() float64 {
	return c.threshold
}

// ModelState reports whether the model has been built yet.
func (c *Categorizer) ModelState() ModelState {
	return c.model.State()
}

// Categorize returns the label for an event. It never returns an empty category.
func (c *Categorizer) Categorize(summary, description, location string) Category {
	return c.CategorizeDetailed(summary, description, location).Category
}

// CategorizeDetailed is Categorize with the deciding path and model confidence.
func (c *Categorizer) CategorizeDetailed(summary, description, location string) Result {
	text := strings.ToLower(strings.TrimSpace(strings.Join([]string{summary, description, location}, " ")))
	if text == "" {
		return c.record(Result{Category: Default, Path: PathEmpty})
	}

	if c.cache != nil {
		if r, ok := c.cache.Get(text); ok {
			return c.record(r)
		}
	}

	r := c.decide(text)
	if c.cache != nil {
		c.cache.Add(text, r)
	}
	return c.record(r)
}

func (c *Categorizer) decide(text string) Result {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return Result{Category: Default, Path: PathNoToken}
	}

	var conf float64
	model, err := c.model.Get()
	if err != nil {
		slog.Warn("category model unavailable, using keyword scoring", "error", err)
	} else if ranked := model.rankTokens(tokens); len(ranked) > 0 {
		top := ranked[0]
		conf = top.Confidence
		if top.Confidence > c.threshold {
			return Result{Category: top.Category, Path: PathModel, Confidence: top.Confidence}
		}
	}

	best, _ := c.keywords.Best(text)
	return Result{Category: best, Path: PathKeyword, Confidence: conf}
}

func (c *Categorizer) record(r Result) Result {
	c.metrics.RecordCategorization(string(r.Category), string(r.Path))
	return r
}

// Coerce keeps raw when it names a valid category and categorizes the event otherwise.
func (c *Categorizer) Coerce(raw, summary, description, location string) Category {
	if cat, ok := Parse(raw); ok {
		return cat
	}
	return c.Categorize(summary, description, location)
}
