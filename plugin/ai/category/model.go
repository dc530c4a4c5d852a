package category

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
)

// Score is one ranked entry of a model prediction.
type Score struct {
	Category   Category
	Confidence float64
}

// Model is a multinomial naive Bayes classifier over the corpus keywords.
// It is immutable once built and safe for concurrent use.
//
// Priors are equal and counts use Laplace smoothing. Confidence is the posterior's
// lift over a uniform guess, (p - 1/K) / (1 - 1/K), so text with no known token
// scores 0 for every category.
type Model struct {
	categories []Category
	counts     []map[string]float64
	totals     []float64
	vocab      map[string]struct{}
}

// BuildModel trains a model from c. Training is deterministic.
func BuildModel(c *Corpus) (*Model, error) {
	if c == nil {
		return nil, fmt.Errorf("category corpus is nil")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	m := &Model{
		categories: make([]Category, 0, len(c.Categories)),
		counts:     make([]map[string]float64, 0, len(c.Categories)),
		totals:     make([]float64, 0, len(c.Categories)),
		vocab:      make(map[string]struct{}),
	}
	for _, e := range c.Categories {
		counts := make(map[string]float64)
		var total float64
		for _, kw := range e.Keywords {
			for _, tok := range tokenize(kw) {
				counts[tok]++
				total++
				m.vocab[tok] = struct{}{}
			}
		}
		m.categories = append(m.categories, e.Name)
		m.counts = append(m.counts, counts)
		m.totals = append(m.totals, total)
	}
	return m, nil
}

// Categories returns the categories the model was trained on, in corpus order.
func (m *Model) Categories() []Category {
	out := make([]Category, len(m.categories))
	copy(out, m.categories)
	return out
}

// Known reports whether tok is part of the model vocabulary.
func (m *Model) Known(tok string) bool {
	_, ok := m.vocab[tok]
	return ok
}

// Rank scores text against every category, best first.
// Ties keep corpus order.
func (m *Model) Rank(text string) []Score {
	return m.rankTokens(tokenize(text))
}

func (m *Model) rankTokens(tokens []string) []Score {
	k := len(m.categories)
	scores := make([]Score, k)

	known := tokens[:0:0]
	for _, tok := range tokens {
		if m.Known(tok) {
			known = append(known, tok)
		}
	}
	if len(known) == 0 || k < 2 {
		for i, c := range m.categories {
			scores[i] = Score{Category: c}
		}
		return scores
	}

	v := float64(len(m.vocab))
	logs := make([]float64, k)
	maxLog := math.Inf(-1)
	for i := range m.categories {
		var lp float64
		for _, tok := range known {
			lp += math.Log((m.counts[i][tok] + 1) / (m.totals[i] + v))
		}
		logs[i] = lp
		if lp > maxLog {
			maxLog = lp
		}
	}

	var sum float64
	for i := range logs {
		logs[i] = math.Exp(logs[i] - maxLog)
		sum += logs[i]
	}
	uniform := 1 / float64(k)
	for i, c := range m.categories {
		p := logs[i] / sum
		conf := (p - uniform) / (1 - uniform)
		if conf < 0 {
			conf = 0
		}
		scores[i] = Score{Category: c, Confidence: conf}
	}
	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].Confidence > scores[b].Confidence
	})
	return scores
}

// ModelState tells whether a ModelHolder has been built.
type ModelState int32

const (
	ModelNotBuilt ModelState = iota
	ModelReady
	ModelFailed
)

func (s ModelState) String() string {
	switch s {
	case ModelReady:
		return "ready"
	case ModelFailed:
		return "failed"
	default:
		return "not_built"
	}
}

// ModelHolder builds a Model on first use. Concurrent first callers share one build.
type ModelHolder struct {
	corpus *Corpus
	once   sync.Once
	state  atomic.Int32
	model  *Model
	err    error
}

// NewModelHolder returns a holder that will train on c when first asked.
func NewModelHolder(c *Corpus) *ModelHolder {
	return &ModelHolder{corpus: c}
}

// Get returns the model, building it if needed.
func (h *ModelHolder) Get() (*Model, error) {
	h.once.Do(func() {
		h.model, h.err = BuildModel(h.corpus)
		if h.err != nil {
			h.state.Store(int32(ModelFailed))
			return
		}
		h.state.Store(int32(ModelReady))
	})
	return h.model, h.err
}

// State reports the build state without triggering a build.
func (h *ModelHolder) State() ModelState {
	return ModelState(h.state.Load())
}
