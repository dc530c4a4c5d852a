package category

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"pgregory.net/rapid"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestCategorizer(t *testing.T, cfg Config) *Categorizer {
	t.Helper()
	c, err := NewCategorizer(cfg)
	require.NoError(t, err)
	return c
}

func TestCategorize(t *testing.T) {
	c := newTestCategorizer(t, Config{})

	tests := []struct {
		name        string
		summary     string
		description string
		location    string
		want        Category
	}{
		{"standup", "Team standup meeting", "", "", Work},
		{"empty", "", "", "", Personal},
		{"blank", "   ", "\t", "", Personal},
		{"unknown words", "asdf qwer", "", "", Personal},
		{"only short and numeric tokens", "at 10", "", "", Personal},
		{"fitness", "Morning yoga and running", "", "", Fitness},
		{"health from location", "Checkup", "", "Dentist clinic", Health},
		{"travel", "Flight to Berlin", "pack luggage and passport", "", Travel},
		{"study", "Exam revision", "homework for the course", "", Study},
		{"leisure", "Concert with friends", "", "", Leisure},
		{"rest", "Afternoon nap", "relax and unwind", "", Rest},
		{"case insensitive", "TEAM STANDUP MEETING", "", "", Work},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Categorize(tt.summary, tt.description, tt.location))
		})
	}
}

func TestCategorizeDetailedPaths(t *testing.T) {
	c := newTestCategorizer(t, Config{})

	r := c.CategorizeDetailed("", "", "")
	assert.Equal(t, Result{Category: Personal, Path: PathEmpty}, r)

	r = c.CategorizeDetailed("on 12 at 10", "", "")
	assert.Equal(t, PathNoToken, r.Path)
	assert.Equal(t, Personal, r.Category)

	r = c.CategorizeDetailed("asdf qwer", "", "")
	assert.Equal(t, PathKeyword, r.Path)
	assert.Equal(t, Personal, r.Category)
	assert.Zero(t, r.Confidence)

	r = c.CategorizeDetailed("Team standup meeting", "", "")
	assert.Equal(t, PathModel, r.Path)
	assert.Equal(t, Work, r.Category)
	assert.Greater(t, r.Confidence, DefaultConfidenceThreshold)
}

func TestCategorizeKeywordFallback(t *testing.T) {
	// A threshold no model score can reach forces keyword scoring.
	c := newTestCategorizer(t, Config{Threshold: 0.99})
	assert.Equal(t, 0.99, c.Threshold())

	r := c.CategorizeDetailed("Team standup meeting", "", "")
	assert.Equal(t, PathKeyword, r.Path)
	assert.Equal(t, Work, r.Category)

	// One fitness and one health keyword tie, which defaults to personal.
	r = c.CategorizeDetailed("gym then doctor", "", "")
	assert.Equal(t, PathKeyword, r.Path)
	assert.Equal(t, Personal, r.Category)
}

func TestCategorizeUsesCache(t *testing.T) {
	c := newTestCategorizer(t, Config{CacheSize: 8})
	first := c.CategorizeDetailed("Flight to Berlin", "", "")
	assert.Equal(t, 1, c.cache.Len())
	second := c.CategorizeDetailed("flight to berlin", "", "")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, c.cache.Len())

	noCache := newTestCategorizer(t, Config{CacheSize: -1})
	assert.Nil(t, noCache.cache)
	assert.Equal(t, first, noCache.CategorizeDetailed("Flight to Berlin", "", ""))
}

func TestCoerce(t *testing.T) {
	c := newTestCategorizer(t, Config{})
	assert.Equal(t, Travel, c.Coerce("Travel", "Team standup meeting", "", ""))
	assert.Equal(t, Work, c.Coerce("office-stuff", "Team standup meeting", "", ""))
	assert.Equal(t, Personal, c.Coerce("", "", "", ""))
}

func TestModelBuiltLazilyOnce(t *testing.T) {
	c := newTestCategorizer(t, Config{})
	assert.Equal(t, ModelNotBuilt, c.ModelState())

	c.Categorize("", "", "")
	assert.Equal(t, ModelNotBuilt, c.ModelState(), "blank input must not build the model")

	var wg sync.WaitGroup
	results := make([]Category, 32)
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = c.Categorize("Team standup meeting", "", "")
		}()
	}
	wg.Wait()

	assert.Equal(t, ModelReady, c.ModelState())
	for _, r := range results {
		assert.Equal(t, Work, r)
	}
}

func TestNewCategorizerRejectsBadCorpus(t *testing.T) {
	_, err := NewCategorizer(Config{Corpus: &Corpus{}})
	assert.Error(t, err)
}

func TestCategorizeDeterministic(t *testing.T) {
	words := []string{
		"meeting", "gym", "doctor", "flight", "exam", "concert", "nap", "birthday",
		"the", "and", "42", "xyzzy", "plan", "a", "review", "yoga", "hotel",
	}
	shared := newTestCategorizer(t, Config{})

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 6).Draw(t, "n")
		var parts []string
		for i := 0; i < n; i++ {
			parts = append(parts, rapid.SampledFrom(words).Draw(t, "word"))
		}
		summary := strings.Join(parts, " ")
		location := rapid.SampledFrom(words).Draw(t, "location")

		first := shared.Categorize(summary, "", location)
		second := shared.Categorize(summary, "", location)
		fresh, err := NewCategorizer(Config{CacheSize: -1})
		if err != nil {
			t.Fatalf("new categorizer: %v", err)
		}
		third := fresh.Categorize(summary, "", location)

		if !first.IsValid() {
			t.Fatalf("invalid category %q", first)
		}
		if first != second || first != third {
			t.Fatalf("non-deterministic: %s %s %s for %q", first, second, third, summary)
		}
	})
}
