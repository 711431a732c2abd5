package similarity

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidParams indicates scoring parameters that cannot produce a
// well-defined score. Surfaced at construction time, never at query time.
var ErrInvalidParams = errors.New("invalid similarity parameters")

// Params are the tunable knobs of the hybrid scorer. DefaultParams gives
// the reference configuration; deployments override via config.
type Params struct {
	// WordWeight and CharWeight combine the two cosine scores. They must
	// be non-negative and sum to 1 (within 1e-9).
	WordWeight float64
	CharWeight float64

	// Word n-gram length range, inclusive. Stopwords are removed before
	// grams are built.
	WordNGramMin int
	WordNGramMax int

	// Character n-gram length range, inclusive. No stopword removal.
	CharNGramMin int
	CharNGramMax int
}

// DefaultParams returns the reference configuration: 0.6/0.4 weighting,
// word 1-3-grams, char 3-5-grams.
func DefaultParams() Params {
	return Params{
		WordWeight:   0.6,
		CharWeight:   0.4,
		WordNGramMin: 1,
		WordNGramMax: 3,
		CharNGramMin: 3,
		CharNGramMax: 5,
	}
}

func (p Params) validate() error {
	if p.WordWeight < 0 || p.CharWeight < 0 {
		return fmt.Errorf("%w: weights must be non-negative (word=%v, char=%v)", ErrInvalidParams, p.WordWeight, p.CharWeight)
	}
	if math.Abs(p.WordWeight+p.CharWeight-1) > 1e-9 {
		return fmt.Errorf("%w: weights must sum to 1 (word=%v, char=%v)", ErrInvalidParams, p.WordWeight, p.CharWeight)
	}
	if p.WordNGramMin < 1 || p.WordNGramMax < p.WordNGramMin {
		return fmt.Errorf("%w: word n-gram range %d-%d", ErrInvalidParams, p.WordNGramMin, p.WordNGramMax)
	}
	if p.CharNGramMin < 1 || p.CharNGramMax < p.CharNGramMin {
		return fmt.Errorf("%w: char n-gram range %d-%d", ErrInvalidParams, p.CharNGramMin, p.CharNGramMax)
	}
	return nil
}

// Engine scores text pairs. Immutable after construction, safe for
// concurrent use: every Score call builds its own vector space.
type Engine struct {
	params Params
}

// NewEngine validates params and returns a scorer.
func NewEngine(params Params) (*Engine, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	return &Engine{params: params}, nil
}

// Score returns the hybrid similarity of probe and candidate in [0,1],
// rounded to 4 decimal digits. Symmetric in its arguments. Text that is
// empty (or stopword-only, for the word space) yields a zero vector in
// that space, and a zero vector cosines to 0.0 - never NaN.
func (e *Engine) Score(probe, candidate string) float64 {
	probeNorm := Normalize(probe)
	candNorm := Normalize(candidate)

	word := cosineTFIDF(
		wordGrams(probeNorm, e.params.WordNGramMin, e.params.WordNGramMax),
		wordGrams(candNorm, e.params.WordNGramMin, e.params.WordNGramMax),
	)
	char := cosineTFIDF(
		charGrams(probeNorm, e.params.CharNGramMin, e.params.CharNGramMax),
		charGrams(candNorm, e.params.CharNGramMin, e.params.CharNGramMax),
	)

	score := e.params.WordWeight*word + e.params.CharWeight*char
	return math.Round(score*10000) / 10000
}

// wordGrams builds term frequencies of contiguous word n-grams over the
// stopword-filtered token sequence of normalized text.
func wordGrams(normalized string, minN, maxN int) map[string]int {
	var tokens []string
	for _, tok := range strings.Fields(normalized) {
		if _, stop := stopwords[tok]; !stop {
			tokens = append(tokens, tok)
		}
	}

	grams := make(map[string]int)
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			grams[strings.Join(tokens[i:i+n], " ")]++
		}
	}
	return grams
}

// charGrams builds term frequencies of character n-grams over the raw
// normalized text, spaces included, no word boundaries.
func charGrams(normalized string, minN, maxN int) map[string]int {
	runes := []rune(normalized)

	grams := make(map[string]int)
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(runes); i++ {
			grams[string(runes[i:i+n])]++
		}
	}
	return grams
}

// cosineTFIDF computes cosine similarity between two term-frequency maps
// under smoothed IDF weighting over the two-document corpus:
//
//	idf(t) = ln((1+N)/(1+df(t))) + 1, N = 2
//
// Terms in both documents weigh 1, terms in one weigh ln(1.5)+1.
func cosineTFIDF(a, b map[string]int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	var dot, normA, normB float64
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, grams := range []map[string]int{a, b} {
		for term := range grams {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}

			df := 0
			if a[term] > 0 {
				df++
			}
			if b[term] > 0 {
				df++
			}
			idf := math.Log(3.0/float64(1+df)) + 1

			wa := float64(a[term]) * idf
			wb := float64(b[term]) * idf
			dot += wa * wb
			normA += wa * wa
			normB += wb * wb
		}
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
