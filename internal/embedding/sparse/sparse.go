package sparse

import (
	"sort"
	"strings"
	"unicode"

	"emptrack/internal/domain"
	"emptrack/internal/embedding"
)

// Embedder is a bag-of-words term-frequency vectorizer. The vocabulary
// is rebuilt from the corpus on every Prepare.
type Embedder struct {
	vocabulary map[string]int
	terms      []string
	prepared   bool
}

// NewEmbedder creates an unprepared sparse embedder.
func NewEmbedder() *Embedder {
	return &Embedder{vocabulary: make(map[string]int)}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "sparse" }

// Prepare builds a sorted vocabulary from the corpus.
func (e *Embedder) Prepare(corpus []string) error {
	if len(corpus) == 0 {
		return domain.ErrEmptyCorpus
	}
	seen := make(map[string]struct{})
	for _, text := range corpus {
		for _, tok := range Tokenize(text) {
			seen[tok] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return domain.ErrEmptyCorpus
	}
	terms := make([]string, 0, len(seen))
	for term := range seen {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	e.vocabulary = make(map[string]int, len(terms))
	for i, term := range terms {
		e.vocabulary[term] = i
	}
	e.terms = terms
	e.prepared = true
	return nil
}

// Dimension returns the vocabulary size.
func (e *Embedder) Dimension() int { return len(e.terms) }

// Vocabulary returns the sorted vocabulary.
func (e *Embedder) Vocabulary() []string { return e.terms }

// Embed computes L2-normalised term-frequency vectors. Tokens outside
// the vocabulary are ignored; a text with none yields a zero vector.
func (e *Embedder) Embed(texts []string) ([][]float32, error) {
	if !e.prepared {
		return nil, domain.ErrNotPrepared
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, len(e.terms))
		for _, tok := range Tokenize(text) {
			if idx, ok := e.vocabulary[tok]; ok {
				vec[idx]++
			}
		}
		out[i] = embedding.Normalize(vec)
	}
	return out, nil
}

// Tokenize lowercases, splits on whitespace and trims surrounding
// punctuation from each token.
func Tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	out := fields[:0]
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
