// Package chunker splits document text into overlapping passages sized
// by document characteristics.
package chunker

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/veldt-labs/ragkit/internal/core/domain"
)

// DefaultBaseSize is the base target passage size in characters before
// adaptive scaling.
const DefaultBaseSize = 900

// DefaultOverlapRatio is the fraction of the target size shared between
// adjacent passages.
const DefaultOverlapRatio = 0.22

// Adaptive sizing bounds and thresholds.
const (
	minTargetSize = 200
	maxTargetSize = 2400

	// Documents above/below these lengths get their target scaled.
	largeDocThreshold = 50000
	smallDocThreshold = 2000

	// Average characters per word separating dense prose from
	// sparse, code- or table-like text.
	denseWordLength  = 5.0
	sparseWordLength = 9.0
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Chunker splits documents into overlapping sentence-aligned passages.
// The target passage size adapts to document length and word density.
type Chunker struct {
	baseSize     int
	overlapRatio float64
}

// Option configures the chunker.
type Option func(*Chunker)

// WithBaseSize sets the base target passage size in characters.
func WithBaseSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.baseSize = size
		}
	}
}

// WithOverlapRatio sets the overlap fraction of the target size.
func WithOverlapRatio(ratio float64) Option {
	return func(c *Chunker) {
		if ratio >= 0 && ratio < 1 {
			c.overlapRatio = ratio
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		baseSize:     DefaultBaseSize,
		overlapRatio: DefaultOverlapRatio,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chunk splits a document into ordered, overlapping passages.
// Empty or whitespace-only content yields zero passages and no error.
// Content shorter than the target size yields exactly one passage.
func (c *Chunker) Chunk(doc domain.Document) ([]domain.Passage, error) {
	text := strings.TrimSpace(whitespaceRe.ReplaceAllString(doc.Content, " "))
	if text == "" {
		return nil, nil
	}

	target, overlap := c.sizesFor(text)
	sentences := splitSentences(text)

	var texts []string
	carry := ""
	current := carry
	fresh := 0 // sentences added since the carried overlap

	for _, sentence := range sentences {
		candidate := sentence
		if current != "" {
			candidate = current + " " + sentence
		}
		if fresh > 0 && len(candidate) > target {
			texts = append(texts, current)
			carry = overlapSuffix(current, overlap)
			current = carry
			fresh = 0
			if current != "" {
				candidate = current + " " + sentence
			} else {
				candidate = sentence
			}
		}
		current = candidate
		fresh++
	}
	if fresh > 0 {
		texts = append(texts, current)
	}

	passages := make([]domain.Passage, len(texts))
	for i, t := range texts {
		passages[i] = domain.Passage{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Text:       t,
			Ordinal:    i,
			Total:      len(texts),
			Length:     len(t),
			Category:   doc.Category,
		}
	}
	return passages, nil
}

// sizesFor computes the adaptive target and overlap sizes for a text.
// Very large documents get bigger passages, very small ones smaller;
// word-dense prose shrinks the target and sparse text grows it.
func (c *Chunker) sizesFor(text string) (target, overlap int) {
	size := float64(c.baseSize)

	switch n := len(text); {
	case n > largeDocThreshold:
		size *= 1.5
	case n < smallDocThreshold:
		size *= 0.5
	}

	if words := strings.Fields(text); len(words) > 0 {
		avgWord := float64(len(text)) / float64(len(words))
		switch {
		case avgWord < denseWordLength:
			size *= 0.85
		case avgWord > sparseWordLength:
			size *= 1.15
		}
	}

	if size < minTargetSize {
		size = minTargetSize
	}
	if size > maxTargetSize {
		size = maxTargetSize
	}

	return int(size), int(size * c.overlapRatio)
}

// overlapSuffix returns the trailing portion of text to carry into the
// next passage, cut back to a word boundary when possible.
func overlapSuffix(text string, overlap int) string {
	if overlap <= 0 {
		return ""
	}
	if overlap >= len(text) {
		return text
	}
	suffix := text[len(text)-overlap:]
	if idx := strings.IndexByte(suffix, ' '); idx >= 0 && idx+1 < len(suffix) {
		suffix = suffix[idx+1:]
	}
	return suffix
}

// splitSentences splits text into sentence-like units. A sentence ends
// at a run of terminating punctuation followed by whitespace and an
// uppercase letter. Text without such boundaries is a single sentence.
func splitSentences(text string) []string {
	runes := []rune(text)
	var sentences []string
	start := 0

	for i := 0; i < len(runes); i++ {
		if !isTerminator(runes[i]) {
			continue
		}
		end := i
		for end+1 < len(runes) && isTerminator(runes[end+1]) {
			end++
		}
		next := end + 1
		for next < len(runes) && unicode.IsSpace(runes[next]) {
			next++
		}
		if next == end+1 || next >= len(runes) || !unicode.IsUpper(runes[next]) {
			i = end
			continue
		}
		if s := strings.TrimSpace(string(runes[start : end+1])); s != "" {
			sentences = append(sentences, s)
		}
		start = next
		i = next - 1
	}

	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
