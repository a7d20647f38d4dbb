package chunker

import (
	"strings"
	"testing"

	"github.com/veldt-labs/ragkit/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := New()
		if c.baseSize != DefaultBaseSize {
			t.Errorf("expected baseSize %d, got %d", DefaultBaseSize, c.baseSize)
		}
		if c.overlapRatio != DefaultOverlapRatio {
			t.Errorf("expected overlapRatio %v, got %v", DefaultOverlapRatio, c.overlapRatio)
		}
	})

	t.Run("custom base size", func(t *testing.T) {
		c := New(WithBaseSize(500))
		if c.baseSize != 500 {
			t.Errorf("expected baseSize 500, got %d", c.baseSize)
		}
	})

	t.Run("invalid options ignored", func(t *testing.T) {
		c := New(WithBaseSize(0), WithOverlapRatio(1.5))
		if c.baseSize != DefaultBaseSize {
			t.Errorf("expected default baseSize, got %d", c.baseSize)
		}
		if c.overlapRatio != DefaultOverlapRatio {
			t.Errorf("expected default overlapRatio, got %v", c.overlapRatio)
		}
	})
}

func TestChunk_EmptyContent(t *testing.T) {
	c := New()

	for _, content := range []string{"", "   ", "\n\t \n"} {
		passages, err := c.Chunk(domain.Document{ID: "doc-1", Content: content})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(passages) != 0 {
			t.Errorf("expected 0 passages for %q, got %d", content, len(passages))
		}
	}
}

func TestChunk_SmallContent(t *testing.T) {
	c := New()
	doc := domain.Document{
		ID:       "doc-1",
		Category: "pets",
		Content:  "Cats are mammals. They purr when content.",
	}

	passages, err := c.Chunk(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(passages) != 1 {
		t.Fatalf("expected 1 passage for small content, got %d", len(passages))
	}

	p := passages[0]
	if p.DocumentID != doc.ID {
		t.Errorf("expected DocumentID %q, got %q", doc.ID, p.DocumentID)
	}
	if p.Ordinal != 0 || p.Total != 1 {
		t.Errorf("expected ordinal 0 of 1, got %d of %d", p.Ordinal, p.Total)
	}
	if p.Category != "pets" {
		t.Errorf("expected inherited category, got %q", p.Category)
	}
	if p.Length != len(p.Text) {
		t.Errorf("expected Length %d, got %d", len(p.Text), p.Length)
	}
	if p.ID == "" {
		t.Error("expected non-empty passage ID")
	}
}

// buildProse generates multi-sentence text with predictable boundaries.
func buildProse(sentences int) string {
	var b strings.Builder
	for i := 0; i < sentences; i++ {
		b.WriteString("The quick brown fox jumps over the lazy dog near the river bank. ")
	}
	return b.String()
}

func TestChunk_OrdinalsContiguous(t *testing.T) {
	c := New(WithBaseSize(300))
	doc := domain.Document{ID: "doc-1", Content: buildProse(40)}

	passages, err := c.Chunk(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(passages) < 2 {
		t.Fatalf("expected multiple passages, got %d", len(passages))
	}

	for i, p := range passages {
		if p.Ordinal != i {
			t.Errorf("passage %d has ordinal %d", i, p.Ordinal)
		}
		if p.Total != len(passages) {
			t.Errorf("passage %d has total %d, want %d", i, p.Total, len(passages))
		}
	}
}

func TestChunk_OverlapIsPrefixOfNext(t *testing.T) {
	c := New(WithBaseSize(300))
	doc := domain.Document{ID: "doc-1", Content: buildProse(40)}

	passages, err := c.Chunk(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(passages) < 2 {
		t.Fatalf("expected multiple passages, got %d", len(passages))
	}

	text := strings.TrimSpace(whitespaceRe.ReplaceAllString(doc.Content, " "))
	_, overlap := c.sizesFor(text)

	for i := 0; i < len(passages)-1; i++ {
		suffix := overlapSuffix(passages[i].Text, overlap)
		if suffix == "" {
			continue
		}
		if !strings.HasPrefix(passages[i+1].Text, suffix) {
			t.Errorf("overlap suffix of passage %d is not a prefix of passage %d", i, i+1)
		}
		// The suffix must start at a word boundary within the previous passage.
		if !strings.HasSuffix(passages[i].Text, suffix) {
			t.Errorf("suffix is not taken from the end of passage %d", i)
		}
	}
}

func TestChunk_CoresReconstructDocument(t *testing.T) {
	c := New(WithBaseSize(300))
	doc := domain.Document{ID: "doc-1", Content: buildProse(30)}

	passages, err := c.Chunk(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := strings.TrimSpace(whitespaceRe.ReplaceAllString(doc.Content, " "))
	_, overlap := c.sizesFor(text)

	var b strings.Builder
	for i, p := range passages {
		core := p.Text
		if i > 0 {
			carried := overlapSuffix(passages[i-1].Text, overlap)
			if carried != "" {
				core = strings.TrimPrefix(core, carried)
				core = strings.TrimPrefix(core, " ")
			}
		}
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(core)
	}

	if b.String() != text {
		t.Error("concatenated passage cores do not reconstruct the document")
	}
}

func TestSizesFor_Adaptive(t *testing.T) {
	c := New()

	small := strings.Repeat("word here. ", 50)     // well under smallDocThreshold
	large := strings.Repeat("word here. ", 10000)  // over largeDocThreshold
	medium := strings.Repeat("word here. ", 1000)  // in between

	smallTarget, _ := c.sizesFor(small)
	mediumTarget, _ := c.sizesFor(medium)
	largeTarget, _ := c.sizesFor(large)

	if smallTarget >= mediumTarget {
		t.Errorf("small doc target %d should be below medium %d", smallTarget, mediumTarget)
	}
	if largeTarget <= mediumTarget {
		t.Errorf("large doc target %d should be above medium %d", largeTarget, mediumTarget)
	}
}

func TestSizesFor_WordDensity(t *testing.T) {
	c := New()

	// Dense prose: short words. Sparse text: long identifier-like tokens.
	dense := strings.Repeat("it is a an at to of in on we he. ", 200)
	sparse := strings.Repeat("internationalisation_configuration_parameter. ", 100)

	denseTarget, _ := c.sizesFor(dense)
	sparseTarget, _ := c.sizesFor(sparse)

	if denseTarget >= sparseTarget {
		t.Errorf("dense target %d should be below sparse %d", denseTarget, sparseTarget)
	}
}

func TestSizesFor_OverlapProportional(t *testing.T) {
	c := New()
	target, overlap := c.sizesFor(buildProse(500))

	ratio := float64(overlap) / float64(target)
	if ratio < 0.15 || ratio > 0.30 {
		t.Errorf("overlap ratio %v outside expected range", ratio)
	}
}

func TestSplitSentences(t *testing.T) {
	t.Run("punctuation aware", func(t *testing.T) {
		got := splitSentences("Cats purr. Dogs bark! Do fish swim? Yes.")
		want := []string{"Cats purr.", "Dogs bark!", "Do fish swim?", "Yes."}
		if len(got) != len(want) {
			t.Fatalf("expected %d sentences, got %d: %v", len(want), len(got), got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("sentence %d: got %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("decimal points are not boundaries", func(t *testing.T) {
		got := splitSentences("Pi is 3.14 approximately. True.")
		if len(got) != 2 {
			t.Errorf("expected 2 sentences, got %d: %v", len(got), got)
		}
	})

	t.Run("lowercase continuation is not a boundary", func(t *testing.T) {
		got := splitSentences("See e.g. the appendix. Done.")
		if len(got) != 2 {
			t.Errorf("expected 2 sentences, got %d: %v", len(got), got)
		}
	})

	t.Run("no terminator", func(t *testing.T) {
		got := splitSentences("a fragment with no ending")
		if len(got) != 1 {
			t.Errorf("expected 1 sentence, got %d", len(got))
		}
	})
}
