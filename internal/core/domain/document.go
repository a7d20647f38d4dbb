package domain

import (
	"strings"
	"time"
)

// Document represents an ingested document.
// It is immutable once stored; reprocessing deletes and recreates it.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Title is the human-readable title.
	Title string

	// Content is the full raw text content before chunking.
	Content string

	// Origin describes where the document came from (file path, API, etc).
	Origin string

	// ExternalLink is an optional URL back to the original document.
	ExternalLink string

	// Category is an optional label inherited by the document's passages.
	Category string

	// ModifiedAt is when the source document was last modified, if known.
	ModifiedAt time.Time

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time
}

// Validate checks that the document carries enough to be ingested.
func (d Document) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrInvalidInput
	}
	if strings.TrimSpace(d.Content) == "" {
		return ErrInvalidInput
	}
	return nil
}

// Passage is a bounded, overlapping span of a document's text.
// Passages are the retrieval unit: they are embedded and searched,
// and their ordinals are contiguous within a document (0..Total-1).
type Passage struct {
	// ID is the unique identifier for the passage.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// Text is the passage content, including any overlap prefix
	// shared with the preceding passage.
	Text string

	// Ordinal is the position within the document, starting at 0.
	Ordinal int

	// Total is the number of passages the owning document produced.
	Total int

	// Length is the character length of Text.
	Length int

	// Category is inherited from the owning document.
	Category string
}
