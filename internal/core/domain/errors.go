package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested document or passage does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or missing input.
	// Rejected before any external call is made.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbedding indicates the embedding provider failed
	// (auth, rate limit, malformed input or service failure).
	ErrEmbedding = errors.New("embedding failed")

	// ErrGeneration indicates the generative model failed to produce an answer.
	ErrGeneration = errors.New("answer generation failed")

	// ErrStorage indicates an internal storage invariant was violated,
	// such as a vector with no owning passage.
	ErrStorage = errors.New("storage invariant violated")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Ingestion and querying are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the generative model is not configured.
	// Retrieval still works; answer generation is disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)
