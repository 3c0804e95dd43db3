package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrDimensionMismatch signals that a vector's length disagrees with the
	// configured embedding dimension. Never retried; the input must be fixed.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrCorruptVector signals that a stored vector blob cannot decode to the
	// expected dimension. Indicates storage corruption.
	ErrCorruptVector = errors.New("corrupt vector blob")
	// ErrInvalidQuery signals a malformed similarity query.
	ErrInvalidQuery = errors.New("invalid similarity query")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrAgentFailed signals a coding-agent run or decision-parse failure.
	ErrAgentFailed = errors.New("agent run failed")
	// ErrEmbeddingQuotaExceeded signals that the token budget is spent and
	// the budget action is reject.
	ErrEmbeddingQuotaExceeded = errors.New("embedding token quota exceeded")
)
