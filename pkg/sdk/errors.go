package hotelsearch

import "github.com/hamburgerswang/fineTuningLab/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrRetrieval              = domain.ErrRetrieval
	ErrMalformedRecord        = domain.ErrMalformedRecord
	ErrInvalidQuery           = domain.ErrInvalidQuery
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrIndexNotReady          = domain.ErrIndexNotReady
)
