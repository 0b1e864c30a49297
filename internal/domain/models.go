// Package domain provides domain models and business logic for the Research Ideation Service.
package domain

// SourceType identifies a stage of the literature fallback chain.
type SourceType string

const (
	SourceTypeSemanticScholar SourceType = "semantic_scholar"
	SourceTypeArXiv           SourceType = "arxiv"
	SourceTypeMock            SourceType = "mock"
)

// IsValidSourceType reports whether st names a known literature source.
func IsValidSourceType(st SourceType) bool {
	switch st {
	case SourceTypeSemanticScholar, SourceTypeArXiv, SourceTypeMock:
		return true
	default:
		return false
	}
}

// Limits enforced at every entry point that accepts a paper count.
const (
	// MinLiteratureLimit is the smallest paper count a literature fetch returns.
	MinLiteratureLimit = 3
	// MaxLiteratureLimit is the largest paper count a literature fetch returns.
	MaxLiteratureLimit = 5
	// MinProviderLimit is the smallest limit passed to a metadata provider.
	MinProviderLimit = 1
	// MaxProviderLimit is the largest limit passed to a metadata provider.
	MaxProviderLimit = 5

	// FallbackYear is used when a provider omits the year or sends garbage.
	FallbackYear = 2024

	// IdeaCount is the exact size of every idea result set.
	IdeaCount = 5

	// DefaultMaxPapers bounds the output of the paper quality filter.
	DefaultMaxPapers = 5
)

// ClampLiteratureLimit coerces n into [MinLiteratureLimit, MaxLiteratureLimit].
func ClampLiteratureLimit(n int) int {
	return clamp(n, MinLiteratureLimit, MaxLiteratureLimit)
}

// ClampProviderLimit coerces n into [MinProviderLimit, MaxProviderLimit].
func ClampProviderLimit(n int) int {
	return clamp(n, MinProviderLimit, MaxProviderLimit)
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
