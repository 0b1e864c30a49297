package literature

import "github.com/helixir/research-ideation-service/internal/domain"

// mockPapers is the static last-resort table. Order matters: padding takes
// entries from the head.
var mockPapers = [...]domain.Paper{
	{
		Title:   "Fast, Metadata-Only Literature Retrieval for LLM Context Building",
		Summary: "Presents a lightweight method to fetch a small set of papers using public metadata APIs for downstream idea generation.",
		Year:    2024,
	},
	{
		Title:   "Provider Fallback Patterns for Reliable Scholarly Search",
		Summary: "Discusses timeouts, graceful degradation, and mock fallbacks to keep literature retrieval stable when upstream APIs fail.",
		Year:    2023,
	},
	{
		Title:   "Using Small Paper Sets to Ground LLM-Based Research Ideation",
		Summary: "Studies how 3–5 paper summaries can improve LLM ideation quality without heavy retrieval or PDF downloads.",
		Year:    2024,
	},
	{
		Title:   "Minimal Deduplication for Small Retrieval Pipelines",
		Summary: "Explores simple heuristics for reducing near-duplicate results while keeping logic minimal and low-cost.",
		Year:    2022,
	},
	{
		Title:   "Survey Prototyping with Preprint Metadata",
		Summary: "Shows how arXiv metadata and abstracts can support rapid survey prototypes without full-text access.",
		Year:    2021,
	},
}

// MockPapers returns the first limit entries of the mock table, with limit
// clamped to [3,5]. The result is a fresh slice on every call.
func MockPapers(limit int) []domain.Paper {
	return mockHead(domain.ClampLiteratureLimit(limit))
}

// mockHead returns a copy of the first n mock entries without clamping.
func mockHead(n int) []domain.Paper {
	if n > len(mockPapers) {
		n = len(mockPapers)
	}
	if n <= 0 {
		return []domain.Paper{}
	}
	out := make([]domain.Paper, n)
	copy(out, mockPapers[:n])
	return out
}
