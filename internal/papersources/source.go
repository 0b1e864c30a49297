// Package papersources provides interfaces and types for academic paper source clients.
//
// Each metadata provider (Semantic Scholar, arXiv) implements the PaperSource
// interface. Sources are registered in order in a Registry and consulted one
// after another by the literature retriever until one yields usable papers.
//
// Example usage:
//
//	source := semanticscholar.NewClient(cfg, httpClient)
//	raw, err := source.Search(ctx, "graph neural networks", 5)
package papersources

import (
	"context"

	"github.com/helixir/research-ideation-service/internal/domain"
)

// PaperSource defines the interface that all paper source clients must implement.
type PaperSource interface {
	// Search queries the provider for up to limit papers matching query.
	// Implementations clamp limit to [1,5], return an empty result without a
	// request for a blank query, and skip records without a title.
	// The context should be used for cancellation and deadline propagation.
	Search(ctx context.Context, query string, limit int) ([]domain.RawPaper, error)

	// Name returns the stable identifier for this source. It doubles as the
	// metrics label and the fallback stage name.
	Name() string

	// IsEnabled returns whether this paper source is currently enabled.
	IsEnabled() bool
}
