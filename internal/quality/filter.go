// Package quality implements the keyword relevance gate applied to candidate
// venues and papers before they reach idea generation.
package quality

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/helixir/research-ideation-service/internal/domain"
	"github.com/helixir/research-ideation-service/internal/observability"
)

// Score thresholds.
const (
	MinVenueScore = 1
	MinPaperScore = 2
)

// DefaultKeywords is the relevance vocabulary used when none is configured.
var DefaultKeywords = []string{
	"llm",
	"language model",
	"transformer",
	"nlp",
	"gpt",
	"attention",
	"generative",
}

// Result holds the outcome of Apply.
type Result struct {
	FilteredVenues []domain.Venue       `json:"filtered_venues"`
	FilteredPapers []domain.ScoredPaper `json:"filtered_papers"`
}

// Filter scores text by counting distinct keyword hits. It is stateless
// after construction and safe for concurrent use.
type Filter struct {
	keywords  []string
	maxPapers int
	logger    zerolog.Logger
	metrics   *observability.Metrics
}

// Config configures a Filter.
type Config struct {
	// Keywords defaults to DefaultKeywords. Matching is case-insensitive.
	Keywords []string
	// MaxPapers caps FilterPapers output when the caller passes <= 0.
	MaxPapers int
}

// NewFilter creates a relevance filter. metrics may be nil.
func NewFilter(cfg Config, logger zerolog.Logger, metrics *observability.Metrics) *Filter {
	if cfg.MaxPapers <= 0 {
		cfg.MaxPapers = domain.DefaultMaxPapers
	}
	return &Filter{
		keywords:  normalizeKeywords(cfg.Keywords),
		maxPapers: cfg.MaxPapers,
		logger:    logger.With().Str("component", "quality_filter").Logger(),
		metrics:   metrics,
	}
}

func normalizeKeywords(keywords []string) []string {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

// Keywords returns a copy of the active vocabulary.
func (f *Filter) Keywords() []string {
	return append([]string(nil), f.keywords...)
}

// Score returns the number of distinct keywords that occur in text as
// case-insensitive substrings.
func (f *Filter) Score(text string) int {
	text = strings.ToLower(text)
	score := 0
	for _, kw := range f.keywords {
		if strings.Contains(text, kw) {
			score++
		}
	}
	return score
}

// FilterVenues keeps venues whose name and description score at least
// MinVenueScore, in input order, with RelevanceScore set. The input slice is
// not modified.
func (f *Filter) FilterVenues(venues []domain.Venue) []domain.Venue {
	out := make([]domain.Venue, 0, len(venues))
	for _, v := range venues {
		score := f.Score(v.Name + " " + v.Description)
		if score < MinVenueScore {
			continue
		}
		v.RelevanceScore = score
		out = append(out, v)
	}
	return out
}

// FilterPapers keeps papers scoring at least MinPaperScore, sorted by score
// descending with ties in input order, truncated to maxPapers. maxPapers <= 0
// uses the configured default. The input slice is not modified.
func (f *Filter) FilterPapers(papers []domain.ScoredPaper, maxPapers int) []domain.ScoredPaper {
	if maxPapers <= 0 {
		maxPapers = f.maxPapers
	}

	out := make([]domain.ScoredPaper, 0, len(papers))
	for _, p := range papers {
		score := f.Score(p.ScoringText())
		if score < MinPaperScore {
			continue
		}
		p.RelevanceScore = score
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RelevanceScore > out[j].RelevanceScore
	})

	if len(out) > maxPapers {
		out = out[:maxPapers]
	}
	return out
}

// Apply runs both filters and logs before and after counts. domainName is
// informational only; scoring does not depend on it.
func (f *Filter) Apply(domainName string, venues []domain.Venue, papers []domain.ScoredPaper) Result {
	logger := f.logger.With().Str("domain", domainName).Logger()
	logger.Info().
		Int("venues_before", len(venues)).
		Int("papers_before", len(papers)).
		Msg("quality filter running")

	result := Result{
		FilteredVenues: f.FilterVenues(venues),
		FilteredPapers: f.FilterPapers(papers, 0),
	}

	f.metrics.RecordFilterResult("venue", len(result.FilteredVenues), len(venues)-len(result.FilteredVenues))
	f.metrics.RecordFilterResult("paper", len(result.FilteredPapers), len(papers)-len(result.FilteredPapers))

	logger.Info().
		Int("venues_after", len(result.FilteredVenues)).
		Int("papers_after", len(result.FilteredPapers)).
		Msg("quality filter finished")

	return result
}

// FromPapers lifts normalized papers into the filter's input type.
func FromPapers(papers []domain.Paper) []domain.ScoredPaper {
	out := make([]domain.ScoredPaper, 0, len(papers))
	for _, p := range papers {
		out = append(out, domain.ScoredPaper{Paper: p})
	}
	return out
}
