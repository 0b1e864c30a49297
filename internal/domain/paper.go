package domain

import (
	"strconv"
	"strings"
)

// Paper is the canonical literature record handed to downstream stages.
// Title is never empty once a Paper leaves the normalizer.
type Paper struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Year    int    `json:"year"`
}

// RawPaper is a provider record before normalization. Year is kept as text
// so that missing or malformed values survive until the normalizer decides.
type RawPaper struct {
	Title   string
	Summary string
	Year    string
}

// ParseYear coerces a raw year into an int, returning FallbackYear when the
// value is blank or not an integer.
func ParseYear(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return FallbackYear
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return FallbackYear
	}
	return year
}

// Venue is a candidate publication venue. RelevanceScore is set by the
// quality filter.
type Venue struct {
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	RelevanceScore int    `json:"relevance_score,omitempty"`
}

// ScoredPaper is a Paper that passed the relevance gate.
type ScoredPaper struct {
	Paper
	// Abstract is optional input text scored alongside the title. When
	// empty the summary is scored instead.
	Abstract       string `json:"abstract,omitempty"`
	RelevanceScore int    `json:"relevance_score"`
}

// ScoringText returns the text the relevance filter inspects.
func (p ScoredPaper) ScoringText() string {
	body := p.Abstract
	if body == "" {
		body = p.Summary
	}
	return p.Title + " " + body
}

// Papers strips relevance metadata from a scored list.
func Papers(scored []ScoredPaper) []Paper {
	out := make([]Paper, 0, len(scored))
	for _, sp := range scored {
		out = append(out, sp.Paper)
	}
	return out
}

// VenueNames returns the names of the given venues in order.
func VenueNames(venues []Venue) []string {
	out := make([]string, 0, len(venues))
	for _, v := range venues {
		out = append(out, v.Name)
	}
	return out
}
