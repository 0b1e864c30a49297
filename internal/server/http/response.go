package httpserver

import (
	"github.com/helixir/research-ideation-service/internal/domain"
)

// Request bodies.

type generateRequest struct {
	Question string `json:"question" validate:"required,notblank,max=10000"`
	LocalLLM bool   `json:"local_llm"`
	Provider string `json:"provider" validate:"omitempty,max=32"`
}

type literatureRequest struct {
	Query string `json:"query" validate:"required,notblank,trimmedmin=2,max=1000"`
	Limit int    `json:"limit"`
}

type venueRequest struct {
	Name        string `json:"name" validate:"required,notblank"`
	Description string `json:"description"`
}

type paperRequest struct {
	Title    string `json:"title" validate:"required,notblank"`
	Summary  string `json:"summary"`
	Abstract string `json:"abstract"`
	Year     int    `json:"year"`
}

type qualityFilterRequest struct {
	Domain string         `json:"domain"`
	Venues []venueRequest `json:"venues" validate:"max=200,dive"`
	Papers []paperRequest `json:"papers" validate:"max=200,dive"`
}

type ideasRequest struct {
	Domain string         `json:"domain" validate:"required,notblank,max=1000"`
	Venues []string       `json:"venues" validate:"max=200"`
	Papers []paperRequest `json:"papers" validate:"max=200,dive"`
}

type pipelineRequest struct {
	Question string         `json:"question" validate:"required,notblank,max=10000"`
	Domain   string         `json:"domain" validate:"max=1000"`
	Venues   []venueRequest `json:"venues" validate:"max=200,dive"`
	Limit    int            `json:"limit"`
}

// Response bodies.

type literatureResponse struct {
	Papers []domain.Paper `json:"papers"`
}

type qualityFilterResponse struct {
	FilteredVenues []domain.Venue       `json:"filtered_venues"`
	FilteredPapers []domain.ScoredPaper `json:"filtered_papers"`
}

type ideasResponse struct {
	Ideas []string `json:"ideas"`
}

type pipelineResponse struct {
	Papers         []domain.Paper       `json:"papers"`
	PaperSource    domain.SourceType    `json:"paper_source"`
	FilteredVenues []domain.Venue       `json:"filtered_venues"`
	FilteredPapers []domain.ScoredPaper `json:"filtered_papers"`
	Ideas          []string             `json:"ideas"`
}

// Converter functions

func toDomainVenues(in []venueRequest) []domain.Venue {
	out := make([]domain.Venue, 0, len(in))
	for _, v := range in {
		out = append(out, domain.Venue{Name: v.Name, Description: v.Description})
	}
	return out
}

func toScoredPapers(in []paperRequest) []domain.ScoredPaper {
	out := make([]domain.ScoredPaper, 0, len(in))
	for _, p := range in {
		out = append(out, domain.ScoredPaper{
			Paper:    toDomainPaper(p),
			Abstract: p.Abstract,
		})
	}
	return out
}

func toDomainPapers(in []paperRequest) []domain.Paper {
	out := make([]domain.Paper, 0, len(in))
	for _, p := range in {
		out = append(out, toDomainPaper(p))
	}
	return out
}

func toDomainPaper(p paperRequest) domain.Paper {
	year := p.Year
	if year == 0 {
		year = domain.FallbackYear
	}
	return domain.Paper{Title: p.Title, Summary: p.Summary, Year: year}
}
