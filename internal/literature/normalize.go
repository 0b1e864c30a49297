package literature

import (
	"fmt"
	"strings"

	"github.com/helixir/research-ideation-service/internal/domain"
)

// Normalize turns provider output into canonical papers.
//
// Raw input is truncated to limit (clamped to [3,5]) before any per-record
// rule. Records with a blank title are dropped, years are coerced with
// domain.ParseYear, and a missing summary is replaced with a title-derived
// one. A result of one or two papers is padded from the head of the mock
// table up to three. An empty result stays empty so the caller can move on
// to the next source.
func Normalize(raw []domain.RawPaper, limit int) []domain.Paper {
	papers, _ := normalize(raw, limit)
	return papers
}

// normalize is Normalize that also reports how many mock papers were added.
func normalize(raw []domain.RawPaper, limit int) ([]domain.Paper, int) {
	limit = domain.ClampLiteratureLimit(limit)
	if len(raw) > limit {
		raw = raw[:limit]
	}

	out := make([]domain.Paper, 0, limit)
	for _, r := range raw {
		title := strings.TrimSpace(r.Title)
		if title == "" {
			continue
		}

		summary := strings.TrimSpace(r.Summary)
		if summary == "" {
			summary = titleSummary(title)
		}

		out = append(out, domain.Paper{
			Title:   title,
			Summary: summary,
			Year:    domain.ParseYear(r.Year),
		})
	}

	padded := 0
	if n := len(out); n > 0 && n < domain.MinLiteratureLimit {
		padded = domain.MinLiteratureLimit - n
		out = append(out, mockHead(padded)...)
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out, padded
}

func titleSummary(title string) string {
	return fmt.Sprintf("This work appears to focus on: %s. (Abstract unavailable; summary generated from title only.)", title)
}
