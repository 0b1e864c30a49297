package ideas

import (
	"fmt"
	"strings"

	"github.com/helixir/research-ideation-service/internal/domain"
)

const promptTemplate = `
You are an expert researcher preparing submissions to top-tier venues.

DOMAIN:
%s

TARGET VENUES:
%s

EXISTING CONTEXT PAPERS:
%s

TASK:
Generate EXACTLY 5 research-grade paper ideas.

STRICT CONSTRAINTS:
• Each idea must identify a specific technical problem
• Each idea must specify a methodological contribution
• Avoid vague phrases like "novel approach", "comprehensive study"
• Ideas must be experimentally or mathematically testable
• Ideas should be plausible extensions, refinements, or reframings
  of the provided literature—not summaries of them

STYLE:
• Write each idea as a paper title
• One sentence per idea
• No explanations
• No bullet commentary

OUTPUT FORMAT:
1. <idea>
2. <idea>
3. <idea>
4. <idea>
5. <idea>
`

// BuildPrompt renders the idea-generation prompt. Venues are joined with
// ", " and each paper becomes a "- title (year): summary" line.
func BuildPrompt(domainName string, venues []string, papers []domain.Paper) string {
	lines := make([]string, 0, len(papers))
	for _, p := range papers {
		lines = append(lines, fmt.Sprintf("- %s (%d): %s", p.Title, p.Year, p.Summary))
	}
	return fmt.Sprintf(promptTemplate, domainName, strings.Join(venues, ", "), strings.Join(lines, "\n"))
}
