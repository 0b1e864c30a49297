package ideas

import (
	"fmt"
	"strings"
)

var fallbackTemplates = [...]string{
	"Stability guarantees for nonlinear %s models under delayed and partially observed feedback",
	"Identifiability limits in data-driven estimation of high-dimensional %s systems",
	"Robust control synthesis for stochastic %s systems with structured model uncertainty",
	"Bifurcation-aware learning of reduced-order representations in chaotic %s dynamics",
	"Provable convergence of adaptive controllers for non-stationary %s environments",
}

// FallbackIdeas returns the five template ideas for domainName, lowercased.
// The result is deterministic.
func FallbackIdeas(domainName string) []string {
	d := strings.ToLower(domainName)
	out := make([]string, 0, len(fallbackTemplates))
	for _, tmpl := range fallbackTemplates {
		out = append(out, fmt.Sprintf(tmpl, d))
	}
	return out
}
