package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/helixir/research-ideation-service/internal/domain"
	"github.com/helixir/research-ideation-service/internal/pipeline"
)

func (c *cli) runCmd() *cobra.Command {
	var (
		question   string
		domainName string
		venueFlags []string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run retrieval, relevance filtering, and idea generation end to end",
		Long: `Run fetches papers for the question, keeps the venues and papers that pass
the keyword relevance filter, and generates five ideas from what survived.

Venues are given as name=description; the description is what the filter
scores, so a venue without one is only kept if its name matches.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			venues, err := parseVenues(venueFlags)
			if err != nil {
				return err
			}
			if limit == 0 {
				limit = c.cfg.Literature.DefaultLimit
			}

			result, err := c.components.Pipeline.Run(cmd.Context(), pipeline.Request{
				Question: question,
				Domain:   domainName,
				Venues:   venues,
				Limit:    limit,
			})
			if err != nil {
				return err
			}
			return c.write(cmd, result)
		},
	}

	cmd.Flags().StringVarP(&question, "question", "q", "", "research question used as the literature query")
	cmd.Flags().StringVarP(&domainName, "domain", "d", "", "domain for idea generation (default: the question)")
	cmd.Flags().StringArrayVar(&venueFlags, "venue", nil, "candidate venue as name=description (repeatable)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of papers, clamped to [3,5] (default from config)")
	_ = cmd.MarkFlagRequired("question")
	return cmd
}

// parseVenues turns name=description flags into venues. The description is
// optional.
func parseVenues(flags []string) ([]domain.Venue, error) {
	venues := make([]domain.Venue, 0, len(flags))
	for _, f := range flags {
		name, desc, _ := strings.Cut(f, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("invalid --venue %q: name is required", f)
		}
		venues = append(venues, domain.Venue{Name: name, Description: strings.TrimSpace(desc)})
	}
	return venues, nil
}
