package main

import (
	"github.com/spf13/cobra"

	"github.com/helixir/research-ideation-service/internal/domain"
)

type papersOutput struct {
	Papers []domain.Paper    `json:"papers"`
	Source domain.SourceType `json:"paper_source"`
}

func (c *cli) papersCmd() *cobra.Command {
	var (
		query string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "papers",
		Short: "Fetch 3 to 5 normalized papers for a query",
		Long: `Papers queries Semantic Scholar, then arXiv, and returns the first non-empty
result normalized to title, summary, and year. Short results are padded from
the mock table. A blank query returns the mock table directly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit == 0 {
				limit = c.cfg.Literature.DefaultLimit
			}
			r := c.components.Retriever.Retrieve(cmd.Context(), query, limit)
			return c.write(cmd, papersOutput{Papers: r.Papers, Source: r.Source})
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "search query")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of papers, clamped to [3,5] (default from config)")
	return cmd
}
