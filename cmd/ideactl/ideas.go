package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/helixir/research-ideation-service/internal/domain"
)

type ideasOutput struct {
	Ideas      []string       `json:"ideas"`
	FromModel  int            `json:"from_model"`
	Backfilled int            `json:"backfilled"`
	Papers     []domain.Paper `json:"papers,omitempty"`
}

func (c *cli) ideasCmd() *cobra.Command {
	var (
		domainName  string
		venues      []string
		fetchPapers bool
	)

	cmd := &cobra.Command{
		Use:   "ideas",
		Short: "Generate exactly five research ideas for a domain",
		Long: `Ideas prompts the configured LLM for five research ideas grounded in the
given venues and, with --fetch-papers, in papers retrieved for the domain.
Missing or malformed model output is completed from templates.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			domainName = strings.TrimSpace(domainName)
			if domainName == "" {
				return fmt.Errorf("--domain must not be blank")
			}

			var papers []domain.Paper
			if fetchPapers {
				papers = c.components.Retriever.Fetch(ctx, domainName, c.cfg.Literature.DefaultLimit)
			}

			res := c.components.Ideas.GenerateDetailed(ctx, domainName, venues, papers)
			return c.write(cmd, ideasOutput{
				Ideas:      res.Ideas,
				FromModel:  res.FromModel,
				Backfilled: res.Backfilled,
				Papers:     papers,
			})
		},
	}

	cmd.Flags().StringVarP(&domainName, "domain", "d", "", "research domain")
	cmd.Flags().StringArrayVar(&venues, "venue", nil, "target venue name (repeatable)")
	cmd.Flags().BoolVar(&fetchPapers, "fetch-papers", false, "retrieve context papers for the domain first")
	_ = cmd.MarkFlagRequired("domain")
	return cmd
}
