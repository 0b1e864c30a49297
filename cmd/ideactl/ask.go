package main

import (
	"github.com/spf13/cobra"
)

func (c *cli) askCmd() *cobra.Command {
	var (
		question string
		local    bool
		provider string
	)

	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Answer a research question with an LLM",
		RunE: func(cmd *cobra.Command, args []string) error {
			answer, err := c.components.Summary.Generate(cmd.Context(), question, local, provider)
			if err != nil {
				return err
			}
			return c.write(cmd, answer)
		},
	}

	cmd.Flags().StringVarP(&question, "question", "q", "", "question to answer")
	cmd.Flags().BoolVar(&local, "local", false, "use the local Ollama model")
	cmd.Flags().StringVar(&provider, "provider", "", "cloud provider (default from config)")
	_ = cmd.MarkFlagRequired("question")
	return cmd
}
