package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/helixir/research-ideation-service/internal/app"
	"github.com/helixir/research-ideation-service/internal/events"
)

func (c *cli) eventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect pipeline events on Kafka",
	}
	cmd.AddCommand(c.eventsTailCmd())
	return cmd
}

func (c *cli) eventsTailCmd() *cobra.Command {
	var groupID string

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print pipeline events as they are published",
		Long: `Tail joins a consumer group on the events topic and prints each event
envelope until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			consumer := app.NewConsumer(c.cfg, groupID, c.logger)
			defer func() {
				if err := consumer.Close(); err != nil {
					c.logger.Warn().Err(err).Msg("failed to close event consumer")
				}
			}()

			err := consumer.Run(cmd.Context(), c.printEnvelope(cmd.OutOrStdout()))
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&groupID, "group", "", "consumer group (default from config)")
	return cmd
}

// printEnvelope writes one document per event; YAML documents are separated
// with "---".
func (c *cli) printEnvelope(w io.Writer) events.Handler {
	return func(_ context.Context, env events.Envelope) error {
		if c.output == outputYAML {
			if _, err := fmt.Fprintln(w, "---"); err != nil {
				return err
			}
		}
		return writeOutput(w, c.output, env)
	}
}
