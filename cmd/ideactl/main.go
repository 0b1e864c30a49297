// Package main is the entry point for the ideactl CLI. ideactl runs the
// literature, filter, and idea stages locally against the same configuration
// as the HTTP server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/helixir/research-ideation-service/internal/app"
	"github.com/helixir/research-ideation-service/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

// annotationNoSetup marks commands that run without config or components.
const annotationNoSetup = "ideactl/no-setup"

// cli holds state shared by every subcommand.
type cli struct {
	configFile string
	output     string
	verbose    bool

	cfg        *config.Config
	logger     zerolog.Logger
	components *app.Components
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "ideactl",
		Short: "Fetch literature and generate research ideas",
		Long: `ideactl retrieves a small set of papers for a research question, filters
venues and papers for relevance, and generates exactly five research ideas.

Paper retrieval falls back from Semantic Scholar to arXiv to a built-in mock
table, and idea generation falls back to templates, so every command produces
output even without network access or an LLM API key.`,
		SilenceUsage:       true,
		PersistentPreRunE:  c.setup,
		PersistentPostRunE: c.teardown,
	}

	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default: ./config.yaml or /etc/research-ideation-service/config.yaml)")
	root.PersistentFlags().StringVarP(&c.output, "output", "o", outputJSON, "output format: json or yaml")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		c.papersCmd(),
		c.ideasCmd(),
		c.runCmd(),
		c.askCmd(),
		c.eventsCmd(),
		versionCmd(),
	)
	return root
}

// setup loads configuration and wires components before a subcommand runs.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[annotationNoSetup] == "true" {
		return nil
	}
	if c.output != outputJSON && c.output != outputYAML {
		return fmt.Errorf("unsupported output format %q (want json or yaml)", c.output)
	}

	cfg, err := config.LoadFile(c.configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// stdout is reserved for command output.
	cfg.Logging.Output = "stderr"
	if c.verbose {
		cfg.Logging.Level = "debug"
	} else {
		cfg.Logging.Level = "warn"
	}
	c.logger = app.NewLogger(cfg, "ideactl")

	components, err := app.New(cfg, c.logger, nil)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.components = components
	return nil
}

func (c *cli) teardown(*cobra.Command, []string) error {
	if c.components == nil {
		return nil
	}
	return c.components.Close()
}

// write renders v to the command's stdout in the selected format.
func (c *cli) write(cmd *cobra.Command, v any) error {
	return writeOutput(cmd.OutOrStdout(), c.output, v)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version of ideactl",
		Annotations: map[string]string{annotationNoSetup: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ideactl %s\n", version)
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
