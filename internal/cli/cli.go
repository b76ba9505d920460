// Package cli implements the forcematch command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/agenthands/forcematch/internal/app"
	"github.com/agenthands/forcematch/internal/config"
	"github.com/agenthands/forcematch/internal/logging"
)

const defaultConfigPath = "config/config.toml"

// CLI holds state shared by all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	out        io.Writer
	errOut     io.Writer
	configPath string
	verbose    bool
	openGraph  graphOpener
}

func New(out, errOut io.Writer) *CLI {
	return &CLI{
		Logger:    logging.New(errOut, "info"),
		out:       out,
		errOut:    errOut,
		openGraph: openMemgraph,
	}
}

func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "forcematch",
		Short:        "Constraint-driven Secret Santa assignments for Star Wars characters",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	defaultPath := os.Getenv("CONFIG_PATH")
	if defaultPath == "" {
		defaultPath = defaultConfigPath
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", defaultPath, "TOML configuration file")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.matchCommand())
	root.AddCommand(c.constraintsCommand())
	root.AddCommand(c.enrichCommand())
	root.AddCommand(c.loadCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.llmCheckCommand())
	return root
}

// Execute runs the command tree against os.Args.
func (c *CLI) Execute(ctx context.Context) error {
	return c.RootCommand().ExecuteContext(ctx)
}

func (c *CLI) loadConfig() error {
	if err := godotenv.Load(); err == nil {
		c.Logger.Debug("loaded .env")
	}

	cfg, err := config.LoadWithEnv(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg

	level := cfg.Log.Level
	if c.verbose {
		level = "debug"
	}
	c.Logger = logging.New(c.errOut, level)
	return nil
}

func (c *CLI) openApp(ctx context.Context) (*app.App, error) {
	a, err := app.New(ctx, c.Config, c.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise: %w", err)
	}
	return a, nil
}
