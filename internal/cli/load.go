package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/agenthands/forcematch/internal/config"
	"github.com/agenthands/forcematch/internal/core/model"
	"github.com/agenthands/forcematch/internal/driver"
	"github.com/agenthands/forcematch/internal/store"
)

// graphOpener connects to the graph database named in the config.
type graphOpener func(ctx context.Context, cfg config.MemgraphConfig, logger *log.Logger) (driver.GraphDriver, error)

func openMemgraph(ctx context.Context, cfg config.MemgraphConfig, logger *log.Logger) (driver.GraphDriver, error) {
	d, err := driver.NewMemgraphDriver(ctx, cfg.URI, cfg.User, cfg.Password, logger)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (c *CLI) loadCommand() *cobra.Command {
	var in string

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load an enriched character file into the configured data backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := store.NewJSONStore(in, c.Logger).Load()
			if err != nil {
				return err
			}
			if len(data) == 0 {
				return fmt.Errorf("no characters in %s", in)
			}

			n, err := c.saveDataset(cmd.Context(), data)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "%s backend now holds %d characters\n", c.backend(), n)
			return nil
		},
	}

	cmd.Flags().StringVarP(&in, "in", "i", "", "enriched character JSON file")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func (c *CLI) backend() string {
	if c.Config.Data.Backend == "" {
		return "json"
	}
	return c.Config.Data.Backend
}

func (c *CLI) graphBackend() bool {
	switch c.Config.Data.Backend {
	case "memgraph", "neo4j":
		return true
	}
	return false
}

// saveDataset writes data to the configured backend and returns how many
// characters the backend holds afterwards.
func (c *CLI) saveDataset(ctx context.Context, data model.Dataset) (int, error) {
	if !c.graphBackend() {
		s := store.NewJSONStore(c.Config.Data.Path, c.Logger)
		if err := s.Save(data); err != nil {
			return 0, err
		}
		return len(s.GetAllCharacters()), nil
	}

	d, err := c.openGraph(ctx, c.Config.Memgraph, c.Logger)
	if err != nil {
		return 0, fmt.Errorf("failed to connect to graph: %w", err)
	}
	defer d.Close(context.Background())

	if err := d.BuildIndices(ctx); err != nil {
		return 0, err
	}
	s := store.NewGraphStore(d, c.Logger)
	if err := s.Save(ctx, data); err != nil {
		return 0, err
	}
	return s.Count(ctx)
}
