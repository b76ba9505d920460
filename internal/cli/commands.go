package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/agenthands/forcematch/internal/app"
	"github.com/agenthands/forcematch/internal/config"
	"github.com/agenthands/forcematch/internal/core/constraint"
	"github.com/agenthands/forcematch/internal/enrich"
	"github.com/agenthands/forcematch/internal/server"
	"github.com/agenthands/forcematch/internal/store"
)

func (c *CLI) constraintsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "constraints",
		Short: "List the available constraints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range constraint.NewBuiltinRegistry().Names() {
				fmt.Fprintln(c.out, name)
			}
			return nil
		},
	}
}

func (c *CLI) enrichCommand() *cobra.Command {
	var in, out string

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Extract relationships and semantic profiles from character descriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := store.NewJSONStore(in, c.Logger).Load()
			if err != nil {
				return err
			}
			if len(data) == 0 {
				return fmt.Errorf("no characters in %s", in)
			}

			enriched := enrich.NewEnricher(c.Logger).Enrich(data)
			if out != "" {
				return store.NewJSONStore(out, c.Logger).Save(enriched)
			}
			_, err = c.saveDataset(cmd.Context(), enriched)
			return err
		},
	}

	cmd.Flags().StringVarP(&in, "in", "i", "", "raw character JSON file")
	cmd.Flags().StringVarP(&out, "out", "o", "", "enriched output file (default: the configured data backend)")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func (c *CLI) llmCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "llm-check",
		Short: "Verify the configured model endpoints answer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			if err := a.CheckLLM(ctx); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "%s (%s) is reachable\n", c.Config.LLM.Provider, c.Config.LLM.Model)
			return nil
		},
	}
}

func (c *CLI) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Serve(cmd.Context(), c.Config, c.Logger)
		},
	}
}

// Serve runs the HTTP API until ctx is cancelled, then drains in-flight
// requests.
func Serve(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialise: %w", err)
	}
	defer a.Close(context.Background())

	a.WatchData(ctx)

	srv := server.NewServer(a.Matcher, a.Recommender, a.CheckLLM, cfg.Server.CORSOrigins, logger)
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", httpServer.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
