package cli

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agenthands/forcematch/internal/core/evaluation"
	"github.com/agenthands/forcematch/internal/service"
	"github.com/agenthands/forcematch/internal/store"
)

func (c *CLI) matchCommand() *cobra.Command {
	var (
		dataPath    string
		constraints []string
		iterations  int
		seed        uint64
		withGifts   bool
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Find the best assignment for the loaded characters",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if dataPath != "" {
				c.Config.Data.Backend = "json"
				c.Config.Data.Path = dataPath
			}

			a, err := c.openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			req := service.Request{
				Constraints: constraints,
				Iterations:  iterations,
				Gifts:       withGifts,
			}
			if cmd.Flags().Changed("seed") {
				req.Seed = &seed
			}

			metrics, err := a.Matcher.Run(ctx, req)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(c.out)
				enc.SetIndent("", "  ")
				return enc.Encode(metrics)
			}
			printMetrics(c.out, metrics, a.Store)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "enriched character JSON file (overrides config)")
	cmd.Flags().StringSliceVar(&constraints, "constraint", nil, "constraint to enable (repeatable; default from config)")
	cmd.Flags().IntVarP(&iterations, "iterations", "n", 0, "candidate assignments to try")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed for a reproducible run")
	cmd.Flags().BoolVar(&withGifts, "gifts", false, "suggest gifts for every pair")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full evaluation as JSON")
	return cmd
}

func printMetrics(w io.Writer, m *evaluation.Metrics, s store.Store) {
	name := func(id string) string {
		if ch, ok := s.GetCharacter(id); ok {
			return ch.DisplayName()
		}
		return id
	}

	fmt.Fprintf(w, "Match %s\n\n", m.MatchID)
	givers := make([]string, 0, len(m.Pairings))
	for g := range m.Pairings {
		givers = append(givers, g)
	}
	slices.SortFunc(givers, func(a, b string) int {
		return cmp.Or(strings.Compare(name(a), name(b)), strings.Compare(a, b))
	})
	for _, g := range givers {
		fmt.Fprintf(w, "  %s -> %s\n", name(g), name(m.Pairings[g]))
		for _, idea := range m.Gifts[g] {
			fmt.Fprintf(w, "      gift: %s\n", idea)
		}
	}

	fmt.Fprintf(w, "\nViolations:    %d\n", m.TotalViolations)
	for _, report := range m.DetailedViolations {
		for _, v := range report.Violations {
			fmt.Fprintf(w, "  %s -> %s: %s\n", name(report.Giver), name(report.Receiver), v)
		}
	}
	fmt.Fprintf(w, "Perfect pairs: %.2f%%\n", m.PerfectPairingsPct)
	fmt.Fprintf(w, "Satisfaction:  %.2f\n", m.SatisfactionScore)
	fmt.Fprintf(w, "Score:         %g (iteration %d)\n", m.TotalScore, m.IterationCount)
}
