package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/codeatlas/codeatlas/pkg/graph"
	"github.com/codeatlas/codeatlas/pkg/pipeline"
)

// topImportance is how many entities the importance summary lists.
const topImportance = 5

// analyzeCommand creates the analyze command for structural graph analysis.
func (c *CLI) analyzeCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [graph.json]",
		Short: "Analyze a code graph for cycles, components, and importance",
		Long: `Analyze a code graph for cycles, components, and importance.

The analyze command takes a graph.json file and computes structural metrics:
circular dependencies, connected components, and a degree-based importance
score per entity. The report prints as a summary; use -o to save the full
report as JSON.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAnalyze(cmd.Context(), args[0], output, noCache, refresh)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the full report as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when cached")

	return cmd
}

// runAnalyze loads the graph, runs the analysis stage, and prints a summary.
func (c *CLI) runAnalyze(ctx context.Context, input, output string, noCache, refresh bool) error {
	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := pipeline.Options{Refresh: refresh, Logger: c.Logger}

	spinner := newSpinnerWithContext(ctx, "Analyzing graph...")
	spinner.Start()

	report, cacheHit, err := runner.AnalyzeWithCacheInfo(ctx, g, runner.GraphHash(g), opts)
	if err != nil {
		spinner.StopWithError("Analysis failed")
		return fmt.Errorf("analyze graph: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	printSuccess("Analysis complete")
	printStats(len(g.Nodes), len(g.Edges), cacheHit)
	printKeyValue("Cycles", fmt.Sprintf("%d", len(report.Cycles)))
	printKeyValue("Components", fmt.Sprintf("%d", len(report.Components)))
	for _, cycle := range report.Cycles {
		printWarning("Cycle: %s", joinCycle(cycle))
	}
	printImportance(report.Importance)

	if output != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return fmt.Errorf("write report %s: %w", output, err)
		}
		printFile(output)
	}

	printNewline()
	printNextStep("Compute a layout", "codeatlas layout "+input)

	return nil
}

// printImportance lists the most connected entities, highest score first.
func printImportance(scores map[string]float64) {
	if len(scores) == 0 {
		return
	}

	type entry struct {
		id    string
		score float64
	}
	entries := make([]entry, 0, len(scores))
	for id, score := range scores {
		entries = append(entries, entry{id, score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score > entries[j].score
		}
		return entries[i].id < entries[j].id
	})
	if len(entries) > topImportance {
		entries = entries[:topImportance]
	}

	printInfo("Most connected entities:")
	for _, e := range entries {
		printDetail("%s (%.2f)", e.id, e.score)
	}
}

// joinCycle renders a cycle as a -> b -> a.
func joinCycle(cycle []string) string {
	out := ""
	for i, id := range cycle {
		if i > 0 {
			out += " " + iconArrow + " "
		}
		out += id
	}
	if len(cycle) > 1 {
		out += " " + iconArrow + " " + cycle[0]
	}
	return out
}
