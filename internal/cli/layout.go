package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codeatlas/codeatlas/pkg/graph"
	"github.com/codeatlas/codeatlas/pkg/pipeline"
)

// layoutCommand creates the layout command for computing node positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := pipeline.Options{
		Layout: pipeline.DefaultLayout,
		Width:  pipeline.DefaultWidth,
		Height: pipeline.DefaultHeight,
		Seed:   pipeline.DefaultSeed,
	}

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Compute spatial positions for a code graph",
		Long: `Compute spatial positions for a code graph.

The layout command takes a graph.json file and assigns a 2D position to every
node. The output is the same graph with positions filled in, ready for a
frontend or the 'export' command.

Available algorithms: force (default), hierarchical, radial, organic. Identical
inputs with the same seed always produce identical positions.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when cached")

	// Layout flags
	cmd.Flags().StringVarP(&opts.Layout, "algorithm", "a", opts.Layout, "layout algorithm: force (default), hierarchical, radial, organic")
	cmd.Flags().Float64Var(&opts.Width, "width", opts.Width, "canvas width")
	cmd.Flags().Float64Var(&opts.Height, "height", opts.Height, "canvas height")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", opts.Seed, "random seed for reproducible layouts")
	cmd.Flags().StringVar(&opts.RootID, "root", opts.RootID, "center node for radial layout")

	return cmd
}

// runLayout loads the graph, computes positions, and writes the output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %s layout...", opts.Layout))
	spinner.Start()

	laidOut, cacheHit, err := runner.LayoutWithCacheInfo(ctx, g, runner.GraphHash(g), opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}

	if err := graph.WriteGraphFile(laidOut, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(g.Nodes), len(g.Edges), cacheHit)
	printNewline()
	printNextStep("Group related entities", "codeatlas cluster "+input)

	return nil
}
