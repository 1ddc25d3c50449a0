package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codeatlas/codeatlas/pkg/graph"
)

// exportCommand creates the export command for DOT output.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		output   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "export [graph.json]",
		Short: "Export a code graph as Graphviz DOT",
		Long: `Export a code graph as Graphviz DOT.

The export command converts a graph.json file to DOT text for use with
Graphviz or any DOT viewer. Node shapes encode entity types and edge width
encodes relationship weight.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(args[0], output, detailed)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.dot, - for stdout)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include paths and metrics in node labels")

	return cmd
}

// runExport loads the graph and writes the DOT representation.
func (c *CLI) runExport(input, output string, detailed bool) error {
	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	dot := graph.ToDOT(g, graph.DOTOptions{Detailed: detailed})

	if output == "-" {
		fmt.Print(dot)
		return nil
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".dot"
	}

	if err := os.WriteFile(outputPath, []byte(dot), 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Export complete")
	printFile(outputPath)
	printNewline()
	printNextStep("Render with Graphviz", "dot -Tsvg "+outputPath+" -o graph.svg")

	return nil
}
