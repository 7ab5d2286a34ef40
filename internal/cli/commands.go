package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/schemaflow/internal/dag"
	"github.com/leapstack-labs/schemaflow/pkg/ddl"
	"github.com/leapstack-labs/schemaflow/pkg/graph"
	"github.com/leapstack-labs/schemaflow/pkg/manifest"
	"github.com/spf13/cobra"
)

// newParseCommand creates the parse command.
func newParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file.sql>",
		Short: "Parse SQL DDL into a schema graph",
		Long: `Parse SQL DDL text into a schema graph of objects and relationships.

Parsing is best-effort: unrecognized statements and unresolvable
foreign keys are reported as diagnostics, never as errors.`,
		Example: `  # Parse DDL and show the recovered schema
  schemaflow parse schema.sql

  # Emit the graph as JSON for the editor
  schemaflow parse schema.sql -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			res := ddl.NewParser(ddl.WithLogger(slog.Default())).Parse(string(data))
			return renderResult(cmd.OutOrStdout(), res, cfg.Output)
		},
	}
}

// newManifestCommand creates the manifest command.
func newManifestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "manifest <schema.yml>",
		Short: "Parse a YAML schema manifest into a schema graph",
		Long: `Parse a multi-document YAML manifest of models and sources into a
schema graph. Unlike DDL parsing, YAML that cannot be decoded at all is
a fatal error.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			res, err := manifest.NewParser(manifest.WithLogger(slog.Default())).Parse(string(data))
			if err != nil {
				return err
			}
			return renderResult(cmd.OutOrStdout(), res, cfg.Output)
		},
	}
}

// newGenCommand creates the gen command.
func newGenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "gen <graph.json>",
		Short: "Generate SQL DDL from a schema graph",
		Long: `Generate SQL DDL from a schema graph JSON file (the format written by
parse -o json). CREATE statements come out in input order, foreign-key
statements last.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			var res graph.Result
			if err := json.Unmarshal(data, &res); err != nil {
				return fmt.Errorf("failed to decode graph: %w", err)
			}
			gen := ddl.NewGenerator(cfg.Generator.Options())
			fmt.Fprint(cmd.OutOrStdout(), gen.Generate(res.Objects, res.Relationships))
			return nil
		},
	}
}

// newConvertCommand creates the convert command.
func newConvertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <schema.yml>",
		Short: "Convert a YAML schema manifest to SQL DDL",
		Example: `  # Emit CREATE statements for every model and source table
  schemaflow convert schema.yml > schema.sql`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			res, err := manifest.NewParser(manifest.WithLogger(slog.Default())).Parse(string(data))
			if err != nil {
				return err
			}
			gen := ddl.NewGenerator(cfg.Generator.Options())
			fmt.Fprint(cmd.OutOrStdout(), gen.Generate(res.Objects, res.Relationships))
			return nil
		},
	}
}

// newDagCommand creates the dag command.
func newDagCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dag <file>",
		Short: "Show the dependency graph of a schema file",
		Long: `Show the creation-order dependency graph implied by foreign keys and
model references. The input is DDL (.sql) or a YAML manifest
(.yml/.yaml), chosen by extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := loadGraph(args[0])
			if err != nil {
				return err
			}

			g := dag.FromResult(res)
			levels, err := g.Levels()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Dependency graph (creation levels):")
			fmt.Fprintln(out)
			for i, level := range levels {
				fmt.Fprintf(out, "Level %d:\n", i)
				for _, id := range level {
					fmt.Fprintf(out, "  %s\n", id)
					if deps := g.Dependencies(id); len(deps) > 0 {
						fmt.Fprintf(out, "    depends on: %s\n", strings.Join(deps, ", "))
					}
					if dependents := g.Dependents(id); len(dependents) > 0 {
						fmt.Fprintf(out, "    referenced by: %s\n", strings.Join(dependents, ", "))
					}
				}
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "Total: %d objects, %d dependencies\n", g.NodeCount(), g.EdgeCount())
			return nil
		},
	}
}

// loadGraph parses a schema file as DDL or manifest based on extension.
func loadGraph(path string) (*graph.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return manifest.NewParser(manifest.WithLogger(slog.Default())).Parse(string(data))
	default:
		return ddl.NewParser(ddl.WithLogger(slog.Default())).Parse(string(data)), nil
	}
}
