// Package cli provides the command-line interface for schemaflow.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/leapstack-labs/schemaflow/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "schemaflow",
		Short: "schemaflow - schema interchange engine",
		Long: `schemaflow converts between schema graphs, SQL DDL, and YAML schema
manifests. It parses pasted DDL or model/source manifests into a graph of
tables, columns, and relationships, and generates executable DDL back out.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			var err error
			cfg, err = config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := slog.LevelInfo
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: level,
			})))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{.Name}} {{.Version}} (commit %s, built %s)
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./schemaflow.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format: table, json")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("target-lag", "", "TARGET_LAG for generated dynamic tables")
	rootCmd.PersistentFlags().String("iceberg-catalog", "", "CATALOG for generated Iceberg tables")
	rootCmd.PersistentFlags().String("external-volume", "", "EXTERNAL_VOLUME for generated Iceberg tables")

	rootCmd.AddCommand(
		newParseCommand(),
		newManifestCommand(),
		newGenCommand(),
		newConvertCommand(),
		newDagCommand(),
	)
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
