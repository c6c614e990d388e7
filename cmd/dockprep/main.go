// Command dockprep prepares large molecular structure corpora for
// docking: it splits a corpus into batches, gates records on a structural
// property, and converts the survivors through an external engine under a
// bounded worker pool, with resumable per-item accounting.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/molforge/dockprep/internal/config"
	"github.com/molforge/dockprep/internal/logging"
)

var (
	logLevel string
	cfgFile  string

	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dockprep",
	Short: "Batch conversion of molecular structure corpora into docking-ready format",
	Long: "dockprep partitions a multi-record structure corpus into bounded batches,\n" +
		"filters records on rotatable-bond count, and drives an external conversion\n" +
		"engine across a bounded worker pool with resumable per-item accounting.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log = logging.New(logLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "TOML config file")

	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
}

// baseConfig builds the run configuration: defaults, then the optional
// config file, then explicit flags (applied by each command).
func baseConfig() (config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		if err := config.LoadFile(cfgFile, &cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// fatal reports a fatal setup error and exits nonzero. Per-item failures
// never come through here; they are recorded and the run exits zero.
func fatal(err error) {
	log.Error().Err(err).Msg("fatal")
	os.Exit(1)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
