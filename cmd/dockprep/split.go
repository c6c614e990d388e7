package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/molforge/dockprep/internal/config"
	"github.com/molforge/dockprep/internal/splitter"
)

var splitCmd = &cobra.Command{
	Use:   "split <corpus> <input_root>",
	Short: "Partition a multi-record corpus into fixed-capacity batch directories",
	Args:  cobra.ExactArgs(2),
	Run:   runSplit,
}

func init() {
	splitCmd.Flags().IntP("batch-capacity", "c", 0, "Records per batch (default 10000)")
	addConventionFlags(splitCmd)
}

func runSplit(cmd *cobra.Command, args []string) {
	cfg, err := baseConfig()
	if err != nil {
		fatal(err)
	}
	applyFlags(cmd, &cfg)

	corpus := args[0]
	root := config.NormalizeDirArg(args[1])
	if cfg.BatchCapacity < 1 {
		fatal(config.ErrInvalidCapacity)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := splitter.Split(ctx, log, corpus, root, cfg.BatchCapacity, cfg.RecordExt); err != nil {
		fatal(err)
	}
}
