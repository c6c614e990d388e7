package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/molforge/dockprep/internal/check"
	"github.com/molforge/dockprep/internal/config"
	"github.com/molforge/dockprep/internal/engine"
	"github.com/molforge/dockprep/internal/filter"
)

var filterCmd = &cobra.Command{
	Use:   "filter <input_root> <filtered_root>",
	Short: "Gate batch records on rotatable-bond count",
	Args:  cobra.ExactArgs(2),
	Run:   runFilter,
}

func init() {
	filterCmd.Flags().IntP("threshold", "t", 0, "Rotatable-bond upper bound, inclusive (default 15)")
	filterCmd.Flags().IntP("parallelism", "p", 0, "Concurrent property computations (default: CPU count)")
	addSelectionFlags(filterCmd)
	addConventionFlags(filterCmd)
	addEngineFlags(filterCmd)
}

func runFilter(cmd *cobra.Command, args []string) {
	cfg, err := baseConfig()
	if err != nil {
		fatal(err)
	}
	applyFlags(cmd, &cfg)
	cfg.InputRoot = config.NormalizeDirArg(args[0])
	cfg.OutputRoot = config.NormalizeDirArg(args[1])
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	eng := engine.NewOpenBabel(cfg.ConverterBin, cfg.MinimizerBin)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := check.Deps(ctx, eng); err != nil {
		fatal(err)
	}

	prop := func(ctx context.Context, path string) (int, error) {
		return eng.RotatableBonds(ctx, path, "sdf")
	}

	totals, err := filter.Run(ctx, log, prop, &cfg)
	if err != nil {
		fatal(err)
	}
	log.Info().
		Int("batches", totals.Batches).
		Int("batches_failed", totals.BatchesFailed).
		Int("total", totals.Total).
		Int("accepted", totals.Accepted).
		Int("rejected", totals.Rejected).
		Int("failed", totals.Failed).
		Msg("filter complete")
}
