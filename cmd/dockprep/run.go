package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/molforge/dockprep/internal/check"
	"github.com/molforge/dockprep/internal/config"
	"github.com/molforge/dockprep/internal/display"
	"github.com/molforge/dockprep/internal/engine"
	"github.com/molforge/dockprep/internal/filter"
	"github.com/molforge/dockprep/internal/runner"
	"github.com/molforge/dockprep/internal/splitter"
	"github.com/molforge/dockprep/internal/summary"
)

var runCmd = &cobra.Command{
	Use:   "run <corpus> <workdir>",
	Short: "Split, filter, and convert a corpus in one pass",
	Long: `Runs the full pipeline against a single working directory:

  <workdir>/batches    split batch directories
  <workdir>/filtered   records that passed the property gate
  <workdir>/converted  docking-ready structures and run artifacts`,
	Args: cobra.ExactArgs(2),
	Run:  runPipeline,
}

func init() {
	runCmd.Flags().IntP("batch-capacity", "c", 0, "Records per batch directory (default 10000)")
	runCmd.Flags().IntP("threshold", "t", 0, "Rotatable-bond upper bound, inclusive (default 15)")
	addConvertFlags(runCmd)
	addSelectionFlags(runCmd)
	addConventionFlags(runCmd)
	addEngineFlags(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) {
	cfg, err := baseConfig()
	if err != nil {
		fatal(err)
	}
	applyFlags(cmd, &cfg)

	corpus := args[0]
	workdir := config.NormalizeDirArg(args[1])
	batchRoot := filepath.Join(workdir, "batches")
	filteredRoot := filepath.Join(workdir, "filtered")
	convertedRoot := filepath.Join(workdir, "converted")

	eng := engine.NewOpenBabel(cfg.ConverterBin, cfg.MinimizerBin)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := check.Deps(ctx, eng); err != nil {
		fatal(err)
	}

	// Stage 1: split.
	cfg.InputRoot = batchRoot
	cfg.OutputRoot = filteredRoot
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}
	split, err := splitter.Split(ctx, log, corpus, batchRoot, cfg.BatchCapacity, cfg.RecordExt)
	if err != nil {
		fatal(err)
	}
	if split.Records == 0 {
		fatal(fmt.Errorf("corpus %s yielded no valid records", corpus))
	}

	// Stage 2: filter.
	prop := func(ctx context.Context, path string) (int, error) {
		return eng.RotatableBonds(ctx, path, "sdf")
	}
	totals, err := filter.Run(ctx, log, prop, &cfg)
	if err != nil {
		fatal(err)
	}
	if totals.Accepted == 0 {
		fatal(fmt.Errorf("no records passed the property gate"))
	}

	// Stage 3: convert.
	cfg.InputRoot = filteredRoot
	cfg.OutputRoot = convertedRoot
	runID := uuid.NewString()
	log.Info().Str("run", runID).Msg("starting conversion stage")

	res, err := runner.Convert(ctx, runner.Options{
		Cfg:    &cfg,
		Log:    log,
		Engine: eng,
		RunID:  runID,
	})
	if err != nil {
		fatal(err)
	}

	fmt.Print(summary.RenderText(res.Run, res.Batches))
	fmt.Printf("  split:    %s records, %s malformed, %s duplicates\n",
		display.FormatCount(split.Records), display.FormatCount(split.Malformed),
		display.FormatCount(split.Duplicates))
	fmt.Printf("  filtered: %s accepted, %s rejected, %s failed\n",
		display.FormatCount(totals.Accepted), display.FormatCount(totals.Rejected),
		display.FormatCount(totals.Failed))

	switch {
	case res.Run.Failed == 0 && res.BatchesFailed == 0:
		color.Green.Println("OK")
	case res.Run.Success > 0:
		color.Yellow.Println("COMPLETED WITH FAILURES")
	default:
		color.Red.Println("ALL ITEMS FAILED")
	}
}
