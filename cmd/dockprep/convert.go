package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/molforge/dockprep/internal/check"
	"github.com/molforge/dockprep/internal/config"
	"github.com/molforge/dockprep/internal/engine"
	"github.com/molforge/dockprep/internal/runner"
	"github.com/molforge/dockprep/internal/summary"
)

var convertCmd = &cobra.Command{
	Use:   "convert <filtered_root> <output_root>",
	Short: "Convert filtered batches to docking-ready structures",
	Args:  cobra.ExactArgs(2),
	Run:   runConvert,
}

func init() {
	addConvertFlags(convertCmd)
	addSelectionFlags(convertCmd)
	addConventionFlags(convertCmd)
	addEngineFlags(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) {
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

	runID := uuid.NewString()
	log.Info().
		Str("run", runID).
		Int("parallelism", cfg.Parallelism).
		Str("strategy", string(cfg.Strategy)).
		Msg("starting conversion run")

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
	if res.ClaimedElsewhere > 0 {
		fmt.Printf("  %d batch(es) claimed by other instances\n", res.ClaimedElsewhere)
	}
	if res.BatchesFailed > 0 {
		fmt.Printf("  %d batch(es) aborted\n", res.BatchesFailed)
	}

	switch {
	case res.Run.Failed == 0 && res.BatchesFailed == 0:
		color.Green.Println("OK")
	case res.Run.Success > 0:
		color.Yellow.Println("COMPLETED WITH FAILURES")
	default:
		color.Red.Println("ALL ITEMS FAILED")
	}
}
