package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/molforge/dockprep/internal/check"
	"github.com/molforge/dockprep/internal/engine"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the conversion toolchain is present and working",
	Args:  cobra.NoArgs,
	Run:   runCheck,
}

func init() {
	addEngineFlags(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) {
	cfg, err := baseConfig()
	if err != nil {
		fatal(err)
	}
	applyFlags(cmd, &cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng := engine.NewOpenBabel(cfg.ConverterBin, cfg.MinimizerBin)
	check.Run(ctx, eng, log)
}
