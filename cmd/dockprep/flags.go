package main

import (
	"github.com/spf13/cobra"

	"github.com/molforge/dockprep/internal/config"
)

// Flags overlay the config file only when explicitly set, so file values
// are not clobbered by flag defaults.

func addConventionFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("record-ext", "", "Record file extension (default .record)")
	f.String("converted-ext", "", "Converted file extension (default .converted)")
}

func addEngineFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("converter-bin", "", "Converter binary (default obabel)")
	f.String("minimizer-bin", "", "Minimizer binary (default obminimize)")
}

func addSelectionFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSlice("batches", nil, "Restrict to named batches (default all)")
	f.Int("limit", 0, "Cap items per batch (0 = no cap)")
}

func addConvertFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntP("parallelism", "p", 0, "Concurrent workers (default: CPU count)")
	f.String("strategy", "", "Minimization strategy: fast | balanced | thorough")
	f.Bool("no-resume", false, "Re-examine every item instead of skipping prior successes")
	f.Bool("overwrite", false, "Reconvert items even when output already exists")
	f.Duration("item-timeout", 0, "Per-item conversion bound (default 10m)")
	f.String("ledger", "", "Ledger backend: path | sqlite")
	f.Bool("claim", false, "Claim batches so concurrent instances partition work")
	f.Bool("reclaim", false, "Take over stale claims from crashed runs")
	f.Int("progress-every", 0, "Progress log frequency in items (default 100)")
	f.String("job-log", "", "Job log path (default <output_root>/joblog.jsonl)")
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	setString := func(name string, dst *string) {
		if f.Changed(name) {
			v, _ := f.GetString(name)
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		if f.Changed(name) {
			v, _ := f.GetInt(name)
			*dst = v
		}
	}
	setBool := func(name string, dst *bool) {
		if f.Changed(name) {
			v, _ := f.GetBool(name)
			*dst = v
		}
	}

	setString("record-ext", &cfg.RecordExt)
	setString("converted-ext", &cfg.ConvertedExt)
	setString("converter-bin", &cfg.ConverterBin)
	setString("minimizer-bin", &cfg.MinimizerBin)
	setString("job-log", &cfg.JobLog)

	setInt("parallelism", &cfg.Parallelism)
	setInt("limit", &cfg.Limit)
	setInt("progress-every", &cfg.ProgressEvery)
	setInt("batch-capacity", &cfg.BatchCapacity)
	setInt("threshold", &cfg.PropertyThreshold)

	setBool("overwrite", &cfg.Overwrite)
	setBool("claim", &cfg.Claim)
	setBool("reclaim", &cfg.Reclaim)

	if f.Changed("no-resume") {
		v, _ := f.GetBool("no-resume")
		cfg.Resume = !v
	}
	if f.Changed("strategy") {
		v, _ := f.GetString("strategy")
		cfg.Strategy = config.Strategy(v)
	}
	if f.Changed("ledger") {
		v, _ := f.GetString("ledger")
		cfg.Ledger = config.LedgerBackend(v)
	}
	if f.Changed("item-timeout") {
		v, _ := f.GetDuration("item-timeout")
		cfg.ItemTimeout = config.Duration(v)
	}
	if f.Changed("batches") {
		v, _ := f.GetStringSlice("batches")
		cfg.Batches = v
	}
}
