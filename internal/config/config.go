// Package config holds the immutable run configuration: defaults, optional
// TOML file loading, and validation. A Config is built once at startup and
// passed to every component; nothing mutates it after Validate.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Duration is a time.Duration that TOML can decode from strings like
// "90s" or "10m".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Strategy selects the multi-stage minimization profile applied by the
// conversion engine before output.
type Strategy string

const (
	StrategyFast     Strategy = "fast"     // Single conjugate-gradient stage (500 steps).
	StrategyBalanced Strategy = "balanced" // 500 SD + 1000 CG steps (default).
	StrategyThorough Strategy = "thorough" // 1000 SD + 2000 CG steps.
)

// LedgerBackend selects how prior-run outcomes are recorded and queried.
type LedgerBackend string

const (
	LedgerPath   LedgerBackend = "path"   // Output-file existence is the ledger entry (default).
	LedgerSQLite LedgerBackend = "sqlite" // Outcomes table in <output_root>/ledger.db.
)

// Fatal setup errors returned by Validate. These abort the run with a
// nonzero exit before any item is dispatched.
var (
	ErrNoInputRoot      = errors.New("input root is required")
	ErrNoOutputRoot     = errors.New("output root is required")
	ErrZeroParallelism  = errors.New("parallelism must be at least 1")
	ErrInvalidStrategy  = errors.New("invalid strategy (use 'fast', 'balanced' or 'thorough')")
	ErrInvalidLedger    = errors.New("invalid ledger backend (use 'path' or 'sqlite')")
	ErrInvalidThreshold = errors.New("property threshold must not be negative")
	ErrInvalidCapacity  = errors.New("batch capacity must be at least 1")
	ErrInvalidTimeout   = errors.New("item timeout must be positive")
)

// Config holds all recognized run options. InputRoot and OutputRoot come
// from positional arguments per subcommand; everything else comes from
// defaults, an optional TOML file, and CLI flags, in that order.
type Config struct {
	// Paths (set from positional args).
	InputRoot  string `toml:"input_root"`
	OutputRoot string `toml:"output_root"`

	// Execution.
	Parallelism int      `toml:"parallelism"`
	Strategy    Strategy `toml:"strategy"`
	Resume      bool     `toml:"resume"`
	Overwrite   bool     `toml:"overwrite"`
	ItemTimeout Duration `toml:"item_timeout"`

	// Partitioning and gating.
	BatchCapacity     int `toml:"batch_capacity"`
	PropertyThreshold int `toml:"property_threshold"`

	// Directory convention. The engine is told formats explicitly, so the
	// extensions stay abstract.
	RecordExt    string `toml:"record_ext"`
	ConvertedExt string `toml:"converted_ext"`

	// Ledger.
	Ledger LedgerBackend `toml:"ledger_backend"`

	// Multi-instance batch claiming.
	Claim   bool `toml:"claim"`
	Reclaim bool `toml:"reclaim"`

	// Batch subset and per-batch item cap (smoke runs).
	Batches []string `toml:"batches"`
	Limit   int      `toml:"limit"`

	// Reporting.
	ProgressEvery int    `toml:"progress_every"`
	JobLog        string `toml:"job_log"` // Default: <output_root>/joblog.jsonl.

	// Engine binaries, overridable for exotic installs. The orchestrator
	// never depends on these names.
	ConverterBin string `toml:"converter_bin"`
	MinimizerBin string `toml:"minimizer_bin"`
}

// Default returns a Config with defaults matching the legacy pipeline
// behavior. Used as the base before file and flag overrides.
func Default() Config {
	return Config{
		Parallelism:       runtime.NumCPU(),
		Strategy:          StrategyBalanced,
		Resume:            true,
		Overwrite:         false,
		ItemTimeout:       Duration(10 * time.Minute),
		BatchCapacity:     10000,
		PropertyThreshold: 15,
		RecordExt:         ".record",
		ConvertedExt:      ".converted",
		Ledger:            LedgerPath,
		ProgressEvery:     100,
		ConverterBin:      "obabel",
		MinimizerBin:      "obminimize",
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks the fatal-configuration taxonomy. It must pass before
// any batch directory is created or any item dispatched.
func (c *Config) Validate() error {
	if c.InputRoot == "" {
		return ErrNoInputRoot
	}
	if c.OutputRoot == "" {
		return ErrNoOutputRoot
	}
	if c.Parallelism < 1 {
		return ErrZeroParallelism
	}
	switch c.Strategy {
	case StrategyFast, StrategyBalanced, StrategyThorough:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStrategy, c.Strategy)
	}
	switch c.Ledger {
	case LedgerPath, LedgerSQLite:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLedger, c.Ledger)
	}
	if c.PropertyThreshold < 0 {
		return ErrInvalidThreshold
	}
	if c.BatchCapacity < 1 {
		return ErrInvalidCapacity
	}
	if c.ItemTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if !strings.HasPrefix(c.RecordExt, ".") || !strings.HasPrefix(c.ConvertedExt, ".") {
		return errors.New("record and converted extensions must start with '.'")
	}
	return nil
}

// WantsBatch reports whether batch name is in the configured subset.
// An empty subset selects every batch.
func (c *Config) WantsBatch(name string) bool {
	if len(c.Batches) == 0 {
		return true
	}
	for _, b := range c.Batches {
		if b == name {
			return true
		}
	}
	return false
}

// JobLogPath returns the configured job log path, defaulting to
// joblog.jsonl under the output root.
func (c *Config) JobLogPath() string {
	if c.JobLog != "" {
		return c.JobLog
	}
	return filepath.Join(c.OutputRoot, "joblog.jsonl")
}
