// Package engine wraps the external structure-conversion toolchain behind
// a capability interface. The orchestrator and filter depend only on the
// interface; the Open Babel implementation lives in openbabel.go and can
// be swapped for a fake in tests or another toolchain in production.
package engine

import (
	"context"
	"time"

	"github.com/molforge/dockprep/internal/config"
)

// ConvertRequest describes one conversion invocation. Formats are passed
// explicitly so the file extensions used by the directory convention stay
// abstract.
type ConvertRequest struct {
	InputPath    string
	OutputPath   string
	InputFormat  string // e.g. "sdf"
	OutputFormat string // e.g. "pdbqt"
	Strategy     config.Strategy
	Timeout      time.Duration // Overall per-item bound; zero means no bound.
}

// Outcome classifies one conversion attempt. Engine implementations never
// return Go errors for per-item failures: everything that went wrong is
// folded into the outcome so a failure cannot unwind past the worker.
type Outcome struct {
	OK         bool
	Stage      string // Failing stage when !OK ("gen3d", "minimize", "convert", "validate").
	Diagnostic string // Captured engine stderr or a short reason.
	Elapsed    time.Duration
}

// Engine is the external-toolkit capability surface.
type Engine interface {
	// Check verifies the toolchain is present and usable. Fatal when it
	// fails before a conversion run.
	Check(ctx context.Context) error

	// RotatableBonds computes the gating structural property for one
	// record file.
	RotatableBonds(ctx context.Context, path, format string) (int, error)

	// Convert runs the full 3-D generation, minimization, and format
	// conversion pipeline for one item, publishing the output atomically
	// at req.OutputPath.
	Convert(ctx context.Context, req ConvertRequest) Outcome
}
