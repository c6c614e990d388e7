package engine

import (
	"time"

	"github.com/molforge/dockprep/internal/config"
)

// forceField is fixed across all profiles; it is what the downstream
// docking inputs are parameterized against.
const forceField = "MMFF94s"

// minStage is one minimization pass: a numeric method and its step count.
type minStage struct {
	Method  string // "-sd" (steepest descent) or "-cg" (conjugate gradient).
	Steps   int
	Timeout time.Duration
}

// stagesFor maps a strategy to its fixed multi-stage step-count profile.
func stagesFor(s config.Strategy) []minStage {
	switch s {
	case config.StrategyFast:
		return []minStage{
			{Method: "-cg", Steps: 500, Timeout: 180 * time.Second},
		}
	case config.StrategyThorough:
		return []minStage{
			{Method: "-sd", Steps: 1000, Timeout: 300 * time.Second},
			{Method: "-cg", Steps: 2000, Timeout: 300 * time.Second},
		}
	default: // balanced
		return []minStage{
			{Method: "-sd", Steps: 500, Timeout: 180 * time.Second},
			{Method: "-cg", Steps: 1000, Timeout: 300 * time.Second},
		}
	}
}

// Per-stage bounds for the non-minimization stages.
const (
	gen3DTimeout   = 180 * time.Second
	buildTimeout   = 300 * time.Second
	convertTimeout = 120 * time.Second
	checkTimeout   = 10 * time.Second
	rotorsTimeout  = 60 * time.Second
)
