// Package check provides engine diagnostics (the check subcommand) and
// the pre-dispatch dependency validation run before a conversion.
package check

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/molforge/dockprep/internal/engine"
)

// versioner is implemented by engines that can report a version banner.
type versioner interface {
	Version(ctx context.Context) (string, error)
}

// roundTripper is implemented by engines that can run a scratch probe
// conversion.
type roundTripper interface {
	RoundTrip(ctx context.Context) error
}

// Run prints the availability and version of the conversion toolchain.
// Informational only: it reports failures instead of stopping on them.
func Run(ctx context.Context, eng engine.Engine, log zerolog.Logger) {
	log.Info().Msg("engine diagnostics")

	if err := eng.Check(ctx); err != nil {
		log.Error().Err(err).Msg("engine check failed")
		return
	}
	log.Info().Msg("engine toolchain present")

	if v, ok := eng.(versioner); ok {
		banner, err := v.Version(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("engine present but version query failed")
			return
		}
		log.Info().Str("version", banner).Msg("engine version")
	}

	if rt, ok := eng.(roundTripper); ok {
		if err := rt.RoundTrip(ctx); err != nil {
			log.Error().Err(err).Msg("probe conversion failed")
			return
		}
		log.Info().Msg("probe conversion ok")
	}
}

// Deps is the fail-fast validation before any item is dispatched: the
// toolchain must be present and identify itself.
func Deps(ctx context.Context, eng engine.Engine) error {
	return eng.Check(ctx)
}
