package pool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/molforge/dockprep/internal/catalog"
	"github.com/molforge/dockprep/internal/engine"
)

// EngineAdapter is the production Adapter: one engine invocation per item
// with the configured strategy and timeout. On failure the original input
// is copied to the batch's errors directory with the engine diagnostic
// alongside it, so failed records can be triaged or re-queued without
// touching the source corpus.
type EngineAdapter struct {
	Engine       engine.Engine
	InputFormat  string
	OutputFormat string
	Timeout      time.Duration
	Log          zerolog.Logger
}

func (a *EngineAdapter) Convert(ctx context.Context, item catalog.WorkItem) engine.Outcome {
	out := a.Engine.Convert(ctx, engine.ConvertRequest{
		InputPath:    item.SourcePath,
		OutputPath:   item.OutputPath,
		InputFormat:  a.InputFormat,
		OutputFormat: a.OutputFormat,
		Strategy:     item.Strategy,
		Timeout:      a.Timeout,
	})
	if !out.OK {
		a.captureError(item, out)
	}
	return out
}

// captureError copies the failed input next to a diagnostic file under
// <output batch dir>/errors/. Best effort: problems here are logged and
// never alter the item's classification.
func (a *EngineAdapter) captureError(item catalog.WorkItem, out engine.Outcome) {
	errDir := filepath.Join(filepath.Dir(item.OutputPath), "errors")
	if err := os.MkdirAll(errDir, 0o755); err != nil {
		a.Log.Error().Err(err).Str("source", item.SourcePath).Msg("cannot create errors directory")
		return
	}

	base := filepath.Base(item.SourcePath)
	if data, err := os.ReadFile(item.SourcePath); err == nil {
		if werr := os.WriteFile(filepath.Join(errDir, base), data, 0o644); werr != nil {
			a.Log.Error().Err(werr).Str("source", item.SourcePath).Msg("cannot copy failed input")
		}
	}

	stem := base[:len(base)-len(filepath.Ext(base))]
	diag := fmt.Sprintf("stage: %s\ndiagnostic: %s\n", out.Stage, out.Diagnostic)
	if err := os.WriteFile(filepath.Join(errDir, stem+".diag.txt"), []byte(diag), 0o644); err != nil {
		a.Log.Error().Err(err).Str("source", item.SourcePath).Msg("cannot write diagnostic")
	}
}
