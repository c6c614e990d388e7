package pool

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/molforge/dockprep/internal/catalog"
	"github.com/molforge/dockprep/internal/config"
	"github.com/molforge/dockprep/internal/engine"
)

// scriptedEngine returns a fixed outcome and records the request it saw.
type scriptedEngine struct {
	outcome engine.Outcome
	lastReq engine.ConvertRequest
}

func (s *scriptedEngine) Check(context.Context) error { return nil }
func (s *scriptedEngine) RotatableBonds(context.Context, string, string) (int, error) {
	return 0, nil
}
func (s *scriptedEngine) Convert(_ context.Context, req engine.ConvertRequest) engine.Outcome {
	s.lastReq = req
	return s.outcome
}

func TestEngineAdapter_PassesItemThrough(t *testing.T) {
	eng := &scriptedEngine{outcome: engine.Outcome{OK: true}}
	a := &EngineAdapter{
		Engine:       eng,
		InputFormat:  "sdf",
		OutputFormat: "pdbqt",
		Timeout:      10 * time.Minute,
		Log:          zerolog.Nop(),
	}

	item := catalog.WorkItem{
		SourcePath: "/in/batch_0001/a.record",
		OutputPath: "/out/batch_0001/a.converted",
		Strategy:   config.StrategyThorough,
	}
	out := a.Convert(context.Background(), item)

	assert.True(t, out.OK)
	assert.Equal(t, item.SourcePath, eng.lastReq.InputPath)
	assert.Equal(t, item.OutputPath, eng.lastReq.OutputPath)
	assert.Equal(t, "sdf", eng.lastReq.InputFormat)
	assert.Equal(t, "pdbqt", eng.lastReq.OutputFormat)
	assert.Equal(t, config.StrategyThorough, eng.lastReq.Strategy)
	assert.Equal(t, 10*time.Minute, eng.lastReq.Timeout)
}

func TestEngineAdapter_CapturesFailedInput(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	src := filepath.Join(in, "mol.record")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))
	batchOut := filepath.Join(out, "batch_0001")
	require.NoError(t, os.MkdirAll(batchOut, 0o755))

	eng := &scriptedEngine{outcome: engine.Outcome{
		OK: false, Stage: "minimize", Diagnostic: "did not converge",
	}}
	a := &EngineAdapter{Engine: eng, InputFormat: "sdf", OutputFormat: "pdbqt", Log: zerolog.Nop()}

	item := catalog.WorkItem{
		SourcePath: src,
		OutputPath: filepath.Join(batchOut, "mol.converted"),
	}
	res := a.Convert(context.Background(), item)
	assert.False(t, res.OK)

	copied, err := os.ReadFile(filepath.Join(batchOut, "errors", "mol.record"))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(copied))

	diag, err := os.ReadFile(filepath.Join(batchOut, "errors", "mol.diag.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(diag), "stage: minimize")
	assert.Contains(t, string(diag), "did not converge")
}

func TestEngineAdapter_SuccessLeavesNoErrorArtifacts(t *testing.T) {
	out := t.TempDir()
	batchOut := filepath.Join(out, "batch_0001")
	require.NoError(t, os.MkdirAll(batchOut, 0o755))

	eng := &scriptedEngine{outcome: engine.Outcome{OK: true}}
	a := &EngineAdapter{Engine: eng, Log: zerolog.Nop()}

	a.Convert(context.Background(), catalog.WorkItem{
		SourcePath: "/in/mol.record",
		OutputPath: filepath.Join(batchOut, "mol.converted"),
	})

	_, err := os.Stat(filepath.Join(batchOut, "errors"))
	assert.True(t, os.IsNotExist(err))
}
