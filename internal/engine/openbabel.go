package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ErrEngineNotFound is returned by Check when the converter binary is
// missing from PATH or does not identify itself.
var ErrEngineNotFound = errors.New("structure-conversion engine not found on PATH")

// OpenBabel drives the obabel/obminimize toolchain. All invocations are
// bounded subprocesses with captured stderr; a failed or timed-out stage
// yields a FAILED outcome, never a propagated error.
type OpenBabel struct {
	ConverterBin string
	MinimizerBin string
}

// NewOpenBabel returns an engine using the given binary names
// (defaulting to "obabel"/"obminimize" when empty).
func NewOpenBabel(converterBin, minimizerBin string) *OpenBabel {
	if converterBin == "" {
		converterBin = "obabel"
	}
	if minimizerBin == "" {
		minimizerBin = "obminimize"
	}
	return &OpenBabel{ConverterBin: converterBin, MinimizerBin: minimizerBin}
}

// Check verifies the converter and minimizer binaries exist and that the
// converter identifies itself as Open Babel.
func (o *OpenBabel) Check(ctx context.Context) error {
	if _, err := exec.LookPath(o.ConverterBin); err != nil {
		return ErrEngineNotFound
	}
	if _, err := exec.LookPath(o.MinimizerBin); err != nil {
		return fmt.Errorf("minimizer %q not found on PATH", o.MinimizerBin)
	}

	out, _ := o.run(ctx, checkTimeout, o.ConverterBin, "-V")
	if !strings.Contains(out, "Open Babel") {
		return fmt.Errorf("%w: %q -V did not report an Open Babel version", ErrEngineNotFound, o.ConverterBin)
	}
	return nil
}

// Version returns the engine's version banner (first line of -V output).
func (o *OpenBabel) Version(ctx context.Context) (string, error) {
	out, err := o.run(ctx, checkTimeout, o.ConverterBin, "-V")
	line := strings.TrimSpace(out)
	if idx := strings.Index(line, "\n"); idx > 0 {
		line = line[:idx]
	}
	if line == "" && err != nil {
		return "", err
	}
	return line, nil
}

// RoundTrip converts a known single-molecule input through the converter
// as a smoke test, in a throwaway scratch directory.
func (o *OpenBabel) RoundTrip(ctx context.Context) error {
	dir, err := os.MkdirTemp("", "dockprep-check-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "probe.smi")
	out := filepath.Join(dir, "probe.sdf")
	if err := os.WriteFile(in, []byte("CCO ethanol\n"), 0o644); err != nil {
		return err
	}

	stderr, err := o.run(ctx, checkTimeout, o.ConverterBin, "-ismi", in, "-osdf", "-O", out)
	if err != nil {
		return fmt.Errorf("probe conversion failed: %s", firstLine(stderr))
	}
	if !nonEmptyFile(out) {
		return errors.New("probe conversion produced no output")
	}
	return nil
}

// RotatableBonds computes the rotatable-bond count for one record by
// asking obabel to append the "rotors" descriptor to a SMILES rendering.
func (o *OpenBabel) RotatableBonds(ctx context.Context, path, format string) (int, error) {
	runCtx, cancel := context.WithTimeout(ctx, rotorsTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, o.ConverterBin,
		"-i"+format, path,
		"-osmi", "--append", "rotors",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("property computation failed: %w (%s)", err, firstLine(stderr.String()))
	}

	// Output is "<smiles>\t<title> <rotors>"; the descriptor is the last
	// whitespace-separated field.
	fields := strings.Fields(strings.TrimSpace(stdout.String()))
	if len(fields) == 0 {
		return 0, errors.New("property computation produced no output")
	}
	v, err := strconv.ParseFloat(fields[len(fields)-1], 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable rotors value %q", fields[len(fields)-1])
	}
	return int(v), nil
}

// Convert runs 3-D generation (with build fallback), the strategy's
// minimization stages, and the final format conversion. The output is
// written to a scratch file and renamed into place only after validation,
// so a concurrent reader never observes a partial output.
func (o *OpenBabel) Convert(ctx context.Context, req ConvertRequest) Outcome {
	start := time.Now()
	fail := func(stage, diag string) Outcome {
		return Outcome{OK: false, Stage: stage, Diagnostic: diag, Elapsed: time.Since(start)}
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return fail("prepare", err.Error())
	}

	// Scratch files live next to the output so the final rename stays on
	// one filesystem. Output paths are unique per item, so the derived
	// scratch names cannot collide across workers.
	temp3D := req.OutputPath + ".tmp3d"
	scratch := req.OutputPath + ".tmp"
	defer os.Remove(temp3D)
	defer os.Remove(scratch)

	// Stage 1: 3-D generation, --gen3D first, --build as the slower
	// systematic fallback.
	gen3DErr, ok := o.gen3D(ctx, req, temp3D, "--gen3D", gen3DTimeout)
	if !ok {
		buildErr, ok := o.gen3D(ctx, req, temp3D, "--build", buildTimeout)
		if !ok {
			return fail("gen3d", strings.TrimSpace(gen3DErr+" "+buildErr))
		}
	}

	// Stage 2: minimization passes per strategy.
	for _, st := range stagesFor(req.Strategy) {
		stderr, err := o.run(ctx, st.Timeout, o.MinimizerBin,
			"-ff", forceField, st.Method, "-n", strconv.Itoa(st.Steps), temp3D)
		if err != nil {
			return fail("minimize", fmt.Sprintf("%s %d steps: %s", st.Method, st.Steps, firstLine(stderr)))
		}
	}

	// Stage 3: final format conversion with protonation at physiological
	// pH and Gasteiger partial charges.
	stderr, err := o.run(ctx, convertTimeout, o.ConverterBin,
		"-isdf", temp3D,
		"-o"+req.OutputFormat, "-O", scratch,
		"-p", "7.4", "--partialcharge", "gasteiger", "-h")
	if err != nil {
		return fail("convert", firstLine(stderr))
	}

	// Stage 4: validate and publish atomically.
	if !nonEmptyFile(scratch) {
		return fail("validate", "converted output is missing or empty")
	}
	if f, err := os.OpenFile(scratch, os.O_RDWR, 0); err == nil {
		f.Sync()
		f.Close()
	}
	if err := os.Rename(scratch, req.OutputPath); err != nil {
		return fail("validate", err.Error())
	}
	return Outcome{OK: true, Elapsed: time.Since(start)}
}

// gen3D runs one 3-D generation attempt and reports whether it produced a
// non-empty structure file.
func (o *OpenBabel) gen3D(ctx context.Context, req ConvertRequest, dest, method string, timeout time.Duration) (string, bool) {
	stderr, err := o.run(ctx, timeout, o.ConverterBin,
		"-i"+req.InputFormat, req.InputPath,
		"-osdf", "-O", dest,
		method, "-h", "--ff", forceField)
	if err != nil || !nonEmptyFile(dest) {
		diag := firstLine(stderr)
		if diag == "" && err != nil {
			diag = err.Error()
		}
		return fmt.Sprintf("%s failed: %s.", strings.TrimPrefix(method, "--"), diag), false
	}
	return "", true
}

// run executes one bounded toolchain invocation and returns the captured
// stderr. The process is killed when either the stage timeout or the
// caller's context expires.
func (o *OpenBabel) run(ctx context.Context, timeout time.Duration, bin string, args ...string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, bin, args...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	if cErr := ctx.Err(); cErr != nil {
		// The caller's context went first: run-level cancellation or the
		// per-item bound, not this stage's timeout.
		err = cErr
	} else if runCtx.Err() == context.DeadlineExceeded {
		err = fmt.Errorf("timed out after %s", timeout)
	}
	return buf.String(), err
}

func nonEmptyFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Size() > 0
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return s
}
