package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRun_StageTimeoutReported(t *testing.T) {
	o := NewOpenBabel("", "")
	_, err := o.run(context.Background(), 20*time.Millisecond, "sleep", "5")
	if err == nil {
		t.Fatal("expected an error from a timed-out stage")
	}
	if !strings.Contains(err.Error(), "timed out after") {
		t.Errorf("stage timeout should say so, got %v", err)
	}
}

func TestRun_CancellationIsNotATimeout(t *testing.T) {
	o := NewOpenBabel("", "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.run(ctx, time.Minute, "sleep", "5")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled run should report cancellation, got %v", err)
	}
	if err != nil && strings.Contains(err.Error(), "timed out") {
		t.Errorf("cancellation must not be labelled a timeout: %v", err)
	}
}

func TestRun_ItemDeadlineSurfacesAsDeadline(t *testing.T) {
	o := NewOpenBabel("", "")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := o.run(ctx, time.Minute, "sleep", "5")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("per-item deadline should surface as such, got %v", err)
	}
}
