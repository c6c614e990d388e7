package engine

import (
	"testing"
	"time"

	"github.com/molforge/dockprep/internal/config"
)

func TestStagesFor(t *testing.T) {
	tests := []struct {
		strategy config.Strategy
		want     []minStage
	}{
		{config.StrategyFast, []minStage{
			{Method: "-cg", Steps: 500, Timeout: 180 * time.Second},
		}},
		{config.StrategyBalanced, []minStage{
			{Method: "-sd", Steps: 500, Timeout: 180 * time.Second},
			{Method: "-cg", Steps: 1000, Timeout: 300 * time.Second},
		}},
		{config.StrategyThorough, []minStage{
			{Method: "-sd", Steps: 1000, Timeout: 300 * time.Second},
			{Method: "-cg", Steps: 2000, Timeout: 300 * time.Second},
		}},
	}
	for _, tt := range tests {
		t.Run(string(tt.strategy), func(t *testing.T) {
			got := stagesFor(tt.strategy)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d stages, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("stage %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestStagesFor_UnknownFallsBackToBalanced(t *testing.T) {
	got := stagesFor(config.Strategy("wat"))
	want := stagesFor(config.StrategyBalanced)
	if len(got) != len(want) || got[0] != want[0] {
		t.Errorf("unknown strategy should use the balanced profile, got %+v", got)
	}
}

func TestFirstLine(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"one line", "one line"},
		{"  padded  \n", "padded"},
		{"first\nsecond\nthird", "first"},
		{"\n\nleading blanks\nrest", "leading blanks"},
	}
	for _, tt := range tests {
		if got := firstLine(tt.in); got != tt.want {
			t.Errorf("firstLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewOpenBabel_Defaults(t *testing.T) {
	eng := NewOpenBabel("", "")
	if eng.ConverterBin != "obabel" || eng.MinimizerBin != "obminimize" {
		t.Errorf("defaults = %q/%q, want obabel/obminimize", eng.ConverterBin, eng.MinimizerBin)
	}
	eng = NewOpenBabel("/opt/ob/bin/obabel", "minim")
	if eng.ConverterBin != "/opt/ob/bin/obabel" || eng.MinimizerBin != "minim" {
		t.Errorf("explicit binaries not kept: %q/%q", eng.ConverterBin, eng.MinimizerBin)
	}
}
