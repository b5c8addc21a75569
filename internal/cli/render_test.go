package cli

import (
	"strings"
	"testing"
)

func TestRenderTableAlignsColumns(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Debt", "Balance"},
		Rows: [][]string{
			{"Card", "$1.00"},
			{"---"},
			{"Car loan", "$12,000.00"},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// top, header, separator, row, separator, row, bottom
	if len(lines) != 7 {
		t.Fatalf("got %d lines, want 7:\n%s", len(lines), out)
	}
	if !strings.Contains(out, "Car loan") || !strings.Contains(out, "$12,000.00") {
		t.Errorf("missing cells:\n%s", out)
	}
}

func TestRenderTableEmpty(t *testing.T) {
	if got := RenderTable(Table{}); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestRenderSparkline(t *testing.T) {
	got := []rune(RenderSparkline([]float64{0, 50, 100}))
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0] != '▁' || got[2] != '█' {
		t.Errorf("sparkline = %q", string(got))
	}
	if RenderSparkline(nil) != "" {
		t.Error("nil series should render empty")
	}
}

func TestDownsample(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i)
	}
	got := Downsample(values, 10)
	if len(got) != 10 {
		t.Fatalf("len = %d, want 10", len(got))
	}
	if got[0] != 0 || got[9] != 99 {
		t.Errorf("ends = %v, %v; want 0, 99", got[0], got[9])
	}
	if short := Downsample(values[:5], 10); len(short) != 5 {
		t.Errorf("short series len = %d, want 5", len(short))
	}
}
