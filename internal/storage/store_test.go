package storage

import (
	"math"
	"testing"
	"time"

	"github.com/san-kum/gridlab/internal/experiment"
)

func testResult() *experiment.Result {
	return &experiment.Result{
		Initial:  []float64{0, 0, 1, 0, 0},
		Final:    []float64{0, 0.25, 0.5, 0.25, 0},
		Steps:    1,
		Strategy: "tiled",
		Elapsed:  3 * time.Millisecond,
		Metrics:  map[string]float64{"mass": 1.0, "max_abs": 0.5},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save("heat", "heat", [][2]int{{0, 4}}, []string{"zero"}, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.ID != runID || meta.Kernel != "heat" || meta.Steps != 1 {
		t.Errorf("metadata = %+v", meta)
	}
	if meta.Strategy != "tiled" {
		t.Errorf("strategy = %s, want tiled", meta.Strategy)
	}
	if meta.Metrics["mass"] != 1.0 {
		t.Errorf("metrics = %v", meta.Metrics)
	}
	if len(meta.Extents) != 1 || meta.Extents[0] != [2]int{0, 4} {
		t.Errorf("extents = %v", meta.Extents)
	}

	initial, final, err := st.LoadField(runID)
	if err != nil {
		t.Fatalf("load field failed: %v", err)
	}
	if len(initial) != 5 || len(final) != 5 {
		t.Fatalf("got %d/%d values, want 5/5", len(initial), len(final))
	}
	if initial[2] != 1 {
		t.Errorf("initial[2] = %v, want 1", initial[2])
	}
	if math.Abs(final[1]-0.25) > 1e-9 {
		t.Errorf("final[1] = %v, want 0.25", final[1])
	}
}

func TestListOrdering(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	if _, err := st.Save("first", "heat", [][2]int{{0, 4}}, []string{"zero"}, testResult()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := st.Save("second", "blur", [][2]int{{0, 4}}, []string{"edge"}, testResult()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Timestamp.Before(runs[1].Timestamp) {
		t.Error("runs not sorted newest first")
	}
}

func TestListEmptyDir(t *testing.T) {
	st := New(t.TempDir() + "/never-created")
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if runs != nil {
		t.Errorf("expected no runs, got %v", runs)
	}
}

func TestLoadUnknownRun(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("missing_0"); err == nil {
		t.Error("expected error for unknown run")
	}
}
