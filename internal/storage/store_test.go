package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/glide/internal/config"
	"github.com/san-kum/glide/internal/experiment"
	"github.com/san-kum/glide/internal/metrics"
	"github.com/san-kum/glide/internal/physics"
)

func testResult(name string) *experiment.Result {
	cfg, _ := config.Preset("engineering")
	return &experiment.Result{
		Name:     name,
		Config:   cfg,
		Duration: 0.01,
		Steps:    2,
		Summary:  metrics.Summary{Kinetic: 1, Total: 10, SoC: 0.9},
		Samples: []metrics.Sample{
			{Time: 0, Kinetic: 1, Elastic: 2, Gravitational: -3, Battery: 100, Total: 100, SoC: 1},
			{Time: 0.005, Kinetic: 1.5, Elastic: 2, Gravitational: -3, Battery: 99.5, Total: 100, SoC: 0.995},
		},
		Metrics: map[string]float64{"energy_drift": 0.01},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(testResult("engineering"))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "engineering_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Preset != "engineering" || meta.Steps != 2 || meta.Dt != 0.005 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Metrics["energy_drift"] != 0.01 {
		t.Errorf("expected drift 0.01, got %f", meta.Metrics["energy_drift"])
	}
	if meta.Config == nil || meta.Config.EDTMode != physics.EDTBoost {
		t.Errorf("config not round-tripped: %+v", meta.Config)
	}

	ledger, err := st.LoadLedger(runID)
	if err != nil {
		t.Fatalf("load ledger failed: %v", err)
	}
	if len(ledger) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(ledger))
	}
	if ledger[1].Battery != 99.5 || ledger[1].Gravitational != -3 {
		t.Errorf("unexpected sample %+v", ledger[1])
	}
}

func TestStoreLedgerFormat(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(testResult("x"))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.CopyLedger(runID, &buf); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "time,E_kin,E_elastic,E_grav,E_batt,E_total,SoC" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[2] != "0.005,1.5,2,-3,99.5,100,0.995" {
		t.Errorf("row = %q", lines[2])
	}
}

func TestStoreLedgerKeepsFullPrecision(t *testing.T) {
	st := New(t.TempDir())
	res := testResult("precise")
	res.Samples = []metrics.Sample{
		{Time: 0.01, Kinetic: 3.2e-07, Elastic: 4.9e-08, Gravitational: -1.0 / 3, Battery: 499999.99999995, Total: 499999.6666666, SoC: 0.9999999},
	}
	runID, err := st.Save(res)
	if err != nil {
		t.Fatal(err)
	}

	ledger, err := st.LoadLedger(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(ledger) != 1 {
		t.Fatalf("expected 1 sample, got %d", len(ledger))
	}
	got, want := ledger[0], res.Samples[0]
	if got.Time != want.Time || got.Kinetic != want.Kinetic || got.Elastic != want.Elastic ||
		got.Gravitational != want.Gravitational || got.Battery != want.Battery ||
		got.Total != want.Total || got.SoC != want.SoC {
		t.Errorf("ledger lost precision:\n got %+v\nwant %+v", got, want)
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"a", "b"} {
		if _, err := st.Save(testResult(name)); err != nil {
			t.Fatal(err)
		}
	}
	// stray directory without metadata is ignored
	if err := os.MkdirAll(filepath.Join(st.baseDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Preset != "a" {
		t.Errorf("expected oldest first, got %s", runs[0].Preset)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "missing"))
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("got %v, %v", runs, err)
	}
}

func TestLoadMissingRun(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); err == nil {
		t.Error("expected error")
	}
	if _, err := st.LoadLedger("nope"); err == nil {
		t.Error("expected error")
	}
}

func TestExportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := ExportCSV(path, testResult("x").Samples); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(data), "\n"); got != 3 {
		t.Errorf("expected 3 lines, got %d", got)
	}
}
