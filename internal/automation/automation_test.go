package automation

import (
	"context"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/kinetics/internal/config"
	"github.com/san-kum/kinetics/internal/storage"
)

const script = `
name: gyration
description: boris preset at two field strengths
steps:
  - preset: boris
    save_as: weak
    params:
      duration: 0.05
      samples: 10
      b_z: 0.5
  - config: strong.yaml
    params:
      duration: 0.05
`

func TestRunScript(t *testing.T) {
	dir := t.TempDir()

	strong := config.GetPreset(config.KindParticle, "boris").Clone()
	strong.Name = "strong"
	strong.Samples = 10
	strong.Field.B[2] = 4
	if err := config.Save(filepath.Join(dir, "strong.yaml"), strong); err != nil {
		t.Fatalf("save config: %v", err)
	}
	path := filepath.Join(dir, "script.yaml")
	if err := os.WriteFile(path, []byte(script), 0644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	s, err := LoadScript(path)
	if err != nil {
		t.Fatalf("load script: %v", err)
	}
	if s.Name != "gyration" || len(s.Steps) != 2 {
		t.Fatalf("unexpected script %+v", s)
	}
	if s.Steps[1].Config != filepath.Join(dir, "strong.yaml") {
		t.Errorf("config path not resolved: %s", s.Steps[1].Config)
	}

	store := storage.New(filepath.Join(dir, "runs"))
	ids, err := RunScript(context.Background(), s, store, io.Discard)
	if err != nil {
		t.Fatalf("run script: %v", err)
	}
	if len(ids) != 2 || !strings.HasPrefix(ids[0], "weak_") || !strings.HasPrefix(ids[1], "strong_") {
		t.Errorf("unexpected run ids %v", ids)
	}

	runs, err := store.List()
	if err != nil || len(runs) != 2 {
		t.Fatalf("List() = %d runs, %v", len(runs), err)
	}
	meta, err := store.Load(ids[0])
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if meta.Steps != 50 {
		t.Errorf("expected 50 steps, got %d", meta.Steps)
	}
}

func TestRunScript_BadStep(t *testing.T) {
	s := &Script{Steps: []ScriptStep{{Preset: "boris", Params: map[string]float64{"gamma": 1}}}}
	ids, err := RunScript(context.Background(), s, storage.New(t.TempDir()), io.Discard)
	if err == nil || len(ids) != 0 {
		t.Errorf("expected failure before any run, got %v, %v", ids, err)
	}

	s = &Script{Steps: []ScriptStep{{}}}
	if _, err := RunScript(context.Background(), s, storage.New(t.TempDir()), io.Discard); err == nil {
		t.Error("expected error for step without preset or config")
	}
}

func TestLoadScript_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("name: nothing\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadScript(path); err == nil {
		t.Error("expected error for script without steps")
	}
}

func TestRunSweep(t *testing.T) {
	base := config.GetPreset(config.KindParticle, "boris").Clone()
	base.Duration = 0.05
	base.Samples = 10

	results, err := RunSweep(context.Background(), &Sweep{
		Base: base, Param: "dt", Min: 1e-3, Max: 5e-3, NumSteps: 3,
	}, io.Discard)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}

	want := []float64{1e-3, 3e-3, 5e-3}
	if len(results) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(results))
	}
	for i, r := range results {
		if math.Abs(r.Value-want[i]) > 1e-15 {
			t.Errorf("value %d = %v, want %v", i, r.Value, want[i])
		}
		if math.IsNaN(r.MaxDrift) {
			t.Errorf("value %v: NaN drift", r.Value)
		}
		if _, ok := r.Metrics["energy_drift"]; !ok {
			t.Errorf("value %v: missing metrics", r.Value)
		}
	}
	if base.Dt != config.GetPreset(config.KindParticle, "boris").Dt {
		t.Error("sweep modified the base config")
	}

	if _, err := RunSweep(context.Background(), &Sweep{Base: base, Param: "gamma", Min: 1, NumSteps: 1}, io.Discard); err == nil {
		t.Error("expected error for unknown parameter")
	}
}
