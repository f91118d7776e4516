package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/kinetics/internal/collision"
	"github.com/san-kum/kinetics/internal/config"
	"github.com/san-kum/kinetics/internal/dynamo"
	"github.com/san-kum/kinetics/internal/sim"
)

func fixture(t *testing.T) (*config.Config, dynamo.Ensemble, *sim.Result) {
	t.Helper()
	a, _ := dynamo.NewParticle(1, 1, dynamo.Vec(0, 0, 0), dynamo.Vec(1, 0, 0))
	b, _ := dynamo.NewParticle(2, 0, dynamo.Vec(1, 2, 3), dynamo.Vec(0, 0.5, 0))
	e := dynamo.Ensemble{a, b}
	for _, ts := range []float64{0.1, 0.2} {
		if err := e.RecordSample(ts); err != nil {
			t.Fatal(err)
		}
	}

	result := &sim.Result{
		EnergyTimes:   []float64{0, 0.1},
		Energy:        []float64{0.75, 0.76},
		Drift:         []float64{0, 0.01 / 0.75},
		InitialEnergy: 0.75,
		MaxDrift:      0.01 / 0.75,
		SideSpeeds:    []float64{1.5, 2.25},
		Collisions:    collision.Stats{Events: 3, Collisions: 2, Nulls: 1},
		Metrics:       map[string]float64{"energy_drift": 0.5},
		StepsTaken:    2,
		Elapsed:       1500 * time.Millisecond,
	}
	cfg := config.DefaultConfig()
	cfg.Name = "test"
	cfg.Seed = 42
	return cfg, e, result
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg, e, result := fixture(t)
	runID, err := st.Save(cfg, e, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Scenario != "test" || meta.Seed != 42 || meta.Particles != 2 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Collisions.Collisions != 2 || meta.ElapsedSec != 1.5 {
		t.Errorf("unexpected run summary %+v", meta)
	}
	if meta.Metrics["energy_drift"] != 0.5 {
		t.Errorf("expected energy_drift 0.5, got %f", meta.Metrics["energy_drift"])
	}

	times, energy, drift, err := st.LoadEnergy(runID)
	if err != nil {
		t.Fatalf("load energy failed: %v", err)
	}
	if len(times) != 2 || energy[1] != 0.76 || drift[1] != 0.01/0.75 {
		t.Errorf("energy series = %v %v %v", times, energy, drift)
	}

	speeds, err := st.LoadSideSpeeds(runID)
	if err != nil || len(speeds) != 2 || speeds[1] != 2.25 {
		t.Errorf("side speeds = %v, %v", speeds, err)
	}

	tracks, err := st.LoadTrajectories(runID)
	if err != nil {
		t.Fatalf("load trajectories failed: %v", err)
	}
	if len(tracks) != 2 || len(tracks[1]) != 3 {
		t.Fatalf("unexpected trajectory shape")
	}
	if tracks[1][2] != e[1].Trajectory[2] {
		t.Errorf("trajectory point = %+v, want %+v", tracks[1][2], e[1].Trajectory[2])
	}
}

func TestStoreSave_RejectsMismatchedTrajectories(t *testing.T) {
	st := New(t.TempDir())
	cfg, e, result := fixture(t)
	_ = e[0].Record(0.3)

	if _, err := st.Save(cfg, e, result); !errors.Is(err, dynamo.ErrTrajectoryMismatch) {
		t.Errorf("expected ErrTrajectoryMismatch, got %v", err)
	}
}

func TestStoreList_NaturalOrder(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	for _, id := range []string{"run_10", "run_9", "run_100", "run_1"} {
		if err := os.MkdirAll(filepath.Join(dir, id), 0755); err != nil {
			t.Fatal(err)
		}
		if err := writeJSON(filepath.Join(dir, id, metadataFile), RunMetadata{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(dir, "not_a_run"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	want := []string{"run_1", "run_9", "run_10", "run_100"}
	if len(runs) != len(want) {
		t.Fatalf("expected %d runs, got %d", len(want), len(runs))
	}
	for i, id := range want {
		if runs[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, runs[i].ID, id)
		}
	}
}

func TestStoreList_MissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "absent")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("List() = %v, %v", runs, err)
	}
}

func TestStoreSave_UniqueIDs(t *testing.T) {
	st := New(t.TempDir())
	cfg, e, result := fixture(t)

	first, err := st.Save(cfg, e, result)
	if err != nil {
		t.Fatal(err)
	}
	second, err := st.Save(cfg, e, result)
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Errorf("run IDs collide: %s", first)
	}
}

func TestExport(t *testing.T) {
	st := New(t.TempDir())
	cfg, e, result := fixture(t)
	runID, err := st.Save(cfg, e, result)
	if err != nil {
		t.Fatal(err)
	}

	data, err := st.Export(runID, true)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, data); err != nil {
		t.Fatal(err)
	}
	var decoded ExportData
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded.Run.ID != runID || len(decoded.Trajectories) != 2 || len(decoded.SideSpeeds) != 2 {
		t.Errorf("unexpected export %+v", decoded.Run)
	}

	path := filepath.Join(t.TempDir(), "out.json")
	if err := ExportJSON(path, data); err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("export file missing: %v", err)
	}
}

func TestSQLiteSink(t *testing.T) {
	sink, err := OpenSQLite(filepath.Join(t.TempDir(), "runs", "kinetics.db"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer sink.Close()

	_, e, result := fixture(t)
	meta := &RunMetadata{ID: "test_1", Scenario: "test", Seed: 42, Dt: 0.1, Duration: 0.2}
	if err := sink.Write(meta, e, result); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	track, err := sink.Track("test_1", 1)
	if err != nil {
		t.Fatalf("track failed: %v", err)
	}
	if len(track) != 3 || track[0] != e[1].Trajectory[0] {
		t.Errorf("track = %+v", track)
	}

	if err := sink.Write(meta, e, result); err == nil {
		t.Error("expected duplicate run id to fail")
	}
}
