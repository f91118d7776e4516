package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/facette/natsort"

	"github.com/san-kum/kinetics/internal/collision"
	"github.com/san-kum/kinetics/internal/config"
	"github.com/san-kum/kinetics/internal/dynamo"
	"github.com/san-kum/kinetics/internal/sim"
)

const (
	metadataFile    = "metadata.json"
	trajectoryFile  = "trajectories.csv"
	energyFile      = "energy.csv"
	sideSpeedsFile  = "side_speeds.csv"
	phaseComponents = 6
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID            string             `json:"id"`
	Scenario      string             `json:"scenario"`
	Kind          string             `json:"kind"`
	Timestamp     time.Time          `json:"timestamp"`
	Seed          uint64             `json:"seed"`
	Dt            float64            `json:"dt"`
	Duration      float64            `json:"duration"`
	Samples       int                `json:"samples"`
	Integrator    string             `json:"integrator"`
	Particles     int                `json:"particles"`
	Steps         int                `json:"steps"`
	InitialEnergy float64            `json:"initial_energy"`
	MaxDrift      float64            `json:"max_drift"`
	Collisions    collision.Stats    `json:"collisions"`
	SideSamples   int                `json:"side_samples"`
	ElapsedSec    float64            `json:"elapsed_sec"`
	Metrics       map[string]float64 `json:"metrics"`
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// nextRunID picks <name>_<unix> and appends a counter when that directory
// already exists.
func (s *Store) nextRunID(name string) string {
	base := fmt.Sprintf("%s_%d", name, time.Now().Unix())
	id := base
	for i := 2; ; i++ {
		if _, err := os.Stat(filepath.Join(s.baseDir, id)); os.IsNotExist(err) {
			return id
		}
		id = fmt.Sprintf("%s_%d", base, i)
	}
}

// Save writes one run directory: metadata, the wide trajectory table, the
// energy series and the sampled side speeds. Trajectories must have been
// recorded in lock-step.
func (s *Store) Save(cfg *config.Config, e dynamo.Ensemble, result *sim.Result) (string, error) {
	if _, err := e.CheckTrajectories(); err != nil {
		return "", err
	}

	runID := s.nextRunID(cfg.Name)
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:            runID,
		Scenario:      cfg.Name,
		Kind:          cfg.Kind,
		Timestamp:     time.Now(),
		Seed:          cfg.Seed,
		Dt:            cfg.Dt,
		Duration:      cfg.Duration,
		Samples:       cfg.Samples,
		Integrator:    cfg.Integrator,
		Particles:     len(e),
		Steps:         result.StepsTaken,
		InitialEnergy: result.InitialEnergy,
		MaxDrift:      result.MaxDrift,
		Collisions:    result.Collisions,
		SideSamples:   len(result.SideSpeeds),
		ElapsedSec:    result.Elapsed.Seconds(),
		Metrics:       result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeTrajectories(filepath.Join(runDir, trajectoryFile), e); err != nil {
		return "", err
	}
	if err := writeEnergy(filepath.Join(runDir, energyFile), result); err != nil {
		return "", err
	}
	if err := writeColumn(filepath.Join(runDir, sideSpeedsFile), result.SideSpeeds); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, fill func(w *csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := fill(w); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// writeTrajectories emits one row per sample: time followed by
// x,y,z,vx,vy,vz of every particle in index order.
func writeTrajectories(path string, e dynamo.Ensemble) error {
	return writeCSV(path, func(w *csv.Writer) error {
		header := []string{"time"}
		for i := range e {
			for _, c := range []string{"x", "y", "z", "vx", "vy", "vz"} {
				header = append(header, fmt.Sprintf("%s%d", c, i))
			}
		}
		if err := w.Write(header); err != nil {
			return err
		}
		if len(e) == 0 {
			return nil
		}

		row := make([]string, 1+phaseComponents*len(e))
		for k := range e[0].Trajectory {
			row[0] = formatFloat(e[0].Trajectory[k].T)
			for i := range e {
				pt := e[i].Trajectory[k]
				for j, v := range []float64{pt.X, pt.Y, pt.Z, pt.VX, pt.VY, pt.VZ} {
					row[1+phaseComponents*i+j] = formatFloat(v)
				}
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeEnergy(path string, result *sim.Result) error {
	return writeCSV(path, func(w *csv.Writer) error {
		if err := w.Write([]string{"time", "energy", "drift"}); err != nil {
			return err
		}
		for i := range result.EnergyTimes {
			row := []string{
				formatFloat(result.EnergyTimes[i]),
				formatFloat(result.Energy[i]),
				formatFloat(result.Drift[i]),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeColumn(path string, values []float64) error {
	return writeCSV(path, func(w *csv.Writer) error {
		for _, v := range values {
			if err := w.Write([]string{formatFloat(v)}); err != nil {
				return err
			}
		}
		return nil
	})
}

// List returns all runs in natural order of their IDs.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return natsort.Compare(runs[i].ID, runs[j].ID)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) readRecords(runID, name string) ([][]string, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func parseRow(record []string) ([]float64, error) {
	row := make([]float64, len(record))
	for i, field := range record {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		row[i] = v
	}
	return row, nil
}

// LoadEnergy returns the sampled times, total energies and relative drifts.
func (s *Store) LoadEnergy(runID string) (times, energy, drift []float64, err error) {
	records, err := s.readRecords(runID, energyFile)
	if err != nil {
		return nil, nil, nil, err
	}
	for i := 1; i < len(records); i++ {
		row, err := parseRow(records[i])
		if err != nil || len(row) != 3 {
			return nil, nil, nil, fmt.Errorf("%s line %d: malformed row", energyFile, i+1)
		}
		times = append(times, row[0])
		energy = append(energy, row[1])
		drift = append(drift, row[2])
	}
	return times, energy, drift, nil
}

func (s *Store) LoadSideSpeeds(runID string) ([]float64, error) {
	records, err := s.readRecords(runID, sideSpeedsFile)
	if err != nil {
		return nil, err
	}
	speeds := make([]float64, 0, len(records))
	for i, record := range records {
		row, err := parseRow(record)
		if err != nil || len(row) != 1 {
			return nil, fmt.Errorf("%s line %d: malformed row", sideSpeedsFile, i+1)
		}
		speeds = append(speeds, row[0])
	}
	return speeds, nil
}

// LoadTrajectories returns the per-particle phase points of a run.
func (s *Store) LoadTrajectories(runID string) ([][]dynamo.PhasePoint, error) {
	records, err := s.readRecords(runID, trajectoryFile)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: missing header", trajectoryFile)
	}

	n := (len(records[0]) - 1) / phaseComponents
	trajectories := make([][]dynamo.PhasePoint, n)
	for k := 1; k < len(records); k++ {
		row, err := parseRow(records[k])
		if err != nil || len(row) != 1+phaseComponents*n {
			return nil, fmt.Errorf("%s line %d: malformed row", trajectoryFile, k+1)
		}
		for i := 0; i < n; i++ {
			c := row[1+phaseComponents*i:]
			trajectories[i] = append(trajectories[i], dynamo.PhasePoint{
				X: c[0], Y: c[1], Z: c[2], VX: c[3], VY: c[4], VZ: c[5], T: row[0],
			})
		}
	}
	return trajectories, nil
}
