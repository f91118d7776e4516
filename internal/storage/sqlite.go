package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/san-kum/kinetics/internal/dynamo"
	"github.com/san-kum/kinetics/internal/sim"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id        TEXT PRIMARY KEY,
	scenario  TEXT,
	seed      INTEGER,
	dt        REAL,
	duration  REAL,
	particles INTEGER,
	max_drift REAL);
CREATE TABLE IF NOT EXISTS samples (
	run      TEXT,
	particle INTEGER,
	t        REAL,
	x        REAL,
	y        REAL,
	z        REAL,
	vx       REAL,
	vy       REAL,
	vz       REAL);
CREATE TABLE IF NOT EXISTS energy (
	run    TEXT,
	t      REAL,
	energy REAL,
	drift  REAL);
CREATE INDEX IF NOT EXISTS idx_samples ON samples (run, particle);
`

const (
	insertRun    = `INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?, ?);`
	insertSample = `INSERT INTO samples VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`
	insertEnergy = `INSERT INTO energy VALUES (?, ?, ?, ?);`
	queryTrack   = `SELECT t, x, y, z, vx, vy, vz FROM samples WHERE run = ? AND particle = ? ORDER BY t ASC;`
)

// SQLiteSink mirrors saved runs into a single SQLite database, one row per
// particle sample.
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLiteSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) Close() error { return s.db.Close() }

// Write stores the run summary, every trajectory sample and the energy
// series in one transaction.
func (s *SQLiteSink) Write(meta *RunMetadata, e dynamo.Ensemble, result *sim.Result) error {
	if _, err := e.CheckTrajectories(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if err := writeRows(tx, meta, e, result); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func writeRows(tx *sql.Tx, meta *RunMetadata, e dynamo.Ensemble, result *sim.Result) error {
	if _, err := tx.Exec(insertRun, meta.ID, meta.Scenario, int64(meta.Seed), meta.Dt, meta.Duration, len(e), result.MaxDrift); err != nil {
		return err
	}

	sample, err := tx.Prepare(insertSample)
	if err != nil {
		return err
	}
	defer sample.Close()
	for i := range e {
		for _, pt := range e[i].Trajectory {
			if _, err := sample.Exec(meta.ID, i, pt.T, pt.X, pt.Y, pt.Z, pt.VX, pt.VY, pt.VZ); err != nil {
				return err
			}
		}
	}

	energy, err := tx.Prepare(insertEnergy)
	if err != nil {
		return err
	}
	defer energy.Close()
	for i := range result.EnergyTimes {
		if _, err := energy.Exec(meta.ID, result.EnergyTimes[i], result.Energy[i], result.Drift[i]); err != nil {
			return err
		}
	}
	return nil
}

// Track reads back one particle's trajectory.
func (s *SQLiteSink) Track(runID string, particle int) ([]dynamo.PhasePoint, error) {
	rows, err := s.db.Query(queryTrack, runID, particle)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var track []dynamo.PhasePoint
	for rows.Next() {
		var pt dynamo.PhasePoint
		if err := rows.Scan(&pt.T, &pt.X, &pt.Y, &pt.Z, &pt.VX, &pt.VY, &pt.VZ); err != nil {
			return nil, err
		}
		track = append(track, pt)
	}
	return track, rows.Err()
}
