package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/kinetics/internal/dynamo"
)

type ExportData struct {
	Run          RunMetadata           `json:"run"`
	EnergyTimes  []float64             `json:"energy_times"`
	Energy       []float64             `json:"energy"`
	Drift        []float64             `json:"drift"`
	SideSpeeds   []float64             `json:"side_speeds"`
	Trajectories [][]dynamo.PhasePoint `json:"trajectories,omitempty"`
}

// Export gathers everything stored for a run. Trajectories are skipped when
// withTrajectories is false since they dominate the size.
func (s *Store) Export(runID string, withTrajectories bool) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	data := &ExportData{Run: *meta}

	if data.EnergyTimes, data.Energy, data.Drift, err = s.LoadEnergy(runID); err != nil {
		return nil, err
	}
	if data.SideSpeeds, err = s.LoadSideSpeeds(runID); err != nil {
		return nil, err
	}
	if withTrajectories {
		if data.Trajectories, err = s.LoadTrajectories(runID); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func WriteJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, data *ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, data)
}
