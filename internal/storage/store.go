// Package storage persists simulation runs: metadata, the recorded
// trajectory, and restart checkpoints.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/porosim/porosim/internal/driver"
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
	ID           string        `json:"id"`
	Model        string        `json:"model"`
	Timestamp    time.Time     `json:"timestamp"`
	EndTime      float64       `json:"end_time"`
	Steps        int           `json:"steps"`
	Retries      int           `json:"retries"`
	AssembleTime time.Duration `json:"assemble_time"`
	SolveTime    time.Duration `json:"solve_time"`
	UpdateTime   time.Duration `json:"update_time"`
}

// Save writes one run into its own directory: metadata.json plus a
// solution.csv holding time, step size, iteration count, and the
// recorded degrees of freedom per output step.
func (s *Store) Save(model string, result *driver.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", model, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	endTime := 0.0
	if len(result.Times) > 0 {
		endTime = result.Times[len(result.Times)-1]
	}
	meta := RunMetadata{
		ID:           runID,
		Model:        model,
		Timestamp:    time.Now(),
		EndTime:      endTime,
		Steps:        result.Steps,
		Retries:      result.Retries,
		AssembleTime: result.Totals.Assemble,
		SolveTime:    result.Totals.Solve,
		UpdateTime:   result.Totals.Update,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "solution.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if len(result.Solutions) == 0 {
		return runID, nil
	}

	header := []string{"time", "dt", "iterations"}
	for i := range result.Solutions[0] {
		header = append(header, fmt.Sprintf("u%d", i))
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for i := range result.Solutions {
		row := []string{
			strconv.FormatFloat(result.Times[i], 'g', -1, 64),
			strconv.FormatFloat(result.StepSizes[i], 'g', -1, 64),
			strconv.Itoa(result.Iterations[i]),
		}
		for _, val := range result.Solutions[i] {
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

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
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSolution reads back the recorded trajectory of a run.
func (s *Store) LoadSolution(runID string) (times, stepSizes []float64, solutions [][]float64, err error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "solution.csv"))
	if err != nil {
		return nil, nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(records) < 2 {
		return nil, nil, nil, nil
	}

	for _, record := range records[1:] {
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("parsing %q: %w", record[0], err)
		}
		dt, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("parsing %q: %w", record[1], err)
		}
		u := make([]float64, 0, len(record)-3)
		for _, field := range record[3:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("parsing %q: %w", field, err)
			}
			u = append(u, v)
		}
		times = append(times, t)
		stepSizes = append(stepSizes, dt)
		solutions = append(solutions, u)
	}
	return times, stepSizes, solutions, nil
}
