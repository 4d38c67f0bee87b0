package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Checkpoint is the restart state of a run at one time level.
type Checkpoint struct {
	Time     float64   `json:"time"`
	StepIdx  int       `json:"step_idx"`
	Solution []float64 `json:"solution"`
}

// CheckpointFile persists restart checkpoints into a single file,
// overwriting the previous one: a restart only ever needs the latest
// consistent time level.
type CheckpointFile struct {
	path string
}

func NewCheckpointFile(dir string) (*CheckpointFile, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &CheckpointFile{path: filepath.Join(dir, "restart.json")}, nil
}

func (c *CheckpointFile) WriteCheckpoint(t float64, stepIdx int, u []float64) error {
	data, err := json.Marshal(Checkpoint{Time: t, StepIdx: stepIdx, Solution: u})
	if err != nil {
		return err
	}
	// write-then-rename keeps the previous checkpoint intact on crash
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}

// Read loads the latest checkpoint, or nil if none was written yet.
func (c *CheckpointFile) Read() (*Checkpoint, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}
