package svcbot

import (
	"encoding/json"
	"os"
	"time"

	"github.com/google/renameio/v2"
)

// Snapshot is the persisted form of the most recent process listing. It is
// what the health endpoint serves and what survives a bot restart.
type Snapshot struct {
	TakenAt   time.Time       `json:"taken_at"`
	Processes []ProcessRecord `json:"processes"`
}

// SnapshotWriter persists process listings to a single file. Writes are
// atomic (write-to-temp then rename), so readers never observe a torn file.
type SnapshotWriter struct {
	// Path is the snapshot file location
	Path string
}

// NewSnapshotWriter creates a SnapshotWriter targeting path.
func NewSnapshotWriter(path string) *SnapshotWriter {
	return &SnapshotWriter{Path: path}
}

// Write replaces the snapshot file with the given listing.
func (w *SnapshotWriter) Write(records []ProcessRecord) error {
	snap := Snapshot{TakenAt: time.Now().UTC(), Processes: records}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return renameio.WriteFile(w.Path, data, 0o644)
}

// ReadSnapshot loads a snapshot previously written by a SnapshotWriter.
func ReadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
