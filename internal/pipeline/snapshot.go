package pipeline

import (
	"fmt"

	"github.com/roach88/hitprep/internal/batch"
	"github.com/roach88/hitprep/internal/csvio"
	"github.com/roach88/hitprep/internal/table"
)

// FileSnapshotter writes batch snapshots as indexed CSV files.
type FileSnapshotter struct {
	// Paths maps each stage to its file. Stages without a path are skipped.
	Paths map[batch.Stage]string
}

// Snapshot implements batch.Snapshotter.
func (s FileSnapshotter) Snapshot(stage batch.Stage, t *table.Table) error {
	path, ok := s.Paths[stage]
	if !ok || path == "" {
		return nil
	}
	if err := csvio.WriteFile(path, t, csvio.WriteOptions{Index: true}); err != nil {
		return fmt.Errorf("snapshot %s: %w", stage, err)
	}
	return nil
}
