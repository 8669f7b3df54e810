package batch

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"

	"github.com/roach88/hitprep/internal/config"
	"github.com/roach88/hitprep/internal/table"
)

// Stage names a diagnostic snapshot taken while building a batch.
type Stage string

const (
	// StageStratified is the balanced sample before shuffling.
	StageStratified Stage = "stratified"

	// StageShuffled is the sample after the random permutation.
	StageShuffled Stage = "shuffled"
)

// Snapshotter persists intermediate tables for debugging.
type Snapshotter interface {
	Snapshot(stage Stage, t *table.Table) error
}

// Shuffler produces a permutation of 0..n-1.
type Shuffler interface {
	Perm(n int) []int
}

// RandomShuffler draws uniform permutations from the process-wide random
// source, so every run is different.
type RandomShuffler struct{}

// Perm implements Shuffler.
func (RandomShuffler) Perm(n int) []int {
	return rand.Perm(n)
}

// SeededShuffler draws permutations from a PCG source fixed by its seed.
// Two builders with the same seed shuffle identically.
type SeededShuffler struct {
	rng *rand.Rand
}

// NewSeededShuffler creates a SeededShuffler.
func NewSeededShuffler(seed uint64) *SeededShuffler {
	return &SeededShuffler{rng: rand.New(rand.NewPCG(seed, seed))}
}

// Perm implements Shuffler.
func (s *SeededShuffler) Perm(n int) []int {
	return s.rng.Perm(n)
}

// Spec describes one batch build.
type Spec struct {
	Fields   []config.FieldMapping
	Dim1     config.Stratum
	Dim2     config.Stratum
	RowWidth int
	Count    int
}

// SpecFrom converts the batch section of a configuration.
func SpecFrom(cfg config.BatchConfig) Spec {
	return Spec{
		Fields:   cfg.Fields,
		Dim1:     cfg.Dim1,
		Dim2:     cfg.Dim2,
		RowWidth: cfg.RowWidth,
		Count:    cfg.Count,
	}
}

// Packed is the outcome of a batch build.
type Packed struct {
	// Table holds one HIT per row.
	Table *table.Table

	// Sample is the balanced sample the HITs were packed from.
	Sample *Sampled

	// Requested is the number of HITs asked for.
	Requested int

	// Shortfall is set when the sample ran out before Requested rows
	// were produced.
	Shortfall bool
}

// Builder turns annotated records into fixed-width HIT rows.
type Builder struct {
	// Shuffler permutes the sample. Defaults to RandomShuffler.
	Shuffler Shuffler

	// Snapshots receives the stratified and shuffled tables. Optional.
	Snapshots Snapshotter

	// Logger receives the shortfall warning. Defaults to slog.Default().
	Logger *slog.Logger
}

// Build validates spec against t, draws a balanced sample of
// RowWidth*Count records, shuffles it and packs it RowWidth records per
// output row.
//
// Every field source column must exist in t and Count and RowWidth must
// be positive; violations are configuration errors reported before any
// snapshot is written.
func (b *Builder) Build(t *table.Table, spec Spec) (*Packed, error) {
	for _, f := range spec.Fields {
		if !t.HasColumn(f.Source) {
			return nil, config.NewMissingColumnError(f.Source)
		}
	}
	if spec.Count < 1 {
		return nil, config.NewInvalidBatchCountError(spec.Count)
	}
	if spec.RowWidth < 1 {
		return nil, config.NewInvalidRowWidthError(spec.RowWidth)
	}

	sampled, err := Sample(t, spec.Dim1, spec.Dim2, spec.RowWidth*spec.Count)
	if err != nil {
		return nil, err
	}
	b.logger().Debug("stratified sample drawn",
		"rows", sampled.Table.Len(),
		"cap", sampled.Cap,
		"combinations", len(sampled.Strata))
	if err := b.snapshot(StageStratified, sampled.Table); err != nil {
		return nil, err
	}

	shuffled, err := sampled.Table.Permute(b.shuffler().Perm(sampled.Table.Len()))
	if err != nil {
		return nil, fmt.Errorf("shuffling sample: %w", err)
	}
	if err := b.snapshot(StageShuffled, shuffled); err != nil {
		return nil, err
	}

	out, err := Pack(shuffled, spec.Fields, spec.RowWidth, spec.Count)
	if err != nil {
		return nil, err
	}

	packed := &Packed{
		Table:     out,
		Sample:    sampled,
		Requested: spec.Count,
		Shortfall: out.Len() < spec.Count,
	}
	if packed.Shortfall {
		b.logger().Warn("batch shortfall: not enough sampled records",
			"requested", spec.Count,
			"produced", out.Len(),
			"sampled", sampled.Table.Len(),
			"row_width", spec.RowWidth)
	}
	return packed, nil
}

func (b *Builder) snapshot(stage Stage, t *table.Table) error {
	if b.Snapshots == nil {
		return nil
	}
	if err := b.Snapshots.Snapshot(stage, t); err != nil {
		return fmt.Errorf("writing %s snapshot: %w", stage, err)
	}
	return nil
}

func (b *Builder) shuffler() Shuffler {
	if b.Shuffler == nil {
		return RandomShuffler{}
	}
	return b.Shuffler
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.Default()
	}
	return b.Logger
}

// Columns returns the packed column names: for each position k in
// 1..width, every field's output name suffixed with "_k".
func Columns(fields []config.FieldMapping, width int) []string {
	cols := make([]string, 0, len(fields)*width)
	for k := 1; k <= width; k++ {
		for _, f := range fields {
			cols = append(cols, f.Output+"_"+strconv.Itoa(k))
		}
	}
	return cols
}

// Pack flattens consecutive groups of width rows of t into single rows,
// stopping after count rows. A trailing group shorter than width is
// dropped. Output rows are labelled 0..n-1.
func Pack(t *table.Table, fields []config.FieldMapping, width, count int) (*table.Table, error) {
	out, err := table.New(Columns(fields, width)...)
	if err != nil {
		return nil, fmt.Errorf("packed columns: %w", err)
	}

	for start := 0; start+width <= t.Len() && out.Len() < count; start += width {
		values := make([]string, 0, len(fields)*width)
		for k := 0; k < width; k++ {
			for _, f := range fields {
				values = append(values, t.Value(start+k, f.Source))
			}
		}
		if err := out.Append(out.Len(), values); err != nil {
			return nil, err
		}
	}
	return out, nil
}
