package shard

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"hexit/game"
)

const ext = ".csv"

// ErrUnpaired is returned when a state directory and its label directory do
// not agree on the next shard number.
var ErrUnpaired = errors.New("state and label shards are out of step")

// Indices returns the shard numbers present in dir in ascending order. A
// missing directory has no shards.
func Indices(dir string) ([]int, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var indices []int
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ext) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(name, ext))
		// Only canonical names: "+7.csv" or "010.csv" are not shards.
		if err != nil || n < 0 || strconv.Itoa(n)+ext != name {
			continue
		}
		indices = append(indices, n)
	}
	slices.Sort(indices)
	return indices, nil
}

// NextIndex is one past the highest shard in dir, or 0 when there is none.
func NextIndex(dir string) (int, error) {
	indices, err := Indices(dir)
	if err != nil {
		return 0, err
	}
	if len(indices) == 0 {
		return 0, nil
	}
	return indices[len(indices)-1] + 1, nil
}

func Path(dir string, index int) string {
	return filepath.Join(dir, strconv.Itoa(index)+ext)
}

// Append writes rows to a new shard after the existing ones and returns its
// index. The directory is rescanned on every call and created if missing.
// Existing shards are never overwritten.
func Append(dir string, rows [][]string) (int, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}
	index, err := NextIndex(dir)
	if err != nil {
		return 0, err
	}
	if err := create(Path(dir, index), rows); err != nil {
		return 0, err
	}
	return index, nil
}

// AppendPair writes states to stateDir and their labels to labelDir under
// the same shard number. Both directories must currently agree on the next
// number; otherwise nothing is written and ErrUnpaired is returned.
func AppendPair(stateDir, labelDir string, states, labels [][]string) (int, error) {
	if len(states) != len(labels) {
		return 0, fmt.Errorf("%d state rows but %d label rows", len(states), len(labels))
	}
	for _, dir := range []string{stateDir, labelDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	stateIndex, err := NextIndex(stateDir)
	if err != nil {
		return 0, err
	}
	labelIndex, err := NextIndex(labelDir)
	if err != nil {
		return 0, err
	}
	if stateIndex != labelIndex {
		return 0, fmt.Errorf("%w: next state shard %d, next label shard %d", ErrUnpaired, stateIndex, labelIndex)
	}

	if err := create(Path(stateDir, stateIndex), states); err != nil {
		return 0, err
	}
	if err := create(Path(labelDir, labelIndex), labels); err != nil {
		return 0, err
	}
	return stateIndex, nil
}

// create writes rows to a new file. An existing file is never overwritten.
func create(path string, rows [][]string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("failed to create shard file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write shard %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close shard %s: %w", path, err)
	}
	return nil
}

// Writer splits states into shards of at most statesPerFile rows. Add
// buffers states and writes a shard each time the buffer fills; Flush writes
// what is left.
type Writer struct {
	dir           string
	statesPerFile int
	pending       []game.State
}

func NewWriter(dir string, statesPerFile int) (*Writer, error) {
	if statesPerFile <= 0 {
		return nil, fmt.Errorf("states per file must be positive, got %d", statesPerFile)
	}
	return &Writer{dir: dir, statesPerFile: statesPerFile}, nil
}

func (w *Writer) Dir() string { return w.dir }

// Write stores states in order across ceil(len(states)/statesPerFile) new
// shards, returning their indices. The last shard may be partial.
func (w *Writer) Write(ctx context.Context, states []game.State) ([]int, error) {
	var indices []int
	for chunk := range slices.Chunk(states, w.statesPerFile) {
		rows := make([][]string, len(chunk))
		for i, s := range chunk {
			rows[i] = Row(s)
		}
		index, err := Append(w.dir, rows)
		if err != nil {
			return indices, err
		}
		log.Ctx(ctx).Debug().Int("shard", index).Int("states", len(rows)).Str("dir", w.dir).Msg("wrote shard")
		indices = append(indices, index)
	}
	return indices, nil
}

// Add buffers states and writes every full shard. It returns the indices of
// the shards written by this call.
func (w *Writer) Add(ctx context.Context, states []game.State) ([]int, error) {
	w.pending = append(w.pending, states...)
	full := len(w.pending) / w.statesPerFile * w.statesPerFile
	if full == 0 {
		return nil, nil
	}
	indices, err := w.Write(ctx, w.pending[:full])
	w.pending = w.pending[len(indices)*w.statesPerFile:]
	return indices, err
}

// Flush writes the buffered states, if any, as one partial shard.
func (w *Writer) Flush(ctx context.Context) ([]int, error) {
	if len(w.pending) == 0 {
		return nil, nil
	}
	indices, err := w.Write(ctx, w.pending)
	if err == nil {
		w.pending = nil
	}
	return indices, err
}

// Pending is the number of buffered states not yet written.
func (w *Writer) Pending() int { return len(w.pending) }

// Row is the canonical vector of s as CSV fields.
func Row(s game.State) []string {
	board := s.Board()
	row := make([]string, len(board))
	for i, p := range board {
		row[i] = strconv.Itoa(p)
	}
	return row
}

// FloatRow formats a label vector as CSV fields.
func FloatRow(values []float64) []string {
	row := make([]string, len(values))
	for i, v := range values {
		row[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return row
}
