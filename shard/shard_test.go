package shard

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"hexit/game"
	"hexit/utils"
)

func states(t *testing.T, n int) []game.State {
	t.Helper()
	out := make([]game.State, n)
	s, err := game.NewInitial(game.Hex, 3, game.Basic)
	require.NoError(t, err)
	for i := range out {
		out[i] = s
		if i < 8 {
			s, err = s.NextState(i)
			require.NoError(t, err)
		}
	}
	return out
}

func TestAppend(t *testing.T) {
	t.Run("numbers shards from zero", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "states")

		first, err := Append(dir, [][]string{{"0", "1"}})
		require.NoError(t, err)
		require.Equal(t, 0, first)
		second, err := Append(dir, [][]string{{"1", "0"}})
		require.NoError(t, err)
		require.Equal(t, 1, second)

		data, err := os.ReadFile(Path(dir, 0))
		require.NoError(t, err)
		require.Equal(t, "0,1\n", string(data))
	})

	t.Run("continues after the highest existing shard", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"0.csv", "3.csv", "notes.txt", "x.csv"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("keep\n"), 0644))
		}

		index, err := Append(dir, [][]string{{"1"}})
		require.NoError(t, err)
		require.Equal(t, 4, index)

		data, err := os.ReadFile(filepath.Join(dir, "3.csv"))
		require.NoError(t, err)
		require.Equal(t, "keep\n", string(data), "existing shards are untouched")
	})

	t.Run("only canonical names are shards", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"0.csv", "+7.csv", "010.csv", "-1.csv", "2.csv"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("1\n"), 0644))
		}
		indices, err := Indices(dir)
		require.NoError(t, err)
		require.Equal(t, []int{0, 2}, indices)

		next, err := NextIndex(dir)
		require.NoError(t, err)
		require.Equal(t, 3, next)
	})

	t.Run("indices of a missing directory", func(t *testing.T) {
		indices, err := Indices(filepath.Join(t.TempDir(), "none"))
		require.NoError(t, err)
		require.Empty(t, indices)
	})
}

func TestWriter(t *testing.T) {
	ctx := context.Background()

	t.Run("splits into ceil(n/c) shards", func(t *testing.T) {
		dir := t.TempDir()
		w, err := NewWriter(dir, 4)
		require.NoError(t, err)

		indices, err := w.Write(ctx, states(t, 10))
		require.NoError(t, err)
		require.Equal(t, []int{0, 1, 2}, indices)

		rows, err := Read(dir, 0, 0)
		require.NoError(t, err)
		require.Len(t, rows, 10)
		require.Equal(t, []float64{0, 0, 0, 0, 0, 0, 0, 0, 0}, rows[0])
		require.Equal(t, []float64{1, 0, 0, 0, 0, 0, 0, 0, 0}, rows[1])

		last, err := Read(dir, 2, 0)
		require.NoError(t, err)
		require.Len(t, last, 2, "the partial last chunk is written")
	})

	t.Run("a second run appends", func(t *testing.T) {
		dir := t.TempDir()
		w, err := NewWriter(dir, 3)
		require.NoError(t, err)
		_, err = w.Write(ctx, states(t, 3))
		require.NoError(t, err)
		indices, err := w.Write(ctx, states(t, 3))
		require.NoError(t, err)
		require.Equal(t, []int{1}, indices)
	})

	t.Run("rejects non-positive capacity", func(t *testing.T) {
		_, err := NewWriter(t.TempDir(), 0)
		require.Error(t, err)
	})
}

func TestWriterAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("writes shards as they fill", func(t *testing.T) {
		dir := t.TempDir()
		w, err := NewWriter(dir, 4)
		require.NoError(t, err)
		all := states(t, 10)

		indices, err := w.Add(ctx, all[:3])
		require.NoError(t, err)
		require.Empty(t, indices)
		require.Equal(t, 3, w.Pending())

		indices, err = w.Add(ctx, all[3:5])
		require.NoError(t, err)
		require.Equal(t, []int{0}, indices)
		require.Equal(t, 1, w.Pending())

		indices, err = w.Add(ctx, all[5:])
		require.NoError(t, err)
		require.Equal(t, []int{1}, indices)
		require.Equal(t, 2, w.Pending())

		indices, err = w.Flush(ctx)
		require.NoError(t, err)
		require.Equal(t, []int{2}, indices)
		require.Zero(t, w.Pending())

		got, err := ReadStates(dir, 0, 0, game.Hex, 3, game.Basic)
		require.NoError(t, err)
		require.Len(t, got, 10)
		for i := range all {
			require.True(t, game.Equal(all[i], got[i]), "state %d", i)
		}
	})

	t.Run("flush with nothing buffered", func(t *testing.T) {
		dir := t.TempDir()
		w, err := NewWriter(dir, 4)
		require.NoError(t, err)
		indices, err := w.Flush(ctx)
		require.NoError(t, err)
		require.Empty(t, indices)

		existing, err := Indices(dir)
		require.NoError(t, err)
		require.Empty(t, existing)
	})
}

func TestAppendPair(t *testing.T) {
	t.Run("matching numbers", func(t *testing.T) {
		root := t.TempDir()
		x, y := filepath.Join(root, "x"), filepath.Join(root, "y")
		for want := 0; want < 2; want++ {
			index, err := AppendPair(x, y, [][]string{{"1", "0"}}, [][]string{FloatRow([]float64{0, 1})})
			require.NoError(t, err)
			require.Equal(t, want, index)
		}

		labels, err := Read(y, 0, 0)
		require.NoError(t, err)
		require.Equal(t, [][]float64{{0, 1}, {0, 1}}, labels)
	})

	t.Run("directories out of step", func(t *testing.T) {
		root := t.TempDir()
		x, y := filepath.Join(root, "x"), filepath.Join(root, "y")
		_, err := Append(y, [][]string{{"0.5", "0.5"}})
		require.NoError(t, err)

		_, err = AppendPair(x, y, [][]string{{"1", "0"}}, [][]string{{"0", "1"}})
		require.ErrorIs(t, err, ErrUnpaired)

		indices, err := Indices(x)
		require.NoError(t, err)
		require.Empty(t, indices, "nothing is written")
	})

	t.Run("row counts must agree", func(t *testing.T) {
		root := t.TempDir()
		_, err := AppendPair(filepath.Join(root, "x"), filepath.Join(root, "y"), [][]string{{"1"}}, nil)
		require.Error(t, err)
	})
}

func TestFloatRow(t *testing.T) {
	require.Equal(t, []string{"0", "0.25", "0.75"}, FloatRow([]float64{0, 0.25, 0.75}))
}

func TestRead(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, 2)
	require.NoError(t, err)
	_, err = w.Write(context.Background(), states(t, 5))
	require.NoError(t, err)

	t.Run("caps rows", func(t *testing.T) {
		rows, err := Read(dir, 0, 3)
		require.NoError(t, err)
		require.Len(t, rows, 3)
	})

	t.Run("skips earlier shards", func(t *testing.T) {
		rows, err := Read(dir, 1, 0)
		require.NoError(t, err)
		require.Len(t, rows, 3)
	})

	t.Run("rebuilds states", func(t *testing.T) {
		got, err := ReadStates(dir, 0, 0, game.Hex, 3, game.Basic)
		require.NoError(t, err)
		want := states(t, 5)
		for i := range want {
			require.True(t, game.Equal(want[i], got[i]), "state %d", i)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := Read(filepath.Join(dir, "missing"), 0, 0)
		require.ErrorIs(t, err, utils.ErrMissingResource)
	})
}
