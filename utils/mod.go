package utils

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/exp/constraints"
)

// ErrMissingResource is returned when a checkpoint or data directory a
// component depends on does not exist.
var ErrMissingResource = errors.New("missing resource")

type Number interface {
	constraints.Integer | constraints.Float
}

func Sum[T Number](values []T) T {
	var sum T
	for _, v := range values {
		sum += v
	}
	return sum
}

func CountNonZero[T Number](values []T) int {
	count := 0
	for _, v := range values {
		if v != 0 {
			count++
		}
	}
	return count
}

func ToFloats[T constraints.Integer](values []T) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}

// RequireDir fails with ErrMissingResource unless path is an existing directory.
func RequireDir(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s does not exist", ErrMissingResource, path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrMissingResource, path)
	}
	return nil
}
