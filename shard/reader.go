package shard

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"hexit/game"
	"hexit/utils"
)

// Read returns up to maxRows rows from the shards numbered beginFrom and
// above, in shard order. maxRows <= 0 reads everything.
func Read(dir string, beginFrom, maxRows int) ([][]float64, error) {
	if err := utils.RequireDir(dir); err != nil {
		return nil, err
	}
	indices, err := Indices(dir)
	if err != nil {
		return nil, err
	}

	var rows [][]float64
	for _, index := range indices {
		if index < beginFrom {
			continue
		}
		limit := -1
		if maxRows > 0 {
			limit = maxRows - len(rows)
			if limit == 0 {
				break
			}
		}
		read, err := readFile(Path(dir, index), limit)
		if err != nil {
			return nil, err
		}
		rows = append(rows, read...)
	}
	return rows, nil
}

// ReadStates is Read followed by reconstruction of every row.
func ReadStates(dir string, beginFrom, maxRows int, kind game.Kind, dim int, policy game.RewardPolicy) ([]game.State, error) {
	rows, err := Read(dir, beginFrom, maxRows)
	if err != nil {
		return nil, err
	}
	states := make([]game.State, len(rows))
	for i, row := range rows {
		s, err := game.FromVector(kind, dim, row, policy)
		if err != nil {
			return nil, fmt.Errorf("failed to rebuild row %d: %w", i, err)
		}
		states[i] = s
	}
	return states, nil
}

func readFile(path string, limit int) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open shard: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read shard %s: %w", path, err)
	}
	if limit >= 0 && len(records) > limit {
		records = records[:limit]
	}

	rows := make([][]float64, len(records))
	for i, record := range records {
		row := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("failed to parse %s line %d: %w", path, i+1, err)
			}
			row[j] = v
		}
		rows[i] = row
	}
	return rows, nil
}
