package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"hexit/game"
)

// Interactive asks a human for moves, reading "row col" or a single position
// per line.
type Interactive struct {
	in     *bufio.Scanner
	out    io.Writer
	render func(game.State) string
}

var _ Agent = (*Interactive)(nil)

func NewInteractive(in io.Reader, out io.Writer) *Interactive {
	return &Interactive{
		in:     bufio.NewScanner(in),
		out:    out,
		render: game.Render,
	}
}

func (a *Interactive) ChooseAction(ctx context.Context, state game.State) (int, error) {
	fmt.Fprint(a.out, a.render(state))
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		fmt.Fprintf(a.out, "move (row col) [%d/%d]: ", attempt, MaxAttempts)
		if !a.in.Scan() {
			if err := a.in.Err(); err != nil {
				return 0, fmt.Errorf("failed to read move: %w", err)
			}
			return 0, io.ErrUnexpectedEOF
		}
		action, err := parseMove(a.in.Text(), state.Dimension())
		if err == nil && !state.IsLegalAction(action) {
			err = fmt.Errorf("%w: %d", game.ErrIllegalAction, action)
		}
		if err != nil {
			log.Ctx(ctx).Debug().Err(err).Int("attempt", attempt).Msg("rejected move")
			fmt.Fprintf(a.out, "invalid move: %v\n", err)
			continue
		}
		return action, nil
	}
	return 0, fmt.Errorf("%w: %d attempts", ErrTooManyIllegal, MaxAttempts)
}

func (a *Interactive) ChooseActionBatch(ctx context.Context, states []game.State) ([]int, error) {
	return chooseEach(ctx, states, a.ChooseAction)
}

func parseMove(line string, dim int) (int, error) {
	fields := strings.Fields(line)
	nums := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", f)
		}
		nums[i] = n
	}
	switch len(nums) {
	case 1:
		return nums[0], nil
	case 2:
		if nums[0] < 0 || nums[0] >= dim || nums[1] < 0 || nums[1] >= dim {
			return 0, fmt.Errorf("row and column must be in [0, %d)", dim)
		}
		return nums[0]*dim + nums[1], nil
	}
	return 0, fmt.Errorf("expected \"row col\" or a position, got %q", line)
}
