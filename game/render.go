package game

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	p1Style    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	p2Style    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	emptyStyle = lipgloss.NewStyle().Faint(true)
	frame      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Render draws s with coloured stones inside a frame, followed by a status line.
func Render(s State) string {
	text := s.String()
	var sb strings.Builder
	for _, r := range text {
		switch r {
		case 'X':
			sb.WriteString(p1Style.Render("X"))
		case 'O':
			sb.WriteString(p2Style.Render("O"))
		case '.':
			sb.WriteString(emptyStyle.Render("."))
		default:
			sb.WriteRune(r)
		}
	}
	return frame.Render(strings.TrimRight(sb.String(), "\n")) + "\n" + status(s) + "\n"
}

func status(s State) string {
	switch {
	case s.Winner() == P1:
		return fmt.Sprintf("X wins (reward %g)", s.Reward())
	case s.Winner() == P2:
		return fmt.Sprintf("O wins (reward %g)", s.Reward())
	case s.IsTerminal():
		return "draw"
	case s.Turn() == P1:
		return "X to move"
	}
	return "O to move"
}
