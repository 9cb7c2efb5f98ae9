// Package viewer draws boards as text for the command line.
package viewer

import (
	"io"
	"strings"

	"hexsquared/game"

	"github.com/muesli/termenv"
)

var symbols = [4]string{".", "1", "2", "3"}

var colors = [4]termenv.Color{
	termenv.ANSIBrightBlack,
	termenv.ANSIRed,
	termenv.ANSIBlue,
	termenv.ANSIGreen,
}

type Renderer struct {
	output *termenv.Output
}

// NewRenderer picks colors for w. Writers that are not terminals get plain text.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{output: termenv.NewOutput(w)}
}

// NewPlainRenderer never emits escape sequences.
func NewPlainRenderer(w io.Writer) *Renderer {
	return &Renderer{output: termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))}
}

// Render lays the hexagon out as offset rows, one per r coordinate. The
// cell at last is underlined; pass -1 to skip.
func (r *Renderer) Render(b *game.Board, last int) string {
	grid := b.Grid()
	radius := b.Radius()

	rows := make([][]int, 2*radius+1)
	for i := 0; i < b.Len(); i++ {
		row := grid.Coord(i).R + radius
		rows[row] = append(rows[row], i)
	}

	var sb strings.Builder
	for k, row := range rows {
		sb.WriteString(strings.Repeat(" ", abs(k-radius)))
		for j, i := range row {
			if j > 0 {
				sb.WriteByte(' ')
			}
			owner := b.Owner(i)
			style := r.output.String(symbols[owner]).Foreground(colors[owner])
			if owner != game.None {
				style = style.Bold()
			}
			if i == last {
				style = style.Underline()
			}
			sb.WriteString(style.String())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Fprint writes the rendered board followed by a status line.
func (r *Renderer) Fprint(w io.Writer, s *game.GameState, last int) error {
	var status string
	switch winner, draw := s.Outcome(); {
	case winner != game.None:
		status = "winner: " + r.output.String(winner.String()).Foreground(colors[winner]).Bold().String()
	case draw:
		status = "draw"
	default:
		status = "to move: " + r.output.String(s.Player().String()).Foreground(colors[s.Player()]).String()
	}
	_, err := io.WriteString(w, r.Render(s.Board(), last)+status+"\n")
	return err
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
