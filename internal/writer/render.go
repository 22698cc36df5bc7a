package writer

import (
	"fmt"
	"strings"

	"github.com/nonoforge/nonoforge/pkg/models"
)

// Render formats a puzzle as a text grid with column hints stacked above and
// row hints to the left. With revealSolution the filled cells are shown,
// otherwise the grid is blank for solving by hand.
func Render(p *models.Puzzle, revealSolution bool) string {
	rowLabels := make([]string, p.Size)
	labelWidth := 0
	for r, hints := range p.Rows {
		rowLabels[r] = hintLabel(hints)
		if len(rowLabels[r]) > labelWidth {
			labelWidth = len(rowLabels[r])
		}
	}

	colDepth := 0
	for _, hints := range p.Cols {
		if n := hintCount(hints); n > colDepth {
			colDepth = n
		}
	}

	var b strings.Builder

	// Column hints, bottom-aligned so the last hint sits just above the grid.
	for line := 0; line < colDepth; line++ {
		b.WriteString(strings.Repeat(" ", labelWidth+1))
		for _, hints := range p.Cols {
			n := hintCount(hints)
			idx := line - (colDepth - n)
			switch {
			case idx < 0:
				b.WriteString("   ")
			case len(hints) == 0:
				b.WriteString("  0")
			default:
				fmt.Fprintf(&b, "%3d", hints[idx])
			}
		}
		b.WriteByte('\n')
	}

	for r := 0; r < p.Size; r++ {
		fmt.Fprintf(&b, "%*s ", labelWidth, rowLabels[r])
		for c := 0; c < p.Size; c++ {
			if revealSolution && p.Solution[r][c] {
				b.WriteString("  #")
			} else {
				b.WriteString("  .")
			}
		}
		b.WriteByte('\n')
	}

	return b.String()
}

func hintLabel(hints []int) string {
	if len(hints) == 0 {
		return "0"
	}
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = fmt.Sprint(h)
	}
	return strings.Join(parts, " ")
}

func hintCount(hints []int) int {
	if len(hints) == 0 {
		return 1 // rendered as a single 0
	}
	return len(hints)
}
