package models

// Grid is a square boolean picture: true means the cell is filled.
type Grid [][]bool

// NewGrid allocates an empty size×size grid.
func NewGrid(size int) Grid {
	g := make(Grid, size)
	for i := range g {
		g[i] = make([]bool, size)
	}
	return g
}

// Size returns the side length of the grid.
func (g Grid) Size() int {
	return len(g)
}

// Column returns column c as a line, top to bottom.
func (g Grid) Column(c int) []bool {
	col := make([]bool, len(g))
	for r := range g {
		col[r] = g[r][c]
	}
	return col
}

// FilledCount returns the number of filled cells.
func (g Grid) FilledCount() int {
	n := 0
	for _, row := range g {
		for _, cell := range row {
			if cell {
				n++
			}
		}
	}
	return n
}

// Clone returns a deep copy of the grid.
func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	for i, row := range g {
		out[i] = append([]bool(nil), row...)
	}
	return out
}

// Puzzle is a complete nonogram: hints for every row and column plus the
// solution grid they were derived from. Instances are immutable once built.
type Puzzle struct {
	Name     string  `json:"name"`
	Size     int     `json:"size"`
	Rows     [][]int `json:"rows"`
	Cols     [][]int `json:"cols"`
	Solution Grid    `json:"solution"`
}
