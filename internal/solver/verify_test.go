package solver

import "testing"

func TestCountSolutions_UniquePuzzle(t *testing.T) {
	rows := [][]int{{2}, {1, 1, 1}, {5}, {1, 1}, {1, 1}}
	cols := [][]int{{2, 1}, {1, 2}, {3}, {2}, {1, 1, 1}}

	if got := CountSolutions(rows, cols, 5, 2); got != 1 {
		t.Errorf("CountSolutions = %d, want 1", got)
	}
	if !HasUniqueSolution(rows, cols, 5) {
		t.Error("HasUniqueSolution = false, want true")
	}
}

func TestCountSolutions_Infeasible(t *testing.T) {
	tests := []struct {
		name string
		rows [][]int
		cols [][]int
		size int
	}{
		{
			name: "row_block_too_long",
			rows: [][]int{{3}, nil},
			cols: [][]int{nil, nil},
			size: 2,
		},
		{
			name: "rows_and_cols_disagree",
			rows: [][]int{{2}, nil},
			cols: [][]int{nil, nil},
			size: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountSolutions(tt.rows, tt.cols, tt.size, 2); got != 0 {
				t.Errorf("CountSolutions = %d, want 0", got)
			}
		})
	}
}

func TestCountSolutions_Ambiguous(t *testing.T) {
	// Two single cells on a diagonal: the mirrored grid also satisfies the
	// hints, so the count caps at the limit.
	rows := [][]int{{1}, {1}}
	cols := [][]int{{1}, {1}}

	if got := CountSolutions(rows, cols, 2, 2); got != 2 {
		t.Errorf("CountSolutions = %d, want 2", got)
	}
	if HasUniqueSolution(rows, cols, 2) {
		t.Error("HasUniqueSolution = true for an ambiguous puzzle")
	}
}

func TestCountSolutions_LimitCap(t *testing.T) {
	// 3x3 permutation matrices: six solutions in total.
	rows := [][]int{{1}, {1}, {1}}
	cols := [][]int{{1}, {1}, {1}}

	if got := CountSolutions(rows, cols, 3, 2); got != 2 {
		t.Errorf("limit=2: CountSolutions = %d, want 2", got)
	}
	if got := CountSolutions(rows, cols, 3, 10); got != 6 {
		t.Errorf("limit=10: CountSolutions = %d, want 6", got)
	}
}

func TestCountSolutions_BlankGrid(t *testing.T) {
	rows := [][]int{nil, nil, nil}
	cols := [][]int{nil, nil, nil}

	if got := CountSolutions(rows, cols, 3, 2); got != 1 {
		t.Errorf("CountSolutions = %d, want 1 (the all-empty grid)", got)
	}
}

func TestCountSolutions_FullGrid(t *testing.T) {
	rows := [][]int{{4}, {4}, {4}, {4}}
	cols := [][]int{{4}, {4}, {4}, {4}}

	if !HasUniqueSolution(rows, cols, 4) {
		t.Error("fully filled grid should be unique")
	}
}
