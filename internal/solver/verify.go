package solver

import "sort"

// CountSolutions counts the grids consistent with the given row and column
// hints, stopping early once limit is reached. It returns 0 when any line has
// no feasible placement. Callers that only care about uniqueness pass
// limit=2, so the result is 0, 1, or limit.
//
// Rows are assigned depth-first in ascending order of their option-set size
// (most constrained first, ties keeping index order). Every assigned row
// filters each column's surviving option set down to the options matching
// the row's bit in that column; an emptied column set prunes the branch. The
// filtered sets are fresh copies per branch, so backtracking is a plain
// return to the caller's unchanged sets.
func CountSolutions(rowHints, colHints [][]int, size, limit int) int {
	rowOpts := make([][]uint64, size)
	for r := 0; r < size; r++ {
		rowOpts[r] = BuildLineOptions(size, rowHints[r])
		if len(rowOpts[r]) == 0 {
			return 0
		}
	}
	colOpts := make([][]uint64, size)
	for c := 0; c < size; c++ {
		colOpts[c] = BuildLineOptions(size, colHints[c])
		if len(colOpts[c]) == 0 {
			return 0
		}
	}

	order := make([]int, size)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return len(rowOpts[order[i]]) < len(rowOpts[order[j]])
	})

	count := 0
	var assign func(depth int, cols [][]uint64)
	assign = func(depth int, cols [][]uint64) {
		if count >= limit {
			return
		}
		if depth == size {
			count++
			return
		}
		r := order[depth]
		for _, opt := range rowOpts[r] {
			next := make([][]uint64, size)
			feasible := true
			for c := 0; c < size; c++ {
				want := opt>>uint(c)&1 == 1
				kept := cols[c][:0:0]
				for _, co := range cols[c] {
					if (co>>uint(r)&1 == 1) == want {
						kept = append(kept, co)
					}
				}
				if len(kept) == 0 {
					feasible = false
					break
				}
				next[c] = kept
			}
			if !feasible {
				continue
			}
			assign(depth+1, next)
			if count >= limit {
				return
			}
		}
	}
	assign(0, colOpts)
	return count
}

// HasUniqueSolution reports whether exactly one grid satisfies the hints.
func HasUniqueSolution(rowHints, colHints [][]int, size int) bool {
	return CountSolutions(rowHints, colHints, size, 2) == 1
}
