// Package solver implements the combinatorial core of nonogram generation:
// deriving hint sequences from lines, enumerating every bit-encoded placement
// of a hint sequence in a line, and counting the grids consistent with a full
// hint set.
package solver

// MaxLineLength is the longest line the bit-vector encoding supports.
const MaxLineLength = 64

// DeriveHints scans a line left to right and returns the length of each
// maximal run of filled cells. A line with no filled cells yields nil.
func DeriveHints(line []bool) []int {
	var hints []int
	run := 0
	for _, filled := range line {
		if filled {
			run++
			continue
		}
		if run > 0 {
			hints = append(hints, run)
			run = 0
		}
	}
	if run > 0 {
		hints = append(hints, run)
	}
	return hints
}

// LineToBits encodes a line as a bit vector, bit i set ⇔ cell i filled.
func LineToBits(line []bool) uint64 {
	var bits uint64
	for i, filled := range line {
		if filled {
			bits |= 1 << uint(i)
		}
	}
	return bits
}

// BitsToLine decodes a bit vector back into a line of the given length.
func BitsToLine(bits uint64, length int) []bool {
	line := make([]bool, length)
	for i := range line {
		line[i] = bits>>uint(i)&1 == 1
	}
	return line
}

// BuildLineOptions enumerates every placement of the hint blocks in a line of
// the given length, each encoded as a bit vector. Adjacent blocks keep at
// least one empty cell between them. An empty hint sequence has exactly one
// option, the all-empty line. If the blocks cannot fit the result is empty,
// which callers must treat as proof the line (and so the whole puzzle) is
// infeasible.
//
// length must not exceed MaxLineLength.
func BuildLineOptions(length int, hints []int) []uint64 {
	if length > MaxLineLength {
		panic("solver: line length exceeds 64")
	}
	if len(hints) == 0 {
		return []uint64{0}
	}
	if minSpan(hints) > length {
		return nil
	}

	var options []uint64
	var place func(idx, start int, acc uint64)
	place = func(idx, start int, acc uint64) {
		block := hints[idx]
		last := idx == len(hints)-1
		// Latest start that still leaves room for every remaining block
		// plus one mandatory gap each.
		limit := length - block
		if !last {
			limit = length - block - 1 - minSpan(hints[idx+1:])
		}
		for s := start; s <= limit; s++ {
			mask := (uint64(1)<<uint(block) - 1) << uint(s)
			if last {
				options = append(options, acc|mask)
			} else {
				place(idx+1, s+block+1, acc|mask)
			}
		}
	}
	place(0, 0, 0)
	return options
}

// minSpan is the minimum number of cells the blocks occupy: their sum plus
// one gap between each adjacent pair.
func minSpan(hints []int) int {
	if len(hints) == 0 {
		return 0
	}
	span := len(hints) - 1
	for _, h := range hints {
		span += h
	}
	return span
}
