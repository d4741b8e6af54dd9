package hnmd

import "sort"

// A lineIndex maps byte offsets in a source string to 1-based
// (line, column) pairs. The line-start table is built once per scan;
// lookups then cost a binary search, keeping position reporting cheap
// no matter how many tags a document holds.
type lineIndex struct {
	starts []int
	size   int
}

func newLineIndex(src string) lineIndex {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return lineIndex{starts: starts, size: len(src)}
}

// position maps a byte offset to its 1-based (line, column). Offsets
// past the end report the position just after the last character, so
// errors raised at EOF still point somewhere useful.
func (ix lineIndex) position(offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > ix.size {
		offset = ix.size
	}
	i := sort.Search(len(ix.starts), func(i int) bool { return ix.starts[i] > offset }) - 1
	return i + 1, offset - ix.starts[i] + 1
}

// position is the one-shot form for callers without an index at hand.
func position(src string, offset int) (line, col int) {
	return newLineIndex(src).position(offset)
}
