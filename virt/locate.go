// Copyright 2026 Texelvirt contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: virt/locate.go
// Summary: Visible range location and overscan/selection policy.

package virt

import "sort"

// Range is the minimal visible index window, before overscan is applied.
// Both bounds are inclusive and clamped to [0, count-1].
type Range struct {
	Start int
	End   int
}

// locateRange finds the smallest contiguous index window covering
// [offset, offset+viewport). Spans are contiguous and sorted by Start, so
// a binary search finds the entry row in O(log n) and the end advances
// linearly, bounded by how many items fit in the viewport.
func locateRange(spans []Span, offset, viewport float64) Range {
	n := len(spans)
	if n == 0 {
		return Range{}
	}

	// Greatest index whose Start <= offset; index 0 when none qualifies.
	i := sort.Search(n, func(i int) bool { return spans[i].Start > offset })
	start := 0
	if i > 0 {
		start = i - 1
	}

	end := start
	for end < n-1 && spans[end].End < offset+viewport {
		end++
	}
	return Range{Start: start, End: end}
}

// RangeInfo is handed to a RangeExtractor to turn the located range into
// the final list of indices to render.
type RangeInfo struct {
	Start    int
	End      int
	Overscan int
	Count    int
}

// RangeExtractor selects which indices to render given the located range.
// Implementations may return a non-contiguous or unordered list (sticky
// rows, pinned headers); the virtualizer does not assume contiguity.
type RangeExtractor func(RangeInfo) []int

// DefaultRangeExtractor widens the range by Overscan on each side, clamped
// to valid indices, and returns a contiguous ascending run.
func DefaultRangeExtractor(r RangeInfo) []int {
	if r.Count <= 0 {
		return nil
	}
	start := r.Start - r.Overscan
	if start < 0 {
		start = 0
	}
	end := r.End + r.Overscan
	if end > r.Count-1 {
		end = r.Count - 1
	}
	out := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		out = append(out, i)
	}
	return out
}
