// Copyright 2026 Texelvirt contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: virt/measure.go
// Summary: Item span derivation from estimated and measured sizes.
//
// A Span is the derived geometry for one item index: where it starts, how
// tall (or wide) it is, and where it ends on the scroll axis. Spans are
// always recomputed from their inputs (count, estimator, measured cache,
// leading padding), never mutated in place.

package virt

// Span is the derived geometry for one item index. Start includes the
// list's leading padding; End == Start + Size.
type Span struct {
	Key   string
	Index int
	Start float64
	Size  float64
	End   float64
}

// deriveSpans computes spans for indices [from, count) and reuses the
// prefix of prev below from verbatim. The caller must pass the lowest
// index whose inputs (estimate, measured size) may have changed; from=0
// recomputes everything and is always correct.
//
// A size from measured always wins over the estimator for that key: the
// estimate is a placeholder until the item has actually been rendered.
func deriveSpans(prev []Span, from, count int, estimate func(int) float64, measured map[string]float64, keyOf func(int) string, paddingStart float64) []Span {
	if count <= 0 {
		return prev[:0]
	}
	if from < 0 {
		from = 0
	}
	if from > len(prev) {
		from = len(prev)
	}
	if from > count {
		from = count
	}

	spans := prev
	if cap(spans) < count {
		spans = make([]Span, count)
		copy(spans, prev[:from])
	} else {
		spans = spans[:count]
	}

	start := paddingStart
	if from > 0 {
		start = spans[from-1].End
	}
	for i := from; i < count; i++ {
		key := keyOf(i)
		size, ok := measured[key]
		if !ok {
			size = estimate(i)
		}
		spans[i] = Span{Key: key, Index: i, Start: start, Size: size, End: start + size}
		start += size
	}
	return spans
}

// totalExtent returns the full scrollable size for the given spans,
// trailing padding included. With no items it degenerates to the padding
// alone.
func totalExtent(spans []Span, paddingStart, paddingEnd float64) float64 {
	if len(spans) == 0 {
		return paddingStart + paddingEnd
	}
	return spans[len(spans)-1].End + paddingEnd
}
