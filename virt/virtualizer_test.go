// Copyright 2026 Texelvirt contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package virt

import (
	"strconv"
	"testing"
	"time"
)

// elementSetup wires a virtualizer to a fake element surface. The
// viewport stays at the initial value unless the test fires a resize.
func elementSetup(viewport float64, opts Options) (*fakeSurface, *Virtualizer) {
	surf := &fakeSurface{}
	sc := NewElementScroller(ElementConfig{
		InitialViewport: viewport,
		ObserveScroll:   surf.observeScroll,
		ObserveSize:     surf.observeSize,
	})
	sc.SetTarget(surf)
	return surf, New(sc, opts)
}

func indicesOf(items []VirtualItem) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.Index
	}
	return out
}

func wantIndices(t *testing.T, items []VirtualItem, first, last int) {
	t.Helper()
	got := indicesOf(items)
	want := make([]int, 0, last-first+1)
	for i := first; i <= last; i++ {
		want = append(want, i)
	}
	if len(got) != len(want) {
		t.Fatalf("indices = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("indices = %v, want %v", got, want)
		}
	}
}

// renderLoop simulates the host's render cycle: take the items, report
// the real size for each, repeat until the item list stops changing.
func renderLoop(t *testing.T, v *Virtualizer, realSize float64) []VirtualItem {
	t.Helper()
	var prev []int
	for pass := 0; pass < 20; pass++ {
		items := v.Items()
		for _, it := range items {
			it.Measure(realSize)
		}
		got := indicesOf(v.Items())
		if len(got) == len(prev) {
			same := true
			for i := range got {
				if got[i] != prev[i] {
					same = false
					break
				}
			}
			if same {
				return v.Items()
			}
		}
		prev = got
	}
	t.Fatalf("render loop did not settle")
	return nil
}

func TestItems_DefaultEstimateWithOverscan(t *testing.T) {
	_, v := elementSetup(200, Options{Count: 200, Overscan: 1})
	defer v.Close()

	// 4 rows of 50 fill the 200 viewport; one overscan row follows.
	wantIndices(t, v.Items(), 0, 4)

	if got := v.TotalSize(); got != 200*50 {
		t.Errorf("TotalSize = %v, want %v", got, 200*50)
	}
}

func TestItems_NoOverscan(t *testing.T) {
	_, v := elementSetup(200, Options{Count: 200})
	defer v.Close()
	wantIndices(t, v.Items(), 0, 3)
}

func TestItems_EmptyList(t *testing.T) {
	_, v := elementSetup(200, Options{Count: 0, PaddingStart: 4, PaddingEnd: 6})
	defer v.Close()
	if items := v.Items(); len(items) != 0 {
		t.Errorf("items = %v, want none", indicesOf(items))
	}
	if got := v.TotalSize(); got != 10 {
		t.Errorf("TotalSize = %v, want 10", got)
	}
}

func TestMeasure_SmallerRealSizesExposeMoreItems(t *testing.T) {
	_, v := elementSetup(200, Options{Count: 200, Overscan: 1})
	defer v.Close()

	before := v.TotalSize()
	items := renderLoop(t, v, 25)

	// With 25-tall rows, 8 fill the viewport plus one overscan row.
	wantIndices(t, items, 0, 8)
	if after := v.TotalSize(); after >= before {
		t.Errorf("TotalSize = %v, want shrink below %v", after, before)
	}
}

func TestMeasure_ScrolledWindowShifts(t *testing.T) {
	surf, v := elementSetup(200, Options{Count: 200, Overscan: 1})
	defer v.Close()

	renderLoop(t, v, 25)
	surf.SetScrollOffset(75)
	items := renderLoop(t, v, 25)

	// Index 1 scrolled out, 2 is first visible; 11 last, 12 excluded.
	wantIndices(t, items, 2, 11)
}

func TestMeasure_AboveViewportCompensatesOffset(t *testing.T) {
	surf, v := elementSetup(200, Options{Count: 100, Overscan: 1})
	defer v.Close()

	surf.SetScrollOffset(100)
	items := v.Items() // rows 1..6 (2..5 plus overscan)
	wantIndices(t, items, 1, 6)

	// Row 1 starts at 50, above the fold. Growing it by 20 must push the
	// offset by the same delta so content does not jump.
	items[0].Measure(70)
	if surf.offset != 120 {
		t.Errorf("offset = %v, want 120", surf.offset)
	}

	// Row 3 now starts at 170, inside the viewport: no compensation.
	for _, it := range v.Items() {
		if it.Index == 3 {
			it.Measure(70)
		}
	}
	if surf.offset != 120 {
		t.Errorf("offset = %v, want 120 (unchanged)", surf.offset)
	}
	for _, it := range v.Items() {
		if it.Index == 3 && it.Size != 70 {
			t.Errorf("row 3 size = %v, want 70", it.Size)
		}
	}
}

func TestMeasure_SameSizeIsNoop(t *testing.T) {
	surf, v := elementSetup(200, Options{Count: 10})
	defer v.Close()

	items := v.Items()
	items[0].Measure(50) // equals the estimate
	if len(surf.sets) != 0 {
		t.Errorf("offset writes = %v, want none", surf.sets)
	}
	if got := v.TotalSize(); got != 500 {
		t.Errorf("TotalSize = %v, want 500", got)
	}
}

func TestCustomRangeExtractor_ForcesIndices(t *testing.T) {
	surf, v := elementSetup(200, Options{
		Count:          1000,
		RangeExtractor: func(RangeInfo) []int { return []int{0, 1} },
	})
	defer v.Close()

	wantIndices(t, v.Items(), 0, 1)
	surf.SetScrollOffset(10000)
	wantIndices(t, v.Items(), 0, 1)
}

func TestCustomRangeExtractor_OutOfBoundsIndicesDropped(t *testing.T) {
	_, v := elementSetup(200, Options{
		Count:          10,
		RangeExtractor: func(RangeInfo) []int { return []int{5, 700, -2} },
	})
	defer v.Close()

	got := indicesOf(v.Items())
	if len(got) != 1 || got[0] != 5 {
		t.Errorf("indices = %v, want [5]", got)
	}
}

func TestScrollToOffset_Alignments(t *testing.T) {
	tests := []struct {
		name   string
		offset float64
		align  Align
		want   float64
	}{
		{"start", 500, AlignStart, 500},
		{"end subtracts viewport", 500, AlignEnd, 300},
		{"center subtracts half viewport", 500, AlignCenter, 400},
		{"auto past window end picks end", 500, AlignAuto, 300},
		{"auto before window picks start", -10, AlignAuto, -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			surf, v := elementSetup(200, Options{Count: 100})
			defer v.Close()
			v.ScrollToOffset(tt.offset, tt.align)
			if surf.offset != tt.want {
				t.Errorf("offset = %v, want %v", surf.offset, tt.want)
			}
		})
	}
}

// Current behavior: an auto-aligned offset that is already inside the
// visible window still falls through to start and re-affirms the
// position, rather than leaving the scroll untouched.
func TestScrollToOffset_AutoInsideWindowReaffirmsStart(t *testing.T) {
	surf, v := elementSetup(200, Options{Count: 100})
	defer v.Close()

	surf.SetScrollOffset(50)
	v.ScrollToOffset(100, AlignAuto) // inside [50, 250)
	if surf.offset != 100 {
		t.Errorf("offset = %v, want 100 (scrolled to start, not a no-op)", surf.offset)
	}
}

func TestScrollToIndex_AutoLandsItemAtEnd(t *testing.T) {
	surf, v := elementSetup(200, Options{Count: 100})
	defer v.Close()

	v.ScrollToIndex(5, AlignAuto)
	if surf.offset != 100 {
		t.Fatalf("offset = %v, want 100", surf.offset)
	}
	items := v.Items()
	got := indicesOf(items)
	if got[len(got)-1] != 5 {
		t.Errorf("last visible = %d, want 5 (indices %v)", got[len(got)-1], got)
	}
}

func TestScrollToIndex_SecondPassFires(t *testing.T) {
	var deferred []func()
	surf, v := elementSetup(200, Options{
		Count: 100,
		Defer: func(fn func()) { deferred = append(deferred, fn) },
	})
	defer v.Close()

	v.ScrollToIndex(5, AlignAuto)
	if len(surf.sets) != 1 || len(deferred) != 1 {
		t.Fatalf("writes = %d, deferred = %d, want 1 and 1", len(surf.sets), len(deferred))
	}

	// The deferred pass re-resolves against post-render measurements and
	// is applied unconditionally.
	deferred[0]()
	if len(surf.sets) != 2 {
		t.Fatalf("writes after deferred pass = %d, want 2", len(surf.sets))
	}
	if surf.sets[1] != 100 {
		t.Errorf("second write = %v, want 100", surf.sets[1])
	}
}

func TestScrollToIndex_SecondPassCorrectsEstimateDrift(t *testing.T) {
	var deferred []func()
	surf, v := elementSetup(100, Options{
		Count: 100,
		Defer: func(fn func()) { deferred = append(deferred, fn) },
	})
	defer v.Close()

	v.ScrollToIndex(50, AlignStart)
	if surf.offset != 2500 {
		t.Fatalf("first pass offset = %v, want 2500", surf.offset)
	}

	// Rendering reveals rows above the target are half the estimate; the
	// engine compensates as they report, then the deferred pass snaps
	// the target row back to the viewport start.
	renderLoop(t, v, 25)
	for _, fn := range deferred {
		fn()
	}
	items := v.Items()
	first := items[0]
	if first.Index != 50 || surf.offset != first.Start {
		t.Errorf("offset = %v, first item %d starts at %v; want row 50 at viewport start", surf.offset, first.Index, first.Start)
	}
}

func TestScrollToIndex_ClampsOutOfRange(t *testing.T) {
	surf, v := elementSetup(200, Options{Count: 100})
	defer v.Close()

	v.ScrollToIndex(5000, AlignAuto) // clamps to 99
	if surf.offset != 99*50+50-200 {
		t.Errorf("offset = %v, want %v", surf.offset, 99*50+50-200)
	}

	v.ScrollToIndex(-3, AlignStart) // clamps to 0
	if surf.offset != 0 {
		t.Errorf("offset = %v, want 0", surf.offset)
	}
}

func TestScrollToIndex_EmptyListIsNoop(t *testing.T) {
	surf, v := elementSetup(200, Options{Count: 0})
	defer v.Close()
	v.ScrollToIndex(3, AlignAuto)
	if len(surf.sets) != 0 {
		t.Errorf("offset writes = %v, want none", surf.sets)
	}
}

func TestScrollToIndex_AutoFullyVisibleIsNoop(t *testing.T) {
	surf, v := elementSetup(200, Options{Count: 100})
	defer v.Close()

	surf.SetScrollOffset(100)
	wrote := len(surf.sets)
	v.ScrollToIndex(3, AlignAuto) // row 3 spans [150,200), inside [100,300)
	if len(surf.sets) != wrote {
		t.Errorf("offset writes = %v, want no new writes", surf.sets[wrote:])
	}
}

func TestScrollToFn_InterceptsImperativeScrolls(t *testing.T) {
	var intercepted []float64
	var apply func(float64)
	surf, v := elementSetup(200, Options{
		Count: 100,
		ScrollToFn: func(offset float64, fn func(float64)) {
			intercepted = append(intercepted, offset)
			apply = fn
		},
	})
	defer v.Close()

	v.ScrollToOffset(500, AlignStart)
	if len(intercepted) != 1 || intercepted[0] != 500 {
		t.Fatalf("intercepted = %v, want [500]", intercepted)
	}
	if surf.offset != 0 {
		t.Fatalf("offset = %v, interceptor did not apply yet", surf.offset)
	}
	apply(500)
	if surf.offset != 500 {
		t.Errorf("offset = %v, want 500 via fallback apply", surf.offset)
	}
}

func TestWindowMode_ScrollMapsToIndices(t *testing.T) {
	win := &fakeWindow{inner: 200}
	sc := NewWindowScroller(WindowConfig{
		ContainerStart: func() float64 { return 0 },
		ObserveScroll:  win.observeScroll,
		ObserveSize:    win.observeSize,
	})
	sc.SetTarget(win)
	v := New(sc, Options{Count: 100})
	defer v.Close()

	win.SetScrollOffset(100)
	if r := v.Range(); r.Start != 2 {
		t.Errorf("Range.Start = %d, want 2", r.Start)
	}
	if got := indicesOf(v.Items()); got[0] != 2 {
		t.Errorf("first item = %d, want 2", got[0])
	}
}

func TestWindowMode_ScrollToIndexTranslates(t *testing.T) {
	win := &fakeWindow{inner: 200}
	win.offset = 30 // container sits 30 into the page at attach
	sc := NewWindowScroller(WindowConfig{
		ContainerStart: func() float64 { return 0 },
		ObserveScroll:  win.observeScroll,
	})
	sc.SetTarget(win)
	v := New(sc, Options{Count: 100})
	defer v.Close()

	v.ScrollToIndex(4, AlignStart)
	// Local target 200, translated back by parentStatic 30.
	if win.offset != 230 {
		t.Errorf("window offset = %v, want 230", win.offset)
	}
	if got := v.Range().Start; got != 4 {
		t.Errorf("Range.Start = %d, want 4", got)
	}
}

func TestResetMeasurements_Idempotent(t *testing.T) {
	_, v := elementSetup(200, Options{Count: 50})
	defer v.Close()

	renderLoop(t, v, 25)
	if got := v.TotalSize(); got == 50*50 {
		t.Fatalf("TotalSize still %v, measurements did not apply", got)
	}

	v.ResetMeasurements()
	first := v.TotalSize()
	if first != 50*50 {
		t.Errorf("TotalSize after reset = %v, want %v", first, 50*50)
	}
	v.ResetMeasurements()
	if got := v.TotalSize(); got != first {
		t.Errorf("TotalSize after second reset = %v, want %v", got, first)
	}
}

func TestSetEstimateSize_InvalidatesMeasurements(t *testing.T) {
	_, v := elementSetup(200, Options{Count: 50})
	defer v.Close()

	renderLoop(t, v, 25)
	v.SetEstimateSize(func(int) float64 { return 40 })
	if got := v.TotalSize(); got != 50*40 {
		t.Errorf("TotalSize = %v, want %v (cache cleared)", got, 50*40)
	}
}

func TestSetCount(t *testing.T) {
	_, v := elementSetup(200, Options{Count: 10})
	defer v.Close()

	v.SetCount(4)
	if got := v.TotalSize(); got != 200 {
		t.Errorf("TotalSize = %v, want 200", got)
	}
	v.SetCount(20)
	if got := v.TotalSize(); got != 1000 {
		t.Errorf("TotalSize = %v, want 1000", got)
	}
	// Stale measurements for dropped indices stay inert.
	v.SetCount(0)
	if items := v.Items(); len(items) != 0 {
		t.Errorf("items = %v, want none", indicesOf(items))
	}
}

func TestKeyedMeasurements_FollowReorder(t *testing.T) {
	rows := []string{"a", "b", "c", "d"}
	_, v := elementSetup(200, Options{
		Count: len(rows),
		KeyOf: func(i int) string { return rows[i] },
	})
	defer v.Close()

	for _, it := range v.Items() {
		if it.Key == "a" {
			it.Measure(30)
		}
	}

	// Move "a" to the back; its measurement must travel with the key.
	rows = []string{"b", "c", "d", "a"}
	v.Refresh()
	for _, it := range v.Items() {
		switch it.Key {
		case "a":
			if it.Size != 30 {
				t.Errorf("key a size = %v, want 30", it.Size)
			}
			if it.Index != 3 {
				t.Errorf("key a index = %d, want 3", it.Index)
			}
		default:
			if it.Size != 50 {
				t.Errorf("key %s size = %v, want 50", it.Key, it.Size)
			}
		}
	}
}

func TestIncrementalRecompute_MatchesFull(t *testing.T) {
	surf, v := elementSetup(200, Options{Count: 300, Overscan: 2})
	defer v.Close()

	// Interleave scrolls and measurements, then compare the controller's
	// incrementally maintained spans against a clean derivation.
	offsets := []float64{0, 400, 1200, 300, 5000}
	for pass, off := range offsets {
		surf.SetScrollOffset(off)
		for _, it := range v.Items() {
			it.Measure(float64(20 + it.Index%7))
		}

		v.mu.Lock()
		v.ensureLocked()
		got := append([]Span(nil), v.spans...)
		measured := make(map[string]float64, len(v.measured))
		for k, val := range v.measured {
			measured[k] = val
		}
		v.mu.Unlock()

		want := deriveSpans(nil, 0, 300, v.opts.EstimateSize, measured, strconv.Itoa, 0)
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("pass %d: spans[%d] = %+v, full recompute = %+v", pass, i, got[i], want[i])
			}
		}
	}
}

func TestIsScrolling_SettlesAfterDelay(t *testing.T) {
	var edges []bool
	edgeCh := make(chan bool, 8)
	surf, v := elementSetup(200, Options{
		Count:              100,
		SettleDelay:        20 * time.Millisecond,
		OnScrollingChanged: func(s bool) { edgeCh <- s },
	})
	defer v.Close()

	surf.SetScrollOffset(10)
	if !v.IsScrolling() {
		t.Fatal("IsScrolling = false right after a scroll")
	}

	deadline := time.After(2 * time.Second)
	for len(edges) < 2 {
		select {
		case e := <-edgeCh:
			edges = append(edges, e)
		case <-deadline:
			t.Fatalf("edges = %v, want [true false]", edges)
		}
	}
	if !edges[0] || edges[1] {
		t.Fatalf("edges = %v, want [true false]", edges)
	}
	if v.IsScrolling() {
		t.Error("IsScrolling = true after settle delay")
	}
}

func TestSetOverscan(t *testing.T) {
	_, v := elementSetup(200, Options{Count: 200})
	defer v.Close()

	// Viewport 200 over 50-unit estimates: rows 0-3 visible.
	if got := len(v.Items()); got != 4 {
		t.Fatalf("items = %d, want 4", got)
	}
	v.SetOverscan(2)
	if got := len(v.Items()); got != 6 {
		t.Errorf("items with overscan 2 = %d, want 6", got)
	}
	v.SetOverscan(-1) // negative clamps to none
	if got := len(v.Items()); got != 4 {
		t.Errorf("items with clamped overscan = %d, want 4", got)
	}
}

func TestSetSettleDelay(t *testing.T) {
	edgeCh := make(chan bool, 8)
	surf, v := elementSetup(200, Options{
		Count:              100,
		OnScrollingChanged: func(s bool) { edgeCh <- s },
	})
	defer v.Close()

	v.SetSettleDelay(10 * time.Millisecond)
	surf.SetScrollOffset(10)

	var edges []bool
	deadline := time.After(2 * time.Second)
	for len(edges) < 2 {
		select {
		case e := <-edgeCh:
			edges = append(edges, e)
		case <-deadline:
			t.Fatalf("edges = %v, want [true false]", edges)
		}
	}
	if !edges[0] || edges[1] {
		t.Fatalf("edges = %v, want [true false]", edges)
	}

	v.SetSettleDelay(0) // non-positive resets to the default
	v.mu.Lock()
	got := v.opts.SettleDelay
	v.mu.Unlock()
	if got != DefaultSettleDelay {
		t.Errorf("SettleDelay after reset = %v, want %v", got, DefaultSettleDelay)
	}
}

func TestClose_StopsNotifications(t *testing.T) {
	changes := 0
	surf, v := elementSetup(200, Options{Count: 100, OnChange: func() { changes++ }})

	surf.SetScrollOffset(10)
	if changes == 0 {
		t.Fatal("OnChange never fired")
	}
	v.Close()
	before := changes
	surf.SetScrollOffset(20)
	if changes != before {
		t.Errorf("OnChange fired %d times after Close", changes-before)
	}
	v.Close() // second close is harmless
}
