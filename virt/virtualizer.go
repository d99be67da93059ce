// Copyright 2026 Texelvirt contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: virt/virtualizer.go
// Summary: Virtualizer controller tying spans, range location and the
// scroll source together into the public virtual-item surface.

package virt

import (
	"strconv"
	"sync"
	"time"
)

// Align is the policy for where a scrolled-to item or offset lands in the
// viewport.
type Align int

const (
	AlignAuto Align = iota
	AlignStart
	AlignCenter
	AlignEnd
)

// Defaults used when the corresponding Options field is zero.
const (
	DefaultEstimate    = 50.0
	DefaultSettleDelay = 150 * time.Millisecond
)

// Options configures a Virtualizer. All strategy fields have working
// defaults; the zero value of Options is a valid (empty) list.
type Options struct {
	// Count is the total logical item count.
	Count int

	// EstimateSize returns the fallback size for an unmeasured index.
	// Defaults to a constant DefaultEstimate.
	EstimateSize func(index int) float64

	// Overscan widens the located range symmetrically by this many
	// indices to mask scroll-induced pop-in.
	Overscan int

	// PaddingStart and PaddingEnd add leading/trailing extent.
	PaddingStart float64
	PaddingEnd   float64

	// KeyOf maps an index to its stable identity used as the measured
	// cache key, so reordering keeps measurements. Defaults to the
	// decimal index.
	KeyOf func(index int) string

	// RangeExtractor overrides the default overscan/selection policy.
	RangeExtractor RangeExtractor

	// ScrollToFn intercepts imperative scroll requests. It receives the
	// resolved target offset and the built-in apply func as fallback.
	ScrollToFn func(offset float64, apply func(float64))

	// OnChange fires after any state change that warrants a re-render.
	OnChange func()

	// Defer posts the one-shot second pass of ScrollToIndex to the
	// host's next render cycle. Defaults to immediate invocation, which
	// keeps headless use deterministic.
	Defer func(fn func())

	// SettleDelay is how long after the last scroll notification the
	// scrolling flag drops. Defaults to DefaultSettleDelay.
	SettleDelay time.Duration

	// OnScrollingChanged fires on the edges of the scrolling flag.
	OnScrollingChanged func(scrolling bool)
}

// VirtualItem is one renderable item: its span plus the hook the consumer
// uses to report the real size once rendered.
type VirtualItem struct {
	Span
	v *Virtualizer
}

// Measure reports the item's rendered size. If it differs from the
// current derived size it is recorded in the measured cache, and when the
// item sits above the current viewport the scroll offset is nudged by the
// delta so visible content does not jump.
func (it VirtualItem) Measure(size float64) {
	if it.v != nil {
		it.v.measure(it.Index, size)
	}
}

// Virtualizer orchestrates the measurement store, range locator and
// scroll source. All work is synchronous; the only timers are the
// scrolling-settled debounce and whatever the host's Defer does.
type Virtualizer struct {
	mu       sync.Mutex
	opts     Options
	sc       Scroller
	cancel   func()
	measured map[string]float64
	spans    []Span
	clean    int // spans[:clean] match current inputs
	total    float64

	isScrolling bool
	settle      *time.Timer
	closed      bool
}

// New creates a Virtualizer reading from sc. It subscribes to the
// scroller immediately; Close releases the subscription.
func New(sc Scroller, opts Options) *Virtualizer {
	if opts.EstimateSize == nil {
		opts.EstimateSize = func(int) float64 { return DefaultEstimate }
	}
	if opts.KeyOf == nil {
		opts.KeyOf = strconv.Itoa
	}
	if opts.RangeExtractor == nil {
		opts.RangeExtractor = DefaultRangeExtractor
	}
	if opts.Defer == nil {
		opts.Defer = func(fn func()) { fn() }
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	v := &Virtualizer{
		opts:     opts,
		sc:       sc,
		measured: make(map[string]float64),
	}
	v.cancel = sc.Subscribe(func(ScrollSnapshot) { v.noteScroll() })
	return v
}

// ensureLocked brings spans and total up to date. Spans below clean are
// reused; recomputing from 0 would produce identical results.
func (v *Virtualizer) ensureLocked() {
	count := v.opts.Count
	if v.clean < count || len(v.spans) != count {
		v.spans = deriveSpans(v.spans, v.clean, count, v.opts.EstimateSize, v.measured, v.opts.KeyOf, v.opts.PaddingStart)
		v.clean = count
	}
	v.total = totalExtent(v.spans, v.opts.PaddingStart, v.opts.PaddingEnd)
}

// Items runs one recomputation pass and returns the items to render. The
// scroll snapshot is read once at pass start and used throughout.
func (v *Virtualizer) Items() []VirtualItem {
	v.mu.Lock()
	snap := v.sc.Snapshot()
	v.ensureLocked()
	var items []VirtualItem
	if v.opts.Count > 0 {
		r := locateRange(v.spans, snap.Offset, snap.Viewport)
		indices := v.opts.RangeExtractor(RangeInfo{
			Start:    r.Start,
			End:      r.End,
			Overscan: v.opts.Overscan,
			Count:    v.opts.Count,
		})
		items = make([]VirtualItem, 0, len(indices))
		for _, i := range indices {
			if i < 0 || i >= len(v.spans) {
				continue
			}
			items = append(items, VirtualItem{Span: v.spans[i], v: v})
		}
	}
	v.mu.Unlock()
	return items
}

// Range returns the minimal visible index window, before overscan.
func (v *Virtualizer) Range() Range {
	v.mu.Lock()
	defer v.mu.Unlock()
	snap := v.sc.Snapshot()
	v.ensureLocked()
	if v.opts.Count == 0 {
		return Range{}
	}
	return locateRange(v.spans, snap.Offset, snap.Viewport)
}

// TotalSize returns the full scrollable extent, padding included.
func (v *Virtualizer) TotalSize() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ensureLocked()
	return v.total
}

// Count returns the current logical item count.
func (v *Virtualizer) Count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.opts.Count
}

// SetCount changes the logical item count. Measurements for keys that
// fall out of range stay cached but inert.
func (v *Virtualizer) SetCount(count int) {
	if count < 0 {
		count = 0
	}
	v.mu.Lock()
	if count == v.opts.Count {
		v.mu.Unlock()
		return
	}
	v.opts.Count = count
	if v.clean > count {
		v.clean = count
	}
	v.mu.Unlock()
	v.onChange()
}

// SetEstimateSize replaces the size estimator. A new estimator is a
// policy change that invalidates prior measurements, so the cache is
// cleared.
func (v *Virtualizer) SetEstimateSize(estimate func(index int) float64) {
	if estimate == nil {
		estimate = func(int) float64 { return DefaultEstimate }
	}
	v.mu.Lock()
	v.opts.EstimateSize = estimate
	v.measured = make(map[string]float64)
	v.clean = 0
	v.mu.Unlock()
	v.onChange()
}

// SetOverscan changes how far the default extractor reaches beyond the
// visible range.
func (v *Virtualizer) SetOverscan(overscan int) {
	if overscan < 0 {
		overscan = 0
	}
	v.mu.Lock()
	if overscan == v.opts.Overscan {
		v.mu.Unlock()
		return
	}
	v.opts.Overscan = overscan
	v.mu.Unlock()
	v.onChange()
}

// SetSettleDelay changes the scrolling-settled debounce. Takes effect on
// the next scroll notification.
func (v *Virtualizer) SetSettleDelay(d time.Duration) {
	if d <= 0 {
		d = DefaultSettleDelay
	}
	v.mu.Lock()
	v.opts.SettleDelay = d
	v.mu.Unlock()
}

// Refresh forces a full span recomputation without touching the measured
// cache. Hosts call it after mutating data the KeyOf callback reads (a
// reorder, an insert), which the engine cannot observe on its own.
func (v *Virtualizer) Refresh() {
	v.mu.Lock()
	v.clean = 0
	v.mu.Unlock()
	v.onChange()
}

// ResetMeasurements clears the measured cache, falling back to the
// estimator everywhere. Idempotent.
func (v *Virtualizer) ResetMeasurements() {
	v.mu.Lock()
	v.measured = make(map[string]float64)
	v.clean = 0
	v.mu.Unlock()
	v.onChange()
}

// IsScrolling reports whether a scroll notification arrived within the
// settle delay.
func (v *Virtualizer) IsScrolling() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.isScrolling
}

// measure records a rendered size for an index and compensates the scroll
// offset for size corrections above the viewport. Cache write and
// compensation belong to one critical section so no recomputation sees
// one without the other.
func (v *Virtualizer) measure(index int, size float64) {
	v.mu.Lock()
	if v.closed || index < 0 || index >= v.opts.Count {
		v.mu.Unlock()
		return
	}
	v.ensureLocked()
	cur := v.spans[index]
	delta := size - cur.Size
	if delta == 0 {
		v.mu.Unlock()
		return
	}
	v.measured[cur.Key] = size
	if index < v.clean {
		v.clean = index
	}
	snap := v.sc.Snapshot()
	adjust := cur.Start < snap.Offset
	v.mu.Unlock()
	if adjust {
		v.sc.SetOffset(snap.Offset+delta, ReasonSizeChanged)
	}
	v.onChange()
}

// resolveOffset applies alignment to a target offset. AlignAuto picks end
// when the offset is at/past the window's end and otherwise falls through
// to start, including for offsets already inside the window: the position
// is re-affirmed rather than left alone.
func resolveOffset(offset float64, align Align, snap ScrollSnapshot) float64 {
	if align == AlignAuto {
		if offset >= snap.Offset+snap.Viewport {
			align = AlignEnd
		} else {
			align = AlignStart
		}
	}
	switch align {
	case AlignEnd:
		return offset - snap.Viewport
	case AlignCenter:
		return offset - snap.Viewport/2
	default:
		return offset
	}
}

// scrollTo routes a resolved offset through the host's interceptor when
// configured, else applies it directly.
func (v *Virtualizer) scrollTo(offset float64, reason Reason) {
	apply := func(off float64) { v.sc.SetOffset(off, reason) }
	if v.opts.ScrollToFn != nil {
		v.opts.ScrollToFn(offset, apply)
		return
	}
	apply(offset)
}

// ScrollToOffset scrolls so the given in-list offset lands per align.
func (v *Virtualizer) ScrollToOffset(offset float64, align Align) {
	snap := v.sc.Snapshot()
	v.scrollTo(resolveOffset(offset, align, snap), ReasonToOffset)
}

// ScrollToIndex scrolls the item at index into view per align. The index
// is clamped, never rejected. Because newly rendered items may report
// real sizes that shift the target, the request runs twice: once now and
// once more after the host's next render cycle. The second pass is not
// cancellable and not coalesced; a later caller request simply races it.
func (v *Virtualizer) ScrollToIndex(index int, align Align) {
	v.scrollToIndex(index, align)
	v.opts.Defer(func() { v.scrollToIndex(index, align) })
}

func (v *Virtualizer) scrollToIndex(index int, align Align) {
	v.mu.Lock()
	count := v.opts.Count
	if count == 0 {
		v.mu.Unlock()
		return
	}
	if index < 0 {
		index = 0
	}
	if index > count-1 {
		index = count - 1
	}
	v.ensureLocked()
	if index >= len(v.spans) {
		// Caller bug or race; favor robustness over surfacing it.
		v.mu.Unlock()
		return
	}
	span := v.spans[index]
	snap := v.sc.Snapshot()
	v.mu.Unlock()

	if align == AlignAuto {
		switch {
		case span.End >= snap.Offset+snap.Viewport:
			align = AlignEnd
		case span.Start <= snap.Offset:
			align = AlignStart
		default:
			// Fully visible already.
			return
		}
	}
	var anchor float64
	switch align {
	case AlignEnd:
		anchor = span.End
	case AlignCenter:
		anchor = span.Start + span.Size/2
	default:
		anchor = span.Start
	}
	v.scrollTo(resolveOffset(anchor, align, snap), ReasonToIndex)
}

// noteScroll handles a scroll-source notification: raise the scrolling
// flag, restart the settle timer, request a re-render.
func (v *Virtualizer) noteScroll() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	started := !v.isScrolling
	v.isScrolling = true
	if v.settle == nil {
		v.settle = time.AfterFunc(v.opts.SettleDelay, v.settled)
	} else {
		v.settle.Reset(v.opts.SettleDelay)
	}
	v.mu.Unlock()
	if started && v.opts.OnScrollingChanged != nil {
		v.opts.OnScrollingChanged(true)
	}
	v.onChange()
}

func (v *Virtualizer) settled() {
	v.mu.Lock()
	if v.closed || !v.isScrolling {
		v.mu.Unlock()
		return
	}
	v.isScrolling = false
	v.mu.Unlock()
	if v.opts.OnScrollingChanged != nil {
		v.opts.OnScrollingChanged(false)
	}
	v.onChange()
}

func (v *Virtualizer) onChange() {
	if v.opts.OnChange != nil {
		v.opts.OnChange()
	}
}

// Close stops the settle timer and unsubscribes from the scroller so the
// timer can never fire against a torn-down controller.
func (v *Virtualizer) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	if v.settle != nil {
		v.settle.Stop()
	}
	cancel := v.cancel
	v.cancel = nil
	v.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
