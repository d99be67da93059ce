// Copyright 2026 Texelvirt contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: virtlist/list.go
// Summary: VirtualList widget rendering only the visible slice of a
// large row collection. Rows are produced on demand by a RowFunc; their
// real (possibly wrapped) height feeds back into the engine as they draw.

package virtlist

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/framegrace/texelvirt/ui"
	"github.com/framegrace/texelvirt/virt"
)

// RowFunc returns the display lines for one row at the given width. A
// row taller than one line (wrapped text, multi-line records) is fine;
// its height is measured from the returned slice.
type RowFunc func(index, width int) []string

// StyledSpan is a run of text sharing one style within a display line.
type StyledSpan struct {
	Text  string
	Style tcell.Style
}

// StyledLine is one display line built from styled spans.
type StyledLine []StyledSpan

// StyledRowFunc is the styled counterpart of RowFunc, for rows whose
// text carries per-span styling (syntax highlighting, severity colors).
type StyledRowFunc func(index, width int) []StyledLine

// WheelStep is how many rows a mouse wheel tick scrolls by default.
const WheelStep = 3

// Compile-time checks that VirtualList satisfies the widget contracts
// and the engine's scroll target contract.
var (
	_ ui.Widget            = (*VirtualList)(nil)
	_ ui.MouseAware        = (*VirtualList)(nil)
	_ ui.InvalidationAware = (*VirtualList)(nil)
	_ virt.ScrollTarget    = (*VirtualList)(nil)
)

// VirtualList is a scrollable list widget that virtualizes its rows:
// only rows intersecting the viewport (plus overscan) are produced and
// drawn, so cost tracks the viewport, not the row count.
//
// The widget itself is the engine's scroll target: it owns the native
// scroll offset and reports moves and resizes through the element
// scroller. Vertical axis only; a horizontal host can drive the engine
// directly with its own scroller config.
type VirtualList struct {
	ui.BaseWidget
	Style          tcell.Style
	IndicatorStyle tcell.Style

	v  *virt.Virtualizer
	sc *virt.ElementScroller

	rows   RowFunc
	styled StyledRowFunc

	wheelStep int

	offset   float64
	onScroll func()
	onSize   func(float64)

	inv            func(ui.Rect)
	showIndicators bool
	indicator      IndicatorConfig
	pending        []func()
}

// NewVirtualList creates a virtual list with the given dimensions and
// style. Populate it with SetRows.
func NewVirtualList(x, y, w, h int, style tcell.Style) *VirtualList {
	l := &VirtualList{
		Style:          style,
		IndicatorStyle: style,
		showIndicators: true,
		wheelStep:      WheelStep,
	}
	l.SetPosition(x, y)
	l.BaseWidget.Resize(w, h)
	l.indicator = DefaultIndicatorConfig(style)

	l.sc = virt.NewElementScroller(virt.ElementConfig{
		Axis:            virt.AxisVertical,
		InitialViewport: float64(h),
		ObserveSize: func(fn func(float64)) func() {
			l.onSize = fn
			return func() { l.onSize = nil }
		},
		ObserveScroll: func(fn func()) func() {
			l.onScroll = fn
			return func() { l.onScroll = nil }
		},
	})
	l.sc.SetTarget(l)

	l.v = virt.New(l.sc, virt.Options{
		EstimateSize: func(int) float64 { return 1 }, // one line until wrapped height is known
		Overscan:     2,
		OnChange:     func() { l.invalidate() },
		Defer:        func(fn func()) { l.pending = append(l.pending, fn); l.invalidate() },
	})
	return l
}

// SetRows sets the row count and producer.
func (l *VirtualList) SetRows(count int, rows RowFunc) {
	l.rows = rows
	l.styled = nil
	l.v.SetCount(count)
}

// SetStyledRows sets the row count and a styled producer. The styled
// producer wins when both are set.
func (l *VirtualList) SetStyledRows(count int, rows StyledRowFunc) {
	l.styled = rows
	l.v.SetCount(count)
}

// Virtualizer exposes the underlying engine for advanced hosts (custom
// range extractors, measurement resets, scroll interception).
func (l *VirtualList) Virtualizer() *virt.Virtualizer {
	return l.v
}

// ScrollOffset returns the native scroll offset. Part of the engine's
// scroll target contract.
func (l *VirtualList) ScrollOffset() float64 {
	return l.offset
}

// SetScrollOffset writes the native scroll offset, clamped to the
// scrollable extent, and notifies the scroll observer. Part of the
// engine's scroll target contract.
func (l *VirtualList) SetScrollOffset(offset float64) {
	max := l.v.TotalSize() - float64(l.Rect.H)
	if offset > max {
		offset = max
	}
	if offset < 0 {
		offset = 0
	}
	if offset == l.offset {
		return
	}
	l.offset = offset
	if l.onScroll != nil {
		l.onScroll()
	}
	l.invalidate()
}

// ScrollBy scrolls by delta rows (positive = down, negative = up).
func (l *VirtualList) ScrollBy(delta float64) {
	l.SetScrollOffset(l.offset + delta)
}

// ScrollToIndex scrolls the given row into view.
func (l *VirtualList) ScrollToIndex(index int, align virt.Align) {
	l.v.ScrollToIndex(index, align)
}

// ScrollToOffset scrolls to an in-list offset.
func (l *VirtualList) ScrollToOffset(offset float64, align virt.Align) {
	l.v.ScrollToOffset(offset, align)
}

// CanScrollUp reports whether content extends above the viewport.
func (l *VirtualList) CanScrollUp() bool {
	return l.offset > 0
}

// CanScrollDown reports whether content extends below the viewport.
func (l *VirtualList) CanScrollDown() bool {
	return l.offset+float64(l.Rect.H) < l.v.TotalSize()
}

// SetWheelStep changes how many rows a wheel tick scrolls. Values
// below 1 reset to the default.
func (l *VirtualList) SetWheelStep(rows int) {
	if rows < 1 {
		rows = WheelStep
	}
	l.wheelStep = rows
}

// ShowIndicators enables or disables the overflow indicators.
func (l *VirtualList) ShowIndicators(show bool) {
	l.showIndicators = show
}

// SetIndicatorConfig sets the indicator configuration.
func (l *VirtualList) SetIndicatorConfig(cfg IndicatorConfig) {
	l.indicator = cfg
}

// SetInvalidator sets the invalidation callback.
func (l *VirtualList) SetInvalidator(fn func(ui.Rect)) {
	l.inv = fn
}

func (l *VirtualList) invalidate() {
	if l.inv != nil {
		l.inv(l.Rect)
	}
}

// Resize updates the viewport and reports the new size to the engine.
// Wrapped row heights depend on the width, so a width change drops all
// measurements; rows re-measure at the new width as they draw.
func (l *VirtualList) Resize(w, h int) {
	prevW := l.Rect.W
	l.BaseWidget.Resize(w, h)
	if l.onSize != nil {
		l.onSize(float64(h))
	}
	if l.Rect.W != prevW {
		l.v.ResetMeasurements()
	}
}

// Close releases the engine and its scroller subscriptions.
func (l *VirtualList) Close() {
	l.v.Close()
	l.sc.Close()
}

// Draw renders the visible rows. Each drawn row reports its real height
// back to the engine; deferred engine tasks (the scroll-to-index
// correction pass) run after the rows have been drawn and measured.
func (l *VirtualList) Draw(p *ui.Painter) {
	rect := l.Rect
	p.Fill(rect, ' ', l.Style)

	if l.rows != nil || l.styled != nil {
		clipped := p.WithClip(rect)
		for _, it := range l.v.Items() {
			lines := l.rowLines(it.Index, rect.W)
			if len(lines) == 0 {
				lines = []StyledLine{nil}
			}
			it.Measure(float64(len(lines)))
			y := rect.Y + int(it.Start-l.offset)
			for i, line := range lines {
				x := rect.X
				for _, span := range line {
					clipped.Text(x, y+i, span.Text, span.Style)
					x += runewidth.StringWidth(span.Text)
				}
			}
		}
	}

	if l.showIndicators {
		DrawIndicators(p, rect, l.CanScrollUp(), l.CanScrollDown(), l.indicator)
	}

	l.runPending()
}

func (l *VirtualList) rowLines(index, width int) []StyledLine {
	if l.styled != nil {
		return l.styled(index, width)
	}
	raw := l.rows(index, width)
	lines := make([]StyledLine, len(raw))
	for i, s := range raw {
		lines[i] = StyledLine{{Text: s, Style: l.Style}}
	}
	return lines
}

func (l *VirtualList) runPending() {
	for len(l.pending) > 0 {
		fns := l.pending
		l.pending = nil
		for _, fn := range fns {
			fn()
		}
	}
}

// HandleKey handles keyboard input for scrolling.
func (l *VirtualList) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyUp:
		l.ScrollBy(-1)
		return true
	case tcell.KeyDown:
		l.ScrollBy(1)
		return true
	case tcell.KeyPgUp:
		l.ScrollBy(-float64(l.Rect.H))
		return true
	case tcell.KeyPgDn:
		l.ScrollBy(float64(l.Rect.H))
		return true
	case tcell.KeyHome:
		if ev.Modifiers()&tcell.ModCtrl != 0 {
			l.ScrollToIndex(0, virt.AlignStart)
			return true
		}
	case tcell.KeyEnd:
		if ev.Modifiers()&tcell.ModCtrl != 0 {
			l.ScrollToIndex(l.v.Count()-1, virt.AlignEnd)
			return true
		}
	}
	return false
}

// HandleMouse handles wheel scrolling.
func (l *VirtualList) HandleMouse(ev *tcell.EventMouse) bool {
	x, y := ev.Position()
	if !l.HitTest(x, y) {
		return false
	}
	switch ev.Buttons() {
	case tcell.WheelUp:
		l.ScrollBy(-float64(l.wheelStep))
		return true
	case tcell.WheelDown:
		l.ScrollBy(float64(l.wheelStep))
		return true
	}
	return true
}
