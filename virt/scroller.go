// Copyright 2026 Texelvirt contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: virt/scroller.go
// Summary: Scroll source adapters unifying element and window scrolling.
//
// A Scroller turns some scrollable surface into one contract: a live
// {offset, viewport} snapshot, an offset setter, and change notification.
// Two variants exist. ElementScroller tracks a surface that scrolls in its
// own coordinate space (a pane, a scrollable widget). WindowScroller
// tracks a whole-window scroll position and translates it into the
// container's local space, so index 0 always aligns to local offset 0 no
// matter where the container sits.

package virt

import (
	"sort"
	"sync"
)

// ScrollSnapshot is the latest known scroll state on the active axis.
type ScrollSnapshot struct {
	Offset   float64
	Viewport float64
}

// Reason says why an imperative offset write happens. Window-variant
// translation depends on it: logical in-list offsets (ReasonToIndex,
// ReasonSizeChanged) get the container's static offset added back, raw
// ReasonToOffset writes do not.
type Reason int

const (
	ReasonToOffset Reason = iota
	ReasonToIndex
	ReasonSizeChanged
)

// Axis declares which dimension a scroll source reports. The engine
// itself is axis-agnostic; the adapter carries the axis so hosts driving
// both dimensions can route observers and offsets to the right one.
type Axis int

const (
	AxisVertical Axis = iota
	AxisHorizontal
)

// Scroller is the unified scroll source contract consumed by Virtualizer.
type Scroller interface {
	// Snapshot returns the latest known offset and viewport size.
	Snapshot() ScrollSnapshot
	// SetOffset moves the underlying scroll position.
	SetOffset(offset float64, reason Reason)
	// Subscribe registers a change listener and returns its cancel func.
	Subscribe(fn func(ScrollSnapshot)) (cancel func())
	// Close tears down the target subscription and drops all listeners.
	Close()
}

// ScrollTarget is the underlying scrollable surface.
type ScrollTarget interface {
	ScrollOffset() float64
	SetScrollOffset(offset float64)
}

// SizeObserverFunc registers interest in viewport size changes and returns
// a cancel func. The host supplies it (resize observation is a capability
// of the environment, not of this package).
type SizeObserverFunc func(onSize func(float64)) (cancel func())

// ScrollObserverFunc registers interest in scroll moves and returns a
// cancel func.
type ScrollObserverFunc func(onScroll func()) (cancel func())

// notifier delivers snapshots to listeners in order and without
// re-entrancy: an emit that arrives while listeners are running is queued
// and drained afterwards, so a scroll handler can never find itself
// nested inside another scroll handler.
type notifier struct {
	mu         sync.Mutex
	nextID     int
	listeners  map[int]func(ScrollSnapshot)
	delivering bool
	queue      []ScrollSnapshot
}

func (n *notifier) subscribe(fn func(ScrollSnapshot)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.listeners == nil {
		n.listeners = make(map[int]func(ScrollSnapshot))
	}
	id := n.nextID
	n.nextID++
	n.listeners[id] = fn
	return func() {
		n.mu.Lock()
		delete(n.listeners, id)
		n.mu.Unlock()
	}
}

func (n *notifier) emit(s ScrollSnapshot) {
	n.mu.Lock()
	n.queue = append(n.queue, s)
	if n.delivering {
		n.mu.Unlock()
		return
	}
	n.delivering = true
	for len(n.queue) > 0 {
		next := n.queue[0]
		n.queue = n.queue[1:]
		fns := make([]func(ScrollSnapshot), 0, len(n.listeners))
		ids := make([]int, 0, len(n.listeners))
		for id := range n.listeners {
			ids = append(ids, id)
		}
		// Map order is random; deliver in subscription order.
		sort.Ints(ids)
		for _, id := range ids {
			fns = append(fns, n.listeners[id])
		}
		n.mu.Unlock()
		for _, fn := range fns {
			fn(next)
		}
		n.mu.Lock()
	}
	n.delivering = false
	n.mu.Unlock()
}

func (n *notifier) clear() {
	n.mu.Lock()
	n.listeners = nil
	n.queue = nil
	n.mu.Unlock()
}

// ElementConfig configures an ElementScroller.
type ElementConfig struct {
	// Axis is the dimension the observers report. Zero value is
	// AxisVertical.
	Axis Axis
	// InitialViewport is reported while no target is attached.
	InitialViewport float64
	// ObserveSize is the host's size-observation capability for the
	// container on the active axis.
	ObserveSize SizeObserverFunc
	// ObserveScroll fires whenever the target's native scroll moves.
	ObserveScroll ScrollObserverFunc
}

// ElementScroller adapts a surface that scrolls in its own coordinates.
type ElementScroller struct {
	mu           sync.Mutex
	cfg          ElementConfig
	target       ScrollTarget
	snap         ScrollSnapshot
	cancelSize   func()
	cancelScroll func()
	n            notifier
}

// NewElementScroller creates a detached element scroller. Attach a surface
// with SetTarget.
func NewElementScroller(cfg ElementConfig) *ElementScroller {
	return &ElementScroller{
		cfg:  cfg,
		snap: ScrollSnapshot{Viewport: cfg.InitialViewport},
	}
}

// SetTarget attaches a new surface, tearing down any previous
// subscriptions first. Exactly one size and one scroll subscription are
// live per attached target. A nil target resets to the fallback snapshot.
func (s *ElementScroller) SetTarget(t ScrollTarget) {
	s.mu.Lock()
	s.detachLocked()
	s.target = t
	if t == nil {
		s.snap = ScrollSnapshot{Viewport: s.cfg.InitialViewport}
	} else {
		s.snap.Offset = t.ScrollOffset()
		if s.cfg.ObserveSize != nil {
			s.cancelSize = s.cfg.ObserveSize(s.onSize)
		}
		if s.cfg.ObserveScroll != nil {
			s.cancelScroll = s.cfg.ObserveScroll(s.onScroll)
		}
	}
	snap := s.snap
	s.mu.Unlock()
	s.n.emit(snap)
}

func (s *ElementScroller) detachLocked() {
	if s.cancelSize != nil {
		s.cancelSize()
		s.cancelSize = nil
	}
	if s.cancelScroll != nil {
		s.cancelScroll()
		s.cancelScroll = nil
	}
	s.target = nil
}

func (s *ElementScroller) onSize(v float64) {
	s.mu.Lock()
	s.snap.Viewport = v
	snap := s.snap
	s.mu.Unlock()
	s.n.emit(snap)
}

func (s *ElementScroller) onScroll() {
	s.mu.Lock()
	if s.target == nil {
		s.mu.Unlock()
		return
	}
	s.snap.Offset = s.target.ScrollOffset()
	snap := s.snap
	s.mu.Unlock()
	s.n.emit(snap)
}

// Axis returns the dimension this scroller reports.
func (s *ElementScroller) Axis() Axis {
	return s.cfg.Axis
}

// Snapshot returns the latest known scroll state.
func (s *ElementScroller) Snapshot() ScrollSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// SetOffset writes the target's native scroll position. With no target
// attached the request is dropped.
func (s *ElementScroller) SetOffset(offset float64, reason Reason) {
	s.mu.Lock()
	t := s.target
	s.mu.Unlock()
	if t == nil {
		return
	}
	t.SetScrollOffset(offset)
}

// Subscribe registers a change listener.
func (s *ElementScroller) Subscribe(fn func(ScrollSnapshot)) func() {
	return s.n.subscribe(fn)
}

// Close detaches the target and drops all listeners.
func (s *ElementScroller) Close() {
	s.mu.Lock()
	s.detachLocked()
	s.snap = ScrollSnapshot{Viewport: s.cfg.InitialViewport}
	s.mu.Unlock()
	s.n.clear()
}

// WindowTarget is a whole-window scroll surface.
type WindowTarget interface {
	ScrollTarget
	// InnerSize is the window's inner size on the active axis.
	InnerSize() float64
}

// WindowConfig configures a WindowScroller.
type WindowConfig struct {
	// Axis is the dimension the observers report. Zero value is
	// AxisVertical.
	Axis Axis
	// InitialViewport is reported while no window is attached.
	InitialViewport float64
	// ContainerStart returns the container's bounding offset on the
	// active axis, relative to the window, at attach time.
	ContainerStart func() float64
	// ObserveSize fires when the window's inner size changes.
	ObserveSize SizeObserverFunc
	// ObserveScroll fires whenever the window scroll moves.
	ObserveScroll ScrollObserverFunc
}

// WindowScroller adapts whole-window scrolling into the container's local
// coordinate space. On attach it captures
//
//	parentStatic = windowScrollOffset + containerStart
//
// and thereafter reports offset = windowScrollOffset - parentStatic, so a
// list in the middle of a page still sees index 0 at local offset 0.
type WindowScroller struct {
	mu           sync.Mutex
	cfg          WindowConfig
	win          WindowTarget
	parentStatic float64
	snap         ScrollSnapshot
	cancelSize   func()
	cancelScroll func()
	n            notifier
}

// NewWindowScroller creates a detached window scroller. Attach a window
// with SetTarget.
func NewWindowScroller(cfg WindowConfig) *WindowScroller {
	return &WindowScroller{
		cfg:  cfg,
		snap: ScrollSnapshot{Viewport: cfg.InitialViewport},
	}
}

// SetTarget attaches a window, recapturing the container's static offset.
// A nil target resets to the fallback snapshot.
func (s *WindowScroller) SetTarget(win WindowTarget) {
	s.mu.Lock()
	s.detachLocked()
	s.win = win
	if win == nil {
		s.snap = ScrollSnapshot{Viewport: s.cfg.InitialViewport}
		s.parentStatic = 0
	} else {
		s.parentStatic = win.ScrollOffset()
		if s.cfg.ContainerStart != nil {
			s.parentStatic += s.cfg.ContainerStart()
		}
		s.snap = ScrollSnapshot{
			Offset:   win.ScrollOffset() - s.parentStatic,
			Viewport: win.InnerSize(),
		}
		if s.cfg.ObserveSize != nil {
			s.cancelSize = s.cfg.ObserveSize(s.onSize)
		}
		if s.cfg.ObserveScroll != nil {
			s.cancelScroll = s.cfg.ObserveScroll(s.onScroll)
		}
	}
	snap := s.snap
	s.mu.Unlock()
	s.n.emit(snap)
}

func (s *WindowScroller) detachLocked() {
	if s.cancelSize != nil {
		s.cancelSize()
		s.cancelSize = nil
	}
	if s.cancelScroll != nil {
		s.cancelScroll()
		s.cancelScroll = nil
	}
	s.win = nil
}

func (s *WindowScroller) onSize(v float64) {
	s.mu.Lock()
	s.snap.Viewport = v
	snap := s.snap
	s.mu.Unlock()
	s.n.emit(snap)
}

func (s *WindowScroller) onScroll() {
	s.mu.Lock()
	if s.win == nil {
		s.mu.Unlock()
		return
	}
	s.snap.Offset = s.win.ScrollOffset() - s.parentStatic
	snap := s.snap
	s.mu.Unlock()
	s.n.emit(snap)
}

// Axis returns the dimension this scroller reports.
func (s *WindowScroller) Axis() Axis {
	return s.cfg.Axis
}

// Snapshot returns the latest known scroll state in container-local
// coordinates.
func (s *WindowScroller) Snapshot() ScrollSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// SetOffset writes the window scroll position. Logical in-list offsets
// (ReasonToIndex, ReasonSizeChanged) are translated back to window
// coordinates; a raw ReasonToOffset is applied as given, mirroring direct
// element semantics.
func (s *WindowScroller) SetOffset(offset float64, reason Reason) {
	s.mu.Lock()
	win := s.win
	if win != nil && (reason == ReasonToIndex || reason == ReasonSizeChanged) {
		offset += s.parentStatic
	}
	s.mu.Unlock()
	if win == nil {
		return
	}
	win.SetScrollOffset(offset)
}

// Subscribe registers a change listener.
func (s *WindowScroller) Subscribe(fn func(ScrollSnapshot)) func() {
	return s.n.subscribe(fn)
}

// Close detaches the window and drops all listeners.
func (s *WindowScroller) Close() {
	s.mu.Lock()
	s.detachLocked()
	s.snap = ScrollSnapshot{Viewport: s.cfg.InitialViewport}
	s.parentStatic = 0
	s.mu.Unlock()
	s.n.clear()
}
