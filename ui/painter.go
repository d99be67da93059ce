// Copyright 2026 Texelvirt contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: ui/painter.go
// Summary: Clipped painter over a cell buffer.

package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Painter draws into a cell buffer, clipped to a rectangle. Widgets
// receive a Painter and never touch the buffer directly.
type Painter struct {
	buf  [][]Cell
	clip Rect
}

// NewPainter wraps a buffer with the given clip region.
func NewPainter(buf [][]Cell, clip Rect) *Painter {
	return &Painter{buf: buf, clip: clip}
}

// WithClip returns a painter restricted to the intersection of the
// current clip and r.
func (p *Painter) WithClip(r Rect) *Painter {
	return &Painter{buf: p.buf, clip: p.clip.Intersect(r)}
}

// SetCell writes one cell if it falls inside the clip and the buffer.
func (p *Painter) SetCell(x, y int, ch rune, style tcell.Style) {
	if !p.clip.Contains(x, y) {
		return
	}
	if y < 0 || y >= len(p.buf) || x < 0 || x >= len(p.buf[y]) {
		return
	}
	p.buf[y][x] = Cell{Ch: ch, Style: style}
}

// Fill floods a rectangle with one rune and style.
func (p *Painter) Fill(r Rect, ch rune, style tcell.Style) {
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			p.SetCell(x, y, ch, style)
		}
	}
}

// Text draws a string starting at (x, y), advancing by display width so
// wide runes occupy their two columns.
func (p *Painter) Text(x, y int, s string, style tcell.Style) {
	col := x
	for _, ch := range s {
		w := runewidth.RuneWidth(ch)
		if w == 0 {
			continue
		}
		p.SetCell(col, y, ch, style)
		col += w
	}
}

// PadRight pads s with spaces to w terminal columns, measuring display
// width rather than bytes so multibyte runes do not under-fill.
func PadRight(s string, w int) string {
	width := runewidth.StringWidth(s)
	for ; width < w; width++ {
		s += " "
	}
	return s
}
