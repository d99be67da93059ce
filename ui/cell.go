// Copyright 2026 Texelvirt contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: ui/cell.go
// Summary: Cell buffer primitives shared by widgets and screen glue.

package ui

import "github.com/gdamore/tcell/v2"

// Cell is one terminal cell: a rune plus its style.
type Cell struct {
	Ch    rune
	Style tcell.Style
}

// Rect is an integer rectangle in screen coordinates.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Intersect returns the overlapping region of two rectangles; a
// zero-area Rect when they do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	x0 := r.X
	if o.X > x0 {
		x0 = o.X
	}
	y0 := r.Y
	if o.Y > y0 {
		y0 = o.Y
	}
	x1 := r.X + r.W
	if o.X+o.W < x1 {
		x1 = o.X + o.W
	}
	y1 := r.Y + r.H
	if o.Y+o.H < y1 {
		y1 = o.Y + o.H
	}
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// NewBuffer allocates a w×h cell buffer filled with spaces in the given
// style.
func NewBuffer(w, h int, style tcell.Style) [][]Cell {
	buf := make([][]Cell, h)
	for y := range buf {
		row := make([]Cell, w)
		for x := range row {
			row[x] = Cell{Ch: ' ', Style: style}
		}
		buf[y] = row
	}
	return buf
}
