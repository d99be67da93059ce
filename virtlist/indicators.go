// Copyright 2026 Texelvirt contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: virtlist/indicators.go
// Summary: Overflow arrows drawn at the edges of a scrolling region.

package virtlist

import (
	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/texelvirt/ui"
)

// IndicatorPosition selects which edge column carries the arrows.
type IndicatorPosition int

const (
	IndicatorRight IndicatorPosition = iota
	IndicatorLeft
)

// Default indicator glyphs.
const (
	DefaultUpGlyph   = '▲'
	DefaultDownGlyph = '▼'
)

// IndicatorConfig controls the overflow indicator rendering.
type IndicatorConfig struct {
	Position  IndicatorPosition
	Style     tcell.Style
	UpGlyph   rune
	DownGlyph rune
}

// DefaultIndicatorConfig returns the standard right-edge arrows in the
// given style.
func DefaultIndicatorConfig(style tcell.Style) IndicatorConfig {
	return IndicatorConfig{
		Position:  IndicatorRight,
		Style:     style,
		UpGlyph:   DefaultUpGlyph,
		DownGlyph: DefaultDownGlyph,
	}
}

// DrawIndicators draws the up/down overflow arrows into the corners of
// rect for whichever directions still have content.
func DrawIndicators(p *ui.Painter, rect ui.Rect, up, down bool, cfg IndicatorConfig) {
	if rect.W <= 0 || rect.H <= 0 {
		return
	}
	x := rect.X + rect.W - 1
	if cfg.Position == IndicatorLeft {
		x = rect.X
	}
	if up {
		p.SetCell(x, rect.Y, cfg.UpGlyph, cfg.Style)
	}
	if down {
		p.SetCell(x, rect.Y+rect.H-1, cfg.DownGlyph, cfg.Style)
	}
}
