// Copyright 2026 Texelvirt contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: virtlist/wrap.go
// Summary: Display-width aware line wrapping for row producers.

package virtlist

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// WrapString hard-wraps s into lines no wider than width terminal
// columns, counting wide runes as two. Embedded newlines also break.
// Always returns at least one line.
func WrapString(s string, width int) []string {
	if width <= 0 {
		return []string{""}
	}
	var lines []string
	var b strings.Builder
	col := 0
	for _, ch := range s {
		if ch == '\n' {
			lines = append(lines, b.String())
			b.Reset()
			col = 0
			continue
		}
		w := runewidth.RuneWidth(ch)
		if w == 0 {
			continue
		}
		if col+w > width {
			lines = append(lines, b.String())
			b.Reset()
			col = 0
		}
		b.WriteRune(ch)
		col += w
	}
	lines = append(lines, b.String())
	return lines
}
