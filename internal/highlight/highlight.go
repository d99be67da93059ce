// Copyright 2026 Texelvirt contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/highlight/highlight.go
// Summary: Per-line syntax highlighting for terminal display. Chroma
// tokenizes, go-enry detects the language, and token colors map onto
// tcell styles.

package highlight

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gdamore/tcell/v2"
	"github.com/go-enry/go-enry/v2"
)

const defaultStyleName = "monokai"

// Segment is a run of text sharing one style.
type Segment struct {
	Text  string
	Style tcell.Style
}

// Detect returns the language of the content, using the filename as a
// hint when available. Empty when detection fails.
func Detect(filename string, content []byte) string {
	return enry.GetLanguage(filename, content)
}

// Highlighter tokenizes lines for a fixed language and color style.
type Highlighter struct {
	lexer chroma.Lexer
	style *chroma.Style
	base  tcell.Style
}

// New creates a highlighter for the given language and Chroma style
// name. An unknown language falls back to the plain-text lexer, an
// unknown style to the default.
func New(language, styleName string, base tcell.Style) *Highlighter {
	var lexer chroma.Lexer
	if language != "" {
		lexer = lexers.Get(language)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return &Highlighter{
		lexer: chroma.Coalesce(lexer),
		style: chromaStyle(styleName),
		base:  base,
	}
}

func chromaStyle(name string) *chroma.Style {
	if name == "" {
		name = defaultStyleName
	}
	return styles.Get(name)
}

// Line tokenizes one line into styled segments. The concatenated
// segment text always equals the input; on tokenizer failure the whole
// line comes back as a single base-styled segment.
func (h *Highlighter) Line(s string) []Segment {
	if s == "" {
		return nil
	}
	tokens, err := chroma.Tokenise(h.lexer, nil, s)
	if err != nil {
		return []Segment{{Text: s, Style: h.base}}
	}

	baseColour := h.style.Get(chroma.Text).Colour
	var out []Segment
	for _, tok := range tokens {
		if tok.Type == chroma.EOFType || tok.Value == "" {
			continue
		}
		// Tokenise appends a newline to unterminated input; the caller
		// hands us single lines, so strip it back off.
		text := strings.TrimSuffix(tok.Value, "\n")
		if text == "" {
			continue
		}
		out = append(out, Segment{Text: text, Style: h.tokenStyle(tok.Type, baseColour)})
	}
	return out
}

// tokenStyle maps a token type onto the base style. Colors matching the
// style's plain-text color are skipped so the terminal default shows
// through.
func (h *Highlighter) tokenStyle(t chroma.TokenType, baseColour chroma.Colour) tcell.Style {
	entry := h.style.Get(t)
	st := h.base
	if entry.Colour.IsSet() && entry.Colour != baseColour {
		st = st.Foreground(tcell.NewRGBColor(
			int32(entry.Colour.Red()),
			int32(entry.Colour.Green()),
			int32(entry.Colour.Blue()),
		))
	}
	if entry.Bold == chroma.Yes {
		st = st.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		st = st.Italic(true)
	}
	if entry.Underline == chroma.Yes {
		st = st.Underline(true)
	}
	return st
}
