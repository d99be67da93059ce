// Copyright 2026 Texelvirt contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/logview/main.go
// Summary: Virtualized viewer for large log files. Lines live in a
// SQLite store and are fetched, highlighted, and drawn only while
// visible.

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"

	"github.com/framegrace/texelvirt/config"
	"github.com/framegrace/texelvirt/internal/highlight"
	"github.com/framegrace/texelvirt/internal/logstore"
	"github.com/framegrace/texelvirt/ui"
	"github.com/framegrace/texelvirt/virt"
	"github.com/framegrace/texelvirt/virtlist"
)

func main() {
	dbPath := flag.String("db", ":memory:", "path to the line store database")
	langFlag := flag.String("lang", "", "language for syntax highlighting (default: detect)")
	styleFlag := flag.String("style", "", "chroma style name")
	flag.Parse()

	appCfg := config.App("logview")
	styleName := *styleFlag
	if styleName == "" {
		styleName = appCfg.GetString("logview", "style", "monokai")
	}
	highlightOn := appCfg.GetBool("logview", "highlight", true)

	store, err := logstore.Open(*dbPath)
	if err != nil {
		log.Fatalf("logview: %v", err)
	}
	defer store.Close()

	filename := flag.Arg(0)
	if filename != "" {
		if err := importFile(store, filename); err != nil {
			log.Fatalf("logview: %v", err)
		}
	}
	if store.Count() == 0 {
		log.Fatalf("logview: no lines to show (pass a file or a populated -db)")
	}

	lang := *langFlag
	if lang == "" {
		lang = appCfg.GetString("logview", "language", "")
	}
	if lang == "" && highlightOn {
		sample, err := store.Lines(0, 100)
		if err == nil {
			lang = highlight.Detect(filename, []byte(strings.Join(sample, "\n")))
		}
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		dump(store)
		return
	}
	if err := run(store, lang, styleName, highlightOn); err != nil {
		log.Fatalf("logview: %v", err)
	}
}

func importFile(store *logstore.Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	return store.Append(lines...)
}

// dump writes all lines plainly when stdout is not a terminal.
func dump(store *logstore.Store) {
	count := store.Count()
	for from := 0; from < count; from += 1024 {
		lines, err := store.Lines(from, from+1024)
		if err != nil {
			log.Fatalf("logview: %v", err)
		}
		for _, line := range lines {
			fmt.Println(line)
		}
	}
}

func run(store *logstore.Store, lang, styleName string, highlightOn bool) error {
	sysCfg := config.System()
	fg := tcell.GetColor(sysCfg.GetString("theme", "foreground", "white"))
	bg := tcell.GetColor(sysCfg.GetString("theme", "background", "black"))
	style := tcell.StyleDefault.Foreground(fg).Background(bg)

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse()

	var hl *highlight.Highlighter
	if highlightOn {
		hl = highlight.New(lang, styleName, style)
	}

	count := store.Count()
	w, h := screen.Size()
	list := virtlist.NewVirtualList(0, 0, w, h-1, style)
	defer list.Close()
	list.Virtualizer().SetOverscan(sysCfg.GetInt("scroll", "overscan", 2))
	list.Virtualizer().SetSettleDelay(time.Duration(sysCfg.GetInt("scroll", "settle_delay_ms", 150)) * time.Millisecond)
	list.SetWheelStep(sysCfg.GetInt("scroll", "wheel_step", virtlist.WheelStep))

	cache := make(map[int]virtlist.StyledLine)
	list.SetStyledRows(count, func(index, width int) []virtlist.StyledLine {
		if line, ok := cache[index]; ok {
			return []virtlist.StyledLine{line}
		}
		text := store.Line(index)
		var line virtlist.StyledLine
		if hl != nil {
			for _, seg := range hl.Line(text) {
				line = append(line, virtlist.StyledSpan{Text: seg.Text, Style: seg.Style})
			}
		} else {
			line = virtlist.StyledLine{{Text: text, Style: style}}
		}
		if len(cache) > 4096 {
			cache = make(map[int]virtlist.StyledLine)
		}
		cache[index] = line
		return []virtlist.StyledLine{line}
	})

	refresh := make(chan struct{}, 1)
	list.SetInvalidator(func(ui.Rect) {
		select {
		case refresh <- struct{}{}:
		default:
		}
	})

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	render(screen, list, lang, count, style)
	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				w, h := screen.Size()
				list.Resize(w, h-1)
				screen.Sync()
			case *tcell.EventKey:
				switch {
				case ev.Key() == tcell.KeyEsc || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q':
					return nil
				case ev.Rune() == 'g':
					list.ScrollToIndex(0, virt.AlignStart)
				case ev.Rune() == 'G':
					list.ScrollToIndex(count-1, virt.AlignEnd)
				default:
					list.HandleKey(ev)
				}
			case *tcell.EventMouse:
				list.HandleMouse(ev)
			}
			render(screen, list, lang, count, style)
		case <-refresh:
			render(screen, list, lang, count, style)
		}
	}
}

func render(screen tcell.Screen, list *virtlist.VirtualList, lang string, count int, style tcell.Style) {
	w, h := screen.Size()
	buf := ui.NewBuffer(w, h, style)
	p := ui.NewPainter(buf, ui.Rect{X: 0, Y: 0, W: w, H: h})

	list.Draw(p)

	r := list.Virtualizer().Range()
	label := lang
	if label == "" {
		label = "plain"
	}
	status := fmt.Sprintf(" %s │ lines %d-%d of %d │ q quits ", label, r.Start, r.End, count)
	p.Text(0, h-1, ui.PadRight(status, w), style.Reverse(true))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			screen.SetContent(x, y, buf[y][x].Ch, nil, buf[y][x].Style)
		}
	}
	screen.Show()
}
