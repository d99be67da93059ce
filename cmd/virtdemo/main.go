// Copyright 2026 Texelvirt contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/virtdemo/main.go
// Summary: Interactive demo scrolling a huge generated list with the
// VirtualList widget.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/texelvirt/config"
	"github.com/framegrace/texelvirt/ui"
	"github.com/framegrace/texelvirt/virt"
	"github.com/framegrace/texelvirt/virtlist"
)

var fillers = []string{
	"",
	" - short note",
	" - a somewhat longer annotation that may wrap on narrow terminals",
	" - this row carries a long payload so that heights vary across the list and the measurement feedback path actually does something interesting",
}

func rowText(index int) string {
	return fmt.Sprintf("%7d │ item %d%s", index, index, fillers[index%len(fillers)])
}

func main() {
	appCfg := config.App("virtdemo")
	rows := appCfg.GetInt("virtdemo", "rows", 100000)
	wrap := appCfg.GetBool("virtdemo", "wrap", true)

	sysCfg := config.System()
	fg := tcell.GetColor(sysCfg.GetString("theme", "foreground", "white"))
	bg := tcell.GetColor(sysCfg.GetString("theme", "background", "black"))
	style := tcell.StyleDefault.Foreground(fg).Background(bg)

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "virtdemo: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "virtdemo: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()
	screen.EnableMouse()

	w, h := screen.Size()
	list := virtlist.NewVirtualList(0, 1, w, h-2, style)
	defer list.Close()
	list.Virtualizer().SetOverscan(sysCfg.GetInt("scroll", "overscan", 2))
	list.Virtualizer().SetSettleDelay(time.Duration(sysCfg.GetInt("scroll", "settle_delay_ms", 150)) * time.Millisecond)
	list.SetWheelStep(sysCfg.GetInt("scroll", "wheel_step", virtlist.WheelStep))
	list.SetRows(rows, func(index, width int) []string {
		if wrap {
			return virtlist.WrapString(rowText(index), width)
		}
		return []string{rowText(index)}
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

	render(screen, list, rows, style)
	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				w, h := screen.Size()
				list.SetPosition(0, 1)
				list.Resize(w, h-2)
				screen.Sync()
			case *tcell.EventKey:
				switch {
				case ev.Key() == tcell.KeyEsc || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q':
					return
				case ev.Rune() == 'g':
					list.ScrollToIndex(0, virt.AlignStart)
				case ev.Rune() == 'G':
					list.ScrollToIndex(rows-1, virt.AlignEnd)
				default:
					list.HandleKey(ev)
				}
			case *tcell.EventMouse:
				list.HandleMouse(ev)
			}
			render(screen, list, rows, style)
		case <-refresh:
			render(screen, list, rows, style)
		}
	}
}

func render(screen tcell.Screen, list *virtlist.VirtualList, rows int, style tcell.Style) {
	w, h := screen.Size()
	buf := ui.NewBuffer(w, h, style)
	p := ui.NewPainter(buf, ui.Rect{X: 0, Y: 0, W: w, H: h})

	bar := style.Reverse(true)
	title := fmt.Sprintf(" virtdemo - %d rows ", rows)
	p.Text(0, 0, ui.PadRight(title, w), bar)

	list.Draw(p)

	r := list.Virtualizer().Range()
	status := fmt.Sprintf(" rows %d-%d of %d │ offset %.0f/%.0f │ ↑↓ PgUp PgDn g G wheel, q quits ",
		r.Start, r.End, rows, list.ScrollOffset(), list.Virtualizer().TotalSize())
	p.Text(0, h-1, ui.PadRight(status, w), bar)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			screen.SetContent(x, y, buf[y][x].Ch, nil, buf[y][x].Style)
		}
	}
	screen.Show()
}
