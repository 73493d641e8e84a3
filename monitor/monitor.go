/*
Copyright (c) 2019-2021 Andreas T Jonsson

This software is provided 'as-is', without any express or implied
warranty. In no event will the authors be held liable for any damages
arising from the use of this software.

Permission is granted to anyone to use this software for any purpose,
including commercial applications, and to alter it and redistribute it
freely, subject to the following restrictions:

1. The origin of this software must not be misrepresented; you must not
   claim that you wrote the original software. If you use this software
   in a product, an acknowledgment in the product documentation would be
   appreciated but is not required.
2. Altered source versions must be plainly marked as such, and must not be
   misrepresented as being the original software.
3. This notice may not be removed or altered from any source distribution.
*/

// Package monitor renders the detection result as a boot style
// terminal screen.
package monitor

import (
	"fmt"

	"github.com/gdamore/tcell"

	"github.com/go-pcboot/pcboot/firmware/ata"
)

type screenState struct {
	screen tcell.Screen
	drv    *ata.Driver
}

// Show opens a terminal screen listing channels and detected drives,
// returning when the user dismisses it.
func Show(drv *ata.Driver) error {
	tcell.SetEncodingFallback(tcell.EncodingFallbackASCII)

	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	defer s.Fini()

	s.HideCursor()
	s.DisableMouse()

	st := &screenState{screen: s, drv: drv}
	st.draw()

	for {
		switch ev := s.PollEvent().(type) {
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyEnter:
				return nil
			case ev.Rune() == 'q':
				return nil
			}
		case *tcell.EventResize:
			s.Sync()
			st.draw()
		}
	}
}

func (st *screenState) puts(x, y int, style tcell.Style, text string) {
	for i, r := range text {
		st.screen.SetCell(x+i, y, style, r)
	}
}

func (st *screenState) draw() {
	s := st.screen
	s.Clear()

	header := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlue).Bold(true)
	normal := tcell.StyleDefault
	dim := tcell.StyleDefault.Foreground(tcell.ColorGray)

	w, _ := s.Size()
	if w < 40 {
		w = 40
	}
	for x := 0; x < w; x++ {
		s.SetCell(x, 0, header, ' ')
	}
	st.puts(1, 0, header, "pcboot storage monitor")

	y := 2
	st.puts(1, y, normal, "Controllers:")
	y++
	for i, ch := range st.drv.Channels() {
		line := fmt.Sprintf("  ata%d: cmd 0x%03X ctrl 0x%03X irq %d", i, ch.CmdBase, ch.CtrlBase, ch.IRQ)
		st.puts(1, y, dim, line)
		y++
	}

	y++
	drives := st.drv.Drives().All()
	if len(drives) == 0 {
		st.puts(1, y, normal, "No drives detected.")
		y++
	} else {
		st.puts(1, y, normal, "Drives:")
		y++
		for _, dr := range drives {
			st.puts(1, y, normal, "  "+ata.Describe(dr))
			y++
		}
	}

	y++
	st.puts(1, y, dim, "Press ESC or q to exit.")
	s.Show()
}
