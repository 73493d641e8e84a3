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

package ata

import (
	"fmt"

	"github.com/go-pcboot/pcboot/firmware/pci"
	"github.com/go-pcboot/pcboot/firmware/scheduler"
	"github.com/go-pcboot/pcboot/firmware/xlog"
)

// registerChannel appends a channel to the registry. Detection tasks
// start only after the whole registry is in place, so they never see
// it mid-append.
func (d *Driver) registerChannel(bdf int, irq byte, cmdBase, ctrlBase uint16) {
	if len(d.channels) >= d.maxChannels {
		return
	}
	idx := len(d.channels)
	d.channels = append(d.channels, Channel{
		CmdBase:  cmdBase,
		CtrlBase: ctrlBase,
		IRQ:      irq,
		BDF:      bdf,
	})
	xlog.Printf(1, "ATA controller %d at %x/%x (irq %d dev %x)",
		idx, cmdBase, ctrlBase, irq, bdf)
}

// Setup scans for IDE class controllers, registers their channels and
// starts detection. Native mode functions carry their port bases in
// the resource registers; compatibility mode means the fixed legacy
// ports and IRQ 14/15.
func (d *Driver) Setup() {
	xlog.Printf(3, "init hard drives")

	// Every channel's initial wait shares this deadline.
	d.spinup = scheduler.FutureDeadline(d.timeout)

	var fns []pci.Function
	if d.pcibus != nil {
		fns = d.pcibus.Functions()
	}

	pciCount := 0
	for _, f := range fns {
		pciCount++
		if f.Class != pci.ClassStorageIDE {
			continue
		}
		if len(d.channels) >= d.maxChannels {
			break
		}

		if f.ProgIF&pci.ProgIFPrimaryNative != 0 {
			d.registerChannel(f.BDF, f.IRQ, f.PortBase(0), f.PortBase(1))
		} else {
			d.registerChannel(f.BDF, IRQATA1, PortATA1Cmd, PortATA1Ctrl)
		}

		if f.ProgIF&pci.ProgIFSecondaryNative != 0 {
			d.registerChannel(f.BDF, f.IRQ, f.PortBase(2), f.PortBase(3))
		} else {
			d.registerChannel(f.BDF, IRQATA2, PortATA2Cmd, PortATA2Ctrl)
		}
	}

	if pciCount == 0 && d.maxChannels >= 2 {
		// No PCI at all - an ISA machine. Assume the legacy
		// controller pair.
		d.registerChannel(-1, IRQATA1, PortATA1Cmd, PortATA1Ctrl)
		d.registerChannel(-1, IRQATA2, PortATA2Cmd, PortATA2Ctrl)
	}

	// The registry is complete and frozen; launch one fire-and-forget
	// detection task per channel. Wait drains them for callers that
	// need synchronous enumeration.
	for idx := range d.channels {
		idx := idx
		ch := &d.channels[idx]
		d.tasks.Spawn(fmt.Sprintf("ata-detect-%d", idx), func() {
			d.detect(idx, ch)
		})
	}
}

// Wait blocks until every in-flight detection task has finished.
func (d *Driver) Wait() {
	d.tasks.Wait()
}
