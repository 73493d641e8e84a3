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
	"github.com/go-pcboot/pcboot/firmware/disk"
	"github.com/go-pcboot/pcboot/firmware/scheduler"
	"github.com/go-pcboot/pcboot/firmware/xlog"
)

// Reset pulses SRST on the drive's channel and re-synchronizes device
// selection. Interrupts are re-enabled on every exit path.
func (d *Driver) Reset(dr *disk.Drive) {
	ch, err := d.driveChannel(dr)
	if err != nil {
		return
	}
	xlog.Printf(6, "ata_reset drive=%d", dr.CntlID)
	d.reset(ch, dr.Slave(), dr.Type == disk.TypeATA)
}

func (d *Driver) reset(ch *Channel, slave, isATA bool) {
	// Pulse SRST with interrupts masked.
	d.bus.OutByte(ch.CtrlBase, devCtlHD15|devCtlNIEN|devCtlSRST)
	d.delay.UDelay(5)
	d.bus.OutByte(ch.CtrlBase, devCtlHD15|devCtlNIEN)
	d.delay.MSleep(2)

	// Interrupts stay enabled past every return below.
	defer d.bus.OutByte(ch.CtrlBase, devCtlHD15)

	status, err := d.awaitNotBusy(ch)
	if err != nil {
		xlog.Printf(6, "ata_reset exit status=%x", status)
		return
	}

	if slave {
		// Some controllers need several tries before a device select
		// latches after reset.
		deadline := scheduler.FutureDeadline(d.timeout)
		for {
			d.bus.OutByte(ch.CmdBase+regDevHead, devHeadDev1)
			status, err = d.ndelayAwaitNotBusy(ch)
			if err != nil {
				return
			}
			if d.bus.InByte(ch.CmdBase+regDevHead) == devHeadDev1 {
				break
			}
			// Select request did not take effect - retry.
			if deadline.Expired() {
				xlog.Printf(1, "ata_reset slave time out")
				return
			}
			scheduler.Yield()
		}
	} else {
		// Not all controllers restore the select bit on reset, force
		// device 0.
		d.bus.OutByte(ch.CmdBase+regDevHead, devHeadDev0)
	}

	// A known ATA device should come back ready, not just non-busy.
	if isATA {
		status, _ = d.awaitReady(ch)
	}
	xlog.Printf(6, "ata_reset exit status=%x", status)
}
