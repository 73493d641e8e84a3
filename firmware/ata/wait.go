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
	"github.com/go-pcboot/pcboot/firmware/scheduler"
	"github.com/go-pcboot/pcboot/firmware/xlog"
)

// awaitStatus polls the status register until status&mask == flags,
// yielding between polls. Returns the status byte that satisfied the
// condition, or ErrTimeout once the deadline passes.
func (d *Driver) awaitStatus(ch *Channel, mask, flags byte, deadline scheduler.Deadline) (byte, error) {
	for {
		status := d.bus.InByte(ch.CmdBase + regStatus)
		if status&mask == flags {
			return status, nil
		}
		if deadline.Expired() {
			xlog.Printf(1, "IDE time out")
			return status, ErrTimeout
		}
		scheduler.Yield()
	}
}

// awaitNotBusy waits for BSY to drop.
func (d *Driver) awaitNotBusy(ch *Channel) (byte, error) {
	return d.awaitStatus(ch, statBSY, 0, scheduler.FutureDeadline(d.timeout))
}

// awaitReady waits for RDY to rise.
func (d *Driver) awaitReady(ch *Channel) (byte, error) {
	return d.awaitStatus(ch, statRDY, statRDY, scheduler.FutureDeadline(d.timeout))
}

// pauseAwaitNotBusy waits one PIO transfer cycle (an alternate status
// read) before polling. Required after a data block transfer.
func (d *Driver) pauseAwaitNotBusy(ch *Channel) (byte, error) {
	d.bus.InByte(ch.CtrlBase)
	return d.awaitNotBusy(ch)
}

// ndelayAwaitNotBusy pauses 400ns before polling. Required after a
// device select, while the status register is still undefined.
func (d *Driver) ndelayAwaitNotBusy(ch *Channel) (byte, error) {
	d.delay.NDelay(400)
	return d.awaitNotBusy(ch)
}

// powerupAwaitNotBusy waits for BSY against the shared power-up
// deadline so the total probe time across channels stays bounded by
// one timeout window. A status accumulating to all-ones means nothing
// is driving the bus; that channel id is certainly empty.
func (d *Driver) powerupAwaitNotBusy(ch *Channel) (byte, error) {
	var orstatus byte
	for {
		status := d.bus.InByte(ch.CmdBase + regStatus)
		if status&statBSY == 0 {
			xlog.Printf(6, "powerup iobase=%x st=%x", ch.CmdBase, status)
			return status, nil
		}
		orstatus |= status
		if orstatus == 0xff {
			xlog.Printf(1, "powerup IDE floating")
			return orstatus, ErrFloating
		}
		if d.spinup.Expired() {
			xlog.Printf(1, "powerup IDE time out")
			return status, ErrTimeout
		}
		scheduler.Yield()
	}
}
