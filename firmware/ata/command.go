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

import "github.com/go-pcboot/pcboot/firmware/xlog"

// taskFile mirrors the command block registers for one command. The
// "2" fields are the high-order bytes latched first for 48-bit
// commands.
type taskFile struct {
	feature     byte
	sectorCount byte
	lbaLow      byte
	lbaMid      byte
	lbaHigh     byte
	device      byte
	command     byte

	sectorCount2 byte
	lbaLow2      byte
	lbaMid2      byte
	lbaHigh2     byte
}

// issueCommand selects the device, writes the task file and waits for
// the device to request its data phase. On success the returned status
// has DRQ set.
func (d *Driver) issueCommand(ch *Channel, slave bool, cmd *taskFile) error {
	if _, err := d.awaitNotBusy(ch); err != nil {
		return err
	}

	// Select device.
	newdh := cmd.device &^ devHeadSlv
	if slave {
		newdh |= devHeadDev1
	} else {
		newdh |= devHeadDev0
	}
	olddh := d.bus.InByte(ch.CmdBase + regDevHead)
	d.bus.OutByte(ch.CmdBase+regDevHead, newdh)
	if (olddh^newdh)&devHeadSlv != 0 {
		// Device change - allow the status register to settle.
		if _, err := d.ndelayAwaitNotBusy(ch); err != nil {
			return err
		}
	}

	if cmd.command&cmdBitLBA48 != 0 {
		// Each register latches two successive writes into one
		// 16-bit value, high byte first.
		d.bus.OutByte(ch.CmdBase+regFeature, 0x00)
		d.bus.OutByte(ch.CmdBase+regSectCnt, cmd.sectorCount2)
		d.bus.OutByte(ch.CmdBase+regLBALow, cmd.lbaLow2)
		d.bus.OutByte(ch.CmdBase+regLBAMid, cmd.lbaMid2)
		d.bus.OutByte(ch.CmdBase+regLBAHigh, cmd.lbaHigh2)
	}
	d.bus.OutByte(ch.CmdBase+regFeature, cmd.feature)
	d.bus.OutByte(ch.CmdBase+regSectCnt, cmd.sectorCount)
	d.bus.OutByte(ch.CmdBase+regLBALow, cmd.lbaLow)
	d.bus.OutByte(ch.CmdBase+regLBAMid, cmd.lbaMid)
	d.bus.OutByte(ch.CmdBase+regLBAHigh, cmd.lbaHigh)
	d.bus.OutByte(ch.CmdBase+regCommand, cmd.command)

	status, err := d.ndelayAwaitNotBusy(ch)
	if err != nil {
		return err
	}

	if status&statERR != 0 {
		devErr := &DeviceError{Status: status, Err: d.bus.InByte(ch.CmdBase + regError)}
		xlog.Printf(6, "send_cmd: read error (status=0x%02X err=0x%02X)", devErr.Status, devErr.Err)
		return devErr
	}
	if status&statDRQ == 0 {
		xlog.Printf(6, "send_cmd: DRQ not set (status 0x%02X)", status)
		return ErrNoDRQ
	}
	return nil
}
