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
	"encoding/binary"

	"github.com/go-pcboot/pcboot/firmware/disk"
	"github.com/go-pcboot/pcboot/firmware/xlog"
)

func (d *Driver) readBlock(ch *Channel, buf []byte) {
	if d.pio32 {
		for i := 0; i < len(buf); i += 4 {
			binary.LittleEndian.PutUint32(buf[i:], d.bus.InLong(ch.CmdBase+regData))
		}
		return
	}
	for i := 0; i < len(buf); i += 2 {
		binary.LittleEndian.PutUint16(buf[i:], d.bus.InWord(ch.CmdBase+regData))
	}
}

func (d *Driver) writeBlock(ch *Channel, buf []byte) {
	if d.pio32 {
		for i := 0; i < len(buf); i += 4 {
			d.bus.OutLong(ch.CmdBase+regData, binary.LittleEndian.Uint32(buf[i:]))
		}
		return
	}
	for i := 0; i < len(buf); i += 2 {
		d.bus.OutWord(ch.CmdBase+regData, binary.LittleEndian.Uint16(buf[i:]))
	}
}

// transfer moves op.Count blocks of blocksize bytes through the data
// port. On failure the number of unconfirmed blocks is written back to
// op.Count so the caller can tell how much of the request completed.
func (d *Driver) transfer(op *disk.Op, ch *Channel, iswrite bool, blocksize int) error {
	xlog.Printf(16, "ata_transfer id=%d write=%v count=%d bs=%d",
		op.Drive.CntlID, iswrite, op.Count, blocksize)

	buf := op.Buf
	remaining := op.Count
	var status byte
	for {
		if iswrite {
			d.writeBlock(ch, buf[:blocksize])
		} else {
			d.readBlock(ch, buf[:blocksize])
		}
		buf = buf[blocksize:]

		var err error
		status, err = d.pauseAwaitNotBusy(ch)
		if err != nil {
			op.Count = remaining
			return err
		}

		remaining--
		if remaining == 0 {
			break
		}
		if status&(statBSY|statDRQ|statERR) != statDRQ {
			xlog.Printf(6, "ata_transfer: more blocks left (status 0x%02X)", status)
			op.Count = remaining
			return ErrTransfer
		}
	}

	status &= statBSY | statDF | statDRQ | statERR
	if !iswrite {
		// Device fault only means something after a write.
		status &^= statDF
	}
	if status != 0 {
		xlog.Printf(6, "ata_transfer: no blocks left (status 0x%02X)", status)
		return ErrTransfer
	}
	return nil
}
