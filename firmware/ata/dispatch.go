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
	"errors"

	"github.com/go-pcboot/pcboot/firmware/disk"
	"github.com/go-pcboot/pcboot/firmware/xlog"
)

// needsLBA48 decides the addressing mode for one command. The modes
// are never mixed within a command.
func needsLBA48(lba uint64, count int) bool {
	return count >= 1<<8 || lba+uint64(count) >= 1<<28
}

// ataCommandData runs one full command-issue plus data-transfer cycle
// against a hard disk.
func (d *Driver) ataCommandData(op *disk.Op, iswrite bool, command byte) error {
	ch, err := d.driveChannel(op.Drive)
	if err != nil {
		return err
	}
	lba := op.LBA

	cmd := taskFile{command: command}
	if needsLBA48(lba, op.Count) {
		cmd.sectorCount2 = byte(op.Count >> 8)
		cmd.lbaLow2 = byte(lba >> 24)
		cmd.lbaMid2 = byte(lba >> 32)
		cmd.lbaHigh2 = byte(lba >> 40)

		cmd.command |= cmdBitLBA48
		lba &= 0xffffff
	}

	cmd.sectorCount = byte(op.Count)
	cmd.lbaLow = byte(lba)
	cmd.lbaMid = byte(lba >> 8)
	cmd.lbaHigh = byte(lba >> 16)
	cmd.device = byte((lba>>24)&0xf) | devHeadLBA

	// No transfer interrupts in PIO mode; unmask on every exit.
	d.bus.OutByte(ch.CtrlBase, devCtlHD15|devCtlNIEN)
	defer d.bus.OutByte(ch.CtrlBase, devCtlHD15)

	if err := d.issueCommand(ch, op.Drive.Slave(), &cmd); err != nil {
		return err
	}
	return d.transfer(op, ch, iswrite, SectorSize)
}

// atapiCommandData issues a packet command and runs its data-in phase.
func (d *Driver) atapiCommandData(op *disk.Op, cmdbuf []byte, blocksize int) error {
	ch, err := d.driveChannel(op.Drive)
	if err != nil {
		return err
	}

	cmd := taskFile{
		lbaMid:  byte(blocksize),
		lbaHigh: byte(blocksize >> 8),
		command: cmdPacket,
	}

	d.bus.OutByte(ch.CtrlBase, devCtlHD15|devCtlNIEN)
	defer d.bus.OutByte(ch.CtrlBase, devCtlHD15)

	if err := d.issueCommand(ch, op.Drive.Slave(), &cmd); err != nil {
		return err
	}

	// Send the packet through the data port, always word wide.
	for i := 0; i < len(cmdbuf); i += 2 {
		d.bus.OutWord(ch.CmdBase+regData, binary.LittleEndian.Uint16(cmdbuf[i:]))
	}

	status, err := d.pauseAwaitNotBusy(ch)
	if err != nil {
		return err
	}
	if status&statERR != 0 {
		devErr := &DeviceError{Status: status, Err: d.bus.InByte(ch.CmdBase + regError)}
		if !devErr.NotReady() {
			// "Not ready" is expected while a medium spins up, skip
			// the log noise for it.
			xlog.Printf(6, "send_atapi_cmd: read error (status=0x%02X err=0x%02X)",
				devErr.Status, devErr.Err)
		}
		return devErr
	}
	if status&statDRQ == 0 {
		xlog.Printf(6, "send_atapi_cmd: DRQ not set (status 0x%02X)", status)
		return ErrNoDRQ
	}

	return d.transfer(op, ch, false, blocksize)
}

// cdromRead reads blocks from a packet device with a READ(10) packet:
// opcode, big-endian LBA, big-endian block count.
func (d *Driver) cdromRead(op *disk.Op) error {
	cmdbuf := make([]byte, 12)
	cmdbuf[0] = 0x28
	cmdbuf[2] = byte(op.LBA >> 24)
	cmdbuf[3] = byte(op.LBA >> 16)
	cmdbuf[4] = byte(op.LBA >> 8)
	cmdbuf[5] = byte(op.LBA)
	cmdbuf[7] = byte(op.Count >> 8)
	cmdbuf[8] = byte(op.Count)

	return d.atapiCommandData(op, cmdbuf, CDSectorSize)
}

// CommandPacket sends an arbitrary packet command to a drive and
// transfers one response block of the given length.
func (d *Driver) CommandPacket(dr *disk.Drive, cmdbuf []byte, length int, buf []byte) error {
	op := disk.Op{
		Drive: dr,
		Count: 1,
		Buf:   buf,
	}
	return d.atapiCommandData(&op, cmdbuf, length)
}

// IsReady selects the drive and samples the status register without
// issuing a command.
func (d *Driver) IsReady(dr *disk.Drive) disk.Status {
	ch, err := d.driveChannel(dr)
	if err != nil {
		xlog.Printf(6, "isready: %v", err)
		return disk.ENotReady
	}

	// The last probe may have left the other device selected.
	newdh := byte(devHeadDev0)
	if dr.Slave() {
		newdh = devHeadDev1
	}
	olddh := d.bus.InByte(ch.CmdBase + regDevHead)
	d.bus.OutByte(ch.CmdBase+regDevHead, newdh)
	if (olddh^newdh)&devHeadSlv != 0 {
		d.delay.NDelay(400)
	}

	status := d.bus.InByte(ch.CmdBase + regStatus)
	if status&(statBSY|statRDY) == statRDY {
		return disk.Success
	}
	return disk.ENotReady
}

// miscOp handles the commands shared between ATA and ATAPI drives.
func (d *Driver) miscOp(op *disk.Op) disk.Status {
	switch op.Command {
	case disk.CmdReset:
		d.Reset(op.Drive)
		return disk.Success
	case disk.CmdIsReady:
		return d.IsReady(op.Drive)
	case disk.CmdFormat, disk.CmdVerify, disk.CmdSeek:
		return disk.Success
	default:
		op.Count = 0
		return disk.EParam
	}
}

func (d *Driver) processATA(op *disk.Op) disk.Status {
	var err error
	switch op.Command {
	case disk.CmdRead:
		err = d.ataCommandData(op, false, cmdReadSectors)
	case disk.CmdWrite:
		err = d.ataCommandData(op, true, cmdWriteSectors)
	default:
		return d.miscOp(op)
	}
	if err != nil {
		xlog.Printf(6, "ata op %d failed: %v", op.Command, err)
		return disk.EBadTrack
	}
	return disk.Success
}

func (d *Driver) processATAPI(op *disk.Op) disk.Status {
	var err error
	switch op.Command {
	case disk.CmdRead:
		err = d.cdromRead(op)
	case disk.CmdWrite, disk.CmdFormat:
		// All packet media is treated as read-only here.
		return disk.EWriteProtect
	default:
		return d.miscOp(op)
	}
	if err != nil {
		var devErr *DeviceError
		if !errors.As(err, &devErr) || !devErr.NotReady() {
			xlog.Printf(6, "atapi op %d failed: %v", op.Command, err)
		}
		return disk.EBadTrack
	}
	return disk.Success
}

// Process maps one generic disk operation onto the drive's protocol
// and returns the public status for it.
func (d *Driver) Process(op *disk.Op) disk.Status {
	switch op.Drive.Type {
	case disk.TypeATA:
		return d.processATA(op)
	case disk.TypeATAPI:
		return d.processATAPI(op)
	default:
		op.Count = 0
		return disk.EParam
	}
}
