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

	"github.com/go-pcboot/pcboot/firmware/disk"
	"github.com/go-pcboot/pcboot/firmware/xlog"
)

// identify asks the selected device for its identify block using the
// given identify opcode and runs the response through the normal
// command/transfer path.
func (d *Driver) identify(dummy *disk.Drive, command byte, id *identifyData) error {
	for i := range id {
		id[i] = 0
	}
	op := disk.Op{
		Drive: dummy,
		Count: 1,
		LBA:   1,
		Buf:   id[:],
	}
	return d.ataCommandData(&op, false, command)
}

// initDriveATAPI probes for a packet device at the dummy drive's id.
func (d *Driver) initDriveATAPI(dummy *disk.Drive, id *identifyData) *disk.Drive {
	if err := d.identify(dummy, cmdIdentifyPacket, id); err != nil {
		return nil
	}

	dr := &disk.Drive{CntlID: dummy.CntlID}
	extractIdentify(dr, id)
	extractATAPI(dr, id)

	if err := d.drives.Add(dr); err != nil {
		xlog.Printf(1, "%v", err)
		return nil
	}
	if dr.IsCD {
		d.drives.MapCD(dr)
	}
	return dr
}

// initDriveATA probes for a hard disk at the dummy drive's id.
func (d *Driver) initDriveATA(dummy *disk.Drive, id *identifyData) *disk.Drive {
	if err := d.identify(dummy, cmdIdentifyDevice, id); err != nil {
		return nil
	}

	dr := &disk.Drive{CntlID: dummy.CntlID}
	extractIdentify(dr, id)
	extractATA(dr, id)
	dr.SetupTranslation()

	if err := d.drives.Add(dr); err != nil {
		xlog.Printf(1, "%v", err)
		return nil
	}
	return dr
}

// detect scans both device ids of one channel. Every failure just
// means "no device here"; the scan itself never fails.
func (d *Driver) detect(chIdx int, ch *Channel) {
	startID := chIdx * 2
	lastResetID := -1

	for id := startID; id < startID+2; id++ {
		slave := id%2 == 1
		if ch.CmdBase == 0 {
			// Channel was never configured.
			break
		}

		// Wait out power-up against the shared deadline.
		if _, err := d.powerupAwaitNotBusy(ch); err != nil {
			continue
		}
		newdh := byte(devHeadDev0)
		if slave {
			newdh = devHeadDev1
		}
		d.bus.OutByte(ch.CmdBase+regDevHead, newdh)
		d.delay.NDelay(400)
		if _, err := d.powerupAwaitNotBusy(ch); err != nil {
			continue
		}

		// Check that the ioport registers respond at all.
		d.bus.OutByte(ch.CmdBase+regDevHead, newdh)
		dh := d.bus.InByte(ch.CmdBase + regDevHead)
		d.bus.OutByte(ch.CmdBase+regSectCnt, 0x55)
		d.bus.OutByte(ch.CmdBase+regLBALow, 0xaa)
		sc := d.bus.InByte(ch.CmdBase + regSectCnt)
		sn := d.bus.InByte(ch.CmdBase + regLBALow)
		xlog.Printf(6, "ata_detect ataid=%d sc=%x sn=%x dh=%x", id, sc, sn, dh)
		if sc != 0x55 || sn != 0xaa || dh != newdh {
			continue
		}

		dummy := disk.Drive{CntlID: id}

		// Reset hits both devices on the channel, skip the second one
		// when it directly follows the first.
		if slave && id == lastResetID+1 {
			// Just reset along with the master.
		} else {
			d.reset(ch, slave, false)
			lastResetID = id
		}

		// Packet devices answer the packet identify, disks the plain
		// one; try ATAPI first.
		var idData identifyData
		dr := d.initDriveATAPI(&dummy, &idData)
		if dr == nil {
			if st := d.bus.InByte(ch.CmdBase + regStatus); st == 0 {
				// Status not set - can't be a valid drive.
				continue
			}
			if _, err := d.awaitReady(ch); err != nil {
				continue
			}
			dr = d.initDriveATA(&dummy, &idData)
			if dr == nil {
				continue
			}
		}
		xlog.Printf(1, "%s", Describe(dr))

		resetResult := idData.word(93)
		xlog.Printf(6, "ata_detect resetresult=%04x", resetResult)
		if !slave && resetResult&0xdf61 == 0x4041 {
			// Device 0 is answering for device 1 too - there is no
			// device 1 on this channel, skip probing it.
			id++
		}
	}
}

// Describe renders the boot-screen line for a detected drive.
func Describe(dr *disk.Drive) string {
	switch dr.Type {
	case disk.TypeATAPI:
		kind := "Device"
		if dr.IsCD {
			kind = "CD-Rom/DVD-Rom"
		}
		return fmt.Sprintf("ata%d-%d: %s ATAPI-%d %s",
			dr.Channel(), boolToInt(dr.Slave()), dr.Model, dr.Version, kind)
	case disk.TypeATA:
		sizeInMiB := dr.Sectors >> 11
		size := fmt.Sprintf("%d MiBytes", sizeInMiB)
		if sizeInMiB >= 1<<16 {
			size = fmt.Sprintf("%d GiBytes", sizeInMiB>>10)
		}
		return fmt.Sprintf("ata%d-%d: %s ATA-%d Hard-Disk (%s)",
			dr.Channel(), boolToInt(dr.Slave()), dr.Model, dr.Version, size)
	}
	return fmt.Sprintf("ata%d-%d: unknown device", dr.Channel(), boolToInt(dr.Slave()))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
