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

// Package ide emulates one IDE channel with up to two attached
// devices, faithful enough at the register level to exercise a PIO
// driver: busy/data-request sequencing, soft reset, device select,
// identify, sector reads/writes and packet commands.
package ide

import (
	"errors"

	"github.com/go-pcboot/pcboot/machine"
)

// Command block register offsets.
const (
	regData    = 0
	regError   = 1
	regFeature = 1
	regSectCnt = 2
	regLBALow  = 3
	regLBAMid  = 4
	regLBAHigh = 5
	regDevHead = 6
	regStatus  = 7
	regCommand = 7
)

const (
	statBSY = 0x80
	statRDY = 0x40
	statDF  = 0x20
	statDSC = 0x10
	statDRQ = 0x08
	statERR = 0x01

	ctlSRST = 0x04
	ctlNIEN = 0x02
)

var ErrSlotTaken = errors.New("ide: device slot occupied")

// Channel emulates the two register blocks of one IDE channel.
type Channel struct {
	cmdBase  uint16
	ctrlBase uint16

	devs [2]*Device
	sel  int

	srst bool
	nien bool
}

// NewChannel creates an empty channel decoding the given port bases.
func NewChannel(cmdBase, ctrlBase uint16) *Channel {
	return &Channel{cmdBase: cmdBase, ctrlBase: ctrlBase}
}

// Attach puts a device in slot 0 (master) or 1 (slave).
func (c *Channel) Attach(slot int, dev *Device) error {
	if c.devs[slot] != nil {
		return ErrSlotTaken
	}
	c.devs[slot] = dev
	return nil
}

// InstallOn maps the channel's register windows on the machine bus.
func (c *Channel) InstallOn(m *machine.Machine) error {
	if err := m.InstallRange(c, c.cmdBase, c.cmdBase+7); err != nil {
		return err
	}
	return m.Install(c, c.ctrlBase)
}

// empty reports whether nothing at all sits on the cable; reads then
// float high.
func (c *Channel) empty() bool {
	return c.devs[0] == nil && c.devs[1] == nil
}

// selected resolves the currently addressed device. A master
// configured to answer both select lines stands in for a missing
// slave, which is exactly the phantom-device situation firmware has
// to recognize.
func (c *Channel) selected() *Device {
	if dev := c.devs[c.sel]; dev != nil {
		return dev
	}
	if c.sel == 1 && c.devs[0] != nil && c.devs[0].AnswersBothSelects {
		return c.devs[0]
	}
	return nil
}

func (c *Channel) In(port uint16) byte {
	if c.empty() {
		return 0xFF
	}
	if port == c.ctrlBase {
		// Alternate status: no side effects either here.
		if dev := c.selected(); dev != nil {
			return dev.status
		}
		return 0x00
	}

	dev := c.selected()
	if dev == nil {
		return 0x00
	}
	switch port - c.cmdBase {
	case regData:
		// Byte read of the data window only yields the low half.
		return byte(dev.readData())
	case regError:
		return dev.err
	case regSectCnt:
		return dev.sc
	case regLBALow:
		return dev.sn
	case regLBAMid:
		return dev.cl
	case regLBAHigh:
		return dev.ch
	case regDevHead:
		return dev.dh
	case regStatus:
		return dev.status
	}
	return 0x00
}

func (c *Channel) Out(port uint16, data byte) {
	if port == c.ctrlBase {
		c.writeControl(data)
		return
	}

	if port-c.cmdBase == regDevHead {
		// Device select is a cable signal, both devices see it.
		c.sel = int(data>>4) & 1
		for _, dev := range c.devs {
			if dev != nil {
				dev.latchDevHead(data)
			}
		}
		return
	}

	dev := c.selected()
	if dev == nil {
		return
	}
	switch port - c.cmdBase {
	case regData:
		dev.writeData(uint16(data))
	case regFeature:
		dev.hobFeat, dev.feat = dev.feat, data
	case regSectCnt:
		dev.hobSC, dev.sc = dev.sc, data
	case regLBALow:
		dev.hobSN, dev.sn = dev.sn, data
	case regLBAMid:
		dev.hobCL, dev.cl = dev.cl, data
	case regLBAHigh:
		dev.hobCH, dev.ch = dev.ch, data
	case regCommand:
		dev.execCommand(data)
	}
}

func (c *Channel) writeControl(data byte) {
	c.nien = data&ctlNIEN != 0

	srst := data&ctlSRST != 0
	if srst && !c.srst {
		for _, dev := range c.devs {
			if dev != nil {
				dev.status = statBSY
			}
		}
	} else if !srst && c.srst {
		for _, dev := range c.devs {
			if dev != nil {
				dev.reset()
			}
		}
	}
	c.srst = srst
}

// InW services 16-bit access to the data window.
func (c *Channel) InW(port uint16) uint16 {
	if port == c.cmdBase+regData {
		if dev := c.selected(); dev != nil {
			return dev.readData()
		}
		if c.empty() {
			return 0xFFFF
		}
		return 0x0000
	}
	return uint16(c.In(port)) | uint16(c.In(port))<<8
}

func (c *Channel) OutW(port uint16, data uint16) {
	if port == c.cmdBase+regData {
		if dev := c.selected(); dev != nil {
			dev.writeData(data)
		}
		return
	}
	c.Out(port, byte(data))
}
