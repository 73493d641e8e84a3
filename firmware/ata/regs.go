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

// Command block register offsets from the channel command base. The
// error/feature and status/command pairs alias on read/write.
const (
	regData    = 0 // 16/32-bit data window
	regError   = 1 // read
	regFeature = 1 // write
	regSectCnt = 2
	regLBALow  = 3
	regLBAMid  = 4
	regLBAHigh = 5
	regDevHead = 6
	regStatus  = 7 // read
	regCommand = 7 // write
)

// The control block is a single register: alternate status on read,
// device control on write.

// Status register bits.
const (
	statBSY  = 0x80
	statRDY  = 0x40
	statDF   = 0x20
	statDSC  = 0x10
	statDRQ  = 0x08
	statCORR = 0x04
	statIDX  = 0x02
	statERR  = 0x01
)

// Device control register bits.
const (
	devCtlHD15 = 0x08 // bit obsolete since ATA-2, kept set for old parts
	devCtlSRST = 0x04
	devCtlNIEN = 0x02
)

// Device/head register values.
const (
	devHeadDev0 = 0xa0
	devHeadDev1 = 0xb0
	devHeadLBA  = 0x40
	devHeadSlv  = 0x10 // device select bit inside the register
)

// Task file commands used by this driver.
const (
	cmdReadSectors     = 0x20
	cmdReadSectorsExt  = 0x24
	cmdWriteSectors    = 0x30
	cmdWriteSectorsExt = 0x34
	cmdPacket          = 0xa0
	cmdIdentifyPacket  = 0xa1
	cmdIdentifyDevice  = 0xec
)

// The EXT command opcodes all have bit 2 set; issuing one makes the
// controller expect the high-order task file bytes first.
const cmdBitLBA48 = 0x04

// Error register code for "not ready", the only ATAPI error worth
// special casing (no medium, drive still spinning up).
const errNotReady = 0x20

// Sector sizes.
const (
	SectorSize      = 512
	CDSectorSize    = 2048
	identifyWords   = 256
	modelStringSize = 40
)

// Legacy (compatibility mode) port assignments.
const (
	PortATA1Cmd  = 0x1f0
	PortATA1Ctrl = 0x3f6
	PortATA2Cmd  = 0x170
	PortATA2Ctrl = 0x376

	IRQATA1 = 14
	IRQATA2 = 15
)
