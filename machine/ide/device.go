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

package ide

import (
	"encoding/binary"
	"os"

	"github.com/spf13/afero"
)

const (
	sectorSize   = 512
	cdSectorSize = 2048
)

// Task file commands the model understands.
const (
	cmdReadSectors     = 0x20
	cmdReadSectorsExt  = 0x24
	cmdWriteSectors    = 0x30
	cmdWriteSectorsExt = 0x34
	cmdPacket          = 0xa0
	cmdIdentifyPacket  = 0xa1
	cmdIdentifyDevice  = 0xec
)

// Error register bits.
const (
	errABRT     = 0x04
	errIDNF     = 0x10
	errNotReady = 0x20
)

// Kind selects the protocol personality of a device.
type Kind int

const (
	KindDisk Kind = iota
	KindCDROM
)

// Device is one emulated drive. The exported fields are test and
// configuration knobs; set them before the first register access.
type Device struct {
	kind Kind

	media     afero.File
	mediaSize int64

	// ModelName lands in the identify block, padded to 40 bytes.
	ModelName string

	// Version is the highest protocol revision bit advertised.
	Version int

	// Word93 is the reset-result diagnostic word of the identify
	// block.
	Word93 uint16

	// LBA48 advertises 48-bit addressing (disks only).
	LBA48 bool

	// AnswersBothSelects makes a master respond to slave selects the
	// way some lone drives do.
	AnswersBothSelects bool

	// SelectLatchMisses drops this many device-select writes after a
	// reset before one latches.
	SelectLatchMisses int

	// AbortAfterBlocks drops DRQ after this many completed blocks of
	// a multi-block transfer. Zero disables the fault.
	AbortAfterBlocks int

	// NoMedium makes packet commands fail with "not ready".
	NoMedium bool

	// register file
	err, feat, sc, sn, cl, ch, dh, status byte
	hobFeat, hobSC, hobSN, hobCL, hobCH   byte
	latchMissLeft                         int

	// active data phase
	data      []byte
	pos       int
	blockSize int
	confirmed int
	dataIn    bool
	dataOut   bool
	outLBA    uint64

	// packet phase
	packet []byte
}

// NewDisk attaches a hard disk model over a raw sector image.
func NewDisk(fs afero.Fs, path, model string) (*Device, error) {
	f, err := fs.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Device{
		kind:      KindDisk,
		media:     f,
		mediaSize: st.Size(),
		ModelName: model,
		Version:   6,
		LBA48:     true,
		status:    statRDY | statDSC,
	}, nil
}

// NewCDROM attaches an optical drive model. An empty path means an
// empty tray.
func NewCDROM(fs afero.Fs, path, model string) (*Device, error) {
	dev := &Device{
		kind:      KindCDROM,
		ModelName: model,
		Version:   7,
		NoMedium:  true,
		status:    statRDY | statDSC,
	}
	if path == "" {
		return dev, nil
	}
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	dev.media = f
	dev.mediaSize = st.Size()
	dev.NoMedium = false
	return dev, nil
}

// Close releases the backing image.
func (d *Device) Close() error {
	if d.media == nil {
		return nil
	}
	return d.media.Close()
}

// Sectors returns the media size in device blocks.
func (d *Device) Sectors() uint64 {
	if d.kind == KindCDROM {
		return uint64(d.mediaSize / cdSectorSize)
	}
	return uint64(d.mediaSize / sectorSize)
}

func (d *Device) geometry() (cyl, heads, spt uint16) {
	heads, spt = 16, 63
	c := d.mediaSize / (int64(heads) * int64(spt) * sectorSize)
	if c > 16383 {
		c = 16383
	}
	return uint16(c), heads, spt
}

func (d *Device) latchDevHead(data byte) {
	if d.latchMissLeft > 0 {
		d.latchMissLeft--
		return
	}
	d.dh = data
}

// reset is the SRST deassert edge: diagnostics pass, signature in the
// task file. The device-select bits survive, like on common parts.
func (d *Device) reset() {
	d.err = 0x01
	d.sc, d.sn = 0x01, 0x01
	if d.kind == KindCDROM {
		d.cl, d.ch = 0x14, 0xeb
	} else {
		d.cl, d.ch = 0x00, 0x00
	}
	d.status = statRDY | statDSC
	d.latchMissLeft = d.SelectLatchMisses
	d.data = nil
	d.dataIn, d.dataOut = false, false
	d.packet = nil
}

func (d *Device) abort() {
	d.err = errABRT
	d.status = statRDY | statDSC | statERR
	d.dataIn, d.dataOut = false, false
	d.packet = nil
}

func (d *Device) fail(errBits byte) {
	d.err = errBits
	d.status = statRDY | statDSC | statERR
	d.dataIn, d.dataOut = false, false
	d.packet = nil
}

func (d *Device) startDataIn(buf []byte, blockSize int) {
	d.data = buf
	d.pos = 0
	d.blockSize = blockSize
	d.confirmed = 0
	d.dataIn, d.dataOut = true, false
	d.err = 0
	d.status = statRDY | statDRQ | statDSC
}

func (d *Device) startDataOut(size, blockSize int, lba uint64) {
	d.data = make([]byte, size)
	d.pos = 0
	d.blockSize = blockSize
	d.confirmed = 0
	d.dataIn, d.dataOut = false, true
	d.outLBA = lba
	d.err = 0
	d.status = statRDY | statDRQ | statDSC
}

// blockDone advances the per-block status sequencing shared by reads
// and writes.
func (d *Device) blockDone() {
	d.confirmed++
	done := d.pos >= len(d.data)
	faulted := d.AbortAfterBlocks > 0 && d.confirmed >= d.AbortAfterBlocks && !done

	if done || faulted {
		d.dataIn, d.dataOut = false, false
		d.status = statRDY | statDSC
	}
}

func (d *Device) readData() uint16 {
	if !d.dataIn || d.pos+1 >= len(d.data) {
		return 0
	}
	v := binary.LittleEndian.Uint16(d.data[d.pos:])
	d.pos += 2
	if d.pos%d.blockSize == 0 {
		d.blockDone()
	}
	return v
}

func (d *Device) writeData(v uint16) {
	if d.packet != nil {
		d.packet = append(d.packet, byte(v), byte(v>>8))
		if len(d.packet) >= 12 {
			pkt := d.packet
			d.packet = nil
			d.execPacket(pkt)
		}
		return
	}
	if !d.dataOut || d.pos+1 >= len(d.data) {
		return
	}
	binary.LittleEndian.PutUint16(d.data[d.pos:], v)
	d.pos += 2
	if d.pos%d.blockSize == 0 {
		// Flush the finished block before acknowledging it.
		start := d.pos - d.blockSize
		off := (d.outLBA + uint64(d.confirmed)) * uint64(d.blockSize)
		d.media.WriteAt(d.data[start:d.pos], int64(off))
		d.blockDone()
	}
}

func (d *Device) lba28() uint64 {
	return uint64(d.dh&0x0f)<<24 | uint64(d.ch)<<16 | uint64(d.cl)<<8 | uint64(d.sn)
}

func (d *Device) lba48() uint64 {
	return uint64(d.hobCH)<<40 | uint64(d.hobCL)<<32 | uint64(d.hobSN)<<24 |
		uint64(d.ch)<<16 | uint64(d.cl)<<8 | uint64(d.sn)
}

func (d *Device) execCommand(cmd byte) {
	switch cmd {
	case cmdIdentifyDevice:
		if d.kind != KindDisk {
			d.abort()
			return
		}
		d.startDataIn(d.identifyBlock(), sectorSize)

	case cmdIdentifyPacket:
		if d.kind != KindCDROM {
			d.abort()
			return
		}
		d.startDataIn(d.identifyBlock(), sectorSize)

	case cmdReadSectors, cmdReadSectorsExt:
		if d.kind != KindDisk {
			d.abort()
			return
		}
		lba, count := d.lba28(), int(d.sc)
		if count == 0 {
			count = 256
		}
		if cmd == cmdReadSectorsExt {
			lba, count = d.lba48(), int(d.hobSC)<<8|int(d.sc)
			if count == 0 {
				count = 65536
			}
		}
		buf := make([]byte, count*sectorSize)
		if _, err := d.media.ReadAt(buf, int64(lba)*sectorSize); err != nil {
			d.fail(errIDNF)
			return
		}
		d.startDataIn(buf, sectorSize)

	case cmdWriteSectors, cmdWriteSectorsExt:
		if d.kind != KindDisk {
			d.abort()
			return
		}
		lba, count := d.lba28(), int(d.sc)
		if count == 0 {
			count = 256
		}
		if cmd == cmdWriteSectorsExt {
			lba, count = d.lba48(), int(d.hobSC)<<8|int(d.sc)
			if count == 0 {
				count = 65536
			}
		}
		if int64(lba)*sectorSize >= d.mediaSize {
			d.fail(errIDNF)
			return
		}
		d.startDataOut(count*sectorSize, sectorSize, lba)

	case cmdPacket:
		if d.kind != KindCDROM {
			d.abort()
			return
		}
		// Await the 12 command bytes through the data window.
		d.packet = make([]byte, 0, 12)
		d.err = 0
		d.status = statRDY | statDRQ | statDSC

	default:
		d.abort()
	}
}

func (d *Device) execPacket(pkt []byte) {
	if d.NoMedium {
		d.fail(errNotReady)
		return
	}
	switch pkt[0] {
	case 0x28: // READ(10)
		lba := uint64(pkt[2])<<24 | uint64(pkt[3])<<16 | uint64(pkt[4])<<8 | uint64(pkt[5])
		count := int(pkt[7])<<8 | int(pkt[8])
		if count == 0 {
			d.status = statRDY | statDSC
			return
		}
		buf := make([]byte, count*cdSectorSize)
		if _, err := d.media.ReadAt(buf, int64(lba)*cdSectorSize); err != nil {
			d.fail(errIDNF)
			return
		}
		// Byte count per block reported back in the cylinder regs.
		d.cl = byte(cdSectorSize & 0xff)
		d.ch = byte(cdSectorSize >> 8)
		d.startDataIn(buf, cdSectorSize)
	default:
		d.abort()
	}
}
