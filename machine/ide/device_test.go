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
	"testing"

	"github.com/spf13/afero"
)

func testDisk(t *testing.T, sectors int) *Device {
	t.Helper()
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "hd.img", make([]byte, sectors*sectorSize), 0644); err != nil {
		t.Fatal(err)
	}
	dev, err := NewDisk(fs, "hd.img", "UNIT DISK")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { dev.Close() })
	return dev
}

func TestSoftResetSignature(t *testing.T) {
	ch := NewChannel(0x1f0, 0x3f6)
	if err := ch.Attach(0, testDisk(t, 16)); err != nil {
		t.Fatal(err)
	}

	ch.Out(0x3f6, ctlSRST)
	if st := ch.In(0x3f6); st&statBSY == 0 {
		t.Error("status not busy while reset is asserted")
	}
	ch.Out(0x3f6, 0)

	if st := ch.In(0x1f7); st&(statBSY|statRDY) != statRDY {
		t.Errorf("status = 0x%02X after reset", st)
	}
	if sc, sn := ch.In(0x1f2), ch.In(0x1f3); sc != 1 || sn != 1 {
		t.Errorf("signature sc=%d sn=%d", sc, sn)
	}
	if cl, chi := ch.In(0x1f4), ch.In(0x1f5); cl != 0 || chi != 0 {
		t.Errorf("disk signature cl=%02X ch=%02X", cl, chi)
	}
}

func TestCDROMSignature(t *testing.T) {
	ch := NewChannel(0x1f0, 0x3f6)
	dev, err := NewCDROM(afero.NewMemMapFs(), "", "UNIT CDROM")
	if err != nil {
		t.Fatal(err)
	}
	if err := ch.Attach(0, dev); err != nil {
		t.Fatal(err)
	}

	ch.Out(0x3f6, ctlSRST)
	ch.Out(0x3f6, 0)
	if cl, chi := ch.In(0x1f4), ch.In(0x1f5); cl != 0x14 || chi != 0xEB {
		t.Errorf("packet signature cl=%02X ch=%02X", cl, chi)
	}
}

func TestIdentifyBlock(t *testing.T) {
	dev := testDisk(t, 16*63*4)
	dev.Word93 = 0x6b4b
	blk := dev.identifyBlock()

	word := func(n int) uint16 {
		return binary.LittleEndian.Uint16(blk[n*2:])
	}

	if word(0)&0x8000 != 0 {
		t.Error("disk identify claims ATAPI")
	}
	if word(1) != 4 || word(3) != 16 || word(6) != 63 {
		t.Errorf("geometry = %d/%d/%d", word(1), word(3), word(6))
	}
	if blk[27*2] != 'N' || blk[27*2+1] != 'U' {
		t.Errorf("model bytes = %q %q", blk[27*2], blk[27*2+1])
	}
	if word(80) != 1<<6 {
		t.Errorf("version word = 0x%04X", word(80))
	}
	if word(93) != 0x6b4b {
		t.Errorf("word 93 = 0x%04X", word(93))
	}
	if got := binary.LittleEndian.Uint32(blk[60*2:]); got != 16*63*4 {
		t.Errorf("lba28 capacity = %d", got)
	}
}

func TestPacketByteCount(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "cd.iso", make([]byte, 8*cdSectorSize), 0644); err != nil {
		t.Fatal(err)
	}
	dev, err := NewCDROM(fs, "cd.iso", "UNIT CDROM")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { dev.Close() })

	dev.execCommand(cmdPacket)
	pkt := make([]byte, 12)
	pkt[0] = 0x28
	pkt[8] = 1
	for i := 0; i < len(pkt); i += 2 {
		dev.writeData(uint16(pkt[i]) | uint16(pkt[i+1])<<8)
	}

	if dev.status&statDRQ == 0 {
		t.Fatalf("status = 0x%02X, want data request", dev.status)
	}
	// The cylinder registers carry the byte count per block, 2048
	// split low/high.
	if dev.cl != 0x00 || dev.ch != 0x08 {
		t.Errorf("byte count regs cl=0x%02X ch=0x%02X", dev.cl, dev.ch)
	}
}

func TestFloatingSlaveReads(t *testing.T) {
	ch := NewChannel(0x1f0, 0x3f6)
	if err := ch.Attach(0, testDisk(t, 16)); err != nil {
		t.Fatal(err)
	}

	// Select the missing slave; a present master that does not answer
	// both selects leaves the bus driven low.
	ch.Out(0x1f6, 0xb0)
	if st := ch.In(0x1f7); st != 0x00 {
		t.Errorf("status = 0x%02X, want 0x00", st)
	}
	ch.Out(0x1f2, 0x55)
	if v := ch.In(0x1f2); v == 0x55 {
		t.Error("echo register latched with no device selected")
	}
}
