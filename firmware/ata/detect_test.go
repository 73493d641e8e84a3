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
	"strings"
	"testing"
	"time"

	"github.com/go-pcboot/pcboot/firmware/disk"
	"github.com/go-pcboot/pcboot/firmware/pci"
	"github.com/go-pcboot/pcboot/machine/ide"
)

func TestDetectSingleDisk(t *testing.T) {
	f := newFixture()
	f.image(t, "hd.img", 80*16*63, SectorSize)
	f.attach(t, f.ch0, 0, f.disk(t, "hd.img", "TEST DISK"))

	drv := f.boot(t, f.ch0, f.ch1)

	drives := drv.Drives().All()
	if len(drives) != 1 {
		t.Fatalf("detected %d drives, want 1", len(drives))
	}

	dr := drives[0]
	if dr.Type != disk.TypeATA {
		t.Errorf("type = %v", dr.Type)
	}
	if dr.CntlID != 0 || dr.Slave() {
		t.Errorf("cntlid = %d", dr.CntlID)
	}
	if dr.Model != "TEST DISK" {
		t.Errorf("model = %q", dr.Model)
	}
	if dr.Version != 6 {
		t.Errorf("version = %d", dr.Version)
	}
	if dr.Sectors != 80*16*63 {
		t.Errorf("sectors = %d", dr.Sectors)
	}
	if dr.PCHS != (disk.CHS{Cylinders: 80, Heads: 16, SPT: 63}) {
		t.Errorf("pchs = %+v", dr.PCHS)
	}
	if dr.LCHS != dr.PCHS {
		t.Errorf("lchs = %+v", dr.LCHS)
	}

	if desc := Describe(dr); !strings.HasPrefix(desc, "ata0-0: TEST DISK ATA-6 Hard-Disk") {
		t.Errorf("describe = %q", desc)
	}
}

func TestDetectBothChannels(t *testing.T) {
	f := newFixture()
	f.image(t, "hd0.img", 1024, SectorSize)
	f.image(t, "hd1.img", 2048, SectorSize)

	// Both channel scans run concurrently; each resolves its channel
	// through the shared registry while the other is still probing.
	f.attach(t, f.ch0, 0, f.disk(t, "hd0.img", "PRIMARY DISK"))
	f.attach(t, f.ch1, 0, f.disk(t, "hd1.img", "SECONDARY DISK"))

	drv := f.boot(t, f.ch0, f.ch1)

	drives := drv.Drives().All()
	if len(drives) != 2 {
		t.Fatalf("detected %d drives, want 2", len(drives))
	}

	byCntl := map[int]string{}
	for _, dr := range drives {
		byCntl[dr.CntlID] = dr.Model
	}
	if byCntl[0] != "PRIMARY DISK" || byCntl[2] != "SECONDARY DISK" {
		t.Errorf("drives by cntlid = %v", byCntl)
	}
}

func TestDetectFloatingChannels(t *testing.T) {
	f := newFixture()

	// Nothing installed at all; both channels read back as an
	// undriven bus and the scan must finish without waiting out the
	// full spin-up timeout.
	start := time.Now()
	drv := f.boot(t)

	if n := len(drv.Drives().All()); n != 0 {
		t.Errorf("detected %d drives, want 0", n)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("scan took %v", elapsed)
	}
}

func TestDetectFloatingSibling(t *testing.T) {
	f := newFixture()
	f.image(t, "hd.img", 1024, SectorSize)
	f.attach(t, f.ch0, 0, f.disk(t, "hd.img", "LONE DISK"))

	// Only the primary channel exists.
	drv := f.boot(t, f.ch0)

	drives := drv.Drives().All()
	if len(drives) != 1 {
		t.Fatalf("detected %d drives, want 1", len(drives))
	}
	if drives[0].Model != "LONE DISK" {
		t.Errorf("model = %q", drives[0].Model)
	}
}

func TestDetectPhantomSlave(t *testing.T) {
	f := newFixture()
	f.image(t, "hd.img", 1024, SectorSize)

	dev := f.disk(t, "hd.img", "LONELY MASTER")
	dev.AnswersBothSelects = true
	dev.Word93 = 0x4041
	f.attach(t, f.ch0, 0, dev)

	drv := f.boot(t, f.ch0, f.ch1)

	drives := drv.Drives().All()
	if len(drives) != 1 {
		t.Fatalf("detected %d drives, want 1", len(drives))
	}
	if drives[0].Slave() {
		t.Error("phantom slave registered as a drive")
	}
}

func TestDetectMixedChannel(t *testing.T) {
	f := newFixture()
	f.image(t, "hd.img", 1024, SectorSize)
	f.image(t, "cd.iso", 64, CDSectorSize)

	f.attach(t, f.ch0, 0, f.disk(t, "hd.img", "TEST DISK"))
	f.attach(t, f.ch0, 1, f.cdrom(t, "cd.iso", "TEST CDROM"))

	drv := f.boot(t, f.ch0, f.ch1)

	drives := drv.Drives().All()
	if len(drives) != 2 {
		t.Fatalf("detected %d drives, want 2", len(drives))
	}

	cd := drives[1]
	if cd.Type != disk.TypeATAPI || !cd.IsCD {
		t.Errorf("slave type = %v iscd = %v", cd.Type, cd.IsCD)
	}
	if !cd.Slave() {
		t.Errorf("cntlid = %d", cd.CntlID)
	}
	if cd.Model != "TEST CDROM" {
		t.Errorf("model = %q", cd.Model)
	}
	if cd.BlkSize != CDSectorSize {
		t.Errorf("blksize = %d", cd.BlkSize)
	}
	if cd.Sectors != disk.SectorsUnknown {
		t.Errorf("sectors = %d", cd.Sectors)
	}

	cds := drv.Drives().CDs()
	if len(cds) != 1 || cds[0] != cd {
		t.Errorf("cd map = %v", cds)
	}
}

func TestDetectNativeModePCI(t *testing.T) {
	f := newFixture()
	f.image(t, "hd.img", 1024, SectorSize)

	// A controller in native mode sits at the ports its resource
	// registers name, not at the legacy pair.
	ch := ide.NewChannel(0x4400, 0x4410)
	if err := ch.Attach(0, f.disk(t, "hd.img", "NATIVE DISK")); err != nil {
		t.Fatal(err)
	}
	if err := ch.InstallOn(f.m); err != nil {
		t.Fatal(err)
	}
	f.m.AddFunction(pci.Function{
		BDF:    1 << 3,
		Class:  pci.ClassStorageIDE,
		ProgIF: pci.ProgIFPrimaryNative | pci.ProgIFSecondaryNative,
		IRQ:    11,
		BAR:    [6]uint32{0x4401, 0x4411, 0x4421, 0x4431},
	})

	drv := f.boot(t)

	chans := drv.Channels()
	if len(chans) != 2 {
		t.Fatalf("registered %d channels, want 2", len(chans))
	}
	if chans[0].CmdBase != 0x4400 || chans[0].CtrlBase != 0x4410 {
		t.Errorf("channel 0 at %x/%x", chans[0].CmdBase, chans[0].CtrlBase)
	}
	if chans[0].IRQ != 11 {
		t.Errorf("irq = %d", chans[0].IRQ)
	}

	drives := drv.Drives().All()
	if len(drives) != 1 {
		t.Fatalf("detected %d drives, want 1", len(drives))
	}
	if drives[0].Model != "NATIVE DISK" {
		t.Errorf("model = %q", drives[0].Model)
	}
}

func TestDetectSelectRetry(t *testing.T) {
	f := newFixture()
	f.image(t, "hd.img", 1024, SectorSize)

	// A slow device that needs a few select writes after reset before
	// one sticks. The reset path retries until the deadline.
	dev := f.disk(t, "hd.img", "SLOW DISK")
	dev.SelectLatchMisses = 3
	f.attach(t, f.ch0, 1, dev)

	drv := f.boot(t, f.ch0, f.ch1)

	drives := drv.Drives().All()
	if len(drives) != 1 {
		t.Fatalf("detected %d drives, want 1", len(drives))
	}
	if !drives[0].Slave() {
		t.Errorf("cntlid = %d", drives[0].CntlID)
	}
}
