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
	"testing"
	"time"

	"github.com/go-pcboot/pcboot/machine"
	"github.com/go-pcboot/pcboot/machine/ide"
	"github.com/spf13/afero"
)

// fixture is a small machine with the legacy controller pair. Tests
// attach emulated devices to the channels before calling boot.
type fixture struct {
	m   *machine.Machine
	fs  afero.Fs
	ch0 *ide.Channel
	ch1 *ide.Channel
}

func newFixture() *fixture {
	return &fixture{
		m:   machine.New(),
		fs:  afero.NewMemMapFs(),
		ch0: ide.NewChannel(PortATA1Cmd, PortATA1Ctrl),
		ch1: ide.NewChannel(PortATA2Cmd, PortATA2Ctrl),
	}
}

// image creates a sector image with a per-byte pattern that encodes
// both the sector number and the offset, so misplaced reads show up.
func (f *fixture) image(t *testing.T, path string, sectors, blk int) []byte {
	t.Helper()
	buf := make([]byte, sectors*blk)
	for i := range buf {
		buf[i] = byte(i/blk + i)
	}
	if err := afero.WriteFile(f.fs, path, buf, 0644); err != nil {
		t.Fatal(err)
	}
	return buf
}

func (f *fixture) disk(t *testing.T, path, model string) *ide.Device {
	t.Helper()
	dev, err := ide.NewDisk(f.fs, path, model)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { dev.Close() })
	return dev
}

func (f *fixture) cdrom(t *testing.T, path, model string) *ide.Device {
	t.Helper()
	dev, err := ide.NewCDROM(f.fs, path, model)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { dev.Close() })
	return dev
}

func (f *fixture) attach(t *testing.T, ch *ide.Channel, slot int, dev *ide.Device) {
	t.Helper()
	if err := ch.Attach(slot, dev); err != nil {
		t.Fatal(err)
	}
}

// boot installs the channels and runs a full detection pass.
func (f *fixture) boot(t *testing.T, install ...*ide.Channel) *Driver {
	t.Helper()
	for _, ch := range install {
		if err := ch.InstallOn(f.m); err != nil {
			t.Fatal(err)
		}
	}

	drv := New(Config{
		Bus:     f.m,
		Delay:   f.m,
		PCI:     f.m,
		Timeout: 10 * time.Second,
	})
	drv.Setup()
	drv.Wait()
	return drv
}
