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

// Package disk holds the drive registry and the generic disk-operation
// contract shared between the low-level drivers and the boot-device
// layer.
package disk

import (
	"errors"
	"sync"
)

// Command selects one generic disk operation.
type Command int

const (
	CmdRead Command = iota + 1
	CmdWrite
	CmdVerify
	CmdFormat
	CmdReset
	CmdIsReady
	CmdSeek
)

// Status is the result a driver reports back to the boot-device layer.
type Status int

const (
	Success Status = iota
	EParam
	ENotReady
	EBadTrack
	EWriteProtect
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case EParam:
		return "parameter error"
	case ENotReady:
		return "not ready"
	case EBadTrack:
		return "bad track"
	case EWriteProtect:
		return "write protected"
	}
	return "unknown status"
}

// DriveType tells which register protocol a drive speaks.
type DriveType int

const (
	TypeNone DriveType = iota
	TypeATA
	TypeATAPI
)

func (t DriveType) String() string {
	switch t {
	case TypeATA:
		return "ATA"
	case TypeATAPI:
		return "ATAPI"
	}
	return "none"
}

// SectorsUnknown marks drives that do not report a media size up
// front (packet devices).
const SectorsUnknown = ^uint64(0)

// CHS is cylinder/head/sectors-per-track geometry.
type CHS struct {
	Cylinders uint16
	Heads     uint16
	SPT       uint16
}

// Drive is one identified device. Created by detection, registered in
// a Table and never mutated afterwards except for the one-time logical
// geometry setup at init.
type Drive struct {
	ID     int // stable handle in the owning table
	CntlID int // channel*2 + slave

	Type      DriveType
	Removable bool
	Version   int // ATA/ATAPI revision from the identify block

	BlkSize int
	Sectors uint64 // SectorsUnknown for packet devices

	PCHS CHS // physical, as reported by identify (ATA only)
	LCHS CHS // logical, after translation setup (ATA only)

	Model string
	IsCD  bool // ATAPI sub-type: optical vs generic packet device
}

// Channel returns the controller channel index the drive sits on.
func (d *Drive) Channel() int { return d.CntlID / 2 }

// Slave reports whether the drive is the secondary device on its channel.
func (d *Drive) Slave() bool { return d.CntlID%2 == 1 }

// SetupTranslation fills in the logical geometry used by legacy CHS
// callers. Large disks get LBA-assisted translation, small disks keep
// their physical geometry.
func (d *Drive) SetupTranslation() {
	if d.Type != TypeATA {
		return
	}
	d.LCHS = d.PCHS
	if d.Sectors == SectorsUnknown || d.Sectors == 0 {
		return
	}
	if uint64(d.PCHS.Cylinders)*uint64(d.PCHS.Heads)*uint64(d.PCHS.SPT) <= 1024*16*63 &&
		d.PCHS.Cylinders <= 1024 {
		return
	}

	// LBA translation: fixed 63 spt, grow heads until the cylinder
	// count fits in 10 bits.
	var heads uint64 = 16
	for heads < 255 && d.Sectors/(heads*63) > 1024 {
		heads *= 2
	}
	if heads > 255 {
		heads = 255
	}
	cyl := d.Sectors / (heads * 63)
	if cyl > 1024 {
		cyl = 1024
	}
	d.LCHS = CHS{Cylinders: uint16(cyl), Heads: uint16(heads), SPT: 63}
}

// Op is one disk request. Count is updated in place by the transfer
// path so callers can see how much of a failed request completed.
type Op struct {
	Drive   *Drive
	Command Command
	LBA     uint64
	Count   int
	Buf     []byte
}

var ErrTableFull = errors.New("disk: drive table full")

// Table owns every detected drive. Fixed capacity, handles are stable
// for the lifetime of the table.
type Table struct {
	lock   sync.Mutex
	drives []*Drive
	cdmap  []*Drive
	max    int
}

// NewTable returns a table accepting at most max drives.
func NewTable(max int) *Table {
	return &Table{max: max}
}

// Add registers a drive and assigns its handle.
func (t *Table) Add(d *Drive) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	if len(t.drives) >= t.max {
		return ErrTableFull
	}
	d.ID = len(t.drives)
	t.drives = append(t.drives, d)
	return nil
}

// Get resolves a handle, nil if out of range.
func (t *Table) Get(id int) *Drive {
	t.lock.Lock()
	defer t.lock.Unlock()

	if id < 0 || id >= len(t.drives) {
		return nil
	}
	return t.drives[id]
}

// All returns the registered drives in detection order.
func (t *Table) All() []*Drive {
	t.lock.Lock()
	defer t.lock.Unlock()

	out := make([]*Drive, len(t.drives))
	copy(out, t.drives)
	return out
}

// MapCD records an optical drive for the boot-menu CD map.
func (t *Table) MapCD(d *Drive) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.cdmap = append(t.cdmap, d)
}

// CDs returns the optical drives in detection order.
func (t *Table) CDs() []*Drive {
	t.lock.Lock()
	defer t.lock.Unlock()

	out := make([]*Drive, len(t.cdmap))
	copy(out, t.cdmap)
	return out
}
