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

// Package pci carries the slice of configuration-space facts the
// storage drivers need from bus enumeration. The walk itself is done
// elsewhere (or synthesized by an emulated machine).
package pci

import "fmt"

const ClassStorageIDE = 0x0101

// Programming-interface bits of an IDE class function.
const (
	ProgIFPrimaryNative   = 0x01 // primary channel in native mode
	ProgIFSecondaryNative = 0x04 // secondary channel in native mode
)

// Function is one discovered PCI function.
type Function struct {
	BDF    int // bus<<8 | dev<<3 | fn
	Class  uint16
	ProgIF byte
	IRQ    byte
	BAR    [6]uint32
}

func (f Function) String() string {
	return fmt.Sprintf("%02x:%02x.%d class=%04x", f.BDF>>8, (f.BDF>>3)&0x1f, f.BDF&7, f.Class)
}

// PortBase masks the resource-type bits off an I/O BAR.
func (f Function) PortBase(bar int) uint16 {
	return uint16(f.BAR[bar] &^ 3)
}

// Enumerator yields the functions found during bus discovery.
type Enumerator interface {
	Functions() []Function
}

// StaticBus is an Enumerator over a fixed function list.
type StaticBus []Function

func (b StaticBus) Functions() []Function {
	return b
}
