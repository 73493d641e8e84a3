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

// Package hal defines the port-I/O surface the firmware drivers run
// against. Real hardware, an emulated machine or a remote target all
// look the same from the driver side.
package hal

import (
	"log"
	"time"
)

// Bus is a flat x86 style I/O port space. Word and long access hit the
// same port twice/four times wide, not consecutive ports.
type Bus interface {
	InByte(port uint16) byte
	OutByte(port uint16, data byte)
	InWord(port uint16) uint16
	OutWord(port uint16, data uint16)
	InLong(port uint16) uint32
	OutLong(port uint16, data uint32)
}

// Delay provides the short fixed settle delays the ATA protocol calls
// for. Split from Bus so tests can count them without faking time.
type Delay interface {
	NDelay(ns int)
	UDelay(us int)
	MSleep(ms int)
}

// SleepDelay implements Delay with time.Sleep. Good enough for any
// backend where port access itself crosses a syscall boundary.
type SleepDelay struct{}

func (SleepDelay) NDelay(ns int) { time.Sleep(time.Duration(ns) * time.Nanosecond) }
func (SleepDelay) UDelay(us int) { time.Sleep(time.Duration(us) * time.Microsecond) }
func (SleepDelay) MSleep(ms int) { time.Sleep(time.Duration(ms) * time.Millisecond) }

// DummyBus returns 0xFF on every read, like a floating ISA bus.
type DummyBus struct{}

func (*DummyBus) InByte(port uint16) byte {
	log.Printf("reading unmapped IO port: 0x%X", port)
	return 0xFF
}

func (*DummyBus) OutByte(port uint16, data byte) {
	log.Printf("writing unmapped IO port: 0x%X", port)
}

func (d *DummyBus) InWord(port uint16) uint16 {
	return uint16(d.InByte(port)) | uint16(d.InByte(port))<<8
}

func (d *DummyBus) OutWord(port uint16, data uint16) {
	d.OutByte(port, byte(data))
}

func (d *DummyBus) InLong(port uint16) uint32 {
	return uint32(d.InWord(port)) | uint32(d.InWord(port))<<16
}

func (d *DummyBus) OutLong(port uint16, data uint32) {
	d.OutWord(port, uint16(data))
}
