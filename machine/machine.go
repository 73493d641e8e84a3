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

// Package machine assembles an emulated PC I/O space for the firmware
// to run against: a port bus with pluggable peripherals and a
// synthesized PCI function list.
package machine

import (
	"errors"

	"github.com/go-pcboot/pcboot/firmware/pci"
)

// IO is a byte-wide port peripheral.
type IO interface {
	In(port uint16) byte
	Out(port uint16, data byte)
}

// WordIO is implemented by peripherals whose data port is wider than
// a byte; word and long access bypass the byte handlers.
type WordIO interface {
	InW(port uint16) uint16
	OutW(port uint16, data uint16)
}

var ErrPortTaken = errors.New("machine: port already mapped")

// Machine is the emulated I/O space. Unmapped ports float high like a
// real undriven ISA bus. The zero delay methods make it usable as the
// firmware's delay source without slowing down tests.
type Machine struct {
	ports map[uint16]IO
	fns   []pci.Function
}

func New() *Machine {
	return &Machine{ports: make(map[uint16]IO)}
}

// Install maps a peripheral at each given port.
func (m *Machine) Install(dev IO, ports ...uint16) error {
	for _, p := range ports {
		if _, ok := m.ports[p]; ok {
			return ErrPortTaken
		}
		m.ports[p] = dev
	}
	return nil
}

// InstallRange maps a peripheral over a consecutive port window.
func (m *Machine) InstallRange(dev IO, from, to uint16) error {
	for p := from; p <= to; p++ {
		if err := m.Install(dev, p); err != nil {
			return err
		}
	}
	return nil
}

// AddFunction adds a synthesized PCI function to the discovery list.
func (m *Machine) AddFunction(f pci.Function) {
	m.fns = append(m.fns, f)
}

// Functions implements pci.Enumerator.
func (m *Machine) Functions() []pci.Function {
	return m.fns
}

func (m *Machine) InByte(port uint16) byte {
	if dev, ok := m.ports[port]; ok {
		return dev.In(port)
	}
	return 0xFF
}

func (m *Machine) OutByte(port uint16, data byte) {
	if dev, ok := m.ports[port]; ok {
		dev.Out(port, data)
	}
}

func (m *Machine) InWord(port uint16) uint16 {
	if dev, ok := m.ports[port]; ok {
		if w, ok := dev.(WordIO); ok {
			return w.InW(port)
		}
		return uint16(dev.In(port)) | uint16(dev.In(port))<<8
	}
	return 0xFFFF
}

func (m *Machine) OutWord(port uint16, data uint16) {
	if dev, ok := m.ports[port]; ok {
		if w, ok := dev.(WordIO); ok {
			w.OutW(port, data)
			return
		}
		dev.Out(port, byte(data))
	}
}

func (m *Machine) InLong(port uint16) uint32 {
	return uint32(m.InWord(port)) | uint32(m.InWord(port))<<16
}

func (m *Machine) OutLong(port uint16, data uint32) {
	m.OutWord(port, uint16(data))
	m.OutWord(port, uint16(data>>16))
}

// The emulated machine has no real signal propagation, settle delays
// are satisfied instantly.

func (*Machine) NDelay(int) {}
func (*Machine) UDelay(int) {}
func (*Machine) MSleep(int) {}
