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

// Package ata implements the PIO driver core for ATA and ATAPI devices
// on IDE style controllers: bus timing, reset, command issue, data
// transfer, identification and the per-channel detection scan.
package ata

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-pcboot/pcboot/firmware/disk"
	"github.com/go-pcboot/pcboot/firmware/hal"
	"github.com/go-pcboot/pcboot/firmware/pci"
	"github.com/go-pcboot/pcboot/firmware/scheduler"
)

// DefaultTimeout bounds every polled wait. Boot firmware has to sit
// out full spin-up of old spindles.
const DefaultTimeout = 32 * time.Second

// DefaultMaxChannels is the size of the channel registry unless
// overridden in the config.
const DefaultMaxChannels = 4

var (
	// ErrTimeout is returned when a polled wait ran out of time.
	ErrTimeout = errors.New("ata: timeout")

	// ErrFloating is returned by the power-up wait when the status
	// register reads as an undriven bus.
	ErrFloating = errors.New("ata: floating bus")

	// ErrNoDRQ means the device accepted a command but never raised
	// its data request.
	ErrNoDRQ = errors.New("ata: data request not asserted")

	// ErrTransfer means the status pattern between or after data
	// blocks was not the expected one.
	ErrTransfer = errors.New("ata: unexpected transfer status")

	errNoChannel = errors.New("ata: channel not registered")
)

// DeviceError carries the error register of a failed command.
type DeviceError struct {
	Status byte
	Err    byte
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("ata: device error (status=0x%02X err=0x%02X)", e.Status, e.Err)
}

// NotReady reports whether the device error is the transient
// "not ready" condition.
func (e *DeviceError) NotReady() bool {
	return e.Err == errNotReady
}

// Channel is one controller channel: a command block, a control block
// and an interrupt line. Registered once at setup, immutable after.
type Channel struct {
	CmdBase  uint16 // eight command block registers
	CtrlBase uint16 // alternate status / device control
	IRQ      byte
	BDF      int // PCI identity of the owning controller, -1 for ISA
}

// Config carries the collaborators and tunables for a Driver.
type Config struct {
	Bus    hal.Bus
	Delay  hal.Delay
	PCI    pci.Enumerator
	Drives *disk.Table

	// PIO32 selects 32-bit data port access instead of 16-bit.
	PIO32 bool

	// Timeout overrides DefaultTimeout.
	Timeout time.Duration

	// MaxChannels overrides DefaultMaxChannels.
	MaxChannels int
}

// Driver owns the channel registry and runs the ATA/ATAPI protocol
// against the configured bus. Callers must serialize operations per
// drive; the driver performs no locking on the transfer path.
type Driver struct {
	bus    hal.Bus
	delay  hal.Delay
	pcibus pci.Enumerator
	drives *disk.Table

	pio32   bool
	timeout time.Duration

	channels    []Channel
	maxChannels int

	spinup scheduler.Deadline
	tasks  scheduler.Group
}

// New creates a driver. Detection does not start until Setup is called.
func New(cfg Config) *Driver {
	d := &Driver{
		bus:         cfg.Bus,
		delay:       cfg.Delay,
		pcibus:      cfg.PCI,
		drives:      cfg.Drives,
		pio32:       cfg.PIO32,
		timeout:     cfg.Timeout,
		maxChannels: cfg.MaxChannels,
	}
	if d.bus == nil {
		d.bus = &hal.DummyBus{}
	}
	if d.delay == nil {
		d.delay = hal.SleepDelay{}
	}
	if d.drives == nil {
		d.drives = disk.NewTable(2 * DefaultMaxChannels)
	}
	if d.timeout <= 0 {
		d.timeout = DefaultTimeout
	}
	if d.maxChannels <= 0 {
		d.maxChannels = DefaultMaxChannels
	}
	// Fixed capacity so registered channels never move; detection
	// tasks hold pointers into this slice.
	d.channels = make([]Channel, 0, d.maxChannels)
	return d
}

// Drives exposes the drive table the driver fills during detection.
func (d *Driver) Drives() *disk.Table {
	return d.drives
}

// Channels returns the registered channels in registration order.
func (d *Driver) Channels() []Channel {
	out := make([]Channel, len(d.channels))
	copy(out, d.channels)
	return out
}

func (d *Driver) channel(idx int) (*Channel, error) {
	if idx < 0 || idx >= len(d.channels) {
		return nil, errNoChannel
	}
	return &d.channels[idx], nil
}

func (d *Driver) driveChannel(dr *disk.Drive) (*Channel, error) {
	return d.channel(dr.Channel())
}
