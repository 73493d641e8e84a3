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

package machine

import "testing"

type latch struct {
	port uint16
	data byte
}

func (l *latch) In(port uint16) byte {
	l.port = port
	return l.data
}

func (l *latch) Out(port uint16, data byte) {
	l.port, l.data = port, data
}

func TestPortRouting(t *testing.T) {
	m := New()
	dev := &latch{data: 0x42}
	if err := m.Install(dev, 0x1f0, 0x1f7); err != nil {
		t.Fatal(err)
	}

	if v := m.InByte(0x1f0); v != 0x42 {
		t.Errorf("read = 0x%02X", v)
	}
	m.OutByte(0x1f7, 0x20)
	if dev.port != 0x1f7 || dev.data != 0x20 {
		t.Errorf("write landed at 0x%X = 0x%02X", dev.port, dev.data)
	}
}

func TestFloatingPorts(t *testing.T) {
	m := New()
	if v := m.InByte(0x300); v != 0xFF {
		t.Errorf("byte read = 0x%02X, want 0xFF", v)
	}
	if v := m.InWord(0x300); v != 0xFFFF {
		t.Errorf("word read = 0x%04X, want 0xFFFF", v)
	}
}

func TestPortConflict(t *testing.T) {
	m := New()
	dev := &latch{}
	if err := m.InstallRange(dev, 0x1f0, 0x1f7); err != nil {
		t.Fatal(err)
	}
	if err := m.Install(&latch{}, 0x1f3); err != ErrPortTaken {
		t.Errorf("err = %v, want port taken", err)
	}
}
