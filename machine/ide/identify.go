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

import "encoding/binary"

// identifyBlock renders the 256-word identify response for the
// device's current configuration.
func (d *Device) identifyBlock() []byte {
	buf := make([]byte, sectorSize)
	w := func(i int, v uint16) {
		binary.LittleEndian.PutUint16(buf[i*2:], v)
	}

	if d.kind == KindCDROM {
		// ATAPI, device type 5 (CD-ROM), removable media.
		w(0, 0x8580)
	} else {
		w(0, 0x0040)
		cyl, heads, spt := d.geometry()
		w(1, cyl)
		w(3, heads)
		w(6, spt)
	}

	// Model: two characters per word, high byte first, space padded.
	model := d.ModelName
	if len(model) > 40 {
		model = model[:40]
	}
	for len(model) < 40 {
		model += " "
	}
	for i := 0; i < 20; i++ {
		w(27+i, uint16(model[i*2])<<8|uint16(model[i*2+1]))
	}

	w(47, 0x8010)
	w(49, 0x0200) // LBA capable

	if d.kind == KindDisk {
		sectors := d.Sectors()
		lba28 := sectors
		if lba28 > 0x0fffffff {
			lba28 = 0x0fffffff
		}
		w(60, uint16(lba28))
		w(61, uint16(lba28>>16))
		if d.LBA48 {
			w(83, 1<<10)
			binary.LittleEndian.PutUint64(buf[100*2:], sectors)
		}
	}

	if d.Version > 0 && d.Version < 16 {
		w(80, 1<<uint(d.Version))
	}
	w(93, d.Word93)
	return buf
}
