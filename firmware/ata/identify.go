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
	"encoding/binary"
	"strings"

	"github.com/go-pcboot/pcboot/firmware/disk"
	"github.com/go-pcboot/pcboot/firmware/xlog"
)

// identifyData is one raw 256-word IDENTIFY response.
type identifyData [identifyWords * 2]byte

func (id *identifyData) word(n int) uint16 {
	return binary.LittleEndian.Uint16(id[n*2:])
}

// version extracts the ATA/ATAPI revision: the highest set bit of the
// version word, 0 if the word is blank.
func (id *identifyData) version() int {
	w := id.word(80)
	for v := 15; v > 0; v-- {
		if w&(1<<v) != 0 {
			return v
		}
	}
	return 0
}

// modelName decodes the 40-byte model field. Each word holds two
// characters high byte first; trailing spaces are padding.
func (id *identifyData) modelName() string {
	var model [modelStringSize]byte
	for i := 0; i < modelStringSize/2; i++ {
		v := id.word(27 + i)
		model[i*2] = byte(v >> 8)
		model[i*2+1] = byte(v)
	}
	return strings.TrimRight(string(model[:]), " ")
}

// extractIdentify fills the fields common to ATA and ATAPI devices.
func extractIdentify(dr *disk.Drive, id *identifyData) {
	xlog.Printf(3, "Identify w0=%x w2=%x", id.word(0), id.word(2))

	dr.Model = id.modelName()
	dr.Removable = id.word(0)&0x80 != 0
	dr.Version = id.version()
}

// extractATA fills geometry and capacity of a hard disk.
func extractATA(dr *disk.Drive, id *identifyData) {
	dr.Type = disk.TypeATA
	dr.BlkSize = SectorSize

	dr.PCHS = disk.CHS{
		Cylinders: id.word(1),
		Heads:     id.word(3),
		SPT:       id.word(6),
	}

	if id.word(83)&(1<<10) != 0 {
		// lba48 - words 100-103
		dr.Sectors = binary.LittleEndian.Uint64(id[100*2:])
	} else {
		// words 60-61
		dr.Sectors = uint64(binary.LittleEndian.Uint32(id[60*2:]))
	}
}

// extractATAPI fills the packet device fields. Capacity is not known
// until the medium is queried.
func extractATAPI(dr *disk.Drive, id *identifyData) {
	dr.Type = disk.TypeATAPI
	dr.BlkSize = CDSectorSize
	dr.Sectors = disk.SectorsUnknown
	dr.IsCD = (id.word(0)>>8)&0x1f == 0x05
}
