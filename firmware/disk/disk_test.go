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

package disk

import "testing"

func TestSetupTranslation(t *testing.T) {
	t.Run("SmallDisk", func(t *testing.T) {
		d := Drive{
			Type:    TypeATA,
			Sectors: 500 * 16 * 63,
			PCHS:    CHS{Cylinders: 500, Heads: 16, SPT: 63},
		}
		d.SetupTranslation()
		if d.LCHS != d.PCHS {
			t.Errorf("lchs = %+v, want physical geometry", d.LCHS)
		}
	})

	t.Run("LargeDisk", func(t *testing.T) {
		// 8 GB, needs the full 255 head translation.
		d := Drive{
			Type:    TypeATA,
			Sectors: 16 * 1024 * 1024,
			PCHS:    CHS{Cylinders: 16383, Heads: 16, SPT: 63},
		}
		d.SetupTranslation()
		if d.LCHS.Heads != 255 || d.LCHS.SPT != 63 {
			t.Errorf("lchs = %+v", d.LCHS)
		}
		if d.LCHS.Cylinders > 1024 {
			t.Errorf("cylinders = %d, want <= 1024", d.LCHS.Cylinders)
		}
	})

	t.Run("MediumDisk", func(t *testing.T) {
		// 768 MB needs one head doubling step.
		d := Drive{
			Type:    TypeATA,
			Sectors: 1536 * 1024,
			PCHS:    CHS{Cylinders: 1560, Heads: 16, SPT: 63},
		}
		d.SetupTranslation()
		if d.LCHS.Heads != 32 || d.LCHS.SPT != 63 {
			t.Errorf("lchs = %+v", d.LCHS)
		}
		if d.LCHS.Cylinders != 780 {
			t.Errorf("cylinders = %d, want 780", d.LCHS.Cylinders)
		}
	})

	t.Run("PacketDevice", func(t *testing.T) {
		d := Drive{Type: TypeATAPI, Sectors: SectorsUnknown}
		d.SetupTranslation()
		if d.LCHS != (CHS{}) {
			t.Errorf("lchs = %+v, want zero", d.LCHS)
		}
	})
}

func TestTable(t *testing.T) {
	tab := NewTable(2)

	a := &Drive{Model: "A"}
	b := &Drive{Model: "B", IsCD: true}
	if err := tab.Add(a); err != nil {
		t.Fatal(err)
	}
	if err := tab.Add(b); err != nil {
		t.Fatal(err)
	}
	if err := tab.Add(&Drive{}); err != ErrTableFull {
		t.Errorf("err = %v, want table full", err)
	}

	if a.ID != 0 || b.ID != 1 {
		t.Errorf("ids = %d, %d", a.ID, b.ID)
	}
	if tab.Get(1) != b {
		t.Error("lookup by handle failed")
	}
	if tab.Get(2) != nil || tab.Get(-1) != nil {
		t.Error("out of range lookup must return nil")
	}
	if all := tab.All(); len(all) != 2 || all[0] != a {
		t.Errorf("all = %v", all)
	}

	tab.MapCD(b)
	if cds := tab.CDs(); len(cds) != 1 || cds[0] != b {
		t.Errorf("cds = %v", cds)
	}
}

func TestDriveAddressing(t *testing.T) {
	d := Drive{CntlID: 3}
	if d.Channel() != 1 || !d.Slave() {
		t.Errorf("channel = %d slave = %v", d.Channel(), d.Slave())
	}
}
