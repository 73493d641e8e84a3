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

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-pcboot/pcboot/firmware/ata"
	"github.com/go-pcboot/pcboot/firmware/disk"
)

func describeLine(dr *disk.Drive) string {
	return ata.Describe(dr)
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show identify details for every detected drive",
	Run: func(cmd *cobra.Command, args []string) {
		res, err := boot()
		if err != nil {
			cobra.CheckErr(err)
		}
		defer res.close()

		for _, dr := range res.drv.Drives().All() {
			fmt.Printf("drive %d (ata%d-%d)\n", dr.ID, dr.Channel(), slaveBit(dr))
			fmt.Printf("  model:     %q\n", dr.Model)
			fmt.Printf("  type:      %s-%d\n", dr.Type, dr.Version)
			fmt.Printf("  removable: %v\n", dr.Removable)
			fmt.Printf("  block:     %d bytes\n", dr.BlkSize)
			if dr.Sectors == disk.SectorsUnknown {
				fmt.Printf("  sectors:   unknown (packet device)\n")
			} else {
				fmt.Printf("  sectors:   %d\n", dr.Sectors)
			}
			if dr.Type == disk.TypeATA {
				fmt.Printf("  geometry:  %d/%d/%d physical, %d/%d/%d logical\n",
					dr.PCHS.Cylinders, dr.PCHS.Heads, dr.PCHS.SPT,
					dr.LCHS.Cylinders, dr.LCHS.Heads, dr.LCHS.SPT)
			}
			if dr.IsCD {
				fmt.Printf("  cdrom:     in boot map, medium %s\n", mediumState(res.drv, dr))
			}
		}
	},
}

// mediumState probes an optical drive with a packet read of the first
// sector.
func mediumState(drv *ata.Driver, dr *disk.Drive) string {
	cmdbuf := make([]byte, 12)
	cmdbuf[0] = 0x28 // READ(10), lba 0
	cmdbuf[8] = 1

	buf := make([]byte, dr.BlkSize)
	err := drv.CommandPacket(dr, cmdbuf, dr.BlkSize, buf)
	switch {
	case err == nil:
		return "readable"
	case isNotReady(err):
		return "not present"
	default:
		return "unreadable"
	}
}

func isNotReady(err error) bool {
	var devErr *ata.DeviceError
	return errors.As(err, &devErr) && devErr.NotReady()
}

func slaveBit(dr *disk.Drive) int {
	if dr.Slave() {
		return 1
	}
	return 0
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
