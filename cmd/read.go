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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-pcboot/pcboot/firmware/disk"
)

var (
	readDrive int
	readLBA   uint64
	readCount int
)

var readCmd = &cobra.Command{
	Use:   "read [FILE]",
	Short: "Read blocks through the firmware dispatcher",
	Long:  "Read a block range from a detected drive through the full command dispatch path. Output goes to FILE or stdout.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		res, err := boot()
		if err != nil {
			cobra.CheckErr(err)
		}
		defer res.close()

		dr, err := findDrive(res.drv, readDrive)
		if err != nil {
			cobra.CheckErr(err)
		}

		op := disk.Op{
			Drive:   dr,
			Command: disk.CmdRead,
			LBA:     readLBA,
			Count:   readCount,
			Buf:     make([]byte, readCount*dr.BlkSize),
		}
		if status := res.drv.Process(&op); status != disk.Success {
			cobra.CheckErr(fmt.Errorf("read failed: %s (%d of %d blocks done)",
				status, readCount-op.Count, readCount))
		}

		out := os.Stdout
		if len(args) > 0 {
			f, err := os.Create(args[0])
			if err != nil {
				cobra.CheckErr(err)
			}
			defer f.Close()
			out = f
		}
		if _, err := out.Write(op.Buf); err != nil {
			cobra.CheckErr(err)
		}
	},
}

func init() {
	readCmd.Flags().IntVar(&readDrive, "drive", 0, "drive id from probe")
	readCmd.Flags().Uint64Var(&readLBA, "lba", 0, "first block to read")
	readCmd.Flags().IntVar(&readCount, "count", 1, "number of blocks")
	rootCmd.AddCommand(readCmd)
}
