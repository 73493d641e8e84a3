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

	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Detect drives on the emulated machine",
	Long:  "Run the firmware detection scan against the attached images and print the resulting drive table.",
	Run: func(cmd *cobra.Command, args []string) {
		res, err := boot()
		if err != nil {
			cobra.CheckErr(err)
		}
		defer res.close()

		drives := res.drv.Drives().All()
		if len(drives) == 0 {
			fmt.Println("no drives detected")
			return
		}
		for _, dr := range drives {
			fmt.Printf("drive %d: %s\n", dr.ID, describeLine(dr))
		}
		if cds := res.drv.Drives().CDs(); len(cds) > 0 {
			fmt.Printf("%d drive(s) in the CD-ROM boot map\n", len(cds))
		}
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}
