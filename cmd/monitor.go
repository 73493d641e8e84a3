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
	"github.com/spf13/cobra"

	"github.com/go-pcboot/pcboot/firmware/xlog"
	"github.com/go-pcboot/pcboot/monitor"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Show the probe result on a boot style terminal screen",
	Run: func(cmd *cobra.Command, args []string) {
		// The screen owns the terminal, keep log noise off it.
		xlog.Mute(true)
		defer xlog.Mute(false)

		res, err := boot()
		if err != nil {
			cobra.CheckErr(err)
		}
		defer res.close()

		cobra.CheckErr(monitor.Show(res.drv))
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}
