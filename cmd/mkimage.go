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

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var mkimageSize = 10

var mkimageCmd = &cobra.Command{
	Use:   "mkimage FILE",
	Short: "Create a blank hard disk image",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if mkimageSize < 10 {
			mkimageSize = 10
		} else if mkimageSize > 500 {
			mkimageSize = 500
		}

		fs := afero.NewOsFs()
		fp, err := fs.Create(args[0])
		if err != nil {
			cobra.CheckErr(err)
		}
		defer fp.Close()

		if err := fp.Truncate(int64(mkimageSize) * 1024 * 1024); err != nil {
			cobra.CheckErr(err)
		}
		fmt.Printf("created %s (%d MB)\n", args[0], mkimageSize)
	},
}

func init() {
	mkimageCmd.Flags().IntVar(&mkimageSize, "size", mkimageSize, "image size in megabytes")
	rootCmd.AddCommand(mkimageCmd)
}
