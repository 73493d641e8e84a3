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

// Package cmd is the pcboot command line interface. Every command
// assembles an emulated machine from the given disk images and runs
// the firmware storage stack against it.
package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/go-pcboot/pcboot/firmware/ata"
	"github.com/go-pcboot/pcboot/firmware/disk"
	"github.com/go-pcboot/pcboot/firmware/pci"
	"github.com/go-pcboot/pcboot/firmware/xlog"
	"github.com/go-pcboot/pcboot/machine"
	"github.com/go-pcboot/pcboot/machine/ide"
	"github.com/go-pcboot/pcboot/version"
)

var (
	diskImages []string
	cdImages   []string
	pio32      bool
	verbosity  int
)

var rootCmd = &cobra.Command{
	Use:     "pcboot",
	Short:   "PC boot firmware storage stack on an emulated machine",
	Long:    "pcboot runs the firmware ATA/ATAPI driver core against an emulated IDE machine built from disk images.",
	Version: version.Current.FullString(),
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		xlog.SetLevel(verbosity)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringArrayVarP(&diskImages, "disk", "d", nil, "attach a hard disk image (repeatable)")
	pf.StringArrayVarP(&cdImages, "cd", "c", nil, "attach a CD-ROM iso image (repeatable)")
	pf.BoolVar(&pio32, "pio32", false, "use 32-bit PIO data transfers")
	pf.IntVarP(&verbosity, "verbose", "v", 1, "log verbosity level")
}

// bootResult is a machine with the firmware storage stack brought up
// on it.
type bootResult struct {
	drv     *ata.Driver
	devices []*ide.Device
}

func (b *bootResult) close() {
	for _, dev := range b.devices {
		dev.Close()
	}
}

func modelName(path string) string {
	name := filepath.Base(path)
	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	name = strings.ToUpper(name)
	if len(name) > 40 {
		name = name[:40]
	}
	return name
}

// boot builds the emulated machine from the image flags and runs
// firmware setup plus a synchronous detection drain.
func boot() (*bootResult, error) {
	fs := afero.NewOsFs()
	m := machine.New()

	channels := [2]*ide.Channel{
		ide.NewChannel(ata.PortATA1Cmd, ata.PortATA1Ctrl),
		ide.NewChannel(ata.PortATA2Cmd, ata.PortATA2Ctrl),
	}

	res := &bootResult{}
	for _, path := range diskImages {
		dev, err := ide.NewDisk(fs, path, modelName(path))
		if err != nil {
			res.close()
			return nil, fmt.Errorf("attach disk %s: %w", path, err)
		}
		res.devices = append(res.devices, dev)
	}
	for _, path := range cdImages {
		dev, err := ide.NewCDROM(fs, path, modelName(path))
		if err != nil {
			res.close()
			return nil, fmt.Errorf("attach cdrom %s: %w", path, err)
		}
		res.devices = append(res.devices, dev)
	}
	if len(res.devices) > 4 {
		res.close()
		return nil, fmt.Errorf("too many devices: %d (4 slots)", len(res.devices))
	}

	for i, dev := range res.devices {
		if err := channels[i/2].Attach(i%2, dev); err != nil {
			res.close()
			return nil, err
		}
	}
	for _, ch := range channels {
		if err := ch.InstallOn(m); err != nil {
			res.close()
			return nil, err
		}
	}

	// One IDE controller in compatibility mode.
	m.AddFunction(pci.Function{
		BDF:   1 << 3,
		Class: pci.ClassStorageIDE,
		IRQ:   ata.IRQATA1,
	})

	res.drv = ata.New(ata.Config{
		Bus:   m,
		Delay: m,
		PCI:   m,
		PIO32: pio32,
	})
	res.drv.Setup()
	res.drv.Wait()
	return res, nil
}

// findDrive resolves the --drive flag used by the data commands.
func findDrive(drv *ata.Driver, id int) (*disk.Drive, error) {
	dr := drv.Drives().Get(id)
	if dr == nil {
		return nil, fmt.Errorf("no drive with id %d", id)
	}
	return dr, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
