// Copyright © 2019 Marcus Mengs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"fmt"

	"github.com/echomini/fwres"
	"github.com/spf13/cobra"
)

var replaceBitmapOut string

func ReplaceBitmap(firmwarePath, name, payloadPath string) {
	e := fwres.NewEngine(readFirmwareFile(firmwarePath))
	payload := readFirmwareFile(payloadPath)
	if err := e.ReplaceBitmapBMP(name, payload); err != nil {
		fmt.Printf("ERROR: %v\n", err)
		return
	}
	writeOutputFile(replaceBitmapOut, e.Export())
}

var replaceBitmapCmd = &cobra.Command{
	Use:   "replace-bitmap <firmware-file> <name> <payload.bmp>",
	Short: "Replaces a named bitmap resource in place from a BMP file",
	Long:  "",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		ReplaceBitmap(args[0], args[1], args[2])
	},
}

func init() {
	replaceBitmapCmd.Flags().StringVarP(&replaceBitmapOut, "output", "o", "", "output firmware path")
	rootCmd.AddCommand(replaceBitmapCmd)
}
