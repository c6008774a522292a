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

var extractBitmapOut string

func ExtractBitmap(path, name string) {
	e := fwres.NewEngine(readFirmwareFile(path))
	bmpBytes, err := e.ReadBitmapBMP(name)
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		return
	}
	writeOutputFile(extractBitmapOut, bmpBytes)
}

var extractBitmapCmd = &cobra.Command{
	Use:   "extract-bitmap <firmware-file> <name>",
	Short: "Extracts a named bitmap resource as a 16-bit BMP",
	Long:  "",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ExtractBitmap(args[0], args[1])
	},
}

func init() {
	extractBitmapCmd.Flags().StringVarP(&extractBitmapOut, "output", "o", "", "output BMP path")
	rootCmd.AddCommand(extractBitmapCmd)
}
