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

var replaceFontOut string

func ReplaceFont(firmwarePath, codepoint, variant, payloadPath string) {
	u, err := parseCodepoint(codepoint)
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		return
	}
	v, err := parseVariant(variant)
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		return
	}

	e := fwres.NewEngine(readFirmwareFile(firmwarePath))
	payload := readFirmwareFile(payloadPath)
	if err := e.ReplaceFontBMP(u, v, payload); err != nil {
		fmt.Printf("ERROR: %v\n", err)
		return
	}
	writeOutputFile(replaceFontOut, e.Export())
}

var replaceFontCmd = &cobra.Command{
	Use:   "replace-font <firmware-file> <codepoint> <small|large> <mono.bmp>",
	Short: "Replaces a glyph in place from a 1-bpp monochrome BMP file",
	Long:  "",
	Args:  cobra.ExactArgs(4),
	Run: func(cmd *cobra.Command, args []string) {
		ReplaceFont(args[0], args[1], args[2], args[3])
	},
}

func init() {
	replaceFontCmd.Flags().StringVarP(&replaceFontOut, "output", "o", "", "output firmware path")
	rootCmd.AddCommand(replaceFontCmd)
}
