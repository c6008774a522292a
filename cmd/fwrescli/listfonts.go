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

func ListFontPlanes(path string) {
	e := fwres.NewEngine(readFirmwareFile(path))
	planes, err := e.ListFontPlanes()
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		return
	}
	for _, p := range planes {
		fmt.Printf("%-24s U+%04X..U+%04X  small=%-5d large=%-5d\n", p.Name, p.Start, p.End, p.SmallCount, p.LargeCount)
	}
}

var listFontsCmd = &cobra.Command{
	Use:   "list-fonts <firmware-file>",
	Short: "Lists the Unicode plane table with validated SMALL/LARGE glyph counts",
	Long:  "",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ListFontPlanes(args[0])
	},
}

func init() {
	rootCmd.AddCommand(listFontsCmd)
}
