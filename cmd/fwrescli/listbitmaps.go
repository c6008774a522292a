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

func ListBitmaps(path string) {
	e := fwres.NewEngine(readFirmwareFile(path))
	entries, err := e.ListBitmaps()
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		return
	}
	for _, b := range entries {
		fmt.Printf("%-32s %4dx%-4d %d bytes\n", b.Name, b.Width, b.Height, b.Size)
	}
	fmt.Printf("%d bitmap(s)\n", len(entries))
}

var listBitmapsCmd = &cobra.Command{
	Use:   "list-bitmaps <firmware-file>",
	Short: "Lists every resolvable bitmap resource in the firmware image",
	Long:  "",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ListBitmaps(args[0])
	},
}

func init() {
	rootCmd.AddCommand(listBitmapsCmd)
}
