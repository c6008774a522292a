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
	"github.com/echomini/fwres/internal/analyzer"
	"github.com/spf13/cobra"
)

func PrintFirmwareInfo(path string) {
	e := fwres.NewEngine(readFirmwareFile(path))
	result, err := e.Analyze()
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		return
	}
	report, err := e.Integrity()
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		return
	}
	part5Offset, part5Size, err := analyzer.PartitionDescriptor(e.Export())
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		return
	}

	fmt.Printf("Part5 offset: 0x%08X\n", part5Offset)
	fmt.Printf("Part5 size:   0x%08X\n", part5Size)
	fmt.Printf("SMALL_BASE:   0x%08X\n", result.SmallBase)
	fmt.Printf("LARGE_BASE:   0x%08X (found=%v)\n", result.LargeBase, result.LargeFound)
	fmt.Printf("LOOKUP_TABLE: 0x%08X\n", result.LookupTable)
	fmt.Printf("confidence:   small-known-char=%v large-known-char=%v movw-hits=%d\n",
		result.Confidence.SmallDecodesKnownChar, result.Confidence.LargeDecodesKnownChar, result.Confidence.MovwHits)
	fmt.Printf("Part5 CRC16:  0x%04X\n", report.Part5CRC)
	fmt.Printf("Whole CRC16:  0x%04X\n", report.WholeImageCRC)
}

var infoCmd = &cobra.Command{
	Use:   "info <firmware-file>",
	Short: "Prints partition layout, cached addresses, confidence, and checksums",
	Long:  "",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		PrintFirmwareInfo(args[0])
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
