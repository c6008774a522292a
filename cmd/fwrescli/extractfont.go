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
	"strconv"
	"strings"

	"github.com/echomini/fwres"
	"github.com/echomini/fwres/internal/bmp"
	"github.com/echomini/fwres/internal/fontcodec"
	"github.com/spf13/cobra"
)

var extractFontOut string

// parseCodepoint accepts decimal, 0x-prefixed hex, or a U+-prefixed form.
func parseCodepoint(s string) (rune, error) {
	s = strings.ToUpper(s)
	if strings.HasPrefix(s, "U+") {
		v, err := strconv.ParseInt(s[2:], 16, 32)
		return rune(v), err
	}
	v, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		v, err = strconv.ParseInt(s, 16, 32)
	}
	return rune(v), err
}

func parseVariant(s string) (fontcodec.Variant, error) {
	switch strings.ToLower(s) {
	case "small":
		return fontcodec.Small, nil
	case "large":
		return fontcodec.Large, nil
	default:
		return 0, fmt.Errorf("unknown variant %q, want \"small\" or \"large\"", s)
	}
}

func gridToMonoPixels(g fontcodec.Grid) [][]bool {
	rows := make([][]bool, len(g))
	for r := range g {
		row := make([]bool, len(g[r]))
		copy(row, g[r][:])
		rows[r] = row
	}
	return rows
}

func ExtractFont(firmwarePath, codepoint, variant string) {
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
	grid, err := e.ReadFont(u, v)
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		return
	}

	bmpBytes, err := bmp.PixelsMonoToBMP(gridToMonoPixels(grid), 16, 16)
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		return
	}
	writeOutputFile(extractFontOut, bmpBytes)
}

var extractFontCmd = &cobra.Command{
	Use:   "extract-font <firmware-file> <codepoint> <small|large>",
	Short: "Extracts a glyph as a 1-bpp monochrome BMP",
	Long:  "",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		ExtractFont(args[0], args[1], args[2])
	},
}

func init() {
	extractFontCmd.Flags().StringVarP(&extractFontOut, "output", "o", "", "output BMP path")
	rootCmd.AddCommand(extractFontCmd)
}
