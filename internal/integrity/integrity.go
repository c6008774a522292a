// Package integrity provides diagnostic-only CRC16/CCITT-FALSE checksums
// over a firmware image and its resource partition. Nothing in analyzer,
// directory, or mutator consults these values; they exist purely so an
// external tool (or the fwrescli verify subcommand) can detect unexpected
// drift between two exports of the same firmware.
package integrity

import "github.com/sigurn/crc16"

var ccittFalseTable = crc16.MakeTable(crc16.CRC16_CCITT_FALSE)

// ComputePart5 checksums the resource partition [part5Offset, part5Offset+part5Size).
func ComputePart5(firmware []byte, part5Offset, part5Size uint32) uint16 {
	end := part5Offset + part5Size
	if end > uint32(len(firmware)) {
		end = uint32(len(firmware))
	}
	if part5Offset > end {
		return 0
	}
	return crc16.Checksum(firmware[part5Offset:end], ccittFalseTable)
}

// ComputeWhole checksums the entire firmware buffer.
func ComputeWhole(firmware []byte) uint16 {
	return crc16.Checksum(firmware, ccittFalseTable)
}

// Report is the pair of checksums Engine.Integrity exposes.
type Report struct {
	Part5CRC      uint16
	WholeImageCRC uint16
}
