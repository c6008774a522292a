// Package fontcodec implements the reversible pixel<->byte transform used
// for Echo Mini bitmap-font glyphs. Each glyph is stored as a small chunk of
// bytes (32 for the SMALL variant, 33 for LARGE) and a single per-glyph
// configuration byte fetched from a separate lookup table; three bits of
// that configuration byte select one of eight wire orderings for each 16-bit
// row. Decode and encode must be exact inverses of each other for all eight
// orderings: that round-trip is the only thing this package has to get
// right.
package fontcodec

import "fmt"

// Variant distinguishes the two glyph storage classes. It is a tagged sum
// rather than a bool so a third footer-stride class could be added later
// without reshaping every signature that currently takes a Variant.
type Variant int

const (
	Small Variant = iota
	Large
)

func (v Variant) String() string {
	switch v {
	case Small:
		return "SMALL"
	case Large:
		return "LARGE"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// Stride is the on-disk chunk length for v, including the LARGE footer byte.
func (v Variant) Stride() int {
	if v == Large {
		return 33
	}
	return 32
}

const (
	gridSize = 16

	// visibleCols is the number of pixel columns the decode loop actually
	// populates; column 15 is always blank because bit 0 of every row word
	// is discarded by construction. See the package-level Grid doc.
	visibleCols = 15
)

// Grid is a 16x16 glyph pixel grid, row-major, Grid[row][col]. Column 15 is
// always false: the wire format only ever carries 15 meaningful columns per
// row (bit 0 of each row word is never assigned to a pixel), but the grid is
// kept 16 wide to match the firmware's nominal glyph cell.
type Grid [gridSize][gridSize]bool

// FillRatio returns the fraction of cells in g that are set.
func (g Grid) FillRatio() float64 {
	set := 0
	for _, row := range g {
		for _, px := range row {
			if px {
				set++
			}
		}
	}
	return float64(set) / float64(gridSize*gridSize)
}

func swap16(x uint16) uint16 {
	return x<<8 | x>>8
}

func configBits(lookupVal byte) (swMcuBits, swMcuHwSwap, swMcuByteSwap byte) {
	swMcuBits = (lookupVal >> 3) & 1
	swMcuHwSwap = (lookupVal >> 4) & 1
	swMcuByteSwap = (lookupVal >> 5) & 1
	return
}

func decodeRow(b0, b1, lookupVal byte) [gridSize]bool {
	swMcuBits, swMcuHwSwap, swMcuByteSwap := configBits(lookupVal)

	var rowWord uint16
	if swMcuBits == 1 {
		val := uint16(b1)<<8 | uint16(b0)
		if swMcuByteSwap == 1 {
			val = swap16(val)
		}
		rowWord = val
	} else {
		var c1, c2 byte
		if swMcuHwSwap == swMcuByteSwap {
			c1, c2 = b1, b0
		} else {
			c1, c2 = b0, b1
		}
		if swMcuByteSwap == 1 {
			c1, c2 = c2, c1
		}
		if swMcuHwSwap == 1 {
			c1, c2 = c2, c1
		}
		rowWord = uint16(c2) | uint16(c1)<<8
	}

	if !(swMcuBits == 1 && swMcuByteSwap == 1) {
		rowWord = swap16(rowWord)
	}

	var row [gridSize]bool
	for i := 0; i < visibleCols; i++ {
		row[i] = (rowWord>>(15-uint(i)))&1 == 1
	}
	// row[15] stays false: bit 0 of rowWord is intentionally discarded.
	return row
}

func encodeRow(row [gridSize]bool, lookupVal byte) (b0, b1 byte) {
	swMcuBits, swMcuHwSwap, swMcuByteSwap := configBits(lookupVal)

	var pixelWord uint16
	for i := 0; i < visibleCols; i++ {
		if row[i] {
			pixelWord |= 1 << (15 - uint(i))
		}
	}

	var rowWordStage1 uint16
	if swMcuBits == 1 && swMcuByteSwap == 1 {
		rowWordStage1 = pixelWord
	} else {
		rowWordStage1 = swap16(pixelWord)
	}

	if swMcuBits == 1 {
		valBeforeSwap := rowWordStage1
		if swMcuByteSwap == 1 {
			valBeforeSwap = swap16(rowWordStage1)
		}
		b1 = byte(valBeforeSwap >> 8)
		b0 = byte(valBeforeSwap)
		return
	}

	c1 := byte(rowWordStage1 >> 8)
	c2 := byte(rowWordStage1)
	if swMcuHwSwap == 1 {
		c1, c2 = c2, c1
	}
	if swMcuByteSwap == 1 {
		c1, c2 = c2, c1
	}
	if swMcuHwSwap == swMcuByteSwap {
		b1, b0 = c1, c2
	} else {
		b0, b1 = c1, c2
	}
	return
}

// DecodeV8 decodes a 32- or 33-byte glyph chunk into a 16x16 pixel Grid using
// the three configuration bits carried in lookupVal. Only the first 32 bytes
// of chunk are consulted; a LARGE chunk's 33rd byte is the analyzer's
// row-footer byte and plays no part in pixel decoding.
func DecodeV8(chunk []byte, lookupVal byte) (Grid, error) {
	if len(chunk) < 2*gridSize {
		return Grid{}, fmt.Errorf("fontcodec: chunk too short: got %d bytes, need at least %d", len(chunk), 2*gridSize)
	}
	var g Grid
	for row := 0; row < gridSize; row++ {
		g[row] = decodeRow(chunk[2*row], chunk[2*row+1], lookupVal)
	}
	return g, nil
}

// EncodeV8 is the exact inverse of DecodeV8: DecodeV8(EncodeV8(g, lookupVal),
// lookupVal) reproduces g for every lookupVal DecodeV8 accepts. The returned
// chunk is always 32 bytes; callers writing a LARGE glyph keep the existing
// 33rd footer byte untouched (EncodeV8 never touches analyzer footer data).
func EncodeV8(g Grid, lookupVal byte) []byte {
	chunk := make([]byte, 2*gridSize)
	for row := 0; row < gridSize; row++ {
		b0, b1 := encodeRow(g[row], lookupVal)
		chunk[2*row] = b0
		chunk[2*row+1] = b1
	}
	return chunk
}

// ValidRatioBounds returns the open interval a decoded glyph's fill ratio
// must lie within to be accepted as a real glyph rather than noise.
func ValidRatioBounds(v Variant) (lo, hi float64) {
	if v == Large {
		return 0.01, 0.97
	}
	return 0.01, 0.95
}

// ErrRoundTripMismatch is returned by VerifyRoundTrip when decoding then
// re-encoding a chunk does not reproduce the original bytes. It should never
// happen for a real firmware chunk; its only use is as a self-check in test
// builds and in the fwrescli verify path.
var ErrRoundTripMismatch = fmt.Errorf("fontcodec: encode(decode(chunk)) != chunk")

// VerifyRoundTrip decodes chunk and re-encodes the result, returning
// ErrRoundTripMismatch if the bytes don't match. Only the first 32 bytes of
// chunk are compared; a LARGE chunk's footer byte is untouched by encoding.
func VerifyRoundTrip(chunk []byte, lookupVal byte) error {
	g, err := DecodeV8(chunk, lookupVal)
	if err != nil {
		return err
	}
	re := EncodeV8(g, lookupVal)
	for i, b := range re {
		if chunk[i] != b {
			return ErrRoundTripMismatch
		}
	}
	return nil
}

// IsUniform reports whether every byte of chunk is identical; such chunks
// are rejected before decode regardless of ratio bounds.
func IsUniform(chunk []byte) bool {
	if len(chunk) == 0 {
		return false
	}
	first := chunk[0]
	for _, b := range chunk[1:] {
		if b != first {
			return false
		}
	}
	return true
}
