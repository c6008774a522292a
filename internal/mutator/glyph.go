package mutator

import (
	"fmt"

	"github.com/echomini/fwres/internal/binio"
	"github.com/echomini/fwres/internal/fontcodec"
)

// ErrCodepointOutOfRange is returned for a LARGE-variant codepoint below
// 0x4E00, the smallest code point the LARGE glyph table defines.
var ErrCodepointOutOfRange = fmt.Errorf("mutator: code point out of range for variant")

const largeBaseRune = 0x4E00

// GlyphAddress computes the firmware address of the chunk for codepoint u
// and variant, given the cached SMALL/LARGE base addresses.
func GlyphAddress(smallBase, largeBase uint32, u rune, variant fontcodec.Variant) (int, error) {
	stride := variant.Stride()
	switch variant {
	case fontcodec.Small:
		return int(smallBase) + int(u)*stride, nil
	case fontcodec.Large:
		if u < largeBaseRune {
			return 0, fmt.Errorf("%w: U+%04X < U+%04X", ErrCodepointOutOfRange, u, largeBaseRune)
		}
		return int(largeBase) + int(u-largeBaseRune)*stride, nil
	default:
		return 0, fmt.Errorf("mutator: unknown font variant %v", variant)
	}
}

// LookupValue reads the per-glyph configuration byte for code point u from
// the firmware's lookup table.
func LookupValue(firmware []byte, lookupTableBase uint32, u rune) (byte, error) {
	return binio.ReadU8(firmware, int(lookupTableBase)+int(u>>3))
}

func validateDecodedGlyph(chunk []byte, lookupVal byte, variant fontcodec.Variant) (fontcodec.Grid, error) {
	if fontcodec.IsUniform(chunk[:32]) {
		return fontcodec.Grid{}, fmt.Errorf("%w: chunk bytes are all identical", ErrInvalidPayloadContent)
	}
	grid, err := fontcodec.DecodeV8(chunk, lookupVal)
	if err != nil {
		return fontcodec.Grid{}, err
	}
	lo, hi := fontcodec.ValidRatioBounds(variant)
	ratio := grid.FillRatio()
	if ratio <= lo || ratio >= hi {
		return fontcodec.Grid{}, fmt.Errorf("%w: fill ratio %.4f outside (%.2f, %.2f)", ErrInvalidPayloadContent, ratio, lo, hi)
	}
	return grid, nil
}

// ReadFontPixels resolves codepoint u/variant to its chunk, validates it,
// and decodes it into a pixel Grid.
func ReadFontPixels(firmware []byte, smallBase, largeBase, lookupTableBase uint32, u rune, variant fontcodec.Variant) (fontcodec.Grid, error) {
	addr, err := GlyphAddress(smallBase, largeBase, u, variant)
	if err != nil {
		return fontcodec.Grid{}, err
	}
	chunk, err := binio.Slice(firmware, addr, variant.Stride())
	if err != nil {
		return fontcodec.Grid{}, err
	}
	lookupVal, err := LookupValue(firmware, lookupTableBase, u)
	if err != nil {
		return fontcodec.Grid{}, err
	}
	return validateDecodedGlyph(chunk, lookupVal, variant)
}

// ReplaceFontChunk writes a raw chunk (already wire-encoded) in place after
// validating its length, uniformity, and decoded ratio. The lookup table is
// never written.
func ReplaceFontChunk(firmware []byte, smallBase, largeBase, lookupTableBase uint32, u rune, variant fontcodec.Variant, chunk []byte) error {
	addr, err := GlyphAddress(smallBase, largeBase, u, variant)
	if err != nil {
		return err
	}
	stride := variant.Stride()
	if len(chunk) != stride {
		return fmt.Errorf("%w: got %d bytes, want %d for %v", ErrInvalidPayloadSize, len(chunk), stride, variant)
	}

	lookupVal, err := LookupValue(firmware, lookupTableBase, u)
	if err != nil {
		return err
	}
	if _, err := validateDecodedGlyph(chunk, lookupVal, variant); err != nil {
		return err
	}

	dst, err := binio.Slice(firmware, addr, stride)
	if err != nil {
		return err
	}
	copy(dst, chunk)
	return nil
}

// ReplaceFontPixels encodes grid with the glyph's current lookup byte and
// writes only the 32 pixel-data bytes of the chunk; a LARGE glyph's 33rd
// footer byte (analyzer scoring data, not pixel data) is left untouched. The
// freshly encoded chunk is held to the same uniformity/fill-ratio bounds
// ReplaceFontChunk enforces on a raw chunk, so neither path can plant content
// the other would reject.
func ReplaceFontPixels(firmware []byte, smallBase, largeBase, lookupTableBase uint32, u rune, variant fontcodec.Variant, grid fontcodec.Grid) error {
	addr, err := GlyphAddress(smallBase, largeBase, u, variant)
	if err != nil {
		return err
	}
	lookupVal, err := LookupValue(firmware, lookupTableBase, u)
	if err != nil {
		return err
	}
	chunk := fontcodec.EncodeV8(grid, lookupVal)
	if _, err := validateDecodedGlyph(chunk, lookupVal, variant); err != nil {
		return err
	}

	dst, err := binio.Slice(firmware, addr, len(chunk))
	if err != nil {
		return err
	}
	copy(dst, chunk)
	return nil
}
