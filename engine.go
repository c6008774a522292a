// Package fwres is the core firmware resource engine for the Echo Mini
// firmware family: it locates the embedded bitmap and font resources inside
// an opaque firmware image, lets a caller read and replace them, and
// produces the modified image back out. See internal/analyzer,
// internal/directory, internal/fontcodec, and internal/mutator for the
// pieces Engine wires together.
package fwres

import (
	"errors"

	"github.com/echomini/fwres/internal/analyzer"
	"github.com/echomini/fwres/internal/binio"
	"github.com/echomini/fwres/internal/bmp"
	"github.com/echomini/fwres/internal/directory"
	"github.com/echomini/fwres/internal/fontcodec"
	"github.com/echomini/fwres/internal/integrity"
	"github.com/echomini/fwres/internal/mutator"
)

// BitmapEntry is one enumerated, validated bitmap resource, as returned by
// ListBitmaps.
type BitmapEntry struct {
	Name   string
	Width  int32
	Height int32
	Size   int64
	Offset uint32 // Part 5-relative, resolved
}

// Engine owns a single firmware buffer for the duration of a session. It
// takes ownership of the slice passed to NewEngine: callers that need the
// original bytes untouched must copy before constructing an Engine. Analysis
// and directory parsing are both lazy and cached on first use.
type Engine struct {
	firmware []byte

	analyzed bool
	result   analyzer.Result

	part5Offset uint32
	part5Size   uint32

	dirParsed bool
	dir       *directory.Directory
}

// NewEngine wraps firmware for analysis and resource access. Construction
// does no work beyond holding the reference; the first call that needs the
// partition descriptor, the analyzed addresses, or the directory triggers it.
func NewEngine(firmware []byte) *Engine {
	return &Engine{firmware: firmware}
}

// Analyze runs (or returns the cached result of) the firmware layout
// analysis: the partition descriptor, SMALL_BASE, LARGE_BASE, and the
// secondary confidence validator.
func (e *Engine) Analyze() (analyzer.Result, error) {
	if e.analyzed {
		return e.result, nil
	}
	offset, size, err := analyzer.PartitionDescriptor(e.firmware)
	if err != nil {
		return analyzer.Result{}, mapErr(err)
	}
	result, err := analyzer.Analyze(e.firmware)
	if err != nil {
		return analyzer.Result{}, mapErr(err)
	}
	e.part5Offset = offset
	e.part5Size = size
	e.result = result
	e.analyzed = true
	return e.result, nil
}

func (e *Engine) directory() (*directory.Directory, error) {
	if e.dirParsed {
		return e.dir, nil
	}
	if _, err := e.Analyze(); err != nil {
		return nil, err
	}
	part5, err := binio.Slice(e.firmware, int(e.part5Offset), int(e.part5Size))
	if err != nil {
		return nil, mapErr(err)
	}
	dir, err := directory.Build(part5, e.part5Offset, e.part5Size)
	if err != nil {
		return nil, mapErr(err)
	}
	e.dir = dir
	e.dirParsed = true
	return dir, nil
}

// ListBitmaps enumerates every resolvable, plausibly-dimensioned bitmap
// entry in the resource directory.
func (e *Engine) ListBitmaps() ([]BitmapEntry, error) {
	dir, err := e.directory()
	if err != nil {
		return nil, err
	}
	entries := dir.Enumerate()
	out := make([]BitmapEntry, len(entries))
	for i, be := range entries {
		out[i] = BitmapEntry{Name: be.Name, Width: be.Width, Height: be.Height, Size: be.Size, Offset: be.Offset}
	}
	return out, nil
}

// ReadBitmap returns the raw RGB565 bytes of the named bitmap resource.
func (e *Engine) ReadBitmap(name string) ([]byte, error) {
	dir, err := e.directory()
	if err != nil {
		return nil, err
	}
	b, err := mutator.ReadBitmap(e.firmware, dir, name)
	if err != nil {
		return nil, mapErr(err)
	}
	return b, nil
}

// ReadBitmapBMP returns the named bitmap wrapped in a 16-bit BI_BITFIELDS
// BMP container, ready to write to disk or hand to an image library.
func (e *Engine) ReadBitmapBMP(name string) ([]byte, error) {
	dir, err := e.directory()
	if err != nil {
		return nil, err
	}
	resolved, err := e.resolveForBMP(dir, name)
	if err != nil {
		return nil, err
	}
	rgb565, err := mutator.ReadBitmap(e.firmware, dir, name)
	if err != nil {
		return nil, mapErr(err)
	}
	out, err := bmp.RGB565ToBMP(rgb565, int(resolved.Width), int(resolved.Height))
	if err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

func (e *Engine) resolveForBMP(dir *directory.Directory, name string) (directory.Resolved, error) {
	idx, ok := dir.IndexByName(name)
	if !ok {
		return directory.Resolved{}, mapErr(mutator.ErrNameNotFound)
	}
	resolved, ok := dir.Resolve(idx)
	if !ok {
		return directory.Resolved{}, mapErr(mutator.ErrNameNotFound)
	}
	return resolved, nil
}

// ReplaceBitmap validates rgb565 against the resolved entry's dimensions and
// writes it in place over the firmware buffer.
func (e *Engine) ReplaceBitmap(name string, rgb565 []byte) error {
	dir, err := e.directory()
	if err != nil {
		return err
	}
	if err := mutator.ReplaceBitmapRaw(e.firmware, dir, name, rgb565); err != nil {
		return mapErr(err)
	}
	return nil
}

// ReplaceBitmapBMP parses bmpBytes as a 16-bit BI_BITFIELDS BMP and replaces
// the named bitmap with its pixel data.
func (e *Engine) ReplaceBitmapBMP(name string, bmpBytes []byte) error {
	rgb565, _, _, err := bmp.ParseRGB565BMP(bmpBytes)
	if err != nil {
		return mapErr(err)
	}
	return e.ReplaceBitmap(name, rgb565)
}

// ReadFont decodes the glyph for code point u and variant into a pixel Grid.
func (e *Engine) ReadFont(u rune, variant fontcodec.Variant) (fontcodec.Grid, error) {
	result, err := e.Analyze()
	if err != nil {
		return fontcodec.Grid{}, err
	}
	g, err := mutator.ReadFontPixels(e.firmware, result.SmallBase, result.LargeBase, result.LookupTable, u, variant)
	if err != nil {
		return fontcodec.Grid{}, mapErr(err)
	}
	return g, nil
}

// ReplaceFontPixels encodes grid with the glyph's existing configuration
// byte and writes only the 32 pixel-data bytes of its chunk.
func (e *Engine) ReplaceFontPixels(u rune, variant fontcodec.Variant, grid fontcodec.Grid) error {
	result, err := e.Analyze()
	if err != nil {
		return err
	}
	if err := mutator.ReplaceFontPixels(e.firmware, result.SmallBase, result.LargeBase, result.LookupTable, u, variant, grid); err != nil {
		return mapErr(err)
	}
	return nil
}

// ReplaceFontChunk writes a raw, already wire-encoded chunk for code point u,
// after validating its length and decoded content.
func (e *Engine) ReplaceFontChunk(u rune, variant fontcodec.Variant, chunk []byte) error {
	result, err := e.Analyze()
	if err != nil {
		return err
	}
	if err := mutator.ReplaceFontChunk(e.firmware, result.SmallBase, result.LargeBase, result.LookupTable, u, variant, chunk); err != nil {
		return mapErr(err)
	}
	return nil
}

// ReplaceFontBMP parses bmpBytes as a 1-bpp monochrome BMP and replaces the
// glyph for code point u/variant with its pixel content. The BMP must be
// exactly 16x16: anything else would silently crop or pad a glyph cell
// instead of reporting the mismatch.
func (e *Engine) ReplaceFontBMP(u rune, variant fontcodec.Variant, bmpBytes []byte) error {
	pixels, w, h, err := bmp.ParseMonoBMP(bmpBytes)
	if err != nil {
		return mapErr(err)
	}
	if w != 16 || h != 16 {
		return newErrorf(KindInvalidDimensions, nil, "font BMP is %dx%d, want 16x16", w, h)
	}
	var grid fontcodec.Grid
	for r := 0; r < 16; r++ {
		for c := 0; c < 16; c++ {
			grid[r][c] = pixels[r][c]
		}
	}
	return e.ReplaceFontPixels(u, variant, grid)
}

// VerifyFont re-runs the codec's own round-trip self-check against the
// on-disk chunk for code point u/variant: it decodes the chunk, re-encodes
// the result, and reports CodecDisagreement if the bytes differ. This should
// never fail for a real firmware chunk; it exists to catch a future codec
// regression rather than any expected firmware irregularity.
func (e *Engine) VerifyFont(u rune, variant fontcodec.Variant) error {
	result, err := e.Analyze()
	if err != nil {
		return err
	}
	addr, err := mutator.GlyphAddress(result.SmallBase, result.LargeBase, u, variant)
	if err != nil {
		return mapErr(err)
	}
	chunk, err := binio.Slice(e.firmware, addr, variant.Stride())
	if err != nil {
		return mapErr(err)
	}
	lookupVal, err := mutator.LookupValue(e.firmware, result.LookupTable, u)
	if err != nil {
		return mapErr(err)
	}
	if err := fontcodec.VerifyRoundTrip(chunk, lookupVal); err != nil {
		return mapErr(err)
	}
	return nil
}

// Integrity computes the diagnostic CRC16/CCITT-FALSE checksum pair over
// Part 5 and over the whole firmware buffer. It never gates any other
// operation; it exists purely so two exports can be diffed externally.
func (e *Engine) Integrity() (integrity.Report, error) {
	if _, err := e.Analyze(); err != nil {
		return integrity.Report{}, err
	}
	return integrity.Report{
		Part5CRC:      integrity.ComputePart5(e.firmware, e.part5Offset, e.part5Size),
		WholeImageCRC: integrity.ComputeWhole(e.firmware),
	}, nil
}

// Export returns the live, possibly-mutated firmware buffer. It is the same
// backing array the Engine was constructed with, not a copy.
func (e *Engine) Export() []byte {
	return e.firmware
}

// mapErr translates an internal package's sentinel error into the root
// fwres.Error/ErrorKind pair callers branch on. Errors that don't match a
// known sentinel are wrapped as KindInvalidFormat, since every internal
// package that doesn't already carry a more specific sentinel only ever
// fails because something in the firmware didn't look the way it should.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, binio.ErrOutOfBounds):
		return newErrorf(KindOutOfBounds, err, "out of bounds")
	case errors.Is(err, directory.ErrSignatureNotFound):
		return newErrorf(KindSignatureNotFound, err, "signature not found")
	case errors.Is(err, directory.ErrMetadataNotFound):
		return newErrorf(KindMetadataNotFound, err, "metadata table not found")
	case errors.Is(err, mutator.ErrNameNotFound):
		return newErrorf(KindNameNotFound, err, "name not found")
	case errors.Is(err, mutator.ErrInvalidPayloadSize):
		return newErrorf(KindInvalidPayloadSize, err, "invalid payload size")
	case errors.Is(err, mutator.ErrInvalidDimensions):
		return newErrorf(KindInvalidDimensions, err, "invalid dimensions")
	case errors.Is(err, mutator.ErrInvalidPayloadContent):
		return newErrorf(KindInvalidPayloadContent, err, "invalid payload content")
	case errors.Is(err, mutator.ErrCodepointOutOfRange):
		return newErrorf(KindInvalidDimensions, err, "code point out of range for variant")
	case errors.Is(err, bmp.ErrNotBitfields16), errors.Is(err, bmp.ErrNotMono), errors.Is(err, bmp.ErrImplausibleDimensions):
		return newErrorf(KindInvalidFormat, err, "invalid BMP payload")
	case errors.Is(err, fontcodec.ErrRoundTripMismatch):
		return newErrorf(KindCodecDisagreement, err, "codec round-trip mismatch")
	default:
		return newErrorf(KindInvalidFormat, err, "unrecognized firmware content")
	}
}
