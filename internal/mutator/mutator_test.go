package mutator

import (
	"math/rand"
	"testing"

	"github.com/echomini/fwres/internal/directory"
	"github.com/echomini/fwres/internal/fontcodec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alignedDirectory(part5Offset, part5Size uint32) *directory.Directory {
	return &directory.Directory{
		Part5Offset: part5Offset,
		Part5Size:   part5Size,
		Entries: []directory.MetadataEntry{
			{Offset: 0x100, Width: 4, Height: 4, Name: "A.BMP"},
			{Offset: 0x200, Width: 8, Height: 2, Name: "B.BMP"},
			{Offset: 0x300, Width: 2, Height: 2, Name: "C.BMP"},
		},
		Detection: directory.DetectionInfo{Misalignment: 0, VotedShift: true, Confident: true},
	}
}

func TestReadBitmapAndReplaceBitmapRawRoundTrip(t *testing.T) {
	part5Offset := uint32(0x10000)
	firmware := make([]byte, int(part5Offset)+0x1000)
	dir := alignedDirectory(part5Offset, 0x1000)

	// B.BMP takes its dimensions from the next entry (C.BMP, 2x2).
	original, err := ReadBitmap(firmware, dir, "B.BMP")
	require.NoError(t, err)
	assert.Len(t, original, 2*2*2)

	rnd := rand.New(rand.NewSource(7))
	payload := make([]byte, 2*2*2)
	rnd.Read(payload)

	require.NoError(t, ReplaceBitmapRaw(firmware, dir, "B.BMP", payload))

	got, err := ReadBitmap(firmware, dir, "B.BMP")
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	// Neighboring entries must be untouched.
	untouched, err := ReadBitmap(firmware, dir, "A.BMP")
	require.NoError(t, err)
	assert.True(t, allZero(untouched))
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

func TestReadBitmapNameNotFound(t *testing.T) {
	dir := alignedDirectory(0, 0x1000)
	firmware := make([]byte, 0x1000)
	_, err := ReadBitmap(firmware, dir, "MISSING.BMP")
	assert.ErrorIs(t, err, ErrNameNotFound)
}

func TestReplaceBitmapRawRejectsWrongSize(t *testing.T) {
	dir := alignedDirectory(0, 0x1000)
	firmware := make([]byte, 0x1000)
	err := ReplaceBitmapRaw(firmware, dir, "A.BMP", make([]byte, 3))
	assert.ErrorIs(t, err, ErrInvalidPayloadSize)
}

func TestReplaceBitmapRawRejectsOffsetOutsidePart5(t *testing.T) {
	dir := &directory.Directory{
		Part5Offset: 0,
		Part5Size:   0x10,
		Entries: []directory.MetadataEntry{
			{Offset: 0x100, Width: 2, Height: 2, Name: "A.BMP"},
		},
		Detection: directory.DetectionInfo{Misalignment: 0},
	}
	firmware := make([]byte, 0x1000)
	err := ReplaceBitmapRaw(firmware, dir, "A.BMP", make([]byte, 2*2*2))
	assert.Error(t, err)
}

func TestReplaceBitmapRawRejectsSpanPastFirmwareEnd(t *testing.T) {
	dir := &directory.Directory{
		Part5Offset: 0,
		Part5Size:   0x10000,
		Entries: []directory.MetadataEntry{
			{Offset: 0xF00, Width: 100, Height: 100, Name: "A.BMP"},
		},
		Detection: directory.DetectionInfo{Misalignment: 0},
	}
	firmware := make([]byte, 0x1000)
	err := ReplaceBitmapRaw(firmware, dir, "A.BMP", make([]byte, 100*100*2))
	assert.Error(t, err)
}

func TestReplaceBitmapRawRejectsImplausibleDimensions(t *testing.T) {
	dir := &directory.Directory{
		Part5Offset: 0,
		Part5Size:   0x10000,
		Entries: []directory.MetadataEntry{
			{Offset: 0x10, Width: 0, Height: 0, Name: "A.BMP"},
		},
		Detection: directory.DetectionInfo{Misalignment: 0},
	}
	firmware := make([]byte, 0x1000)
	err := ReplaceBitmapRaw(firmware, dir, "A.BMP", nil)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

func checkerGrid() fontcodec.Grid {
	var g fontcodec.Grid
	for r := 0; r < 16; r++ {
		for c := 0; c < 15; c++ {
			g[r][c] = (r+c)%2 == 0
		}
	}
	return g
}

func TestGlyphAddressSmallAndLarge(t *testing.T) {
	addr, err := GlyphAddress(0x80000, 0x90000, 'A', fontcodec.Small)
	require.NoError(t, err)
	assert.Equal(t, 0x80000+int('A')*32, addr)

	addr, err = GlyphAddress(0x80000, 0x90000, 0x4E00, fontcodec.Large)
	require.NoError(t, err)
	assert.Equal(t, 0x90000, addr)

	addr, err = GlyphAddress(0x80000, 0x90000, 0x4E01, fontcodec.Large)
	require.NoError(t, err)
	assert.Equal(t, 0x90000+33, addr)
}

func TestGlyphAddressRejectsCodepointBelowLargeBase(t *testing.T) {
	_, err := GlyphAddress(0x80000, 0x90000, 0x1000, fontcodec.Large)
	assert.ErrorIs(t, err, ErrCodepointOutOfRange)
}

func buildSmallGlyphFirmware(u rune, g fontcodec.Grid, lookupVal byte) (firmware []byte, smallBase, lookupTableBase uint32) {
	smallBase = 0x1000
	lookupTableBase = 0x8000
	firmware = make([]byte, 0x10000)

	chunk := fontcodec.EncodeV8(g, lookupVal)
	addr := int(smallBase) + int(u)*fontcodec.Small.Stride()
	copy(firmware[addr:], chunk)
	firmware[int(lookupTableBase)+int(u>>3)] = lookupVal
	return
}

func TestReadFontPixelsAndReplaceFontPixelsRoundTrip(t *testing.T) {
	u := rune('Q')
	g := checkerGrid()
	lookupVal := byte(0x28)
	firmware, smallBase, lookupTableBase := buildSmallGlyphFirmware(u, g, lookupVal)

	got, err := ReadFontPixels(firmware, smallBase, 0, lookupTableBase, u, fontcodec.Small)
	require.NoError(t, err)
	assert.Equal(t, g, got)

	inverted := g
	for r := range inverted {
		for c := range inverted[r] {
			inverted[r][c] = !inverted[r][c] && c != 15
		}
	}
	require.NoError(t, ReplaceFontPixels(firmware, smallBase, 0, lookupTableBase, u, fontcodec.Small, inverted))

	got2, err := ReadFontPixels(firmware, smallBase, 0, lookupTableBase, u, fontcodec.Small)
	require.NoError(t, err)
	assert.Equal(t, inverted, got2)
}

func TestReplaceFontPixelsLeavesLargeFooterByteUntouched(t *testing.T) {
	largeBase := uint32(0x20000)
	lookupTableBase := uint32(0x8000)
	firmware := make([]byte, 0x30000)
	u := rune(0x4E00)
	lookupVal := byte(0x00)

	g := checkerGrid()
	chunk := fontcodec.EncodeV8(g, lookupVal)
	addr := int(largeBase)
	copy(firmware[addr:], chunk)
	firmware[addr+32] = 0xAB // footer byte, analyzer scoring data
	firmware[int(lookupTableBase)+int(u>>3)] = lookupVal

	require.NoError(t, ReplaceFontPixels(firmware, 0, largeBase, lookupTableBase, u, fontcodec.Large, g))
	assert.Equal(t, byte(0xAB), firmware[addr+32])
}

func TestReplaceFontChunkRejectsWrongSize(t *testing.T) {
	firmware := make([]byte, 0x10000)
	err := ReplaceFontChunk(firmware, 0x1000, 0, 0x8000, 'A', fontcodec.Small, make([]byte, 10))
	assert.ErrorIs(t, err, ErrInvalidPayloadSize)
}

func TestReplaceFontChunkRejectsUniformChunk(t *testing.T) {
	firmware := make([]byte, 0x10000)
	uniform := make([]byte, 32)
	err := ReplaceFontChunk(firmware, 0x1000, 0, 0x8000, 'A', fontcodec.Small, uniform)
	assert.ErrorIs(t, err, ErrInvalidPayloadContent)
}

func TestReplaceFontPixelsRejectsAllOffGrid(t *testing.T) {
	firmware, smallBase, lookupTableBase := buildSmallGlyphFirmware('Z', checkerGrid(), 0x00)
	var allOff fontcodec.Grid
	err := ReplaceFontPixels(firmware, smallBase, 0, lookupTableBase, 'Z', fontcodec.Small, allOff)
	assert.ErrorIs(t, err, ErrInvalidPayloadContent)
}

func TestReadFontPixelsRejectsAllOffGlyph(t *testing.T) {
	u := rune('Z')
	var allOff fontcodec.Grid // encodes to 32 identical zero bytes regardless of lookupVal
	lookupVal := byte(0x00)
	firmware, smallBase, lookupTableBase := buildSmallGlyphFirmware(u, allOff, lookupVal)

	_, err := ReadFontPixels(firmware, smallBase, 0, lookupTableBase, u, fontcodec.Small)
	assert.ErrorIs(t, err, ErrInvalidPayloadContent)
}
