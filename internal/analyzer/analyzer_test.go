package analyzer

import (
	"testing"

	"github.com/echomini/fwres/internal/binio"
	"github.com/echomini/fwres/internal/fontcodec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionDescriptor(t *testing.T) {
	fw := make([]byte, 0x400000)
	require.NoError(t, binio.WriteU32LE(fw, PartOffsetFieldOffset, 0x300000))
	require.NoError(t, binio.WriteU32LE(fw, PartSizeFieldOffset, 0x100000))

	offset, size, err := PartitionDescriptor(fw)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x300000), offset)
	assert.Equal(t, uint32(0x100000), size)
}

func TestPartitionDescriptorOutOfBounds(t *testing.T) {
	fw := make([]byte, 0x400000)
	require.NoError(t, binio.WriteU32LE(fw, PartOffsetFieldOffset, 0x300000))
	require.NoError(t, binio.WriteU32LE(fw, PartSizeFieldOffset, 0x200000))

	_, _, err := PartitionDescriptor(fw)
	assert.ErrorIs(t, err, binio.ErrOutOfBounds)
}

func TestComputeSmallBase(t *testing.T) {
	fw := make([]byte, 0x200)
	require.NoError(t, binio.WriteU16LE(fw, SmallBaseLowOffset, 0x4321))
	require.NoError(t, binio.WriteU16LE(fw, SmallBaseHighOffset, 0x0010))

	base, err := ComputeSmallBase(fw)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x00104321), base)
}

func plantValidLargeWindow(fw []byte, base int, slots int) {
	footers := []byte{0x8F, 0x90, 0x89, 0x8B, 0x8D, 0x8E, 0x8C}
	for i := 0; i < slots; i++ {
		fw[base+largeStride*i+32] = footers[i%len(footers)]
	}
}

func TestLocateLargeBase(t *testing.T) {
	fw := make([]byte, 0x210000)
	for i := range fw {
		fw[i] = 0xAB // neutral filler, never a valid footer or 0x00/0xFF
	}

	// Both candidates must land on an offset the sweep actually visits:
	// largeSweepStart + largeStride*k. The winner uses the full 100-slot
	// scan window so no neighboring (shifted-by-k-strides) candidate can
	// tie its score: any shift loses at least one in-bounds slot.
	winner := largeSweepStart + largeStride*3000
	weaker := largeSweepStart + largeStride*10
	plantValidLargeWindow(fw, winner, largeMaxSlots)
	plantValidLargeWindow(fw, weaker, 3)

	base, found := LocateLargeBase(fw)
	require.True(t, found)
	assert.Equal(t, uint32(winner), base)
}

func TestLocateLargeBaseNoCandidate(t *testing.T) {
	fw := make([]byte, 0x210000)
	_, found := LocateLargeBase(fw)
	assert.False(t, found)
}

func TestValidateDecodesKnownChars(t *testing.T) {
	fw := make([]byte, 0x300000)
	for i := range fw {
		fw[i] = 0xAB
	}

	smallBase := uint32(0x100000)
	lookupVal := byte(0x00)
	chunk := fontcodec.EncodeV8(fontcodecDiagonal(), lookupVal)
	addr := int(smallBase) + int('A')*32
	copy(fw[addr:addr+32], chunk)
	fw[int(LookupTable)+('A'>>3)] = lookupVal

	conf := Validate(fw, smallBase, 0, false)
	assert.True(t, conf.SmallDecodesKnownChar)
	assert.False(t, conf.LargeDecodesKnownChar)
}

func fontcodecDiagonal() fontcodec.Grid {
	var g fontcodec.Grid
	for i := 0; i < 16; i++ {
		g[i][i] = true
	}
	return g
}
