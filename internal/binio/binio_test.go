package binio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWriteRoundTrip(t *testing.T) {
	buf := make([]byte, 16)

	require.NoError(t, WriteU16LE(buf, 0, 0xBEEF))
	v16, err := ReadU16LE(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), v16)

	require.NoError(t, WriteU32LE(buf, 4, 0xDEADBEEF))
	v32, err := ReadU32LE(buf, 4)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), v32)

	require.NoError(t, WriteU32BE(buf, 8, 0xDEADBEEF))
	v32be, err := ReadU32BE(buf, 8)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), v32be)

	beBytes, _ := Slice(buf, 8, 4)
	leBytes, _ := Slice(buf, 4, 4)
	assert.Equal(t, []byte{leBytes[3], leBytes[2], leBytes[1], leBytes[0]}, beBytes)
}

func TestReadOutOfBounds(t *testing.T) {
	buf := make([]byte, 4)

	_, err := ReadU32LE(buf, 2)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	_, err = ReadU8(buf, 10)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	err = WriteU16LE(buf, 3, 0xAAAA)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestFindBytes(t *testing.T) {
	haystack := []byte("ROCK26IMAGERES-ANCHOR-ROCK26IMAGERES")
	needle := []byte("ROCK26IMAGERES")

	assert.Equal(t, 0, FindBytes(haystack, needle, 0))
	assert.Equal(t, 22, FindBytes(haystack, needle, 1))
	assert.Equal(t, NotFound, FindBytes(haystack, []byte("MISSING"), 0))
	assert.Equal(t, NotFound, FindBytes(haystack, needle, len(haystack)))
}
