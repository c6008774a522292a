// Package mutator validates and applies in-place writes to a firmware
// buffer: bitmap replacement (via the resource directory) and font glyph
// replacement (via the analyzer's cached addresses). Bitmap reads and writes
// resolve address and dimensions through directory.Resolve, the same function
// directory.Enumerate uses, so that a listing and a write (ReplaceBitmapRaw)
// can never disagree about where a resource lives.
package mutator

import (
	"errors"
	"fmt"

	"github.com/echomini/fwres/internal/binio"
	"github.com/echomini/fwres/internal/directory"
)

// Sentinel errors. The root fwres package maps these (and binio.ErrOutOfBounds)
// onto its public ErrorKind values.
var (
	ErrNameNotFound          = errors.New("mutator: name not found")
	ErrInvalidDimensions     = errors.New("mutator: invalid dimensions")
	ErrInvalidPayloadSize    = errors.New("mutator: invalid payload size")
	ErrInvalidPayloadContent = errors.New("mutator: invalid payload content")
)

// ReadBitmap returns the raw RGB565 bytes for the runtime index resolved
// from name, or ErrNameNotFound / ErrOutOfBounds.
func ReadBitmap(firmware []byte, dir *directory.Directory, name string) ([]byte, error) {
	resolved, _, err := resolveNamedBitmap(dir, name)
	if err != nil {
		return nil, err
	}
	start, size, err := bitmapWriteSpan(dir, resolved, len(firmware))
	if err != nil {
		return nil, err
	}
	return binio.Slice(firmware, start, size)
}

// ReplaceBitmapRaw validates rgb565 against the resolved entry's expected
// size and dimensions and, if valid, writes it in place. No byte outside
// [writeStart, writeStart+len(rgb565)) is ever touched.
func ReplaceBitmapRaw(firmware []byte, dir *directory.Directory, name string, rgb565 []byte) error {
	resolved, _, err := resolveNamedBitmap(dir, name)
	if err != nil {
		return err
	}

	expectedSize := int(resolved.Width) * int(resolved.Height) * 2
	if len(rgb565) != expectedSize {
		return fmt.Errorf("%w: got %d bytes, want %d (%dx%d RGB565)", ErrInvalidPayloadSize, len(rgb565), expectedSize, resolved.Width, resolved.Height)
	}

	start, size, err := bitmapWriteSpan(dir, resolved, len(firmware))
	if err != nil {
		return err
	}

	copy(firmware[start:start+size], rgb565)
	return nil
}

func resolveNamedBitmap(dir *directory.Directory, name string) (directory.Resolved, int, error) {
	idx, ok := dir.IndexByName(name)
	if !ok {
		return directory.Resolved{}, 0, fmt.Errorf("%w: %q", ErrNameNotFound, name)
	}
	resolved, ok := dir.Resolve(idx)
	if !ok {
		return directory.Resolved{}, 0, fmt.Errorf("%w: index %d no longer resolves", ErrNameNotFound, idx)
	}
	if resolved.Width <= 0 || resolved.Width > directory.MaxDimension ||
		resolved.Height <= 0 || resolved.Height > directory.MaxDimension {
		return directory.Resolved{}, 0, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, resolved.Width, resolved.Height)
	}
	return resolved, idx, nil
}

// bitmapWriteSpan computes the absolute firmware span a resolved bitmap
// entry occupies, enforcing the spec's two independent bound checks:
// the Part5-relative offset must itself fall strictly inside Part 5, and
// the absolute span must fall inside the firmware buffer.
func bitmapWriteSpan(dir *directory.Directory, resolved directory.Resolved, firmwareLen int) (start, size int, err error) {
	if resolved.Offset >= dir.Part5Size {
		return 0, 0, fmt.Errorf("%w: payload offset %#x outside Part 5 (size %#x)", binio.ErrOutOfBounds, resolved.Offset, dir.Part5Size)
	}
	size = int(resolved.Width) * int(resolved.Height) * 2
	start = int(dir.Part5Offset) + int(resolved.Offset)
	if uint64(start)+uint64(size) > uint64(firmwareLen) {
		return 0, 0, fmt.Errorf("%w: span [%#x:%#x) exceeds firmware length %#x", binio.ErrOutOfBounds, start, start+size, firmwareLen)
	}
	return start, size, nil
}
