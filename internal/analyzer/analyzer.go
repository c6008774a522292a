// Package analyzer locates the firmware addresses the rest of the engine
// needs: the partition descriptor for Part 5, the SMALL glyph table base
// (read directly from two fixed registers), and the LARGE glyph table base
// (found by scoring candidate windows, since no fixed register holds it).
package analyzer

import (
	"github.com/echomini/fwres/internal/binio"
	"github.com/echomini/fwres/internal/fontcodec"
)

// Fixed register offsets, bit-exact and compatibility critical.
const (
	PartOffsetFieldOffset = 0x14C
	PartSizeFieldOffset   = 0x150
	SmallBaseLowOffset    = 0x78
	SmallBaseHighOffset   = 0x7A

	// LookupTable is a constant base; unlike SmallBase/LargeBase it is never
	// computed, only ever read from.
	LookupTable uint32 = 0x080000
)

const (
	largeSweepStart     = 0x10000
	largeSweepEndMargin = 10000
	largeSweepCap       = 0x200000
	largeStride         = 33
	largeMaxSlots       = 100

	knownCharSmall = rune('A') // 0x41
	knownCharLarge = rune(0x4E00)
)

// validFooters are row-33 footer byte values observed on real firmware for
// valid LARGE glyph slots.
var validFooters = map[byte]bool{
	0x8F: true, 0x90: true, 0x89: true, 0x8B: true,
	0x8D: true, 0x8E: true, 0x8C: true,
}

// Confidence reports the secondary validator's findings. It is informational
// only: no caller-visible operation fails because confidence is low.
type Confidence struct {
	SmallDecodesKnownChar bool
	LargeDecodesKnownChar bool
	MovwHits              int
}

// Result is the cached outcome of a full analysis pass.
type Result struct {
	SmallBase   uint32
	LargeBase   uint32
	LargeFound  bool
	LookupTable uint32
	Confidence  Confidence
}

// PartitionDescriptor reads Part 5's byte offset and size from the fixed
// registers at 0x14C/0x150 and checks offset+size <= len(firmware).
func PartitionDescriptor(firmware []byte) (offset, size uint32, err error) {
	offset, err = binio.ReadU32LE(firmware, PartOffsetFieldOffset)
	if err != nil {
		return 0, 0, err
	}
	size, err = binio.ReadU32LE(firmware, PartSizeFieldOffset)
	if err != nil {
		return 0, 0, err
	}
	if uint64(offset)+uint64(size) > uint64(len(firmware)) {
		return 0, 0, binio.ErrOutOfBounds
	}
	return offset, size, nil
}

// ComputeSmallBase reads the two 16-bit halves at 0x78/0x7A and combines
// them into SMALL_BASE = (high << 16) | low.
func ComputeSmallBase(firmware []byte) (uint32, error) {
	low, err := binio.ReadU16LE(firmware, SmallBaseLowOffset)
	if err != nil {
		return 0, err
	}
	high, err := binio.ReadU16LE(firmware, SmallBaseHighOffset)
	if err != nil {
		return 0, err
	}
	return uint32(high)<<16 | uint32(low), nil
}

// LocateLargeBase scores candidate byte offsets in
// [0x10000, min(len(firmware)-10000, 0x200000)) at 33-byte strides, and
// returns the highest-scoring candidate. Ties are broken by first
// occurrence. found is false when no candidate scored above zero.
func LocateLargeBase(firmware []byte) (base uint32, found bool) {
	end := len(firmware) - largeSweepEndMargin
	if end > largeSweepCap {
		end = largeSweepCap
	}
	if end <= largeSweepStart {
		return 0, false
	}

	bestScore := 0
	bestCandidate := 0
	haveCandidate := false

	for candidate := largeSweepStart; candidate < end; candidate += largeStride {
		score := 0
		for i := 0; i < largeMaxSlots; i++ {
			footerOffset := candidate + largeStride*i + 32
			if footerOffset >= len(firmware) {
				break
			}
			footer := firmware[footerOffset]
			if footer == 0x00 || footer == 0xFF {
				break
			}
			if validFooters[footer] {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestCandidate = candidate
			haveCandidate = true
		}
	}

	if !haveCandidate || bestScore == 0 {
		return 0, false
	}
	return uint32(bestCandidate), true
}

// lookupValFor returns the configuration byte for codepoint u, or false if
// the lookup-table byte could not be read.
func lookupValFor(firmware []byte, u rune) (byte, bool) {
	v, err := binio.ReadU8(firmware, int(LookupTable)+int(u>>3))
	if err != nil {
		return 0, false
	}
	return v, true
}

func decodesKnownChar(firmware []byte, base uint32, u rune, variant fontcodec.Variant) bool {
	stride := variant.Stride()
	var addr int
	switch variant {
	case fontcodec.Small:
		addr = int(base) + int(u)*stride
	case fontcodec.Large:
		addr = int(base) + int(u-knownCharLarge)*stride
	}
	chunk, err := binio.Slice(firmware, addr, stride)
	if err != nil {
		return false
	}
	if fontcodec.IsUniform(chunk[:32]) {
		return false
	}
	lookupVal, ok := lookupValFor(firmware, u)
	if !ok {
		return false
	}
	grid, err := fontcodec.DecodeV8(chunk, lookupVal)
	if err != nil {
		return false
	}
	lo, hi := fontcodec.ValidRatioBounds(variant)
	ratio := grid.FillRatio()
	return ratio > lo && ratio < hi
}

// countMovwHits counts the two-byte prefix of an ARM Thumb-2 "MOVW Rd, #imm"
// encoding (0xF2 0x4x) below 0x10000; counting its occurrences in the low firmware region
// is a loose proxy for "this looks like compiled code here", used only to
// corroborate LARGE_BASE detection confidence.
func countMovwHits(firmware []byte) int {
	limit := largeSweepStart
	if limit > len(firmware) {
		limit = len(firmware)
	}
	hits := 0
	for i := 0; i+1 < limit; i++ {
		if firmware[i] == 0xF2 && firmware[i+1]&0xF0 == 0x40 {
			hits++
		}
	}
	return hits
}

// Validate runs the secondary confidence checks described in the design:
// it decodes the known characters 'A' (SMALL) and U+4E00 (LARGE), and counts
// MOVW-style instruction patterns near the low firmware region. It never
// fails analysis; the result is advisory.
func Validate(firmware []byte, smallBase, largeBase uint32, largeFound bool) Confidence {
	c := Confidence{
		MovwHits:              countMovwHits(firmware),
		SmallDecodesKnownChar: decodesKnownChar(firmware, smallBase, knownCharSmall, fontcodec.Small),
	}
	if largeFound {
		c.LargeDecodesKnownChar = decodesKnownChar(firmware, largeBase, knownCharLarge, fontcodec.Large)
	}
	return c
}

// Analyze runs the full analysis pass: SMALL_BASE register read, LARGE_BASE
// scoring sweep, and the secondary validator. Callers normally do this once
// per firmware image and cache the Result (see fwres.Engine.Analyze).
func Analyze(firmware []byte) (Result, error) {
	smallBase, err := ComputeSmallBase(firmware)
	if err != nil {
		return Result{}, err
	}
	largeBase, found := LocateLargeBase(firmware)
	confidence := Validate(firmware, smallBase, largeBase, found)
	return Result{
		SmallBase:   smallBase,
		LargeBase:   largeBase,
		LargeFound:  found,
		LookupTable: LookupTable,
		Confidence:  confidence,
	}, nil
}
