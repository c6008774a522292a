// Package directory locates and parses the Echo Mini bitmap resource
// directory inside Part 5 of a firmware image: the ROCK26IMAGERES anchor
// table, the metadata table it anchors, and the index misalignment between
// the two that the bootloader's field-reorganisation makes necessary to
// resolve.
package directory

import (
	"errors"

	"github.com/echomini/fwres/internal/binio"
)

// Sentinel errors. The root fwres package maps these onto its public
// ErrorKind values; directory itself stays free of that dependency so the
// import graph has no cycle.
var (
	ErrSignatureNotFound = errors.New("directory: ROCK26IMAGERES signature not found in Part 5")
	ErrMetadataNotFound  = errors.New("directory: no metadata entry correlates with the anchor table")
)

const (
	signature    = "ROCK26IMAGERES"
	signatureLen = len(signature)

	anchorCountFieldOffset  = 16
	anchorEntriesOffset     = 32
	anchorEntrySize         = 16
	anchorOffsetFieldOffset = 12

	MetadataEntrySize    = 108
	metadataOffsetField  = 20
	metadataWidthField   = 24
	metadataHeightField  = 28
	metadataNameField    = 32
	metadataNameFieldLen = 64

	maxIndexShift = 3
	voteSampleCap = 20

	// MaxDimension is the largest width or height the directory will ever
	// treat as plausible; anything larger is almost certainly a misresolved
	// offset being read as a dimension.
	MaxDimension = 10000
)

// bootloaderSentinels are offset values the bootloader's reorganisation
// leaves behind in place of a real resource offset. Their presence at
// metadata index i corroborates (never overrides) the statistical
// misalignment vote: it suggests entry i's own offset field is bootloader
// filler and its real payload offset lives at i+1.
var bootloaderSentinels = [...]uint32{
	0xF564F564, 0xB7B5D7B5, 0x00000000, 0xC308C308, 0x45294529,
}

func isBootloaderSentinel(v uint32) bool {
	for _, s := range bootloaderSentinels {
		if v == s {
			return true
		}
	}
	return false
}

// MetadataEntry is one 108-byte record from the metadata table, recorded
// verbatim: Width/Height belong, per the bootloader reorganisation, to the
// *previous* runtime entry, not to Name.
type MetadataEntry struct {
	Offset uint32
	Width  int32
	Height int32
	Name   string
}

// DetectionInfo records how the index misalignment between the anchor table
// and the metadata table was determined.
type DetectionInfo struct {
	Misalignment    int
	FirstValidEntry int
	VotedShift      bool // true when the majority vote (not the single-point fallback) decided Misalignment
	SentinelHits    int
	Confident       bool
}

// Directory is the fully parsed, Part 5-relative resource directory.
type Directory struct {
	Part5Offset uint32
	Part5Size   uint32
	TableStart  int // Part5-relative
	Entries     []MetadataEntry
	AnchorOffs  []uint32
	Detection   DetectionInfo
}

// LocateSignature returns the Part5-relative offset of the ROCK26IMAGERES
// anchor header, or ErrSignatureNotFound.
func LocateSignature(part5 []byte) (int, error) {
	pos := binio.FindBytes(part5, []byte(signature), 0)
	if pos == binio.NotFound {
		return 0, ErrSignatureNotFound
	}
	return pos, nil
}

// ReadAnchorOffsets reads up to count anchor-table entries' resource offset
// fields, clamped to however many entries actually fit in part5.
func ReadAnchorOffsets(part5 []byte, sigOffset int) ([]uint32, error) {
	count, err := binio.ReadU32LE(part5, sigOffset+anchorCountFieldOffset)
	if err != nil {
		return nil, err
	}
	base := sigOffset + anchorEntriesOffset
	maxEntries := 0
	if len(part5) > base {
		maxEntries = (len(part5) - base) / anchorEntrySize
	}
	n := int(count)
	if n > maxEntries {
		n = maxEntries
	}
	if n < 0 {
		n = 0
	}

	offsets := make([]uint32, n)
	for i := 0; i < n; i++ {
		off, err := binio.ReadU32LE(part5, base+i*anchorEntrySize+anchorOffsetFieldOffset)
		if err != nil {
			return offsets[:i], nil
		}
		offsets[i] = off
	}
	return offsets, nil
}

func isCandidatePosition(part5 []byte, p int, anchorOffset uint32) bool {
	if p+metadataNameField+metadataNameFieldLen > len(part5) {
		return false
	}
	off, err := binio.ReadU32LE(part5, p+metadataOffsetField)
	if err != nil || off != anchorOffset {
		return false
	}
	nameBuf := part5[p+metadataNameField : p+metadataNameField+metadataNameFieldLen]
	return isValidBMPName(nameBuf)
}

// LocateMetadataTable finds the Part5-relative start of the metadata table:
// it scans for every 4-byte-aligned candidate whose offset field matches
// anchorOffset and whose name looks like a ".BMP" resource, takes the
// smallest such candidate, then walks backward in 108-byte strides for as
// long as each preceding block is also a valid-looking entry.
func LocateMetadataTable(part5 []byte, anchorOffset uint32) (int, error) {
	best := -1
	for p := 0; p+4 <= len(part5); p += 4 {
		if isCandidatePosition(part5, p, anchorOffset) {
			best = p
			break
		}
	}
	if best == -1 {
		return 0, ErrMetadataNotFound
	}

	start := best
	for start-MetadataEntrySize >= 0 {
		prev := start - MetadataEntrySize
		nameBuf := part5[prev+metadataNameField : prev+metadataNameField+metadataNameFieldLen]
		if !isValidBMPName(nameBuf) {
			break
		}
		start = prev
	}
	return start, nil
}

// ParseEntries reads successive 108-byte metadata blocks starting at
// tableStart until a block's name is empty or shorter than 3 characters.
func ParseEntries(part5 []byte, tableStart int) []MetadataEntry {
	var entries []MetadataEntry
	for p := tableStart; p+MetadataEntrySize <= len(part5); p += MetadataEntrySize {
		nameEnd := p + metadataNameField + metadataNameFieldLen
		name := decodeName(part5[p+metadataNameField : nameEnd])
		if len(name) < 3 {
			break
		}
		offset, err := binio.ReadU32LE(part5, p+metadataOffsetField)
		if err != nil {
			break
		}
		width, err := binio.ReadI32LE(part5, p+metadataWidthField)
		if err != nil {
			break
		}
		height, err := binio.ReadI32LE(part5, p+metadataHeightField)
		if err != nil {
			break
		}
		entries = append(entries, MetadataEntry{
			Offset: offset,
			Width:  width,
			Height: height,
			Name:   name,
		})
	}
	return entries
}

// DetectMisalignment correlates anchor-table offsets against metadata
// offsets by majority vote across shifts in [-3, 3], falling back to a
// single-point rule and finally to misalignment 0 when no evidence at all
// is available.
func DetectMisalignment(anchorOffsets []uint32, entries []MetadataEntry) DetectionInfo {
	sampleN := len(anchorOffsets)
	if sampleN > voteSampleCap {
		sampleN = voteSampleCap
	}

	votes := make(map[int]int, 2*maxIndexShift+1)
	for idx := 0; idx < sampleN; idx++ {
		for s := -maxIndexShift; s <= maxIndexShift; s++ {
			target := idx + s
			if target < 0 || target >= len(entries) {
				continue
			}
			if entries[target].Offset == anchorOffsets[idx] {
				votes[s]++
			}
		}
	}

	// s = 0 is the baseline so that ties resolve in its favor; any other
	// shift must strictly beat the current best to take over.
	bestShift, bestVotes := 0, votes[0]
	for s := -maxIndexShift; s <= maxIndexShift; s++ {
		if s == 0 {
			continue
		}
		if votes[s] > bestVotes {
			bestShift, bestVotes = s, votes[s]
		}
	}

	info := DetectionInfo{}
	if bestVotes > 0 {
		info.Misalignment = bestShift
		info.VotedShift = true
		info.Confident = true
	} else if len(anchorOffsets) > 0 {
		found := false
		for i, e := range entries {
			if e.Offset == anchorOffsets[0] {
				info.Misalignment = i - 1
				found = true
				break
			}
		}
		info.Confident = found
	}

	if info.Misalignment <= 0 {
		info.FirstValidEntry = 0
	} else {
		info.FirstValidEntry = 1
	}

	for _, e := range entries {
		if isBootloaderSentinel(e.Offset) {
			info.SentinelHits++
		}
	}

	return info
}

// ValidIndexRange returns the half-open range of runtime indices that
// resolve to an in-bounds metadata entry for the given misalignment and
// entry count.
func ValidIndexRange(misalignment, n int) (lo, hi int) {
	if misalignment > 0 {
		return 0, n - misalignment
	}
	return -misalignment, n
}

// Build parses the full resource directory out of part5, given the
// ROCK26IMAGERES anchor it contains. An empty anchor table (count == 0, a
// legitimately signed-but-empty firmware) yields a Directory with no
// entries rather than an error.
func Build(part5 []byte, part5Offset, part5Size uint32) (*Directory, error) {
	sigOffset, err := LocateSignature(part5)
	if err != nil {
		return nil, err
	}

	anchorOffsets, err := ReadAnchorOffsets(part5, sigOffset)
	if err != nil {
		return nil, err
	}
	if len(anchorOffsets) == 0 {
		return &Directory{Part5Offset: part5Offset, Part5Size: part5Size}, nil
	}

	tableStart, err := LocateMetadataTable(part5, anchorOffsets[0])
	if err != nil {
		return nil, err
	}

	entries := ParseEntries(part5, tableStart)
	detection := DetectMisalignment(anchorOffsets, entries)

	return &Directory{
		Part5Offset: part5Offset,
		Part5Size:   part5Size,
		TableStart:  tableStart,
		Entries:     entries,
		AnchorOffs:  anchorOffsets,
		Detection:   detection,
	}, nil
}

// Resolved is the fully resolved view of one runtime bitmap entry: the name
// as recorded at its own metadata slot, its payload offset and dimensions as
// the bootloader reorganisation and index misalignment actually place them.
type Resolved struct {
	Name   string
	Offset uint32
	Width  int32
	Height int32
}

// Resolve centralises address and dimension resolution for runtime index i:
// the payload offset comes from metadata[i+misalignment], the dimensions
// from metadata[i+1] (falling back to metadata[i] when i+1 is out of
// range), and the name from metadata[i] itself. Callers (enumeration and
// the mutator) must both go through this function so a listing and a write
// never disagree about where a resource lives.
func (d *Directory) Resolve(i int) (Resolved, bool) {
	lo, hi := ValidIndexRange(d.Detection.Misalignment, len(d.Entries))
	if i < lo || i >= hi {
		return Resolved{}, false
	}

	targetIdx := i + d.Detection.Misalignment
	if targetIdx < 0 || targetIdx >= len(d.Entries) {
		return Resolved{}, false
	}

	dimIdx := i + 1
	if dimIdx >= len(d.Entries) {
		dimIdx = i
	}

	return Resolved{
		Name:   d.Entries[i].Name,
		Offset: d.Entries[targetIdx].Offset,
		Width:  d.Entries[dimIdx].Width,
		Height: d.Entries[dimIdx].Height,
	}, true
}

// IndexByName returns the runtime index whose own metadata name matches
// name exactly, restricted to the valid index window.
func (d *Directory) IndexByName(name string) (int, bool) {
	lo, hi := ValidIndexRange(d.Detection.Misalignment, len(d.Entries))
	for i := lo; i < hi; i++ {
		if d.Entries[i].Name == name {
			return i, true
		}
	}
	return 0, false
}

// BitmapEntry is one enumerated, validated bitmap resource.
type BitmapEntry struct {
	Name   string
	Width  int32
	Height int32
	Size   int64
	Offset uint32
}

// Enumerate resolves every valid runtime index and rejects entries with a
// zero offset, implausible dimensions, or a payload span that would fall
// outside Part 5. The mutator's write path rejects an offset at or past
// Part5Size and a span past the end of the firmware buffer; since Part 5 lies
// inside the buffer, a listed entry is always readable.
func (d *Directory) Enumerate() []BitmapEntry {
	lo, hi := ValidIndexRange(d.Detection.Misalignment, len(d.Entries))
	var out []BitmapEntry
	for i := lo; i < hi; i++ {
		r, ok := d.Resolve(i)
		if !ok || r.Offset == 0 {
			continue
		}
		if r.Width <= 0 || r.Width > MaxDimension || r.Height <= 0 || r.Height > MaxDimension {
			continue
		}
		if r.Offset >= d.Part5Size {
			continue
		}
		size := int64(r.Width) * int64(r.Height) * 2
		if size > int64(d.Part5Size)-int64(r.Offset) {
			continue
		}
		out = append(out, BitmapEntry{
			Name:   r.Name,
			Width:  r.Width,
			Height: r.Height,
			Size:   size,
			Offset: r.Offset,
		})
	}
	return out
}
