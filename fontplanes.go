package fwres

import "github.com/echomini/fwres/internal/fontcodec"

// FontPlane is a labelled, half-open Unicode range the SMALL/LARGE glyph
// tables are understood to cover, annotated with how many code points in
// [Start, End) actually decode to a plausible glyph in each variant's
// table. Planes are pairwise non-overlapping and listed in ascending order.
type FontPlane struct {
	Name       string
	Start      rune
	End        rune // exclusive
	SmallCount int
	LargeCount int
}

// fontPlaneRanges is deliberately conservative: it only lists ranges the
// SMALL and LARGE glyph tables are actually addressed for (SMALL is a
// 16-bit codepoint-indexed table; LARGE starts at U+4E00, so of these planes
// only CJK Unified Ideographs falls inside it). Every plane is probed against
// the SMALL table and, from U+4E00 up, the LARGE table; ranges entirely below
// LARGE's base, the Japanese syllabaries included, never contribute to
// LargeCount.
var fontPlaneRanges = []struct {
	Name       string
	Start, End rune
}{
	{Name: "Basic Latin", Start: 0x0020, End: 0x0080},
	{Name: "Latin-1 Supplement", Start: 0x00A0, End: 0x0100},
	{Name: "Latin Extended-A", Start: 0x0100, End: 0x0180},
	{Name: "Greek and Coptic", Start: 0x0370, End: 0x0400},
	{Name: "Cyrillic", Start: 0x0400, End: 0x0500},
	{Name: "Hiragana", Start: 0x3041, End: 0x3097},
	{Name: "Katakana", Start: 0x30A1, End: 0x30FB},
	{Name: "CJK Unified Ideographs", Start: 0x4E00, End: 0x9FA6},
}

const largeVariantBase = 0x4E00

// ListFontPlanes probes every code point in each plane's range against both
// the SMALL and LARGE glyph tables and reports how many of them decode to a
// plausible glyph (the same validation ReadFont applies: non-uniform bytes,
// fill ratio within bounds). This is the "validated metadata" half of
// enumeration; unlike ListBitmaps, which only needs the directory,
// ListFontPlanes needs the analyzer's cached addresses, so it requires the
// firmware to analyze cleanly before it can report anything.
func (e *Engine) ListFontPlanes() ([]FontPlane, error) {
	if _, err := e.Analyze(); err != nil {
		return nil, err
	}

	out := make([]FontPlane, len(fontPlaneRanges))
	for i, r := range fontPlaneRanges {
		plane := FontPlane{Name: r.Name, Start: r.Start, End: r.End}
		for u := r.Start; u < r.End; u++ {
			if _, err := e.ReadFont(u, fontcodec.Small); err == nil {
				plane.SmallCount++
			}
			if u >= largeVariantBase {
				if _, err := e.ReadFont(u, fontcodec.Large); err == nil {
					plane.LargeCount++
				}
			}
		}
		out[i] = plane
	}
	return out, nil
}
