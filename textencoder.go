package tinypack

import "fmt"

// A TextEncoder produces a human-readable representation of the LZ77
// compression. Matches are replaced with <length,distance> symbols. It is a
// debugging aid for match finders, not a compressed format.
type TextEncoder struct{}

func (t TextEncoder) Render(dst []byte, src []byte, matches []Match) []byte {
	pos := 0
	for _, m := range matches {
		if m.Unmatched > 0 {
			dst = append(dst, src[pos:pos+m.Unmatched]...)
			pos += m.Unmatched
		}
		if m.Length > 0 {
			dst = append(dst, []byte(fmt.Sprintf("<%d,%d>", m.Length, m.Distance))...)
			pos += m.Length
		}
	}
	if pos < len(src) {
		dst = append(dst, src[pos:]...)
	}
	return dst
}
