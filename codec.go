// Package tinypack is a family of lossless compression codecs for
// resource-constrained targets.
//
// Many compression libraries have two main parts:
//   - Something that looks for repeated sequences of bytes
//   - An encoder for the compressed data format (often an entropy coder)
//
// This package holds the parts the codecs share: the bit-addressed stream the
// formats are built on, the universal integer codes used by every header, and
// the LZ77 match-finding stage with its intermediate representation. The
// codecs themselves live in the huffman, arith, lz77 and lzcl subpackages;
// each one writes a self-describing bit-stream and decodes it either in one
// shot or incrementally with constant memory, reading its header tables
// directly from the compressed stream.
package tinypack

import "github.com/pkg/errors"

// EndToken is returned by the incremental decoders when the stream is
// exhausted.
const EndToken = 0xFFFFFFFF

var (
	// ErrCorrupt reports a stream whose header or body is inconsistent.
	ErrCorrupt = errors.New("tinypack: corrupt stream")

	// ErrTruncated reports a read past the end of the compressed data.
	ErrTruncated = errors.New("tinypack: truncated stream")

	// ErrCapacity reports an output or cyclic buffer too small for the
	// stream's declared geometry.
	ErrCapacity = errors.New("tinypack: buffer too small")
)

// GetDecompressedSize returns the number of bytes a compressed stream
// produced by any of the codecs will decompress to. It is the first header
// field of every format.
func GetDecompressedSize(source []byte) (uint32, error) {
	r := NewReader(source)
	n := DecodeLomont1(r, 6, 0)
	if r.Truncated() {
		return 0, errors.Wrap(ErrTruncated, "size header")
	}
	return n, nil
}

// A Match is the basic unit of LZ77 compression.
type Match struct {
	Unmatched int // the number of unmatched bytes since the previous match
	Length    int // the number of bytes in the matched string; it may be 0 at the end of the input
	Distance  int // how far back in the stream to copy from
}

// An AbsoluteMatch is like a Match, but it stores indexes into the byte
// stream instead of lengths.
type AbsoluteMatch struct {
	// Start is the index of the first byte.
	Start int

	// End is the index of the byte after the last byte
	// (so that End - Start = Length).
	End int

	// Match is the index of the previous data that matches
	// (Start - Match = Distance).
	Match int
}

// A MatchFinder performs the LZ77 stage of compression, looking for matches.
type MatchFinder interface {
	// FindMatches looks for matches in src, appends them to dst, and returns dst.
	FindMatches(dst []Match, src []byte) []Match

	// Reset clears any internal state, preparing the MatchFinder to be used with
	// a new stream.
	Reset()
}

// A Searcher is the source of matches for the Greedy parser. It is a
// lower-level interface than MatchFinder, looking for matches at one position
// at a time.
type Searcher interface {
	// Search looks for matches at pos and appends them to dst.
	// In each match, Start and End must fall within the interval [min,max),
	// and Match < Start.
	Search(dst []AbsoluteMatch, pos, min, max int) []AbsoluteMatch
}

// A Compressor produces one of the self-describing compressed formats.
type Compressor interface {
	Compress(src []byte) ([]byte, error)
}

// MatchLists is the decisions/literals/tokens view of a match sequence: one
// decision per output byte, a literal per 0-decision, and a
// (distance, length) pair per 1-decision. Distances count the bytes skipped
// back beyond the previous one, so the byte immediately before the cursor is
// distance 0.
type MatchLists struct {
	Decisions []uint32
	Literals  []uint32
	Distances []uint32
	Lengths   []uint32
}

// ExpandMatches converts a match sequence over src into parallel
// decision/literal/distance/length lists.
func ExpandMatches(matches []Match, src []byte) MatchLists {
	var l MatchLists
	pos := 0
	for _, m := range matches {
		for i := 0; i < m.Unmatched; i++ {
			l.Decisions = append(l.Decisions, 0)
			l.Literals = append(l.Literals, uint32(src[pos+i]))
		}
		pos += m.Unmatched
		if m.Length > 0 {
			l.Decisions = append(l.Decisions, 1)
			l.Distances = append(l.Distances, uint32(m.Distance-1))
			l.Lengths = append(l.Lengths, uint32(m.Length))
			pos += m.Length
		}
	}
	return l
}
