package tinypack

import (
	"encoding/binary"
	"math/bits"
	"runtime"
)

const (
	hashTableBits = 14
	hashTableSize = 1 << hashTableBits
	hashShift     = 32 - hashTableBits

	hashMul32 = 0x1e35a7bd
)

// A HashSearcher is an implementation of the MatchFinder interface that uses
// a 4-byte hash table to find matches. It trades ratio for speed against the
// exhaustive WindowSearcher: only one candidate is tried per position, and
// matches shorter than 4 bytes are never found.
type HashSearcher struct {
	// MaxDistance is the largest look-back the matcher will use, counted so
	// that the byte immediately before the cursor is distance 0. The default
	// is 1023.
	MaxDistance int

	// MaxLength is the longest match the matcher will emit. The default is
	// 255.
	MaxLength int

	table [hashTableSize]uint32

	history []byte
}

func (q *HashSearcher) Reset() {
	q.table = [hashTableSize]uint32{}
	q.history = nil
}

// FindMatches looks for matches in src, appends them to dst, and returns dst.
func (q *HashSearcher) FindMatches(dst []Match, src []byte) []Match {
	q.table = [hashTableSize]uint32{}
	q.history = src
	p := Greedy{MinLength: 4}
	return p.Parse(dst, q, 0, len(src))
}

func (q *HashSearcher) Search(dst []AbsoluteMatch, pos, min, max int) []AbsoluteMatch {
	if pos+4 > len(q.history) {
		return dst
	}
	maxDistance := q.MaxDistance
	if maxDistance == 0 {
		maxDistance = 1023
	}
	maxLength := q.MaxLength
	if maxLength == 0 {
		maxLength = 255
	}
	src := q.history

	h := hash4(binary.LittleEndian.Uint32(src[pos:]))
	candidate := int(q.table[h])
	q.table[h] = uint32(pos)

	if candidate == 0 || pos-candidate-1 > maxDistance {
		return dst
	}

	if binary.LittleEndian.Uint32(src[pos:]) != binary.LittleEndian.Uint32(src[candidate:]) {
		return dst
	}

	// We have a 4-byte match now.
	start := pos
	match := candidate
	end := extendMatch(src[:max], match+4, start+4)
	for start > min && match > 0 && src[start-1] == src[match-1] {
		start--
		match--
	}
	if end-start > maxLength {
		end = start + maxLength
	}

	return append(dst, AbsoluteMatch{
		Start: start,
		End:   end,
		Match: match,
	})
}

func hash4(u uint32) uint32 {
	return (u * hashMul32) >> hashShift
}

// extendMatch returns the largest k such that k <= len(src) and that
// src[i:i+k-j] and src[j:k] have the same contents.
//
// It assumes that:
//
//	0 <= i && i < j && j <= len(src)
func extendMatch(src []byte, i, j int) int {
	switch runtime.GOARCH {
	case "amd64":
		// As long as we are 8 or more bytes before the end of src, we can load and
		// compare 8 bytes at a time. If those 8 bytes are equal, repeat.
		for j+8 < len(src) {
			iBytes := binary.LittleEndian.Uint64(src[i:])
			jBytes := binary.LittleEndian.Uint64(src[j:])
			if iBytes != jBytes {
				// If those 8 bytes were not equal, XOR the two 8 byte values, and return
				// the index of the first byte that differs. The BSF instruction finds the
				// least significant 1 bit, the amd64 architecture is little-endian, and
				// the shift by 3 converts a bit index to a byte index.
				return j + bits.TrailingZeros64(iBytes^jBytes)>>3
			}
			i, j = i+8, j+8
		}
	case "386":
		// On a 32-bit CPU, we do it 4 bytes at a time.
		for j+4 < len(src) {
			iBytes := binary.LittleEndian.Uint32(src[i:])
			jBytes := binary.LittleEndian.Uint32(src[j:])
			if iBytes != jBytes {
				return j + bits.TrailingZeros32(iBytes^jBytes)>>3
			}
			i, j = i+4, j+4
		}
	}
	for ; j < len(src) && src[i] == src[j]; i, j = i+1, j+1 {
	}
	return j
}
