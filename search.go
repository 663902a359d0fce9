package tinypack

// A WindowSearcher is an implementation of the MatchFinder interface that
// scans every candidate distance in its window. It is slow but exact, and it
// is the matcher the LZ77 and LZCL compressors use by default: scanning
// distances from the window edge toward the cursor with a >= comparison keeps
// the longest match and, on ties, the most recent one.
type WindowSearcher struct {
	// MaxDistance is the largest look-back the matcher will use, counted so
	// that the byte immediately before the cursor is distance 0. The default
	// is 1023.
	MaxDistance int

	// MaxLength is the longest match the matcher will emit. The default is
	// 255.
	MaxLength int

	// MinLength is the shortest match worth emitting. The default is 2.
	MinLength int

	history []byte
}

func (q *WindowSearcher) Reset() {
	q.history = nil
}

// FindMatches looks for matches in src, appends them to dst, and returns dst.
func (q *WindowSearcher) FindMatches(dst []Match, src []byte) []Match {
	q.history = src
	p := Greedy{MinLength: q.MinLength}
	return p.Parse(dst, q, 0, len(src))
}

func (q *WindowSearcher) Search(dst []AbsoluteMatch, pos, min, max int) []AbsoluteMatch {
	maxDistance := q.MaxDistance
	if maxDistance == 0 {
		maxDistance = 1023
	}
	maxLength := q.MaxLength
	if maxLength == 0 {
		maxLength = 255
	}
	src := q.history

	bestLen, bestMatch := 0, 0
	for d := maxDistance; d >= 0; d-- {
		m := pos - 1 - d
		if m < 0 {
			continue
		}
		l := 0
		for l < maxLength && pos+l < max && src[m+l] == src[pos+l] {
			l++
		}
		if l >= bestLen {
			bestLen, bestMatch = l, m
		}
	}
	if bestLen > 0 {
		dst = append(dst, AbsoluteMatch{
			Start: pos,
			End:   pos + bestLen,
			Match: bestMatch,
		})
	}
	return dst
}
