package tinypack

// A Greedy parser chooses matches with the greedy strategy: at each position
// it takes the longest match the Searcher offers, if that match reaches
// MinLength; otherwise it emits a literal and moves on one byte.
type Greedy struct {
	// MinLength is the shortest match worth emitting. The default is 2.
	MinLength int

	matchCache []AbsoluteMatch
}

func (p *Greedy) Parse(dst []Match, src Searcher, start, end int) []Match {
	minLength := p.MinLength
	if minLength == 0 {
		minLength = 2
	}

	s := start
	nextEmit := start
	for s < end {
		p.matchCache = src.Search(p.matchCache[:0], s, nextEmit, end)
		m := longestMatch(p.matchCache)
		if m.End-m.Start < minLength {
			s++
			continue
		}

		dst = append(dst, Match{
			Unmatched: m.Start - nextEmit,
			Length:    m.End - m.Start,
			Distance:  m.Start - m.Match,
		})
		s = m.End
		nextEmit = s
	}

	if nextEmit < end {
		dst = append(dst, Match{
			Unmatched: end - nextEmit,
		})
	}
	return dst
}

// longestMatch returns the longest match in the slice; on ties the earliest
// entry wins, so Searchers list their preferred candidate first.
func longestMatch(matches []AbsoluteMatch) AbsoluteMatch {
	var longest AbsoluteMatch

	for _, m := range matches {
		if m.End-m.Start > longest.End-longest.Start {
			longest = m
		}
	}

	return longest
}
