// Package lzcl implements the LZCL codec: LZ77's decisions/literals/tokens
// model, with each sub-stream packaged in its own frame and independently
// encoded by whichever of the fixed, arithmetic, Huffman and Golomb
// sub-codecs yields the fewest bits.
package lzcl

import (
	"github.com/pkg/errors"
	"github.com/tinypack/tinypack"
)

// A Compressor carries the matcher parameters. The zero value uses the
// defaults: minimum match 2, maximum match 255, window 1024.
type Compressor struct {
	// MinLength is the shortest match worth a back-reference. The default
	// is 2.
	MinLength int

	// MaxLength is the longest match emitted. The default is 255.
	MaxLength int

	// MaxDistance is the largest look-back, counted so that the byte
	// immediately before the cursor is distance 0. The default is 1023.
	MaxDistance int

	// MatchFinder overrides the exhaustive window matcher.
	MatchFinder tinypack.MatchFinder
}

// Compress encodes src in the LZCL format.
func Compress(src []byte) ([]byte, error) {
	var c Compressor
	return c.Compress(src)
}

func (c *Compressor) Compress(src []byte) ([]byte, error) {
	mf := c.MatchFinder
	if mf == nil {
		mf = &tinypack.WindowSearcher{
			MaxDistance: c.MaxDistance,
			MaxLength:   c.MaxLength,
			MinLength:   c.MinLength,
		}
	}
	lists := tinypack.ExpandMatches(mf.FindMatches(nil, src), src)

	var actualMinLength, actualMaxDistance uint32
	if len(lists.Lengths) > 0 {
		actualMinLength = lists.Lengths[0]
		for _, l := range lists.Lengths {
			if l < actualMinLength {
				actualMinLength = l
			}
		}
		for _, d := range lists.Distances {
			if d > actualMaxDistance {
				actualMaxDistance = d
			}
		}
	}

	// Sub-stream preparation: min-shifted lengths, packed tokens, and the
	// run-length view of the decision bits.
	lengths := make([]uint32, len(lists.Lengths))
	tokens := make([]uint32, len(lists.Lengths))
	for i := range lengths {
		lengths[i] = lists.Lengths[i] - actualMinLength
		tokens[i] = lengths[i]*(actualMaxDistance+1) + lists.Distances[i]
	}
	runs, initialValue := decisionRuns(lists.Decisions)

	bs := &tinypack.Bitstream{}
	tinypack.EncodeLomont1(bs, uint32(len(src)), 6, 0)
	tinypack.EncodeLomont1(bs, actualMaxDistance, 10, 0)
	tinypack.EncodeLomont1(bs, actualMinLength, 2, 0)

	// Decisions, either plain or as runs, whichever frames smaller.
	decTag, decPayload, err := encodeBest(lists.Decisions)
	if err != nil {
		return nil, err
	}
	runTag, runPayload, err := encodeBest(runs)
	if err != nil {
		return nil, err
	}
	if 1+frameLen(runPayload) < frameLen(decPayload) {
		bs.Write(1, 1)
		bs.Write(initialValue, 1)
		writeFrame(bs, runTag, runPayload)
	} else {
		bs.Write(0, 1)
		writeFrame(bs, decTag, decPayload)
	}

	litTag, litPayload, err := encodeBest(lists.Literals)
	if err != nil {
		return nil, err
	}
	writeFrame(bs, litTag, litPayload)

	// Tokens combined, or distance and length sub-streams separately.
	tokTag, tokPayload, err := encodeBest(tokens)
	if err != nil {
		return nil, err
	}
	distTag, distPayload, err := encodeBest(lists.Distances)
	if err != nil {
		return nil, err
	}
	lenTag, lenPayload, err := encodeBest(lengths)
	if err != nil {
		return nil, err
	}
	if frameLen(tokPayload) <= frameLen(distPayload)+frameLen(lenPayload) {
		bs.Write(0, 1)
		writeFrame(bs, tokTag, tokPayload)
	} else {
		bs.Write(1, 1)
		writeFrame(bs, distTag, distPayload)
		writeFrame(bs, lenTag, lenPayload)
	}

	return bs.Bytes(), nil
}

// decisionRuns collapses the decision bits into run lengths of alternating
// values, returning the runs and the value of the first run.
func decisionRuns(decisions []uint32) (runs []uint32, initialValue uint32) {
	if len(decisions) == 0 {
		return nil, 0
	}
	initialValue = decisions[0]
	cur := initialValue
	n := uint32(0)
	for _, d := range decisions {
		if d == cur {
			n++
			continue
		}
		runs = append(runs, n)
		cur = d
		n = 1
	}
	return append(runs, n), initialValue
}

// A Decoder decompresses an LZCL stream block by block into a
// caller-supplied cyclic buffer.
type Decoder struct {
	r *tinypack.Reader

	byteIndex  uint32
	byteLength uint32

	actualMinLength   uint32
	actualMaxDistance uint32

	useDecisionRuns bool
	decision        *subDecoder // decisions or decision runs
	literal         *subDecoder

	useTokens        bool
	token            *subDecoder
	distance, length *subDecoder

	dest       []byte
	destLength uint32

	// run state for decision-run decoding
	initialValue uint32
	curRun       int32 // 0 or 1, -1 before the first run
	runsLeft     uint32
}

// Start parses the header and all sub-codec frames, and prepares to decode
// into dest, which is written cyclically and must hold at least
// actualMaxDistance+1 bytes plus the longest match the stream contains. It
// returns the declared byte length. Follow with Block until it returns
// EndToken.
func (d *Decoder) Start(source []byte, dest []byte) (uint32, error) {
	r := tinypack.NewReader(source)
	d.r = r
	d.curRun = -1
	d.byteIndex = 0
	d.dest = dest
	d.destLength = uint32(len(dest))

	d.byteLength = tinypack.DecodeLomont1(r, 6, 0)
	d.actualMaxDistance = tinypack.DecodeLomont1(r, 10, 0)
	d.actualMinLength = tinypack.DecodeLomont1(r, 2, 0)
	if r.Truncated() {
		return 0, errors.Wrap(tinypack.ErrTruncated, "lzcl: header")
	}
	if d.byteLength > 0 && d.destLength < d.actualMaxDistance+1 {
		return 0, errors.Wrapf(tinypack.ErrCapacity, "lzcl: cyclic buffer needs %d bytes", d.actualMaxDistance+1)
	}

	var err error
	if r.Read(1) == 0 {
		d.useDecisionRuns = false
		if d.decision, err = readFrame(r); err != nil {
			return 0, err
		}
	} else {
		d.useDecisionRuns = true
		d.initialValue = r.Read(1)
		if d.decision, err = readFrame(r); err != nil {
			return 0, err
		}
	}

	if d.literal, err = readFrame(r); err != nil {
		return 0, err
	}

	if r.Read(1) == 0 {
		d.useTokens = true
		if d.token, err = readFrame(r); err != nil {
			return 0, err
		}
	} else {
		d.useTokens = false
		if d.distance, err = readFrame(r); err != nil {
			return 0, err
		}
		if d.length, err = readFrame(r); err != nil {
			return 0, err
		}
	}
	return d.byteLength, nil
}

// nextDecision pulls one decision bit, consuming a new run when the active
// one is spent.
func (d *Decoder) nextDecision() (uint32, error) {
	if !d.useDecisionRuns {
		return d.decision.next()
	}
	if d.curRun == -1 {
		d.curRun = int32(d.initialValue)
		n, err := d.decision.next()
		if err != nil {
			return 0, err
		}
		d.runsLeft = n
	}
	for d.runsLeft == 0 {
		d.curRun ^= 1
		n, err := d.decision.next()
		if err != nil {
			return 0, err
		}
		d.runsLeft = n
	}
	d.runsLeft--
	return uint32(d.curRun), nil
}

// nextToken decodes the next (distance, length) pair from whichever
// sub-stream layout the header selected.
func (d *Decoder) nextToken() (distance, length uint32, err error) {
	if d.useTokens {
		token, err := d.token.next()
		if err != nil {
			return 0, 0, err
		}
		length = token/(d.actualMaxDistance+1) + d.actualMinLength
		distance = token % (d.actualMaxDistance + 1)
		return distance, length, nil
	}
	if distance, err = d.distance.next(); err != nil {
		return 0, 0, err
	}
	if length, err = d.length.next(); err != nil {
		return 0, 0, err
	}
	return distance, length + d.actualMinLength, nil
}

// Block decodes the next literal or run into the cyclic buffer and returns
// the number of bytes produced, or EndToken at the end of the stream.
func (d *Decoder) Block() (uint32, error) {
	if d.byteIndex >= d.byteLength {
		return tinypack.EndToken, nil
	}

	decision, err := d.nextDecision()
	if err != nil {
		return 0, err
	}
	if decision == 0 {
		symbol, err := d.literal.next()
		if err != nil {
			return 0, err
		}
		d.dest[d.byteIndex%d.destLength] = byte(symbol)
		d.byteIndex++
		return 1, nil
	}

	distance, length, err := d.nextToken()
	if err != nil {
		return 0, err
	}
	if distance >= d.destLength {
		return 0, errors.Wrap(tinypack.ErrCorrupt, "lzcl: distance outside buffer")
	}

	// delta looks back by distance+1 when taken mod destLength.
	delta := d.destLength - distance - 1
	for i := uint32(0); i < length; i++ {
		d.dest[d.byteIndex%d.destLength] = d.dest[(d.byteIndex+delta)%d.destLength]
		d.byteIndex++
	}
	return length, nil
}

// Decompress decodes an entire stream written by Compress. It fails if the
// declared byte length exceeds capacity.
func Decompress(source []byte, capacity int) ([]byte, error) {
	n, err := tinypack.GetDecompressedSize(source)
	if err != nil {
		return nil, err
	}
	if int(n) > capacity {
		return nil, errors.Wrapf(tinypack.ErrCapacity, "lzcl: %d bytes declared", n)
	}
	if n == 0 {
		return []byte{}, nil
	}

	dest := make([]byte, n)
	var d Decoder
	if _, err := d.Start(source, dest); err != nil {
		return nil, err
	}
	for {
		produced, err := d.Block()
		if err != nil {
			return nil, err
		}
		if produced == tinypack.EndToken {
			break
		}
	}
	return dest, nil
}
