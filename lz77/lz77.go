// Package lz77 implements the LZ77 codec: a greedy back-reference matcher
// whose decisions, literals and packed (distance, length) tokens are written
// into a single bit-stream behind a self-describing header.
package lz77

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

// Compress encodes src in the LZ77 format.
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

	var actualMaxToken uint32
	tokens := make([]uint32, len(lists.Lengths))
	for i := range tokens {
		tokens[i] = (lists.Lengths[i]-actualMinLength)*(actualMaxDistance+1) + lists.Distances[i]
		if tokens[i] > actualMaxToken {
			actualMaxToken = tokens[i]
		}
	}

	var maxLiteral uint32
	for _, l := range lists.Literals {
		if l > maxLiteral {
			maxLiteral = l
		}
	}
	bitsPerSymbol := tinypack.BitsRequired(maxLiteral)
	bitsPerToken := tinypack.BitsRequired(actualMaxToken)

	bs := &tinypack.Bitstream{}
	tinypack.EncodeLomont1(bs, uint32(len(src)), 6, 0)
	tinypack.EncodeLomont1(bs, bitsPerSymbol-1, 3, 0)
	tinypack.EncodeLomont1(bs, bitsPerToken-1, 5, 0)
	tinypack.EncodeLomont1(bs, actualMinLength, 2, 0)
	tinypack.EncodeLomont1(bs, actualMaxToken, 25, -10)
	tinypack.EncodeLomont1(bs, actualMaxDistance, 14, -7)

	literal, token := 0, 0
	for _, d := range lists.Decisions {
		bs.Write(d, 1)
		if d == 0 {
			bs.Write(lists.Literals[literal], bitsPerSymbol)
			literal++
		} else {
			bs.Write(tokens[token], bitsPerToken)
			token++
		}
	}
	return bs.Bytes(), nil
}

// A Decoder decompresses an LZ77 stream block by block into a caller-supplied
// cyclic buffer.
type Decoder struct {
	r *tinypack.Reader

	byteIndex  uint32
	byteLength uint32

	dest       []byte
	destLength uint32

	actualMaxToken    uint32
	actualMaxDistance uint32
	actualMinLength   uint32
	bitsPerSymbol     uint32
	bitsPerToken      uint32
}

// Start parses the header and prepares to decode into dest, which is written
// cyclically and must hold at least max(actualMaxDistance, maxLength)+1
// bytes. It returns the declared byte length. Follow with Block until it
// returns EndToken; after each call the newly produced bytes sit at
// dest[i % len(dest)] for the block's byte indexes i.
func (d *Decoder) Start(source []byte, dest []byte) (uint32, error) {
	r := tinypack.NewReader(source)
	d.r = r
	d.byteLength = tinypack.DecodeLomont1(r, 6, 0)
	d.bitsPerSymbol = tinypack.DecodeLomont1(r, 3, 0) + 1
	d.bitsPerToken = tinypack.DecodeLomont1(r, 5, 0) + 1
	d.actualMinLength = tinypack.DecodeLomont1(r, 2, 0)
	d.actualMaxToken = tinypack.DecodeLomont1(r, 25, -10)
	d.actualMaxDistance = tinypack.DecodeLomont1(r, 14, -7)
	d.byteIndex = 0
	d.dest = dest
	d.destLength = uint32(len(dest))

	if d.bitsPerSymbol > 32 || d.bitsPerToken > 32 {
		return 0, errors.Wrap(tinypack.ErrCorrupt, "lz77: header")
	}
	if r.Truncated() {
		return 0, errors.Wrap(tinypack.ErrTruncated, "lz77: header")
	}
	maxLength := d.actualMaxToken/(d.actualMaxDistance+1) + d.actualMinLength
	need := d.actualMaxDistance
	if maxLength > need {
		need = maxLength
	}
	if d.byteLength > 0 && d.destLength < need+1 {
		return 0, errors.Wrapf(tinypack.ErrCapacity, "lz77: cyclic buffer needs %d bytes", need+1)
	}
	return d.byteLength, nil
}

// Block decodes the next literal or run into the cyclic buffer and returns
// the number of bytes produced, or EndToken at the end of the stream.
func (d *Decoder) Block() (uint32, error) {
	if d.byteIndex >= d.byteLength {
		return tinypack.EndToken, nil
	}

	if d.r.Read(1) == 0 {
		lit := d.r.Read(d.bitsPerSymbol)
		if d.r.Truncated() {
			return 0, errors.Wrap(tinypack.ErrTruncated, "lz77: literal")
		}
		d.dest[d.byteIndex%d.destLength] = byte(lit)
		d.byteIndex++
		return 1, nil
	}

	token := d.r.Read(d.bitsPerToken)
	if d.r.Truncated() {
		return 0, errors.Wrap(tinypack.ErrTruncated, "lz77: token")
	}
	length := token/(d.actualMaxDistance+1) + d.actualMinLength
	distance := token % (d.actualMaxDistance + 1)
	if distance >= d.destLength {
		return 0, errors.Wrap(tinypack.ErrCorrupt, "lz77: distance outside buffer")
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
		return nil, errors.Wrapf(tinypack.ErrCapacity, "lz77: %d bytes declared", n)
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
