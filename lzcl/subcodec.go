package lzcl

import (
	"github.com/pkg/errors"
	"github.com/tinypack/tinypack"
	"github.com/tinypack/tinypack/arith"
	"github.com/tinypack/tinypack/huffman"
)

// Sub-codec tags. Every LZCL sub-stream is framed with one of these in two
// bits, followed by the Lomont-1(6) bit length of the sub-codec's
// self-contained payload.
const (
	codecFixed = iota
	codecArithmetic
	codecHuffman
	codecGolomb
)

// encodeFixed writes the fixed-width payload: symbol width, then every value
// in that width.
func encodeFixed(values []uint32) *tinypack.Bitstream {
	var max uint32
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	width := tinypack.BitsRequired(max)

	bs := &tinypack.Bitstream{}
	tinypack.EncodeLomont1(bs, width-1, 3, 0)
	for _, v := range values {
		bs.Write(v, width)
	}
	return bs
}

// encodeGolomb writes the Golomb payload: the parameter, then every value.
func encodeGolomb(values []uint32, m uint32) *tinypack.Bitstream {
	bs := &tinypack.Bitstream{}
	tinypack.EncodeLomont1(bs, m, 6, 0)
	for _, v := range values {
		tinypack.EncodeGolomb(bs, v, m)
	}
	return bs
}

// golombCost is the payload body size for parameter m, without the header.
func golombCost(values []uint32, m uint32) uint64 {
	var n uint64
	for _, v := range values {
		n += uint64(tinypack.GolombBitLength(v, m))
	}
	return n
}

// bestGolombParameter picks the m minimizing the coded size. The size is
// unimodal in m: start at the smallest power of two holding the largest
// value, halve while the size keeps improving, binary-search the bracket
// that is left, and probe the immediate neighbors of the winner.
func bestGolombParameter(values []uint32) uint32 {
	var max uint32
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		return 1
	}

	hi := uint32(1)
	for hi < max {
		hi <<= 1
	}

	bestM, bestCost := hi, golombCost(values, hi)
	for m := hi >> 1; m >= 1; m >>= 1 {
		c := golombCost(values, m)
		if c >= bestCost {
			break
		}
		bestM, bestCost = m, c
	}

	lo := bestM >> 1
	if lo < 1 {
		lo = 1
	}
	hi = bestM << 1
	for hi-lo > 2 {
		mid := (lo + hi) / 2
		if golombCost(values, mid) < golombCost(values, mid+1) {
			hi = mid + 1
		} else {
			lo = mid
		}
	}
	for m := lo; m <= hi+1; m++ {
		if m < 1 {
			continue
		}
		if c := golombCost(values, m); c < bestCost {
			bestM, bestCost = m, c
		}
	}
	return bestM
}

// encodeBest tries every enabled sub-codec on values and returns the frame
// tag and payload of the shortest one.
func encodeBest(values []uint32) (uint8, *tinypack.Bitstream, error) {
	tag := uint8(codecFixed)
	best := encodeFixed(values)

	ab := &tinypack.Bitstream{}
	if err := arith.Encode(ab, values); err == nil && ab.Len() < best.Len() {
		tag, best = codecArithmetic, ab
	}

	hb := &tinypack.Bitstream{}
	if err := huffman.Encode(hb, values); err == nil && hb.Len() < best.Len() {
		tag, best = codecHuffman, hb
	}

	gb := encodeGolomb(values, bestGolombParameter(values))
	if gb.Len() < best.Len() {
		tag, best = codecGolomb, gb
	}

	return tag, best, nil
}

// writeFrame appends a sub-codec frame: the 2-bit tag, the payload bit
// length, then the payload itself.
func writeFrame(bs *tinypack.Bitstream, tag uint8, payload *tinypack.Bitstream) {
	bs.Write(uint32(tag), 2)
	tinypack.EncodeLomont1(bs, payload.Len(), 6, 0)
	bs.AppendStream(payload)
}

// frameLen returns the bit length writeFrame will emit for payload.
func frameLen(payload *tinypack.Bitstream) uint32 {
	var scratch tinypack.Bitstream
	tinypack.EncodeLomont1(&scratch, payload.Len(), 6, 0)
	return 2 + scratch.Len() + payload.Len()
}

// A subDecoder decodes one sub-stream. It is the decoder-side half of the
// dispatcher: a tagged union over the four sub-codec states, each reading
// from its own view into the shared data.
type subDecoder struct {
	tag uint8

	// fixed
	fixedReader *tinypack.Reader
	fixedWidth  uint32

	arith *arith.Decoder
	huff  *huffman.Decoder

	// golomb
	golombReader *tinypack.Reader
	golombM      uint32
}

// readFrame parses a sub-codec frame at r's cursor, initializes the
// sub-codec from a view positioned at the payload, and advances r past it.
func readFrame(r *tinypack.Reader) (*subDecoder, error) {
	d := &subDecoder{tag: uint8(r.Read(2))}
	bitLength := tinypack.DecodeLomont1(r, 6, 0)
	if r.Truncated() {
		return nil, errors.Wrap(tinypack.ErrTruncated, "lzcl: sub-codec frame")
	}

	view := r.View()
	switch d.tag {
	case codecFixed:
		d.fixedWidth = tinypack.DecodeLomont1(view, 3, 0) + 1
		if d.fixedWidth > 32 {
			return nil, errors.Wrap(tinypack.ErrCorrupt, "lzcl: fixed sub-codec width")
		}
		d.fixedReader = view
	case codecArithmetic:
		d.arith = &arith.Decoder{}
		if err := d.arith.StartRaw(view); err != nil {
			return nil, err
		}
	case codecHuffman:
		d.huff = &huffman.Decoder{}
		if err := d.huff.StartRaw(view); err != nil {
			return nil, err
		}
	case codecGolomb:
		d.golombM = tinypack.DecodeLomont1(view, 6, 0)
		if d.golombM == 0 {
			return nil, errors.Wrap(tinypack.ErrCorrupt, "lzcl: golomb parameter")
		}
		d.golombReader = view
	default:
		return nil, errors.Wrap(tinypack.ErrCorrupt, "lzcl: sub-codec tag")
	}

	r.Skip(bitLength)
	return d, nil
}

// next decodes one symbol from the sub-stream.
func (d *subDecoder) next() (uint32, error) {
	switch d.tag {
	case codecFixed:
		v := d.fixedReader.Read(d.fixedWidth)
		if d.fixedReader.Truncated() {
			return 0, errors.Wrap(tinypack.ErrTruncated, "lzcl: fixed sub-codec")
		}
		return v, nil
	case codecArithmetic:
		return d.arith.Symbol()
	case codecHuffman:
		return d.huff.Symbol()
	default:
		v := tinypack.DecodeGolomb(d.golombReader, d.golombM)
		if d.golombReader.Truncated() {
			return 0, errors.Wrap(tinypack.ErrTruncated, "lzcl: golomb sub-codec")
		}
		return v, nil
	}
}
