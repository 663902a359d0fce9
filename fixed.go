package tinypack

import "github.com/pkg/errors"

// The fixed-size codec stores every symbol of a list in the same
// header-declared bit width. On its own it never compresses; it exists as the
// floor the LZCL sub-codec selection falls back to, and as the cheapest way
// to round-trip a short list of integers.

// CompressFixed encodes values with a list-length and bits-per-symbol header.
func CompressFixed(values []uint32) []byte {
	var max uint32
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	width := bitsRequired(max)

	bs := &Bitstream{}
	EncodeLomont1(bs, uint32(len(values)), 6, 0)
	EncodeLomont1(bs, width-1, 3, 0)
	for _, v := range values {
		bs.Write(v, width)
	}
	return bs.Bytes()
}

// DecompressFixed decodes a list written by CompressFixed.
func DecompressFixed(data []byte) ([]uint32, error) {
	r := NewReader(data)
	n := DecodeLomont1(r, 6, 0)
	width := DecodeLomont1(r, 3, 0) + 1
	if width > 32 {
		return nil, errors.Wrap(ErrCorrupt, "fixed: symbol width")
	}
	if uint64(n)*uint64(width) > uint64(r.BitLen()) {
		return nil, errors.Wrap(ErrTruncated, "fixed: body")
	}
	values := make([]uint32, n)
	for i := range values {
		values[i] = r.Read(width)
	}
	if r.Truncated() {
		return nil, errors.Wrap(ErrTruncated, "fixed: body")
	}
	return values, nil
}
