// Package arith implements a 30-bit static arithmetic codec.
//
// The model is a frequency table over the symbol range actually present in
// the input, stored with binary adaptive sequential coding so the decoder can
// replay it straight from the compressed stream. Renormalization uses the
// classic E1/E2/E3 scalings at the quarter boundaries of the 30-bit range.
package arith

import (
	"github.com/pkg/errors"
	"github.com/tinypack/tinypack"
)

const (
	q25  = 0x20000000
	q50  = 2 * q25
	q75  = 3 * q25
	q100 = 4 * q25
)

// maxTotal bounds the frequency total so that step = range/total never
// collapses to zero.
const maxTotal = 1<<29 - 1

// Compress encodes src as a byte-length header followed by the arithmetic
// stream.
func Compress(src []byte) ([]byte, error) {
	symbols := make([]uint32, len(src))
	for i, b := range src {
		symbols[i] = uint32(b)
	}
	bs := &tinypack.Bitstream{}
	tinypack.EncodeLomont1(bs, uint32(len(src)), 6, 0)
	if err := Encode(bs, symbols); err != nil {
		return nil, err
	}
	return bs.Bytes(), nil
}

// Encode appends the headerless arithmetic stream for symbols: the frequency
// total, the bit length that delimits the stream, the BASC-coded table and
// the compressed region.
func Encode(bs *tinypack.Bitstream, symbols []uint32) error {
	total := uint32(len(symbols))
	if total > maxTotal {
		return errors.Wrap(tinypack.ErrCapacity, "arith: more than 2^29-1 symbols")
	}

	var symbolMin, symbolMax uint32
	if total > 0 {
		symbolMin, symbolMax = symbols[0], symbols[0]
		for _, s := range symbols {
			if s < symbolMin {
				symbolMin = s
			}
			if s > symbolMax {
				symbolMax = s
			}
		}
	}

	var counts []uint32
	if total > 0 {
		counts = make([]uint32, symbolMax-symbolMin+1)
		for _, s := range symbols {
			counts[s-symbolMin]++
		}
	}
	sums := make([]uint32, len(counts)+1)
	for i, c := range counts {
		sums[i+1] = sums[i] + c
	}

	table := &tinypack.Bitstream{}
	tinypack.EncodeBASC(table, counts)

	fields := &tinypack.Bitstream{}
	tinypack.EncodeLomont1(fields, symbolMin, 6, 0)
	tinypack.EncodeLomont1(fields, symbolMax, 6, 0)
	tinypack.EncodeLomont1(fields, table.Len(), 6, 0)

	body := encodeBody(symbols, symbolMin, sums, total)

	// The decoder counts consumed bits from the symbolMin field onward and
	// zero-fills once the count reaches bitLength; the extra bit keeps the
	// last real bit inside the budget.
	bitLength := fields.Len() + table.Len() + body.Len() + 1

	tinypack.EncodeLomont1(bs, total, 6, 0)
	tinypack.EncodeLomont1(bs, bitLength, 8, -1)
	bs.AppendStream(fields)
	bs.AppendStream(table)
	bs.AppendStream(body)
	return nil
}

// encodeBody runs the range coder over the symbol stream.
func encodeBody(symbols []uint32, symbolMin uint32, sums []uint32, total uint32) *tinypack.Bitstream {
	body := &tinypack.Bitstream{}
	if total == 0 {
		return body
	}

	low := uint32(0)
	high := uint32(q100 - 1)
	scaling := uint32(0)

	for _, s := range symbols {
		lowCount := sums[s-symbolMin]
		highCount := sums[s-symbolMin+1]

		step := (high - low + 1) / total
		high = low + step*highCount - 1
		low = low + step*lowCount

		for {
			if high < q50 {
				// E1: emit the 0 and drain pending E3 bits.
				body.Write(0, 1)
				for ; scaling > 0; scaling-- {
					body.Write(1, 1)
				}
				low = 2 * low
				high = 2*high + 1
			} else if low >= q50 {
				// E2
				body.Write(1, 1)
				for ; scaling > 0; scaling-- {
					body.Write(0, 1)
				}
				low = 2 * (low - q50)
				high = 2*(high-q50) + 1
			} else if low >= q25 && high < q75 {
				// E3: defer the bit until E1/E2 decides its value.
				scaling++
				low = 2 * (low - q25)
				high = 2*(high-q25) + 1
			} else {
				break
			}
		}
	}

	// Termination: two distinguishing bits; the decoder's zero fill past the
	// end of the region supplies the rest.
	if low < q25 {
		body.Write(0, 1)
		for i := uint32(0); i < scaling+1; i++ {
			body.Write(1, 1)
		}
	} else {
		body.Write(1, 1)
		body.Write(0, 1)
	}
	return body
}
