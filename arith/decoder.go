package arith

import (
	"github.com/pkg/errors"
	"github.com/tinypack/tinypack"
)

// A Decoder decompresses an arithmetic stream one symbol at a time with
// constant memory. The frequency table is never materialized: every Symbol
// call replays the BASC-coded counts from their saved bit position until the
// cumulative interval containing the target is found.
type Decoder struct {
	r *tinypack.Reader

	low, high uint32
	total     uint32

	symbolMin uint32
	symbolMax uint32

	// tableStartBitPosition is where the BASC table replay begins.
	tableStartBitPosition uint32

	// buffer is the 31-bit lookahead window into the compressed region.
	buffer uint32

	// bitLength delimits the compressed region; reads past it yield zeros.
	bitLength uint32
	bitsRead  uint32

	remaining uint32
}

// Start begins decompression of a stream written by Compress and returns the
// symbol count. Follow with Symbol until it returns EndToken.
func (d *Decoder) Start(source []byte) (uint32, error) {
	r := tinypack.NewReader(source)
	tinypack.DecodeLomont1(r, 6, 0) // byte length; equals the symbol count
	if err := d.StartRaw(r); err != nil {
		return 0, err
	}
	return d.total, nil
}

// StartRaw begins decompression of a headerless stream at r's cursor.
func (d *Decoder) StartRaw(r *tinypack.Reader) error {
	d.r = r
	d.low = 0
	d.high = q100 - 1

	d.total = tinypack.DecodeLomont1(r, 6, 0)
	d.bitLength = tinypack.DecodeLomont1(r, 8, -1)
	if d.total > maxTotal {
		return errors.Wrap(tinypack.ErrCorrupt, "arith: frequency total")
	}
	if r.Truncated() {
		return errors.Wrap(tinypack.ErrTruncated, "arith: header")
	}

	// Bits are counted from here on; the table region is part of the budget.
	start := r.Position()
	d.symbolMin = tinypack.DecodeLomont1(r, 6, 0)
	d.symbolMax = tinypack.DecodeLomont1(r, 6, 0)
	tableBitLength := tinypack.DecodeLomont1(r, 6, 0)
	d.tableStartBitPosition = r.Position()
	r.Skip(tableBitLength)
	d.bitsRead = r.Position() - start

	d.buffer = 0
	for i := 0; i < 31; i++ {
		d.buffer = d.buffer<<1 | d.readBit()
	}
	d.remaining = d.total
	return nil
}

// readBit pulls one bit of the compressed region, or 0 once the region's bit
// budget is spent. The zero fill is what lets the encoder terminate with two
// bits.
func (d *Decoder) readBit() uint32 {
	d.bitsRead++
	if d.bitsRead < d.bitLength {
		return d.r.Read(1)
	}
	return 0
}

// Symbol decodes the next symbol, or returns EndToken at the end of the
// stream.
func (d *Decoder) Symbol() (uint32, error) {
	if d.remaining == 0 {
		return tinypack.EndToken, nil
	}
	d.remaining--

	step := (d.high - d.low + 1) / d.total
	symbol, lowCount, highCount, err := d.lookup((d.buffer - d.low) / step)
	if err != nil {
		return 0, err
	}

	d.high = d.low + step*highCount - 1
	d.low = d.low + step*lowCount

	// E1/E2 scaling.
	for d.high < q50 || d.low >= q50 {
		if d.high < q50 {
			d.low = 2 * d.low
			d.high = 2*d.high + 1
			d.buffer = 2*d.buffer + d.readBit()
		} else {
			d.low = 2 * (d.low - q50)
			d.high = 2*(d.high-q50) + 1
			d.buffer = 2*(d.buffer-q50) + d.readBit()
		}
	}

	// E3 scaling.
	for q25 <= d.low && d.high < q75 {
		d.low = 2 * (d.low - q25)
		d.high = 2*(d.high-q25) + 1
		d.buffer = 2*(d.buffer-q25) + d.readBit()
	}
	return symbol, nil
}

// lookup replays the BASC table from its saved position until the running
// cumulative count passes target, mirroring the BASC encoder bit for bit.
func (d *Decoder) lookup(target uint32) (symbol, lowCount, highCount uint32, err error) {
	saved := d.r.Position()
	defer d.r.SetPosition(saved)
	d.r.SetPosition(d.tableStartBitPosition)

	length := tinypack.DecodeLomont1(d.r, 6, 0)
	if length <= 1 {
		return 0, 0, 0, errors.Wrap(tinypack.ErrCorrupt, "arith: empty frequency table")
	}

	width := tinypack.DecodeLomont1(d.r, 6, 0)
	x := d.r.Read(width)

	highCount = x
	symbol = d.symbolMin
	i := d.symbolMin

	for highCount <= target {
		if i >= d.symbolMax || d.r.Truncated() {
			return 0, 0, 0, errors.Wrap(tinypack.ErrCorrupt, "arith: target outside frequency table")
		}
		width = tinypack.BitsRequired(x)
		if d.r.Read(1) == 0 {
			x = d.r.Read(width)
		} else {
			delta := uint32(1)
			for d.r.Read(1) != 0 {
				if d.r.Truncated() {
					return 0, 0, 0, errors.Wrap(tinypack.ErrTruncated, "arith: frequency table")
				}
				delta++
			}
			width += delta
			x = d.r.Read(width-1) | 1<<(width-1)
		}

		lowCount = highCount
		highCount += x
		i++
		if x != 0 {
			symbol = i
		}
	}
	return symbol, lowCount, highCount, nil
}

// Decompress decodes an entire stream written by Compress. It fails if the
// symbol count exceeds capacity.
func Decompress(source []byte, capacity int) ([]byte, error) {
	var d Decoder
	n, err := d.Start(source)
	if err != nil {
		return nil, err
	}
	if int(n) > capacity {
		return nil, errors.Wrapf(tinypack.ErrCapacity, "arith: %d bytes declared", n)
	}
	dest := make([]byte, 0, n)
	for i := uint32(0); i < n; i++ {
		s, err := d.Symbol()
		if err != nil {
			return nil, err
		}
		dest = append(dest, byte(s))
	}
	return dest, nil
}
