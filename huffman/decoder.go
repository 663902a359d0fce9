package huffman

import (
	"github.com/pkg/errors"
	"github.com/tinypack/tinypack"
)

// A Decoder decompresses a Huffman stream one symbol at a time with constant
// memory. The code table is never expanded: each Symbol call walks the
// per-length rows in the compressed stream itself, using non-moving reads at
// saved bit positions.
type Decoder struct {
	r *tinypack.Reader

	// tablePosition is the bit position of the first per-length count row.
	tablePosition uint32

	// byteLength is the number of symbols left, or EndToken when the stream
	// is open-ended (LZCL sub-codec mode).
	byteLength uint32

	bitsPerSymbol uint32
	bitsPerCount  uint32
	minLen        uint32
	maxLen        uint32
}

// Start begins decompression of a stream written by Compress and returns the
// declared byte length. Follow with Symbol until it returns EndToken.
func (d *Decoder) Start(source []byte) (uint32, error) {
	r := tinypack.NewReader(source)
	n := tinypack.DecodeLomont1(r, 6, 0)
	if err := d.StartRaw(r); err != nil {
		return 0, err
	}
	d.byteLength = n
	return n, nil
}

// StartRaw begins decompression of a headerless stream at r's cursor. The
// symbol count is unknown; the caller decides when to stop.
func (d *Decoder) StartRaw(r *tinypack.Reader) error {
	d.r = r
	d.byteLength = tinypack.EndToken
	d.bitsPerSymbol = tinypack.DecodeLomont1(r, 3, 0) + 1
	d.bitsPerCount = tinypack.DecodeLomont1(r, 3, 0) + 1
	d.minLen = tinypack.DecodeLomont1(r, 2, 0) + 1
	delta := tinypack.DecodeLomont1(r, 4, -1) + 1
	d.maxLen = d.minLen + delta
	if d.bitsPerSymbol > 32 || d.bitsPerCount > 32 || d.maxLen > maxCodewordLength {
		return errors.Wrap(tinypack.ErrCorrupt, "huffman: header")
	}
	if r.Truncated() {
		return errors.Wrap(tinypack.ErrTruncated, "huffman: header")
	}
	d.skipTable()
	return nil
}

// skipTable records where the count rows start and advances the cursor past
// them to the codeword stream.
func (d *Decoder) skipTable() {
	d.tablePosition = d.r.Position()
	for length := d.minLen; length <= d.maxLen; length++ {
		count := d.r.Read(d.bitsPerCount)
		d.r.Skip(count * d.bitsPerSymbol)
	}
}

// Symbol decodes the next symbol, or returns EndToken at the end of the
// stream.
func (d *Decoder) Symbol() (uint32, error) {
	if d.byteLength == 0 {
		return tinypack.EndToken, nil
	}
	if d.byteLength != tinypack.EndToken {
		d.byteLength--
	}

	accumulator := d.r.Read(d.minLen)
	firstCodewordOnRow := uint32(0)
	tableIndex := d.tablePosition
	for length := d.minLen; ; length++ {
		numberOfCodes := d.r.ReadAt(&tableIndex, d.bitsPerCount)
		if numberOfCodes > 0 && accumulator-firstCodewordOnRow < numberOfCodes {
			tableIndex += (accumulator - firstCodewordOnRow) * d.bitsPerSymbol
			symbol := d.r.ReadAt(&tableIndex, d.bitsPerSymbol)
			if d.r.Truncated() {
				return 0, errors.Wrap(tinypack.ErrTruncated, "huffman: symbol")
			}
			return symbol, nil
		}
		if length >= d.maxLen {
			return 0, errors.Wrap(tinypack.ErrCorrupt, "huffman: codeword not in table")
		}
		firstCodewordOnRow += numberOfCodes
		accumulator = accumulator<<1 | d.r.Read(1)
		firstCodewordOnRow <<= 1
		tableIndex += numberOfCodes * d.bitsPerSymbol
	}
}

// Decompress decodes an entire stream written by Compress. It fails if the
// declared byte length exceeds capacity.
func Decompress(source []byte, capacity int) ([]byte, error) {
	var d Decoder
	n, err := d.Start(source)
	if err != nil {
		return nil, err
	}
	if int(n) > capacity {
		return nil, errors.Wrapf(tinypack.ErrCapacity, "huffman: %d bytes declared", n)
	}
	dest := make([]byte, 0, n)
	for {
		s, err := d.Symbol()
		if err != nil {
			return nil, err
		}
		if s == tinypack.EndToken {
			break
		}
		dest = append(dest, byte(s))
	}
	return dest, nil
}
