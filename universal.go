package tinypack

// Universal integer codes. Lomont-1 is the workhorse: every header field in
// every codec is a Lomont-1 value with a (chunkSize, deltaChunk) pair chosen
// for the field's typical magnitude. The Elias family, Even-Rodeh and Stout
// codes are kept alongside for completeness; BASC encodes the arithmetic
// codec's frequency tables.

// EncodeLomont1 appends v in Lomont method 1: successive chunkSize-bit chunks
// of v, low bits first, each preceded by a continuation bit (1 = another
// chunk follows). A nonzero deltaChunk adjusts the chunk size after each
// chunk, clamped at a minimum of 1.
func EncodeLomont1(b *Bitstream, v uint32, chunkSize, deltaChunk int) {
	for {
		chunk := v
		if chunkSize < 32 {
			chunk = v & (1<<uint(chunkSize) - 1)
			v >>= uint(chunkSize)
		} else {
			v = 0
		}
		if v != 0 {
			b.Write(1, 1)
		} else {
			b.Write(0, 1)
		}
		b.Write(chunk, uint32(chunkSize))
		if deltaChunk != 0 {
			chunkSize += deltaChunk
			if chunkSize <= 0 {
				chunkSize = 1
			}
		}
		if v == 0 {
			return
		}
	}
}

// DecodeLomont1 reads a Lomont method 1 value written by EncodeLomont1.
func DecodeLomont1(r *Reader, chunkSize, deltaChunk int) uint32 {
	var value uint32
	shift := uint(0)
	for {
		more := r.Read(1)
		chunk := r.Read(uint32(chunkSize))
		if shift < 32 {
			value += chunk << shift
		}
		shift += uint(chunkSize)
		if deltaChunk != 0 {
			chunkSize += deltaChunk
			if chunkSize <= 0 {
				chunkSize = 1
			}
		}
		if more == 0 {
			return value
		}
	}
}

// EncodeEliasGamma appends v >= 1 in Elias gamma: floorLog2(v) zero bits,
// then v itself (its leading 1 terminates the zeros).
func EncodeEliasGamma(b *Bitstream, v uint32) {
	n := floorLog2(v)
	b.Write(0, n)
	b.Write(v, n+1)
}

// DecodeEliasGamma reads an Elias gamma value.
func DecodeEliasGamma(r *Reader) uint32 {
	n := uint32(0)
	for r.Read(1) == 0 {
		n++
		if r.Truncated() {
			return 0
		}
	}
	return 1<<n | r.Read(n)
}

// EncodeEliasDelta appends v >= 1 in Elias delta: gamma-coded bit length,
// then the value with its leading 1 stripped.
func EncodeEliasDelta(b *Bitstream, v uint32) {
	n := floorLog2(v)
	EncodeEliasGamma(b, n+1)
	b.Write(v, n)
}

// DecodeEliasDelta reads an Elias delta value.
func DecodeEliasDelta(r *Reader) uint32 {
	n := DecodeEliasGamma(r)
	if n == 0 {
		return 0
	}
	n--
	return 1<<n | r.Read(n)
}

// EncodeEliasOmega appends v >= 1 in Elias omega: recursively
// length-prefixed groups, terminated by a 0 bit.
func EncodeEliasOmega(b *Bitstream, v uint32) {
	var groups []uint32
	for v > 1 {
		groups = append(groups, v)
		v = bitsRequired(v) - 1
	}
	for i := len(groups) - 1; i >= 0; i-- {
		b.Write(groups[i], bitsRequired(groups[i]))
	}
	b.Write(0, 1)
}

// DecodeEliasOmega reads an Elias omega value.
func DecodeEliasOmega(r *Reader) uint32 {
	n := uint32(1)
	for r.Read(1) == 1 {
		if r.Truncated() || n > 31 {
			return 0
		}
		n = 1<<n | r.Read(n)
	}
	return n
}

// EncodeEvenRodeh appends v in the Even-Rodeh code: values below 4 are a
// plain 3-bit group; larger values are recursively length-prefixed groups
// followed by a 0 stop bit.
func EncodeEvenRodeh(b *Bitstream, v uint32) {
	if v < 4 {
		b.Write(v, 3)
		return
	}
	groups := []uint32{v}
	for l := bitsRequired(v); l > 3; l = bitsRequired(l) {
		groups = append(groups, l)
	}
	for i := len(groups) - 1; i >= 0; i-- {
		b.Write(groups[i], bitsRequired(groups[i]))
	}
	b.Write(0, 1)
}

// DecodeEvenRodeh reads an Even-Rodeh value.
func DecodeEvenRodeh(r *Reader) uint32 {
	v := r.Read(3)
	if v < 4 {
		return v
	}
	for {
		if r.Read(1) == 0 {
			return v
		}
		if r.Truncated() || v > 32 {
			return 0
		}
		v = 1<<(v-1) | r.Read(v-1)
	}
}

// EncodeStout appends v in the Stout code with k-bit start group: a chain of
// length-prefixed groups seeded by a k-bit count, terminated by a 0 bit.
func EncodeStout(b *Bitstream, v uint32, k uint32) {
	var groups []uint32
	for v >= 1<<k {
		groups = append(groups, v)
		v = bitsRequired(v)
	}
	b.Write(v, k)
	for i := len(groups) - 1; i >= 0; i-- {
		b.Write(1, 1)
		b.Write(groups[i], bitsRequired(groups[i])-1)
	}
	b.Write(0, 1)
}

// DecodeStout reads a Stout value with k-bit start group.
func DecodeStout(r *Reader, k uint32) uint32 {
	v := r.Read(k)
	for {
		if r.Read(1) == 0 {
			return v
		}
		if r.Truncated() || v > 32 || v == 0 {
			return 0
		}
		v = 1<<(v-1) | r.Read(v-1)
	}
}

// EncodeTruncated appends v in the truncated binary code over [0,n): the
// 2^k-n unused codewords shorten the low values to k-1 bits.
func EncodeTruncated(b *Bitstream, v, n uint32) {
	k := bitsRequired(n)
	u := 1<<k - n
	if v < u {
		b.Write(v, k-1)
	} else {
		b.Write(v+u, k)
	}
}

// DecodeTruncated reads a truncated binary value over [0,n).
func DecodeTruncated(r *Reader, n uint32) uint32 {
	k := bitsRequired(n)
	u := 1<<k - n
	x := r.Read(k - 1)
	if x >= u {
		x = 2*x + r.Read(1)
		x -= u
	}
	return x
}

// EncodeGolomb appends v in the Golomb code with parameter m >= 1: a unary
// quotient terminated by 0, then the truncated remainder.
func EncodeGolomb(b *Bitstream, v, m uint32) {
	q := v / m
	for i := uint32(0); i < q; i++ {
		b.Write(1, 1)
	}
	b.Write(0, 1)
	EncodeTruncated(b, v%m, m)
}

// DecodeGolomb reads a Golomb value with parameter m.
func DecodeGolomb(r *Reader, m uint32) uint32 {
	q := uint32(0)
	for r.Read(1) == 1 {
		if r.Truncated() {
			return 0
		}
		q++
	}
	return q*m + DecodeTruncated(r, m)
}

// GolombBitLength returns the number of bits EncodeGolomb emits for v with
// parameter m.
func GolombBitLength(v, m uint32) uint32 {
	k := bitsRequired(m)
	u := 1<<k - m
	n := v/m + 1 + k
	if v%m < u {
		n--
	}
	return n
}

// EncodeBASC appends values in binary adaptive sequential coding. The list
// length plus one leads as a Lomont-1(6) field, then the bit length of the
// first value and the value itself; every further value is coded against the
// running bit length of its predecessor.
func EncodeBASC(b *Bitstream, values []uint32) {
	EncodeLomont1(b, uint32(len(values))+1, 6, 0)
	if len(values) == 0 {
		return
	}
	prev := bitsRequired(values[0])
	EncodeLomont1(b, prev, 6, 0)
	b.Write(values[0], prev)
	for _, v := range values[1:] {
		n := bitsRequired(v)
		if n <= prev {
			b.Write(0, 1)
			b.Write(v, prev)
		} else {
			for i := prev; i < n; i++ {
				b.Write(1, 1)
			}
			b.Write(0, 1)
			b.Write(v, n-1) // leading 1 implied
		}
		prev = n
	}
}

// DecodeBASC reads a list written by EncodeBASC.
func DecodeBASC(r *Reader) []uint32 {
	n := DecodeLomont1(r, 6, 0)
	if n <= 1 {
		return nil
	}
	values := make([]uint32, 0, n-1)
	prev := DecodeLomont1(r, 6, 0)
	v := r.Read(prev)
	values = append(values, v)
	prev = bitsRequired(v)
	for uint32(len(values)) < n-1 {
		if r.Read(1) == 0 {
			v = r.Read(prev)
		} else {
			delta := uint32(1)
			for r.Read(1) != 0 {
				if r.Truncated() {
					return values
				}
				delta++
			}
			prev += delta
			v = r.Read(prev-1) | 1<<(prev-1)
		}
		values = append(values, v)
		prev = bitsRequired(v)
		if r.Truncated() {
			break
		}
	}
	return values
}
