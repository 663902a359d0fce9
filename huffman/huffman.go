// Package huffman implements the canonical Huffman codec.
//
// The encoder builds an ordinary frequency tree, then rewrites the codewords
// into canonical form so that the table can be stored as per-length symbol
// runs and decoded directly from the compressed stream: the decoder keeps a
// handful of header fields and re-reads the in-stream table for every symbol
// instead of expanding it into memory.
package huffman

import (
	"container/heap"
	"sort"

	"github.com/pkg/errors"
	"github.com/tinypack/tinypack"
)

// maxCodewordLength is the longest codeword the decoder's 32-bit accumulator
// can hold.
const maxCodewordLength = 32

type codeword struct {
	value  uint32
	length uint32
}

// Compress encodes src as a byte-length header followed by the Huffman table
// and codeword stream.
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

// Encode appends the headerless Huffman stream (code table plus codewords)
// for symbols. The LZCL sub-codec path uses this directly; Compress prefixes
// it with the byte length.
func Encode(bs *tinypack.Bitstream, symbols []uint32) error {
	codes, err := buildCanonical(symbols)
	if err != nil {
		return err
	}
	writeTable(bs, codes)
	for _, s := range symbols {
		cw := codes.bySymbol[s]
		bs.Write(cw.value, cw.length)
	}
	return nil
}

// leaf is one symbol of the canonical code, ordered by (length, symbol).
type leaf struct {
	symbol uint32
	cw     codeword
}

type codeTable struct {
	leaves   []leaf
	bySymbol map[uint32]codeword
	minLen   uint32
	maxLen   uint32
}

// buildCanonical tallies symbols, builds the frequency tree and rewrites the
// resulting codeword lengths into canonical codewords.
func buildCanonical(symbols []uint32) (*codeTable, error) {
	freq := make(map[uint32]uint32)
	for _, s := range symbols {
		freq[s]++
	}
	distinct := make([]uint32, 0, len(freq))
	for s := range freq {
		distinct = append(distinct, s)
	}
	sort.Slice(distinct, func(i, j int) bool { return distinct[i] < distinct[j] })

	t := &codeTable{bySymbol: make(map[uint32]codeword, len(distinct))}
	if len(distinct) == 0 {
		// Empty alphabet: the table still needs a well-formed shape for the
		// header writer, but carries no rows.
		t.minLen, t.maxLen = 1, 1
		return t, nil
	}

	lengths := codewordLengths(distinct, freq)
	for i, s := range distinct {
		if lengths[i] > maxCodewordLength {
			return nil, errors.Wrap(tinypack.ErrCorrupt, "huffman: codeword longer than 32 bits")
		}
		t.leaves = append(t.leaves, leaf{symbol: s, cw: codeword{length: lengths[i]}})
	}
	sort.Slice(t.leaves, func(i, j int) bool {
		if t.leaves[i].cw.length != t.leaves[j].cw.length {
			return t.leaves[i].cw.length < t.leaves[j].cw.length
		}
		return t.leaves[i].symbol < t.leaves[j].symbol
	})

	t.minLen = t.leaves[0].cw.length
	t.maxLen = t.leaves[len(t.leaves)-1].cw.length

	// Canonical assignment: start at zero on the shortest length; shift left
	// when the length grows, increment per leaf.
	code := uint32(0)
	curLen := t.minLen
	for i := range t.leaves {
		for curLen < t.leaves[i].cw.length {
			code <<= 1
			curLen++
		}
		t.leaves[i].cw.value = code
		t.bySymbol[t.leaves[i].symbol] = t.leaves[i].cw
		code++
	}
	return t, nil
}

// treeNode is one arena slot of the frequency tree. Only leaves carry a
// symbol index; internal nodes point at two children.
type treeNode struct {
	freq        uint32
	leafIndex   int32 // index into distinct, or -1
	left, right int32
}

type nodeHeap struct {
	nodes *[]treeNode
	order []int32
}

func (h nodeHeap) Len() int { return len(h.order) }
func (h nodeHeap) Less(i, j int) bool {
	a, b := (*h.nodes)[h.order[i]], (*h.nodes)[h.order[j]]
	if a.freq != b.freq {
		return a.freq < b.freq
	}
	// Insertion order breaks ties deterministically; canonicalization makes
	// the choice invisible on the wire.
	return h.order[i] < h.order[j]
}
func (h nodeHeap) Swap(i, j int)       { h.order[i], h.order[j] = h.order[j], h.order[i] }
func (h *nodeHeap) Push(x interface{}) { h.order = append(h.order, x.(int32)) }
func (h *nodeHeap) Pop() interface{} {
	x := h.order[len(h.order)-1]
	h.order = h.order[:len(h.order)-1]
	return x
}

// codewordLengths returns the tree depth of each distinct symbol. A lone
// symbol gets a 1-bit codeword.
func codewordLengths(distinct []uint32, freq map[uint32]uint32) []uint32 {
	nodes := make([]treeNode, 0, 2*len(distinct))
	h := &nodeHeap{nodes: &nodes}
	for i, s := range distinct {
		nodes = append(nodes, treeNode{freq: freq[s], leafIndex: int32(i), left: -1, right: -1})
		h.order = append(h.order, int32(i))
	}
	heap.Init(h)
	for h.Len() > 1 {
		a := heap.Pop(h).(int32)
		b := heap.Pop(h).(int32)
		nodes = append(nodes, treeNode{
			freq:      nodes[a].freq + nodes[b].freq,
			leafIndex: -1,
			left:      a,
			right:     b,
		})
		heap.Push(h, int32(len(nodes)-1))
	}
	root := h.order[0]

	lengths := make([]uint32, len(distinct))
	type item struct {
		node  int32
		depth uint32
	}
	stack := []item{{root, 0}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := nodes[it.node]
		if n.leafIndex >= 0 {
			d := it.depth
			if d == 0 {
				d = 1
			}
			lengths[n.leafIndex] = d
			continue
		}
		stack = append(stack, item{n.left, it.depth + 1}, item{n.right, it.depth + 1})
	}
	return lengths
}

// writeTable emits the canonical table: field widths, codeword length range,
// and one row per length holding its codeword count and symbols. The wire
// format stores the length range as (max-min)-1, so a single-length table
// declares one phantom row with a zero count.
func writeTable(bs *tinypack.Bitstream, t *codeTable) {
	var maxSymbol, maxCount uint32
	counts := make(map[uint32]uint32)
	for _, l := range t.leaves {
		if l.symbol > maxSymbol {
			maxSymbol = l.symbol
		}
		counts[l.cw.length]++
	}
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}
	bitsPerSymbol := tinypack.BitsRequired(maxSymbol)
	bitsPerCount := tinypack.BitsRequired(maxCount)

	declaredMax := t.maxLen
	if declaredMax == t.minLen {
		declaredMax = t.minLen + 1
	}

	tinypack.EncodeLomont1(bs, bitsPerSymbol-1, 3, 0)
	tinypack.EncodeLomont1(bs, bitsPerCount-1, 3, 0)
	tinypack.EncodeLomont1(bs, t.minLen-1, 2, 0)
	tinypack.EncodeLomont1(bs, (declaredMax-t.minLen)-1, 4, -1)

	i := 0
	for length := t.minLen; length <= declaredMax; length++ {
		bs.Write(counts[length], bitsPerCount)
		for i < len(t.leaves) && t.leaves[i].cw.length == length {
			bs.Write(t.leaves[i].symbol, bitsPerSymbol)
			i++
		}
	}
}
