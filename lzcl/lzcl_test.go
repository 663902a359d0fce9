package lzcl

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/tinypack/tinypack"
)

func testInputs() map[string][]byte {
	rng := rand.New(rand.NewSource(13))
	random := make([]byte, 4096)
	rng.Read(random)
	return map[string][]byte{
		"empty":    {},
		"single":   {0x41},
		"zeros":    make([]byte, 100),
		"ff":       bytes.Repeat([]byte{0xFF}, 300),
		"abc":      bytes.Repeat([]byte("abc"), 30),
		"sentence": []byte(strings.Repeat("the quick brown fox jumps over the lazy dog. ", 40)),
		"random":   random,
	}
}

func TestRoundTrip(t *testing.T) {
	for name, data := range testInputs() {
		compressed, err := Compress(data)
		if err != nil {
			t.Fatalf("%s: compress: %v", name, err)
		}
		got, err := Decompress(compressed, len(data))
		if err != nil {
			t.Fatalf("%s: decompress: %v", name, err)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("%s: round trip differs", name)
		}
	}
}

func TestRoundTripHashMatcher(t *testing.T) {
	c := &Compressor{MatchFinder: &tinypack.HashSearcher{}}
	for name, data := range testInputs() {
		compressed, err := c.Compress(data)
		if err != nil {
			t.Fatalf("%s: compress: %v", name, err)
		}
		got, err := Decompress(compressed, len(data))
		if err != nil {
			t.Fatalf("%s: decompress: %v", name, err)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("%s: round trip differs", name)
		}
	}
}

// Incremental decoding into a cyclic buffer must produce the same byte
// sequence as the one-shot decoder.
func TestIncrementalMatchesOneShot(t *testing.T) {
	for name, data := range testInputs() {
		compressed, err := Compress(data)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}

		cyclic := make([]byte, 1024)
		var d Decoder
		n, err := d.Start(compressed, cyclic)
		if err != nil {
			t.Fatalf("%s: start: %v", name, err)
		}
		if n != uint32(len(data)) {
			t.Fatalf("%s: Start returned %d bytes, want %d", name, n, len(data))
		}

		var got []byte
		index := 0
		for {
			produced, err := d.Block()
			if err != nil {
				t.Fatalf("%s: block: %v", name, err)
			}
			if produced == tinypack.EndToken {
				break
			}
			for i := 0; i < int(produced); i++ {
				got = append(got, cyclic[index%len(cyclic)])
				index++
			}
		}
		if !bytes.Equal(got, data) {
			t.Errorf("%s: incremental decode differs", name)
		}
	}
}

func TestCompressedSize(t *testing.T) {
	// Highly repetitive input: the sub-codec shells must stay small enough
	// for a deep ratio.
	data := bytes.Repeat([]byte("abc"), 100)
	compressed, err := Compress(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(compressed)*10 >= len(data) {
		t.Errorf("repeated abc: %d bytes from %d, want ratio under 0.10", len(compressed), len(data))
	}

	text := []byte(strings.Repeat("the quick brown fox jumps over the lazy dog. ", 60))
	compressed, err = Compress(text)
	if err != nil {
		t.Fatal(err)
	}
	if len(compressed) >= len(text)/2 {
		t.Errorf("repetitive text: %d bytes from %d", len(compressed), len(text))
	}
}

func TestCapacity(t *testing.T) {
	compressed, err := Compress(bytes.Repeat([]byte("capacity "), 30))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decompress(compressed, 3); err == nil {
		t.Error("no error with capacity 3")
	}

	var d Decoder
	if _, err := d.Start(compressed, make([]byte, 1)); err == nil {
		t.Error("no error with a one-byte cyclic buffer")
	}
}

func TestDecisionRuns(t *testing.T) {
	runs, initial := decisionRuns([]uint32{0, 0, 0, 1, 1, 0, 1, 1, 1, 1})
	if initial != 0 {
		t.Errorf("initial value %d, want 0", initial)
	}
	want := []uint32{3, 2, 1, 4}
	if len(runs) != len(want) {
		t.Fatalf("runs = %v, want %v", runs, want)
	}
	for i := range want {
		if runs[i] != want[i] {
			t.Fatalf("runs = %v, want %v", runs, want)
		}
	}

	runs, initial = decisionRuns([]uint32{1, 1})
	if initial != 1 || len(runs) != 1 || runs[0] != 2 {
		t.Errorf("runs = %v initial %d, want [2] initial 1", runs, initial)
	}

	runs, _ = decisionRuns(nil)
	if runs != nil {
		t.Errorf("runs = %v for no decisions", runs)
	}
}

func TestGolombParameter(t *testing.T) {
	rng := rand.New(rand.NewSource(14))
	values := make([]uint32, 400)
	for i := range values {
		values[i] = uint32(rng.Intn(50))
	}

	best := bestGolombParameter(values)
	bestCost := golombCost(values, best)
	for m := uint32(1); m <= 128; m++ {
		if c := golombCost(values, m); c < bestCost {
			t.Fatalf("m=%d costs %d bits, chosen m=%d costs %d", m, c, best, bestCost)
		}
	}
}

// The sub-codec frames are self-delimiting: each one must decode its own
// list back, whatever codec won the selection.
func TestSubCodecFrames(t *testing.T) {
	rng := rand.New(rand.NewSource(15))
	lists := [][]uint32{
		nil,
		{0},
		{1, 1, 1, 1, 1, 1},
		{0, 1, 0, 1, 1, 0},
		{100, 200, 300, 400},
		make([]uint32, 300),
	}
	skew := make([]uint32, 500)
	for i := range skew {
		skew[i] = uint32(rng.Intn(8))
	}
	lists = append(lists, skew)

	for i, list := range lists {
		tag, payload, err := encodeBest(list)
		if err != nil {
			t.Fatalf("list %d: %v", i, err)
		}
		bs := &tinypack.Bitstream{}
		writeFrame(bs, tag, payload)
		if bs.Len() != frameLen(payload) {
			t.Fatalf("list %d: frame is %d bits, frameLen says %d", i, bs.Len(), frameLen(payload))
		}

		r := tinypack.NewReader(bs.Bytes())
		sub, err := readFrame(r)
		if err != nil {
			t.Fatalf("list %d: read frame: %v", i, err)
		}
		if r.Position() != bs.Len() {
			t.Fatalf("list %d: outer cursor at %d after frame of %d bits", i, r.Position(), bs.Len())
		}
		for j, want := range list {
			got, err := sub.next()
			if err != nil {
				t.Fatalf("list %d: symbol %d: %v", i, j, err)
			}
			if got != want {
				t.Fatalf("list %d: symbol %d = %d, want %d", i, j, got, want)
			}
		}
	}
}
