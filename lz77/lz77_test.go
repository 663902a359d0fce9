package lz77

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/tinypack/tinypack"
)

func testInputs() map[string][]byte {
	rng := rand.New(rand.NewSource(12))
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

// A run of zeros compresses to one literal and one long match.
func TestZeroRun(t *testing.T) {
	data := make([]byte, 100)
	compressed, err := Compress(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(compressed) >= 20 {
		t.Errorf("100 zero bytes became %d compressed bytes", len(compressed))
	}
	got, err := Decompress(compressed, len(data))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Error("round trip differs")
	}
}

func TestCompressedSize(t *testing.T) {
	data := []byte(strings.Repeat("the quick brown fox jumps over the lazy dog. ", 60))
	compressed, err := Compress(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(compressed) >= len(data)/2 {
		t.Errorf("repetitive text: %d bytes from %d", len(compressed), len(data))
	}
}

func TestCapacity(t *testing.T) {
	compressed, err := Compress([]byte("does not fit anywhere"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decompress(compressed, 3); err == nil {
		t.Error("no error with capacity 3")
	}

	// The cyclic buffer must cover the window and the longest match.
	var d Decoder
	if _, err := d.Start(compressed, make([]byte, 1)); err == nil {
		t.Error("no error with a one-byte cyclic buffer")
	}
}

func TestMatcherInvariants(t *testing.T) {
	c := Compressor{MinLength: 3, MaxLength: 20, MaxDistance: 100}
	mf := &tinypack.WindowSearcher{
		MaxDistance: c.MaxDistance,
		MaxLength:   c.MaxLength,
		MinLength:   c.MinLength,
	}
	for name, data := range testInputs() {
		lists := tinypack.ExpandMatches(mf.FindMatches(nil, data), data)
		for i := range lists.Lengths {
			if lists.Lengths[i] < 3 || lists.Lengths[i] > 20 {
				t.Errorf("%s: length %d outside [3,20]", name, lists.Lengths[i])
			}
			if lists.Distances[i] > 100 {
				t.Errorf("%s: distance %d beyond window", name, lists.Distances[i])
			}
		}
	}
}
