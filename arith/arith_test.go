package arith

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/tinypack/tinypack"
)

func testInputs() map[string][]byte {
	rng := rand.New(rand.NewSource(11))
	random := make([]byte, 4096)
	rng.Read(random)
	return map[string][]byte{
		"empty":    {},
		"single":   {0x41},
		"zeros":    make([]byte, 100),
		"ff":       bytes.Repeat([]byte{0xFF}, 300),
		"abc":      bytes.Repeat([]byte("abc"), 30),
		"skewed":   []byte(strings.Repeat("a", 500) + "bc"),
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

func TestIncrementalMatchesOneShot(t *testing.T) {
	for name, data := range testInputs() {
		compressed, err := Compress(data)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}

		var d Decoder
		n, err := d.Start(compressed)
		if err != nil {
			t.Fatalf("%s: start: %v", name, err)
		}
		if n != uint32(len(data)) {
			t.Fatalf("%s: Start returned %d symbols, want %d", name, n, len(data))
		}
		var got []byte
		for {
			s, err := d.Symbol()
			if err != nil {
				t.Fatalf("%s: symbol: %v", name, err)
			}
			if s == tinypack.EndToken {
				break
			}
			got = append(got, byte(s))
		}
		if !bytes.Equal(got, data) {
			t.Errorf("%s: incremental decode differs", name)
		}
	}
}

// An empty input produces a header-only stream with a zero total.
func TestEmptyHeader(t *testing.T) {
	compressed, err := Compress(nil)
	if err != nil {
		t.Fatal(err)
	}
	var d Decoder
	n, err := d.Start(compressed)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("Start returned %d symbols for empty input", n)
	}
	if s, _ := d.Symbol(); s != tinypack.EndToken {
		t.Errorf("Symbol = %#x on empty stream, want EndToken", s)
	}
}

func TestCapacity(t *testing.T) {
	compressed, err := Compress([]byte("does not fit"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decompress(compressed, 3); err == nil {
		t.Error("no error with capacity 3")
	}
}

func TestCompressedSize(t *testing.T) {
	data := []byte(strings.Repeat("the quick brown fox jumps over the lazy dog. ", 60))
	compressed, err := Compress(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(compressed) >= len(data)*85/100 {
		t.Errorf("english text: %d bytes from %d", len(compressed), len(data))
	}
}

// Headerless streams back the LZCL sub-codec path.
func TestHeaderlessList(t *testing.T) {
	list := []uint32{5, 5, 5, 5, 900, 2, 5, 0}
	bs := &tinypack.Bitstream{}
	if err := Encode(bs, list); err != nil {
		t.Fatal(err)
	}

	var d Decoder
	if err := d.StartRaw(tinypack.NewReader(bs.Bytes())); err != nil {
		t.Fatal(err)
	}
	for i, want := range list {
		got, err := d.Symbol()
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("symbol %d = %d, want %d", i, got, want)
		}
	}
	if s, _ := d.Symbol(); s != tinypack.EndToken {
		t.Errorf("Symbol = %#x after the list, want EndToken", s)
	}
}
