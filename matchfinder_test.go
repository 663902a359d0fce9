package tinypack

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"
)

// reconstruct rebuilds the input from a match sequence, the inverse of what
// the LZ decoders do.
func reconstruct(matches []Match, src []byte) []byte {
	var out []byte
	pos := 0
	for _, m := range matches {
		out = append(out, src[pos:pos+m.Unmatched]...)
		pos += m.Unmatched
		for i := 0; i < m.Length; i++ {
			out = append(out, out[len(out)-m.Distance])
		}
		pos += m.Length
	}
	return out
}

func testInputs() map[string][]byte {
	rng := rand.New(rand.NewSource(4))
	random := make([]byte, 4096)
	rng.Read(random)
	return map[string][]byte{
		"empty":    {},
		"single":   {0x41},
		"zeros":    make([]byte, 100),
		"abc":      bytes.Repeat([]byte("abc"), 30),
		"sentence": []byte(strings.Repeat("the quick brown fox jumps over the lazy dog. ", 40)),
		"random":   random,
	}
}

func TestWindowSearcherReconstruct(t *testing.T) {
	for name, data := range testInputs() {
		w := &WindowSearcher{}
		matches := w.FindMatches(nil, data)
		if got := reconstruct(matches, data); !bytes.Equal(got, data) {
			t.Errorf("%s: reconstruction differs", name)
		}
	}
}

func TestWindowSearcherInvariants(t *testing.T) {
	w := &WindowSearcher{MaxDistance: 63, MaxLength: 16, MinLength: 3}
	for name, data := range testInputs() {
		for _, m := range w.FindMatches(nil, data) {
			if m.Length == 0 {
				continue
			}
			if m.Length < 3 || m.Length > 16 {
				t.Errorf("%s: match length %d outside [3,16]", name, m.Length)
			}
			if m.Distance < 1 || m.Distance-1 > 63 {
				t.Errorf("%s: match distance %d outside window", name, m.Distance)
			}
		}
	}
}

func TestHashSearcherReconstruct(t *testing.T) {
	for name, data := range testInputs() {
		h := &HashSearcher{}
		matches := h.FindMatches(nil, data)
		if got := reconstruct(matches, data); !bytes.Equal(got, data) {
			t.Errorf("%s: reconstruction differs", name)
		}
	}
}

func TestExpandMatches(t *testing.T) {
	data := []byte("abcabcabc")
	w := &WindowSearcher{}
	lists := ExpandMatches(w.FindMatches(nil, data), data)

	if len(lists.Decisions) != len(lists.Literals)+len(lists.Lengths) {
		t.Fatalf("decision count %d != %d literals + %d tokens",
			len(lists.Decisions), len(lists.Literals), len(lists.Lengths))
	}
	var zeros int
	for _, d := range lists.Decisions {
		if d == 0 {
			zeros++
		}
	}
	if zeros != len(lists.Literals) {
		t.Errorf("%d zero decisions but %d literals", zeros, len(lists.Literals))
	}
	if len(lists.Distances) != len(lists.Lengths) {
		t.Errorf("%d distances but %d lengths", len(lists.Distances), len(lists.Lengths))
	}
}

func TestTextEncoder(t *testing.T) {
	data := []byte("abcabcabc")
	w := &WindowSearcher{}
	matches := w.FindMatches(nil, data)
	got := string(TextEncoder{}.Render(nil, data, matches))
	want := "abc<6,3>"
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}
