// Command tinypack compresses or decompresses a file with one of the four
// codecs.
//
// Usage:
//
//	tinypack -codec lzcl in.bin out.tpk
//	tinypack -d out.tpk in.bin
package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"

	"github.com/tinypack/tinypack"
	"github.com/tinypack/tinypack/arith"
	"github.com/tinypack/tinypack/huffman"
	"github.com/tinypack/tinypack/lz77"
	"github.com/tinypack/tinypack/lzcl"
)

var (
	codec      = flag.String("codec", "lzcl", "codec: huffman, arith, lz77 or lzcl")
	decompress = flag.Bool("d", false, "decompress instead of compress")
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("tinypack: ")
	flag.Parse()
	if flag.NArg() != 2 {
		log.Fatal("usage: tinypack [-d] [-codec name] input output")
	}

	in, err := ioutil.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}

	var out []byte
	if *decompress {
		out, err = expand(in)
	} else {
		out, err = compress(in)
	}
	if err != nil {
		log.Fatal(err)
	}

	if err := ioutil.WriteFile(flag.Arg(1), out, 0666); err != nil {
		log.Fatal(err)
	}
	log.Printf("%d bytes in, %d bytes out", len(in), len(out))
}

func compress(in []byte) ([]byte, error) {
	switch *codec {
	case "huffman":
		return huffman.Compress(in)
	case "arith":
		return arith.Compress(in)
	case "lz77":
		return lz77.Compress(in)
	case "lzcl":
		return lzcl.Compress(in)
	}
	return nil, fmt.Errorf("unknown codec %q", *codec)
}

func expand(in []byte) ([]byte, error) {
	n, err := tinypack.GetDecompressedSize(in)
	if err != nil {
		return nil, err
	}
	switch *codec {
	case "huffman":
		return huffman.Decompress(in, int(n))
	case "arith":
		return arith.Decompress(in, int(n))
	case "lz77":
		return lz77.Decompress(in, int(n))
	case "lzcl":
		return lzcl.Decompress(in, int(n))
	}
	return nil, fmt.Errorf("unknown codec %q", *codec)
}
