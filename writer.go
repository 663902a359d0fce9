package tinypack

import "io"

// A Writer adapts a Compressor to the io.Writer interface. The codecs are
// not streaming (they must see the whole input to build their models), so the
// Writer buffers everything written to it and compresses on Close.
type Writer struct {
	Dest  io.Writer
	Codec Compressor

	buf []byte
}

func (w *Writer) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

// Close compresses the buffered data and writes it to Dest. It does not
// close Dest.
func (w *Writer) Close() error {
	out, err := w.Codec.Compress(w.buf)
	if err != nil {
		return err
	}
	w.buf = nil
	_, err = w.Dest.Write(out)
	return err
}
