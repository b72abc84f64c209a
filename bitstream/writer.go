package bitstream

import (
	"io"
)

// ChunkWriter collects chunks and writes every completed byte to an io.Writer.
type ChunkWriter struct {
	stream  io.Writer
	mask    Mask
	chunks  []byte
	pending [1]byte
	written int64
}

// NewWriter returns a new instance of ChunkWriter.
func NewWriter(w io.Writer, m Mask) *ChunkWriter {
	return &ChunkWriter{
		stream: w,
		mask:   m,
		chunks: make([]byte, 0, m.chunks),
	}
}

// WriteChunk appends c to the chunk buffer. Once the buffer holds a full byte
// it is joined and written to the stream.
func (cw *ChunkWriter) WriteChunk(c byte) error {
	cw.chunks = append(cw.chunks, c&cw.mask.value)
	if len(cw.chunks) < int(cw.mask.chunks) {
		return nil
	}

	cw.pending[0] = cw.mask.Join(cw.chunks)
	cw.chunks = cw.chunks[:0]

	if _, err := cw.stream.Write(cw.pending[:]); err != nil {
		return err
	}
	cw.written++

	return nil
}

// Pad writes n zero chunks.
func (cw *ChunkWriter) Pad(n int) error {
	for i := 0; i < n; i++ {
		if err := cw.WriteChunk(0); err != nil {
			return err
		}
	}

	return nil
}

// Pending returns the number of chunks waiting for a complete byte.
func (cw *ChunkWriter) Pending() int {
	return len(cw.chunks)
}

// Written returns the number of bytes written to the stream.
func (cw *ChunkWriter) Written() int64 {
	return cw.written
}

// Flush drops an incomplete trailing byte and returns how many chunks it held.
// If the stream implements Flush() error, it is flushed too.
func (cw *ChunkWriter) Flush() (int, error) {
	discarded := len(cw.chunks)
	cw.chunks = cw.chunks[:0]

	if f, ok := cw.stream.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return discarded, err
		}
	}

	return discarded, nil
}
