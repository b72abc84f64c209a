package bitstream

import (
	"bufio"
	"io"
)

// ChunkReader reads a byte stream as a flat sequence of chunks.
type ChunkReader struct {
	stream   io.ByteReader
	splitter Splitter
	read     int64
}

// NewReader returns a new instance of ChunkReader. Readers other than io.ByteReader
// are buffered and may be read past the last chunk requested.
func NewReader(r io.Reader, m Mask) *ChunkReader {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
	}

	cr := new(ChunkReader)
	cr.stream = br
	cr.splitter = Splitter{mask: m, step: m.chunks}
	return cr
}

// ReadChunk returns the next chunk of the stream. io.EOF is returned only
// when the underlying stream ends on a byte boundary.
func (cr *ChunkReader) ReadChunk() (byte, error) {
	if c, ok := cr.splitter.Next(); ok {
		return c, nil
	}

	b, err := cr.stream.ReadByte()
	if err != nil {
		return 0, err
	}
	cr.read++

	cr.splitter.Reset(b)
	c, _ := cr.splitter.Next()
	return c, nil
}

// BytesRead returns the number of bytes consumed from the underlying stream.
func (cr *ChunkReader) BytesRead() int64 {
	return cr.read
}
