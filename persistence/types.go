package persistence

import "io"

// Reader is a sequential secret source of known length.
type Reader interface {
	io.Reader
	io.ByteReader
	Size() uint64
	Close() error
}

// Writer is a sequential secret sink.
type Writer interface {
	io.Writer
	Flush() error
	Close() error
}
