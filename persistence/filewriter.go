package persistence

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spacemeshos/steg/shared"
)

type FileWriter struct {
	file *os.File
	buf  *bufio.Writer
}

// A compile time check to ensure that FileWriter fully implements the Writer interface.
var _ Writer = (*FileWriter)(nil)

// NewFileWriter creates or truncates filename.
func NewFileWriter(filename string) (*FileWriter, error) {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, shared.OwnerReadWrite)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create secret file: %w", shared.ErrSecretAccess, err)
	}
	return &FileWriter{
		file: f,
		buf:  bufio.NewWriter(f),
	}, nil
}

func (w *FileWriter) Write(b []byte) (int, error) {
	return w.buf.Write(b)
}

func (w *FileWriter) Flush() error {
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush disk writer: %w", err)
	}

	return nil
}

func (w *FileWriter) Close() error {
	if err := w.buf.Flush(); err != nil {
		_ = w.file.Close()
		return err
	}
	w.buf = nil

	return w.file.Close()
}
