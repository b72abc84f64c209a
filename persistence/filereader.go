package persistence

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spacemeshos/steg/shared"
)

type FileReader struct {
	file *os.File
	buf  *bufio.Reader
	size uint64
}

// A compile time check to ensure that FileReader fully implements the Reader interface.
var _ Reader = (*FileReader)(nil)

func NewFileReader(name string) (*FileReader, error) {
	file, err := os.OpenFile(name, os.O_RDONLY, shared.OwnerReadWrite)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open secret file: %w", shared.ErrSecretAccess, err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("%w: %w", shared.ErrSecretAccess, err)
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, fmt.Errorf("%w: %v is a directory", shared.ErrSecretAccess, name)
	}

	return &FileReader{
		file: file,
		buf:  bufio.NewReader(file),
		size: uint64(info.Size()),
	}, nil
}

func (r *FileReader) Read(p []byte) (int, error) {
	return r.buf.Read(p)
}

func (r *FileReader) ReadByte() (byte, error) {
	return r.buf.ReadByte()
}

// Size returns the size of the file when it was opened.
func (r *FileReader) Size() uint64 {
	return r.size
}

func (r *FileReader) Close() error {
	r.buf = nil
	return r.file.Close()
}
