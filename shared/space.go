package shared

import (
	"fmt"
	"path/filepath"

	"code.cloudfoundry.org/bytefmt"
	"github.com/ricochet2200/go-disk-usage/du"
)

// AvailableSpace returns the number of bytes available to the user on the volume holding path.
func AvailableSpace(path string) uint64 {
	usage := du.NewDiskUsage(path)
	return usage.Available()
}

// ValidateSpace checks that the directory of filename can hold size more bytes.
func ValidateSpace(filename string, size uint64) error {
	dir := filepath.Dir(filename)
	available := AvailableSpace(dir)
	if size > available {
		return fmt.Errorf("%w; required: %v, available: %v, dir: %v",
			ErrNotEnoughSpace, bytefmt.ByteSize(size), bytefmt.ByteSize(available), dir)
	}

	return nil
}
