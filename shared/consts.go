package shared

import "os"

const (
	// MinBits and MaxBits bound the number of low-order bits of every carrier byte
	// used to carry the secret.
	MinBits = 1
	MaxBits = 8

	// BitsPerByte is the width of a single secret byte.
	BitsPerByte = 8
)

const (
	OwnerReadWrite     = os.FileMode(0o600)
	OwnerReadWriteExec = os.FileMode(0o700)
)
