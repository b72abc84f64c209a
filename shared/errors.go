package shared

import (
	"errors"
	"fmt"

	"code.cloudfoundry.org/bytefmt"
)

var (
	ErrInvalidWidth      = errors.New("invalid number of bits")
	ErrSecretTooLarge    = errors.New("secret is too large to fit in carrier")
	ErrCarrierAccess     = errors.New("carrier access failure")
	ErrSecretAccess      = errors.New("secret access failure")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrLossyFormat       = errors.New("lossy image format would destroy the secret")
	ErrNotEnoughSpace    = errors.New("not enough disk space")
)

// WidthError is returned when a number of bits outside of [MinBits, MaxBits] is requested.
type WidthError struct {
	Bits int
}

func (err *WidthError) Error() string {
	return fmt.Sprintf("invalid number of bits; expected: [%d, %d], given: %d", MinBits, MaxBits, err.Bits)
}

func (err *WidthError) Is(target error) bool {
	return target == ErrInvalidWidth
}

// CapacityError is returned when a secret needs more carrier bytes than available.
type CapacityError struct {
	Required  uint64
	Available uint64
}

func (err *CapacityError) Error() string {
	return fmt.Sprintf("secret is too large to fit in carrier; required: %v (%d bytes), available: %v (%d bytes)",
		bytefmt.ByteSize(err.Required), err.Required, bytefmt.ByteSize(err.Available), err.Available)
}

func (err *CapacityError) Is(target error) bool {
	return target == ErrSecretTooLarge
}
