// Package bitstream splits bytes into fixed-width bit chunks and joins them back.
// Chunks are produced most-significant first. When the width does not divide 8
// evenly, the last chunk of every byte only carries the remaining low bits of the
// byte, so a single byte never spans two chunk sequences.
package bitstream

import (
	"math"
	"math/bits"

	"github.com/spacemeshos/steg/shared"
)

// Mask describes how many low-order bits of a carrier byte hold secret data.
type Mask struct {
	bits   uint8
	value  byte
	chunks uint8
	padded bool
}

// NewMask returns the Mask for the given number of bits, in [1, 8].
func NewMask(numBits uint8) (Mask, error) {
	if numBits < shared.MinBits || numBits > shared.MaxBits {
		return Mask{}, &shared.WidthError{Bits: int(numBits)}
	}

	chunks := (shared.BitsPerByte + numBits - 1) / numBits
	return Mask{
		bits:   numBits,
		value:  byte(uint16(1)<<numBits - 1),
		chunks: chunks,
		padded: chunks*numBits > shared.BitsPerByte,
	}, nil
}

// Bits returns the chunk width.
func (m Mask) Bits() uint8 { return m.bits }

// Value returns the bitmask selecting the low Bits() bits of a byte.
func (m Mask) Value() byte { return m.value }

// Chunks returns the number of chunks needed to represent one byte.
func (m Mask) Chunks() int { return int(m.chunks) }

// Padded reports whether the last chunk of a byte is narrower than Bits().
func (m Mask) Padded() bool { return m.padded }

// Wasted returns the number of carrier bits left unused per secret byte.
func (m Mask) Wasted() int {
	return int(m.chunks)*int(m.bits) - shared.BitsPerByte
}

// RequiredCapacity returns the number of carrier bytes needed to hold secretLen bytes.
func (m Mask) RequiredCapacity(secretLen uint64) (uint64, error) {
	hi, lo := bits.Mul64(secretLen, uint64(m.chunks))
	if hi != 0 {
		return 0, &shared.CapacityError{Required: math.MaxUint64}
	}
	return lo, nil
}

// Capacity returns the largest secret, in bytes, that fits into carrierLen bytes.
func (m Mask) Capacity(carrierLen uint64) uint64 {
	return carrierLen / uint64(m.chunks)
}

// Split returns a Splitter positioned at the first chunk of b.
func (m Mask) Split(b byte) *Splitter {
	s := &Splitter{mask: m}
	s.Reset(b)
	return s
}

// Join merges chunks, most-significant first, back into a byte.
// Fewer than Chunks() chunks leave the missing low bits zeroed.
func (m Mask) Join(chunks []byte) byte {
	var b byte
	shift := shared.BitsPerByte

	for _, c := range chunks {
		shift -= int(m.bits)
		if shift < 0 {
			shift = 0
		}
		b |= c << shift
	}

	return b
}

// Splitter enumerates the chunks of a single byte.
type Splitter struct {
	mask Mask
	b    byte
	step uint8
}

// Reset restarts the enumeration over b.
func (s *Splitter) Reset(b byte) {
	s.b = b
	s.step = 0
}

// Next returns the next chunk, or false once all chunks of the byte were returned.
func (s *Splitter) Next() (byte, bool) {
	if s.step >= s.mask.chunks {
		return 0, false
	}

	s.step++

	if s.mask.padded && s.step == s.mask.chunks {
		shift := s.mask.bits*s.step - shared.BitsPerByte
		return s.b & (s.mask.value >> shift), true
	}

	shift := shared.BitsPerByte - s.mask.bits*s.step
	return (s.b >> shift) & s.mask.value, true
}

// Collect returns the remaining chunks of the current byte.
func (s *Splitter) Collect() []byte {
	out := make([]byte, 0, s.mask.chunks)
	for c, ok := s.Next(); ok; c, ok = s.Next() {
		out = append(out, c)
	}
	return out
}
