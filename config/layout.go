package config

import (
	"github.com/spacemeshos/steg/bitstream"
	"github.com/spacemeshos/steg/shared"
)

// CarrierLayout describes how a secret is laid out over a carrier: a run of
// zero chunks followed by the secret's chunks, ending at the last carrier byte.
type CarrierLayout struct {
	CarrierLen   uint64
	SecretLen    uint64
	SecretChunks uint64
	ZeroPadCount uint64
}

func DeriveCarrierLayout(m bitstream.Mask, carrierLen, secretLen uint64) (CarrierLayout, error) {
	secretChunks, err := m.RequiredCapacity(secretLen)
	if err != nil {
		return CarrierLayout{}, err
	}

	if carrierLen < secretChunks {
		return CarrierLayout{}, &shared.CapacityError{Required: secretChunks, Available: carrierLen}
	}

	return CarrierLayout{
		CarrierLen:   carrierLen,
		SecretLen:    secretLen,
		SecretChunks: secretChunks,
		ZeroPadCount: carrierLen - secretChunks,
	}, nil
}
