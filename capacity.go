package steg

import (
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spacemeshos/steg/bitstream"
	"github.com/spacemeshos/steg/carrier"
	"github.com/spacemeshos/steg/config"
)

// CapacityEntry is the capacity of a carrier at a single width.
type CapacityEntry struct {
	Bits   uint8
	Chunks int
	// Wasted is the number of carrier bits left unused per secret byte.
	Wasted int
	// Capacity is the largest secret, in bytes, the carrier can hold.
	Capacity uint64
}

type CapacityReport struct {
	Path       string
	Format     string
	Width      int
	Height     int
	CarrierLen uint64
	Entries    []CapacityEntry
}

// Capacity reports, for every image, how large a secret it can hold at every width.
// Reports are returned in the order of paths.
func Capacity(paths []string, opts ...OptionFunc) ([]CapacityReport, error) {
	options := applyOpts(opts...)

	limit := options.parallelism
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	reports := make([]CapacityReport, len(paths))

	var eg errgroup.Group
	eg.SetLimit(limit)
	for i, path := range paths {
		i, path := i, path
		eg.Go(func() error {
			info, err := carrier.Probe(path)
			if err != nil {
				return err
			}

			reports[i] = capacityReport(path, info)
			options.logger.Debug("probed image",
				zap.String("path", path),
				zap.String("format", info.Format),
				zap.Int("carrier", info.Len()),
			)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func capacityReport(path string, info carrier.Info) CapacityReport {
	report := CapacityReport{
		Path:       path,
		Format:     info.Format,
		Width:      info.Width,
		Height:     info.Height,
		CarrierLen: uint64(info.Len()),
		Entries:    make([]CapacityEntry, 0, config.MaxBits),
	}

	for bits := uint8(config.MinBits); bits <= config.MaxBits; bits++ {
		m, _ := bitstream.NewMask(bits)
		report.Entries = append(report.Entries, CapacityEntry{
			Bits:     bits,
			Chunks:   m.Chunks(),
			Wasted:   m.Wasted(),
			Capacity: m.Capacity(report.CarrierLen),
		})
	}

	return report
}
