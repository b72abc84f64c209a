package main

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"code.cloudfoundry.org/bytefmt"
	"github.com/olekukonko/tablewriter"
	flag "github.com/spf13/pflag"

	"github.com/spacemeshos/steg/bitstream"
	"github.com/spacemeshos/steg/embedding"
	"github.com/spacemeshos/steg/extraction"
	"github.com/spacemeshos/steg/shared"
)

type testCase struct {
	bits       uint8
	carrierLen uint64
	secretLen  uint64
}

func main() {
	carrierLen := flag.Uint64("carrier", 1<<23, "carrier size, in bytes")
	fill := flag.Float64("fill", 1, "fraction of the carrier capacity used by the secret")
	single := flag.Uint8("bits", 0, "benchmark a single width instead of every width")
	flag.Parse()

	log.Printf("bench config: carrier: %v, fill: %v", bytefmt.ByteSize(*carrierLen), *fill)

	cases, err := genTestCases(*carrierLen, *fill, *single)
	if err != nil {
		log.Fatal(err)
	}

	data := make([][]string, 0, len(cases))
	for i, tc := range cases {
		log.Printf("test %v/%v starting...", i+1, len(cases))
		tStart := time.Now()

		carrier := make([]byte, tc.carrierLen)
		secret := make([]byte, tc.secretLen)
		if _, err := io.ReadFull(rand.Reader, carrier); err != nil {
			log.Fatal(err)
		}
		if _, err := io.ReadFull(rand.Reader, secret); err != nil {
			log.Fatal(err)
		}
		// A leading zero byte is indistinguishable from padding.
		secret[0] |= 1

		t := time.Now()
		if err := embedding.Embed(carrier, secret, embedding.WithBits(tc.bits)); err != nil {
			log.Fatal(err)
		}
		eEmbed := time.Since(t)

		out := bytes.NewBuffer(make([]byte, 0, tc.secretLen))
		t = time.Now()
		if _, err := extraction.Extract(carrier, out, extraction.WithBits(tc.bits)); err != nil {
			log.Fatal(err)
		}
		eExtract := time.Since(t)

		if !bytes.Equal(secret, out.Bytes()) {
			log.Fatalf("bits=%d: extracted secret does not match", tc.bits)
		}

		log.Printf("test %v/%v completed, %v", i+1, len(cases), time.Since(tStart))

		data = append(data, []string{
			strconv.Itoa(int(tc.bits)),
			bytefmt.ByteSize(tc.carrierLen),
			bytefmt.ByteSize(tc.secretLen),
			eEmbed.Round(time.Millisecond).String(),
			eExtract.Round(time.Millisecond).String(),
			throughput(tc.secretLen, eEmbed),
			throughput(tc.secretLen, eExtract),
		})
	}

	header := []string{"bits", "carrier", "secret", "embed", "extract", "embed/s", "extract/s"}
	report(header, data)
}

func throughput(n uint64, d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return bytefmt.ByteSize(uint64(float64(n) / d.Seconds()))
}

func report(header []string, data [][]string) {
	fmt.Printf("\n\nBENCHMARKS:\n")

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetBorder(true)
	table.AppendBulk(data)
	table.Render()
}

func genTestCases(carrierLen uint64, fill float64, single uint8) ([]testCase, error) {
	if fill <= 0 || fill > 1 {
		return nil, fmt.Errorf("invalid fill; expected: (0, 1], given: %v", fill)
	}

	widths := make([]uint8, 0, shared.MaxBits)
	if single != 0 {
		widths = append(widths, single)
	} else {
		for bits := uint8(shared.MinBits); bits <= shared.MaxBits; bits++ {
			widths = append(widths, bits)
		}
	}

	cases := make([]testCase, 0, len(widths))
	for _, bits := range widths {
		m, err := bitstream.NewMask(bits)
		if err != nil {
			return nil, err
		}
		secretLen := uint64(float64(m.Capacity(carrierLen)) * fill)
		if secretLen == 0 {
			return nil, fmt.Errorf("bits=%d: carrier of %d bytes cannot hold a secret", bits, carrierLen)
		}
		cases = append(cases, testCase{bits: bits, carrierLen: carrierLen, secretLen: secretLen})
	}
	return cases, nil
}
