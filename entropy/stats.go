/*
Copyright 2011-2026 Frederic Langlet
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
you may obtain a copy of the License at

                http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package entropy chunks a byte stream, derives a static per-chunk symbol
// table and drives the rans core codec over each chunk's payload, framing
// the alphabet, frequencies and rANS state through a bit-level transport.
package entropy

import (
	"github.com/pkg/errors"

	"github.com/binrange/rans"
)

const (
	// MinLogRange and MaxLogRange bound the supported probability precision.
	MinLogRange = uint(8)
	MaxLogRange = uint(16)
)

// Stats holds the raw and, after Normalize, the rescaled frequency table for
// one chunk, together with its cumulative form.
type Stats struct {
	Freqs    [256]uint32
	CumFreqs [257]uint32
}

// ComputeHistogram counts byte occurrences in block into a fresh Stats.
func ComputeHistogram(block []byte) *Stats {
	s := &Stats{}

	for _, b := range block {
		s.Freqs[b]++
	}

	return s
}

func (s *Stats) calcCumFreqs() {
	s.CumFreqs[0] = 0

	for i := 0; i < 256; i++ {
		s.CumFreqs[i+1] = s.CumFreqs[i] + s.Freqs[i]
	}
}

// Normalize rescales Freqs so that they sum exactly to 1<<logRange, and
// updates CumFreqs to match. It proceeds in two passes: first it rescales
// every cumulative boundary proportionally to the target total, which can
// push a low-frequency symbol down to zero; the second pass repairs any such
// symbol by stealing one unit of range from the symbol with the smallest
// surviving frequency greater than one, shifting the cumulative boundaries
// between the two symbols by one. Returns the alphabet size (count of
// symbols with non-zero frequency).
func (s *Stats) Normalize(logRange uint) (int, error) {
	if logRange < MinLogRange || logRange > MaxLogRange {
		return 0, errors.Wrapf(rans.ErrInvalidStats, "log range %d out of [%d..%d]", logRange, MinLogRange, MaxLogRange)
	}

	s.calcCumFreqs()
	curTotal := s.CumFreqs[256]

	if curTotal == 0 {
		return 0, errors.Wrap(rans.ErrInvalidStats, "empty histogram")
	}

	target := uint32(1) << logRange

	// Shortcut: already normalized.
	if curTotal == target {
		alphabetSize := 0

		for i := 0; i < 256; i++ {
			if s.Freqs[i] != 0 {
				alphabetSize++
			}
		}

		return alphabetSize, nil
	}

	for i := 1; i <= 256; i++ {
		s.CumFreqs[i] = uint32((uint64(target) * uint64(s.CumFreqs[i])) / uint64(curTotal))
	}

	for i := 0; i < 256; i++ {
		if s.Freqs[i] == 0 || s.CumFreqs[i+1] != s.CumFreqs[i] {
			continue
		}

		// Symbol i was rounded down to zero frequency: find the surviving
		// symbol with the smallest frequency greater than one and steal a
		// single unit of range from it.
		bestFreq := ^uint32(0)
		bestDonor := -1

		for j := 0; j < 256; j++ {
			f := s.CumFreqs[j+1] - s.CumFreqs[j]

			if f > 1 && f < bestFreq {
				bestFreq = f
				bestDonor = j
			}
		}

		if bestDonor == -1 {
			return 0, errors.Wrap(rans.ErrInvalidStats, "no donor symbol available to repair a zeroed frequency")
		}

		if bestDonor < i {
			for j := bestDonor + 1; j <= i; j++ {
				s.CumFreqs[j]--
			}
		} else {
			for j := i + 1; j <= bestDonor; j++ {
				s.CumFreqs[j]++
			}
		}
	}

	alphabetSize := 0

	for i := 0; i < 256; i++ {
		s.Freqs[i] = s.CumFreqs[i+1] - s.CumFreqs[i]

		if s.Freqs[i] != 0 {
			alphabetSize++
		}
	}

	return alphabetSize, nil
}

// Cum2Sym builds the flat cumulative-frequency to symbol lookup table used
// by the rans decoder, sized 1<<logRange.
func (s *Stats) Cum2Sym(logRange uint) []byte {
	table := make([]byte, uint32(1)<<logRange)

	for sym := 0; sym < 256; sym++ {
		for i := s.CumFreqs[sym]; i < s.CumFreqs[sym+1]; i++ {
			table[i] = byte(sym)
		}
	}

	return table
}

// EncSymbols builds the encoder-side descriptor for every symbol with a
// non-zero frequency.
func (s *Stats) EncSymbols(logRange uint) []rans.EncSymbol {
	syms := make([]rans.EncSymbol, 256)

	for i := 0; i < 256; i++ {
		if s.Freqs[i] == 0 {
			continue
		}

		syms[i] = rans.EncSymbolInit(s.CumFreqs[i], s.Freqs[i], logRange)
	}

	return syms
}

// DecSymbols builds the decoder-side descriptor for every symbol with a
// non-zero frequency.
func (s *Stats) DecSymbols() []rans.DecSymbol {
	syms := make([]rans.DecSymbol, 256)

	for i := 0; i < 256; i++ {
		if s.Freqs[i] == 0 {
			continue
		}

		syms[i] = rans.DecSymbolInit(s.CumFreqs[i], s.Freqs[i])
	}

	return syms
}
