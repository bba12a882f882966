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

package entropy

import (
	"github.com/pkg/errors"

	"github.com/binrange/rans"
)

// alphabetOf returns the sorted, increasing list of symbols with non-zero
// frequency in s.
func alphabetOf(s *Stats) []int {
	alphabet := make([]int, 0, 256)

	for i := 0; i < 256; i++ {
		if s.Freqs[i] != 0 {
			alphabet = append(alphabet, i)
		}
	}

	return alphabet
}

// EncodeFrequencies writes the alphabet and, for an alphabet of more than one
// symbol, the frequency of every symbol but the first (which is inferred on
// decode from the target total) to the bitstream. Frequencies are written in
// chunks, each chunk prefixed with the bit width needed for its largest
// value minus one, so that a chunk whose frequencies are all 1 costs a single
// zero width field.
func EncodeFrequencies(obs rans.OutputBitStream, s *Stats, logRange uint) (int, error) {
	alphabet := alphabetOf(s)

	if _, err := EncodeAlphabet(obs, alphabet); err != nil {
		return 0, err
	}

	alphabetSize := len(alphabet)

	if alphabetSize <= 1 {
		return alphabetSize, nil
	}

	chunkSize := 8

	if alphabetSize < 64 {
		chunkSize = 6
	}

	widthBits := uint(3)

	for 1<<widthBits <= logRange {
		widthBits++
	}

	for i := 1; i < alphabetSize; i += chunkSize {
		end := i + chunkSize

		if end > alphabetSize {
			end = alphabetSize
		}

		max := s.Freqs[alphabet[i]] - 1

		for j := i + 1; j < end; j++ {
			if s.Freqs[alphabet[j]]-1 > max {
				max = s.Freqs[alphabet[j]] - 1
			}
		}

		width := uint(0)

		for uint32(1)<<width <= max {
			width++
		}

		obs.WriteBits(uint64(width), widthBits)

		if width == 0 {
			continue
		}

		for j := i; j < end; j++ {
			obs.WriteBits(uint64(s.Freqs[alphabet[j]]-1), width)
		}
	}

	return alphabetSize, nil
}

// DecodeFrequencies is the inverse of EncodeFrequencies. It returns a Stats
// with Freqs and CumFreqs populated (already at the logRange scale, no
// further Normalize call needed) and the alphabet size.
func DecodeFrequencies(ibs rans.InputBitStream, logRange uint) (*Stats, int, error) {
	var alphabet [256]int
	alphabetSize, err := DecodeAlphabet(ibs, alphabet[:])

	if err != nil {
		return nil, 0, err
	}

	s := &Stats{}

	if alphabetSize == 0 {
		return s, 0, nil
	}

	scale := uint32(1) << logRange

	if alphabetSize == 1 {
		s.Freqs[alphabet[0]] = scale
		s.calcCumFreqs()
		return s, alphabetSize, nil
	}

	chunkSize := 8

	if alphabetSize < 64 {
		chunkSize = 6
	}

	widthBits := uint(3)

	for 1<<widthBits <= logRange {
		widthBits++
	}

	sum := uint32(0)

	for i := 1; i < alphabetSize; i += chunkSize {
		end := i + chunkSize

		if end > alphabetSize {
			end = alphabetSize
		}

		width := uint(ibs.ReadBits(widthBits))

		if 1<<width > scale {
			return nil, 0, errors.Wrapf(rans.ErrInvalidStats, "frequency width %d exceeds log range %d", width, logRange)
		}

		for j := i; j < end; j++ {
			freq := uint32(1)

			if width > 0 {
				freq = uint32(1 + ibs.ReadBits(width))

				if freq == 0 || freq >= scale {
					return nil, 0, errors.Wrapf(rans.ErrInvalidStats, "frequency %d for symbol %d out of range", freq, alphabet[j])
				}
			}

			s.Freqs[alphabet[j]] = freq
			sum += freq
		}
	}

	if sum >= scale {
		return nil, 0, errors.Wrapf(rans.ErrInvalidStats, "frequency sum %d leaves no room for the first symbol", sum)
	}

	s.Freqs[alphabet[0]] = scale - sum
	s.calcCumFreqs()
	return s, alphabetSize, nil
}
