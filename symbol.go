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

package rans

// EncSymbol is the encoder-side descriptor for one alphabet symbol. It
// precomputes the reciprocal of the symbol frequency so that EncPutSymbol can
// normalize without a division.
type EncSymbol struct {
	xMax     uint32 // (exclusive) upper bound of the pre-normalization interval
	bias     uint32 // bias
	cmplFreq uint32 // complement of frequency: (1 << p) - freq
	invShift uint8  // reciprocal shift
	invFreq  uint64 // fixed-point reciprocal frequency
}

// DecSymbol is the decoder-side descriptor for one alphabet symbol.
type DecSymbol struct {
	cumFreq uint32
	freq    uint32
}

// EncSymbolInit builds the encoder descriptor for a symbol with the given
// cumulative frequency and frequency, under a probability scale of 1<<p.
// freq must be in [1, 1<<p] and cumFreq+freq must be at most 1<<p.
func EncSymbolInit(cumFreq, freq uint32, p uint) EncSymbol {
	var sym EncSymbol
	sym.xMax = ((_L >> p) << 8) * freq
	sym.cmplFreq = (1 << p) - freq

	if freq < 2 {
		// Freq=0 is a valid pseudo-descriptor for "symbol never occurs": it
		// is only ever reached from encoder code that already rejected it,
		// this branch exists to mirror the reference division-free guard.
		sym.invFreq = 0xFFFFFFFF
		sym.invShift = 32
		sym.bias = cumFreq + (1 << p) - 1
	} else {
		shift := uint(0)

		for freq > uint32(1)<<shift {
			shift++
		}

		// Alverson, "Integer division using reciprocals"
		sym.invFreq = (((uint64(1) << (shift + 31)) + uint64(freq-1)) / uint64(freq)) & 0xFFFFFFFF
		sym.invShift = uint8(32 + shift - 1)
		sym.bias = cumFreq
	}

	return sym
}

// DecSymbolInit builds the decoder descriptor for a symbol with the given
// cumulative frequency and frequency.
func DecSymbolInit(cumFreq, freq uint32) DecSymbol {
	return DecSymbol{cumFreq: cumFreq, freq: freq}
}
