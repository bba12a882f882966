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

const (
	_fullAlphabet    = 0
	_partialAlphabet = 1
	_alphabet256     = 0
	_alphabet0       = 1
)

// EncodeAlphabet writes the sorted, increasing alphabet (symbol values in
// [0..255]) to the bitstream and returns the number of symbols written.
func EncodeAlphabet(obs rans.OutputBitStream, alphabet []int) (int, error) {
	count := len(alphabet)

	if count == 0 {
		obs.WriteBit(_fullAlphabet)
		obs.WriteBit(_alphabet0)
		return 0, nil
	}

	if count == 256 {
		obs.WriteBit(_fullAlphabet)
		obs.WriteBit(_alphabet256)
		return count, nil
	}

	obs.WriteBit(_partialAlphabet)
	var masks [32]byte

	for i := 0; i < count; i++ {
		masks[alphabet[i]>>3] |= 1 << uint(alphabet[i]&7)
	}

	lastMask := alphabet[count-1] >> 3
	obs.WriteBits(uint64(lastMask), 5)
	obs.WriteArray(masks[:], 8*uint(lastMask+1))
	return count, nil
}

// DecodeAlphabet reads an alphabet written by EncodeAlphabet, filling
// 'alphabet' (which must have room for 256 entries) and returning the
// number of symbols read.
func DecodeAlphabet(ibs rans.InputBitStream, alphabet []int) (int, error) {
	if ibs.ReadBit() == _fullAlphabet {
		if ibs.ReadBit() == _alphabet0 {
			return 0, nil
		}

		for i := 0; i < 256; i++ {
			alphabet[i] = i
		}

		return 256, nil
	}

	lastMask := int(ibs.ReadBits(5))

	if lastMask >= 32 {
		return 0, errors.Wrap(rans.ErrInvalidStats, "alphabet mask index out of range")
	}

	var masks [32]byte
	ibs.ReadArray(masks[:], 8*uint(lastMask+1))
	count := 0

	for i := 0; i <= lastMask; i++ {
		base := i * 8

		for j := 0; j < 8; j++ {
			if (masks[i]>>uint(j))&1 == 1 {
				alphabet[count] = base + j
				count++
			}
		}
	}

	return count, nil
}
