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

import "github.com/binrange/rans"

// WriteVarInt writes value to the bitstream as a 7-bit-per-byte VarInt.
// Returns the number of bytes written.
func WriteVarInt(obs rans.OutputBitStream, value uint32) int {
	res := 0

	for value >= 128 {
		obs.WriteBits(uint64(0x80|(value&0x7F)), 8)
		value >>= 7
		res++
	}

	obs.WriteBits(uint64(value), 8)
	return res + 1
}

// ReadVarInt reads a VarInt written by WriteVarInt.
func ReadVarInt(ibs rans.InputBitStream) uint32 {
	value := uint32(ibs.ReadBits(8))

	if value < 128 {
		return value
	}

	res := value & 0x7F
	shift := uint(7)

	for value >= 128 {
		value = uint32(ibs.ReadBits(8))
		res |= (value & 0x7F) << shift
		shift += 7
	}

	return res
}
