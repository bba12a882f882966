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

import "github.com/pkg/errors"

const (
	// _L is the lower bound of the normalized state interval. The state x
	// always satisfies _L <= x < _L<<8 right after a PutSymbol/Advance call.
	_L = uint32(1) << 23
)

var (
	// ErrInvalidStats is returned when a symbol table does not describe a
	// proper probability distribution under the configured precision.
	ErrInvalidStats = errors.New("rans: invalid symbol statistics")

	// ErrBufferOverflow is returned when an encode step runs past the start
	// of the destination buffer.
	ErrBufferOverflow = errors.New("rans: output buffer overflow")

	// ErrBufferUnderflow is returned when a decode step runs past the end
	// of the source buffer.
	ErrBufferUnderflow = errors.New("rans: input buffer underflow")

	// ErrDecodeMismatch is returned when decoded data fails an integrity
	// check: a bad stream header, an oversized block length or a chunk
	// checksum that does not match the decoded bytes.
	ErrDecodeMismatch = errors.New("rans: decoded data mismatch")
)

// EncInit returns the initial encoder state.
func EncInit() uint32 {
	return _L
}

// EncPutSymbol renormalizes 'state' against 'sym' and encodes one symbol.
// The caller walks the input in reverse order and 'buf' is filled from its
// end backwards: 'cursor' points one past the last byte written so far and
// is decremented as bytes are emitted. Returns the updated cursor, or -1 if
// 'buf' is too small to hold the renormalization bytes.
func EncPutSymbol(state *uint32, buf []byte, cursor int, sym *EncSymbol) int {
	x := *state

	if x >= sym.xMax {
		for {
			if cursor <= 0 {
				return -1
			}

			cursor--
			buf[cursor] = byte(x)
			x >>= 8

			if x < sym.xMax {
				break
			}
		}
	}

	q := uint32((uint64(x) * sym.invFreq) >> sym.invShift)
	*state = x + sym.bias + q*sym.cmplFreq
	return cursor
}

// EncFlush writes the final 4 bytes of 'state' to 'buf', growing downward
// from 'cursor'. Returns the updated cursor, or -1 if 'buf' is too small.
func EncFlush(state uint32, buf []byte, cursor int) int {
	if cursor < 4 {
		return -1
	}

	cursor -= 4
	buf[cursor+0] = byte(state >> 0)
	buf[cursor+1] = byte(state >> 8)
	buf[cursor+2] = byte(state >> 16)
	buf[cursor+3] = byte(state >> 24)
	return cursor
}

// DecInit reads the initial 4-byte decoder state from 'buf' at 'cursor' and
// returns the state together with the advanced cursor.
func DecInit(buf []byte, cursor int) (uint32, int) {
	x := uint32(buf[cursor+0])
	x |= uint32(buf[cursor+1]) << 8
	x |= uint32(buf[cursor+2]) << 16
	x |= uint32(buf[cursor+3]) << 24
	return x, cursor + 4
}

// DecGet returns the current slot of 'state' within the probability range
// 1<<p. It does not mutate 'state'; the caller maps the slot to a symbol via
// a cumulative-frequency lookup before calling DecAdvanceSymbol(Step).
func DecGet(state uint32, p uint) uint32 {
	return state & ((1 << p) - 1)
}

// DecAdvanceSymbolStep applies the inverse rANS transition for the symbol
// described by 'sym', without renormalizing. Used together with DecRenorm
// when interleaving independent states so the (slow) division-free step and
// the (fast) byte refills can be scheduled independently.
func DecAdvanceSymbolStep(state uint32, sym *DecSymbol, p uint) uint32 {
	mask := uint32(1)<<p - 1
	x := state
	return sym.freq*(x>>p) + (x & mask) - sym.cumFreq
}

// DecRenorm refills 'state' from 'buf' at 'cursor' until it is back in the
// normalized interval [_L, _L<<8). Returns the updated state and cursor, or
// -1 for the cursor if 'buf' runs out of bytes before the state is refilled.
func DecRenorm(state uint32, buf []byte, cursor int) (uint32, int) {
	x := state

	for x < _L {
		if uint(cursor) >= uint(len(buf)) {
			return x, -1
		}

		x = (x << 8) | uint32(buf[cursor])
		cursor++
	}

	return x, cursor
}

// DecAdvanceSymbol is the fused convenience form of DecAdvanceSymbolStep
// followed by DecRenorm, for the non-interleaved (single-state) decoder.
func DecAdvanceSymbol(state uint32, buf []byte, cursor int, sym *DecSymbol, p uint) (uint32, int) {
	state = DecAdvanceSymbolStep(state, sym, p)
	return DecRenorm(state, buf, cursor)
}
