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

// MaxEncodedLen returns a buffer size guaranteed to hold the interleaved
// encoding of n input bytes under any symbol table. Entropy coding never
// expands data by more than a small constant factor, so doubling the input
// size (with a floor to absorb flush overhead on tiny chunks) is safe.
func MaxEncodedLen(n int) int {
	size := 2 * n

	if size < 64 {
		size = 64
	}

	return size
}

// Encode1 entropy encodes block with a single rANS state (no interleaving).
// Symbols are consumed in reverse order, as required by the rANS coding
// direction, and the returned slice holds only the bytes actually written.
func Encode1(block []byte, symbols []EncSymbol) ([]byte, error) {
	buf := make([]byte, MaxEncodedLen(len(block)))
	cursor := len(buf)
	state := EncInit()

	for i := len(block) - 1; i >= 0; i-- {
		cursor = EncPutSymbol(&state, buf, cursor, &symbols[block[i]])

		if cursor < 0 {
			return nil, errors.WithStack(ErrBufferOverflow)
		}
	}

	cursor = EncFlush(state, buf, cursor)

	if cursor < 0 {
		return nil, errors.WithStack(ErrBufferOverflow)
	}

	return buf[cursor:], nil
}

// Decode1 is the inverse of Encode1. n is the number of symbols to produce,
// cum2sym maps a cumulative-frequency slot to its symbol and symbols holds
// the per-symbol decoder descriptors.
func Decode1(enc []byte, symbols []DecSymbol, cum2sym []byte, p uint, n int) ([]byte, error) {
	if len(enc) < 4 {
		return nil, errors.WithStack(ErrBufferUnderflow)
	}

	out := make([]byte, n)
	state, cursor := DecInit(enc, 0)

	for i := 0; i < n; i++ {
		s := cum2sym[DecGet(state, p)]
		out[i] = s
		state, cursor = DecAdvanceSymbol(state, enc, cursor, &symbols[s], p)

		if cursor < 0 {
			return nil, errors.WithStack(ErrBufferUnderflow)
		}
	}

	return out, nil
}

// Encode2 entropy encodes block with two independent, interleaved rANS
// states. Odd-length blocks fold their last byte into state 0 ahead of the
// main 2-wide loop.
func Encode2(block []byte, symbols []EncSymbol) ([]byte, error) {
	n := len(block)
	buf := make([]byte, MaxEncodedLen(n))
	cursor := len(buf)
	st0 := EncInit()
	st1 := EncInit()

	if n&1 == 1 {
		cursor = EncPutSymbol(&st0, buf, cursor, &symbols[block[n-1]])
	}

	for i := n &^ 1; i > 0; i -= 2 {
		cursor = EncPutSymbol(&st1, buf, cursor, &symbols[block[i-1]])
		cursor = EncPutSymbol(&st0, buf, cursor, &symbols[block[i-2]])

		if cursor < 0 {
			return nil, errors.WithStack(ErrBufferOverflow)
		}
	}

	cursor = EncFlush(st1, buf, cursor)
	cursor = EncFlush(st0, buf, cursor)

	if cursor < 0 {
		return nil, errors.WithStack(ErrBufferOverflow)
	}

	return buf[cursor:], nil
}

// Decode2 is the inverse of Encode2.
func Decode2(enc []byte, symbols []DecSymbol, cum2sym []byte, p uint, n int) ([]byte, error) {
	if len(enc) < 8 {
		return nil, errors.WithStack(ErrBufferUnderflow)
	}

	out := make([]byte, n)
	st0, cursor := DecInit(enc, 0)
	st1, cursor := DecInit(enc, cursor)
	end := n &^ 1

	for i := 0; i < end; i += 2 {
		s0 := cum2sym[DecGet(st0, p)]
		s1 := cum2sym[DecGet(st1, p)]
		out[i+0] = s0
		out[i+1] = s1
		st0 = DecAdvanceSymbolStep(st0, &symbols[s0], p)
		st1 = DecAdvanceSymbolStep(st1, &symbols[s1], p)
		st0, cursor = DecRenorm(st0, enc, cursor)
		st1, cursor = DecRenorm(st1, enc, cursor)

		if cursor < 0 {
			return nil, errors.WithStack(ErrBufferUnderflow)
		}
	}

	if n&1 == 1 {
		s0 := cum2sym[DecGet(st0, p)]
		out[n-1] = s0
		st0, cursor = DecAdvanceSymbol(st0, enc, cursor, &symbols[s0], p)

		if cursor < 0 {
			return nil, errors.WithStack(ErrBufferUnderflow)
		}
	}

	return out, nil
}

// Encode4 entropy encodes block with four independent, interleaved rANS
// states, for the instruction-level parallelism a 4-wide decode loop gets
// from having no data dependency between states. A 0..3 byte tail is folded
// into states 0..tail-1 ahead of the main 4-wide loop, the last input byte
// always landing in the highest-indexed tail state.
func Encode4(block []byte, symbols []EncSymbol) ([]byte, error) {
	n := len(block)
	buf := make([]byte, MaxEncodedLen(n))
	cursor := len(buf)
	st := [4]uint32{EncInit(), EncInit(), EncInit(), EncInit()}
	r := n & 3

	for k := r - 1; k >= 0; k-- {
		cursor = EncPutSymbol(&st[k], buf, cursor, &symbols[block[n-r+k]])

		if cursor < 0 {
			return nil, errors.WithStack(ErrBufferOverflow)
		}
	}

	for i := n &^ 3; i > 0; i -= 4 {
		cursor = EncPutSymbol(&st[3], buf, cursor, &symbols[block[i-1]])
		cursor = EncPutSymbol(&st[2], buf, cursor, &symbols[block[i-2]])
		cursor = EncPutSymbol(&st[1], buf, cursor, &symbols[block[i-3]])
		cursor = EncPutSymbol(&st[0], buf, cursor, &symbols[block[i-4]])

		if cursor < 0 {
			return nil, errors.WithStack(ErrBufferOverflow)
		}
	}

	cursor = EncFlush(st[3], buf, cursor)
	cursor = EncFlush(st[2], buf, cursor)
	cursor = EncFlush(st[1], buf, cursor)
	cursor = EncFlush(st[0], buf, cursor)

	if cursor < 0 {
		return nil, errors.WithStack(ErrBufferOverflow)
	}

	return buf[cursor:], nil
}

// Decode4 is the inverse of Encode4. The tail symbols are written to the
// positions immediately following the last full quad (end+0..end+tail-1),
// mirroring exactly where Encode4 read them from. The tail states are drained
// in index order 0..tail-1: the encoder fed them in the opposite order, so
// their renormalization bytes surface in this order when reading forward.
func Decode4(enc []byte, symbols []DecSymbol, cum2sym []byte, p uint, n int) ([]byte, error) {
	if len(enc) < 16 {
		return nil, errors.WithStack(ErrBufferUnderflow)
	}

	out := make([]byte, n)
	st0, cursor := DecInit(enc, 0)
	st1, cursor := DecInit(enc, cursor)
	st2, cursor := DecInit(enc, cursor)
	st3, cursor := DecInit(enc, cursor)
	end := n &^ 3

	for i := 0; i < end; i += 4 {
		s0 := cum2sym[DecGet(st0, p)]
		s1 := cum2sym[DecGet(st1, p)]
		s2 := cum2sym[DecGet(st2, p)]
		s3 := cum2sym[DecGet(st3, p)]
		out[i+0] = s0
		out[i+1] = s1
		out[i+2] = s2
		out[i+3] = s3
		st0 = DecAdvanceSymbolStep(st0, &symbols[s0], p)
		st1 = DecAdvanceSymbolStep(st1, &symbols[s1], p)
		st2 = DecAdvanceSymbolStep(st2, &symbols[s2], p)
		st3 = DecAdvanceSymbolStep(st3, &symbols[s3], p)
		st0, cursor = DecRenorm(st0, enc, cursor)
		st1, cursor = DecRenorm(st1, enc, cursor)
		st2, cursor = DecRenorm(st2, enc, cursor)
		st3, cursor = DecRenorm(st3, enc, cursor)

		if cursor < 0 {
			return nil, errors.WithStack(ErrBufferUnderflow)
		}
	}

	if r := n & 3; r > 0 {
		s0 := cum2sym[DecGet(st0, p)]
		out[end+0] = s0
		st0 = DecAdvanceSymbolStep(st0, &symbols[s0], p)
		st0, cursor = DecRenorm(st0, enc, cursor)

		if r > 1 {
			s1 := cum2sym[DecGet(st1, p)]
			out[end+1] = s1
			st1 = DecAdvanceSymbolStep(st1, &symbols[s1], p)
			st1, cursor = DecRenorm(st1, enc, cursor)
		}

		if r > 2 {
			s2 := cum2sym[DecGet(st2, p)]
			out[end+2] = s2
			st2 = DecAdvanceSymbolStep(st2, &symbols[s2], p)
			st2, cursor = DecRenorm(st2, enc, cursor)
		}

		if cursor < 0 {
			return nil, errors.WithStack(ErrBufferUnderflow)
		}
	}

	return out, nil
}
