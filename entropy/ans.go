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
	"time"

	"github.com/pkg/errors"

	"github.com/binrange/rans"
	"github.com/binrange/rans/hash"
)

const (
	_logRangeWidth = 4
	_literalCutoff = 32
)

// ANSEncoder entropy encodes data with a static-model, byte-alphabet rANS
// codec. Input is split into independently modeled chunks; each chunk gets
// its own histogram, normalized to the configured log range, and is encoded
// with the configured interleave width.
type ANSEncoder struct {
	bitstream rans.OutputBitStream
	cfg       config
	hasher    *hash.XXHash64
}

// NewANSEncoder creates an ANS entropy encoder writing to bs.
func NewANSEncoder(bs rans.OutputBitStream, opts ...Option) (*ANSEncoder, error) {
	if bs == nil {
		return nil, errors.New("rans/entropy: nil bitstream")
	}

	cfg := defaultConfig()

	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	this := &ANSEncoder{bitstream: bs, cfg: cfg}

	if cfg.checksum {
		h, err := hash.NewXXHash64(0)

		if err != nil {
			return nil, err
		}

		this.hasher = h
	}

	return this, nil
}

// Write entropy encodes block into the bitstream and returns len(block).
func (this *ANSEncoder) Write(block []byte) (int, error) {
	if block == nil {
		return 0, errors.New("rans/entropy: nil block")
	}

	if len(block) <= _literalCutoff {
		this.bitstream.WriteArray(block, uint(8*len(block)))
		return len(block), nil
	}

	end := len(block)
	start := 0
	id := 0

	for start < end {
		chunkEnd := start + this.cfg.chunkSize

		if chunkEnd > end {
			chunkEnd = end
		}

		if err := this.encodeChunk(block[start:chunkEnd], id); err != nil {
			return start, err
		}

		start = chunkEnd
		id++
	}

	return end, nil
}

func (this *ANSEncoder) notify(evtType, id int, size int64) {
	if len(this.cfg.listeners) == 0 {
		return
	}

	evt := rans.NewEvent(evtType, id, size, 0, rans.EVT_HASH_NONE, time.Time{})

	for _, l := range this.cfg.listeners {
		l.ProcessEvent(evt)
	}
}

func (this *ANSEncoder) encodeChunk(chunk []byte, id int) error {
	this.notify(rans.EVT_BEFORE_ENTROPY, id, int64(len(chunk)))

	stats := ComputeHistogram(chunk)
	alphabetSize, err := stats.Normalize(this.cfg.logRange)

	if err != nil {
		return err
	}

	this.bitstream.WriteBits(uint64(this.cfg.logRange-MinLogRange), _logRangeWidth)

	if _, err := EncodeFrequencies(this.bitstream, stats, this.cfg.logRange); err != nil {
		return err
	}

	if alphabetSize > 1 {
		encSymbols := stats.EncSymbols(this.cfg.logRange)
		enc, err := this.encodeInterleaved(chunk, encSymbols)

		if err != nil {
			return err
		}

		WriteVarInt(this.bitstream, uint32(len(enc)))
		this.bitstream.WriteArray(enc, uint(8*len(enc)))
	}

	if this.hasher != nil {
		this.bitstream.WriteBits(this.hasher.Hash(chunk), 64)
	}

	this.notify(rans.EVT_AFTER_ENTROPY, id, int64(len(chunk)))
	return nil
}

func (this *ANSEncoder) encodeInterleaved(chunk []byte, symbols []rans.EncSymbol) ([]byte, error) {
	switch this.cfg.interleave {
	case Interleave2:
		return rans.Encode2(chunk, symbols)
	case Interleave4:
		return rans.Encode4(chunk, symbols)
	default:
		return rans.Encode1(chunk, symbols)
	}
}

// BitStream returns the underlying bitstream.
func (this *ANSEncoder) BitStream() rans.OutputBitStream {
	return this.bitstream
}

// Dispose does nothing: the encoder holds no resources beyond the bitstream.
func (this *ANSEncoder) Dispose() {
}

// ANSDecoder is the inverse of ANSEncoder.
type ANSDecoder struct {
	bitstream rans.InputBitStream
	cfg       config
	hasher    *hash.XXHash64
}

// NewANSDecoder creates an ANS entropy decoder reading from bs. The
// configuration (chunk size, interleave width, checksum) must match the one
// used by the encoder; the log range and symbol table are read back from the
// stream per chunk.
func NewANSDecoder(bs rans.InputBitStream, opts ...Option) (*ANSDecoder, error) {
	if bs == nil {
		return nil, errors.New("rans/entropy: nil bitstream")
	}

	cfg := defaultConfig()

	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	this := &ANSDecoder{bitstream: bs, cfg: cfg}

	if cfg.checksum {
		h, err := hash.NewXXHash64(0)

		if err != nil {
			return nil, err
		}

		this.hasher = h
	}

	return this, nil
}

// Read decodes len(block) bytes from the bitstream into block and returns
// len(block).
func (this *ANSDecoder) Read(block []byte) (int, error) {
	if block == nil {
		return 0, errors.New("rans/entropy: nil block")
	}

	if len(block) <= _literalCutoff {
		this.bitstream.ReadArray(block, uint(8*len(block)))
		return len(block), nil
	}

	end := len(block)
	start := 0
	id := 0

	for start < end {
		chunkEnd := start + this.cfg.chunkSize

		if chunkEnd > end {
			chunkEnd = end
		}

		if err := this.decodeChunk(block[start:chunkEnd], id); err != nil {
			return start, err
		}

		start = chunkEnd
		id++
	}

	return end, nil
}

func (this *ANSDecoder) decodeChunk(chunk []byte, id int) error {
	this.notify(rans.EVT_BEFORE_ENTROPY, id, int64(len(chunk)))

	logRange := MinLogRange + uint(this.bitstream.ReadBits(_logRangeWidth))

	if logRange < MinLogRange || logRange > MaxLogRange {
		return errors.Wrapf(rans.ErrInvalidStats, "log range %d out of [%d..%d]", logRange, MinLogRange, MaxLogRange)
	}

	stats, alphabetSize, err := DecodeFrequencies(this.bitstream, logRange)

	if err != nil {
		return err
	}

	if alphabetSize == 0 {
		return errors.WithStack(rans.ErrInvalidStats)
	}

	if alphabetSize == 1 {
		sym := byte(0)

		for i := 0; i < 256; i++ {
			if stats.Freqs[i] != 0 {
				sym = byte(i)
				break
			}
		}

		for i := range chunk {
			chunk[i] = sym
		}
	} else {
		payloadLen := ReadVarInt(this.bitstream)

		if int(payloadLen) > rans.MaxEncodedLen(len(chunk)) {
			return errors.Wrapf(rans.ErrBufferUnderflow, "chunk %d: payload length %d exceeds bound %d",
				id, payloadLen, rans.MaxEncodedLen(len(chunk)))
		}

		enc := make([]byte, payloadLen)
		this.bitstream.ReadArray(enc, uint(8*payloadLen))

		decSymbols := stats.DecSymbols()
		cum2sym := stats.Cum2Sym(logRange)
		out, err := this.decodeInterleaved(enc, decSymbols, cum2sym, logRange, len(chunk))

		if err != nil {
			return err
		}

		copy(chunk, out)
	}

	if this.hasher != nil {
		expected := this.bitstream.ReadBits(64)

		if got := this.hasher.Hash(chunk); got != expected {
			return errors.Wrapf(rans.ErrDecodeMismatch, "checksum mismatch in chunk %d: got %x, want %x", id, got, expected)
		}
	}

	this.notify(rans.EVT_AFTER_ENTROPY, id, int64(len(chunk)))
	return nil
}

func (this *ANSDecoder) decodeInterleaved(enc []byte, symbols []rans.DecSymbol, cum2sym []byte, logRange uint, n int) ([]byte, error) {
	switch this.cfg.interleave {
	case Interleave2:
		return rans.Decode2(enc, symbols, cum2sym, logRange, n)
	case Interleave4:
		return rans.Decode4(enc, symbols, cum2sym, logRange, n)
	default:
		return rans.Decode1(enc, symbols, cum2sym, logRange, n)
	}
}

func (this *ANSDecoder) notify(evtType, id int, size int64) {
	if len(this.cfg.listeners) == 0 {
		return
	}

	evt := rans.NewEvent(evtType, id, size, 0, rans.EVT_HASH_NONE, time.Time{})

	for _, l := range this.cfg.listeners {
		l.ProcessEvent(evt)
	}
}

// BitStream returns the underlying bitstream.
func (this *ANSDecoder) BitStream() rans.InputBitStream {
	return this.bitstream
}

// Dispose does nothing: the decoder holds no resources beyond the bitstream.
func (this *ANSDecoder) Dispose() {
}

var _ rans.EntropyEncoder = (*ANSEncoder)(nil)
var _ rans.EntropyDecoder = (*ANSDecoder)(nil)
