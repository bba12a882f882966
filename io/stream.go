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

// Package io provides a streaming Writer and Reader that compress and
// decompress a byte stream with the rans entropy codec. Input is split into
// fixed-size blocks; each block is buffered, then handed to the entropy
// encoder as a single self-contained chunk delimited by a length prefix, so
// a Reader never needs to know the total decompressed size up front.
package io

import (
	"io"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/binrange/rans"
	"github.com/binrange/rans/bitstream"
	"github.com/binrange/rans/entropy"
)

const (
	_bitstreamType    = 0x52414E53 // "RANS"
	_formatVersion    = 1
	_defaultBlockSize = entropy.DefaultChunkSize
	_minBlockSize     = entropy.MinChunkSize
	_maxBlockSize     = entropy.MaxChunkSize
	_streamBufferSize = 256 * 1024
)

func headerChecksum(version uint64, blockSize uint32) uint32 {
	hash := uint32(0x1E35A7BD)
	cksum := hash * uint32(version)
	cksum ^= hash * blockSize
	return (cksum >> 23) ^ (cksum >> 3)
}

func notifyListeners(listeners []rans.Listener, evt *rans.Event) {
	defer func() {
		// Ignore panics in listeners
		_ = recover()
	}()

	for _, l := range listeners {
		l.ProcessEvent(evt)
	}
}

// Writer compresses data written to it and forwards the encoded bitstream to
// an underlying io.WriteCloser.
type Writer struct {
	obs       rans.OutputBitStream
	enc       *entropy.ANSEncoder
	buf       []byte
	avail     int
	blockSize int
	blockID   int
	started   bool
	closed    int32
	listeners []rans.Listener
}

// NewWriter creates a Writer over os. blockSize is the size of the
// independently modeled chunks; it also bounds the memory buffered between
// flushes. opts configure the underlying entropy encoder (log range,
// interleave width, checksum, listeners).
func NewWriter(os io.WriteCloser, blockSize int, opts ...entropy.Option) (*Writer, error) {
	if os == nil {
		return nil, errors.New("rans/io: nil writer")
	}

	if blockSize < _minBlockSize || blockSize > _maxBlockSize {
		return nil, errors.Wrapf(rans.ErrInvalidStats, "block size %d out of [%d..%d]", blockSize, _minBlockSize, _maxBlockSize)
	}

	obs, err := bitstream.NewDefaultOutputBitStream(os, _streamBufferSize)

	if err != nil {
		return nil, err
	}

	allOpts := append([]entropy.Option{entropy.WithChunkSize(blockSize)}, opts...)
	enc, err := entropy.NewANSEncoder(obs, allOpts...)

	if err != nil {
		return nil, err
	}

	this := &Writer{obs: obs, enc: enc, buf: make([]byte, blockSize), blockSize: blockSize}
	this.writeHeader()
	return this, nil
}

func (this *Writer) writeHeader() {
	this.obs.WriteBits(_bitstreamType, 32)
	this.obs.WriteBits(_formatVersion, 8)
	this.obs.WriteBits(uint64(this.blockSize), 32)
	cksum := headerChecksum(_formatVersion, uint32(this.blockSize))
	this.obs.WriteBits(uint64(cksum), 16)
}

// AddListener registers a listener notified of stream level events.
func (this *Writer) AddListener(l rans.Listener) bool {
	if l == nil {
		return false
	}

	this.listeners = append(this.listeners, l)
	return true
}

// RemoveListener removes a listener previously registered with AddListener.
func (this *Writer) RemoveListener(l rans.Listener) bool {
	for i, e := range this.listeners {
		if e == l {
			this.listeners = append(this.listeners[:i], this.listeners[i+1:]...)
			return true
		}
	}

	return false
}

func (this *Writer) notify(evtType, id int, size int64) {
	if len(this.listeners) == 0 {
		return
	}

	notifyListeners(this.listeners, rans.NewEvent(evtType, id, size, 0, rans.EVT_HASH_NONE, time.Now()))
}

// Write buffers p, flushing full blocks to the entropy encoder as they fill.
// It satisfies io.Writer.
func (this *Writer) Write(p []byte) (int, error) {
	if atomic.LoadInt32(&this.closed) == 1 {
		return 0, errors.New("rans/io: stream closed")
	}

	if !this.started {
		this.started = true
		this.notify(rans.EVT_COMPRESSION_START, -1, 0)
	}

	written := 0

	for len(p) > 0 {
		n := copy(this.buf[this.avail:], p)
		this.avail += n
		p = p[n:]
		written += n

		if this.avail == this.blockSize {
			if err := this.flush(); err != nil {
				return written, err
			}
		}
	}

	return written, nil
}

func (this *Writer) flush() error {
	if this.avail == 0 {
		return nil
	}

	entropy.WriteVarInt(this.obs, uint32(this.avail))

	if _, err := this.enc.Write(this.buf[:this.avail]); err != nil {
		return err
	}

	this.notify(rans.EVT_BLOCK_INFO, this.blockID, int64(this.avail))
	this.blockID++
	this.avail = 0
	return nil
}

// Close flushes any buffered data, writes the end-of-stream sentinel and
// closes the underlying bitstream. Idempotent.
func (this *Writer) Close() error {
	if atomic.SwapInt32(&this.closed, 1) == 1 {
		return nil
	}

	if err := this.flush(); err != nil {
		return err
	}

	entropy.WriteVarInt(this.obs, 0)
	this.enc.Dispose()

	if _, err := this.obs.Close(); err != nil {
		return err
	}

	this.notify(rans.EVT_COMPRESSION_END, -1, int64(this.obs.Written()>>3))
	return nil
}

// Written returns the number of bits written to the underlying bitstream.
func (this *Writer) Written() uint64 {
	return this.obs.Written()
}

// Reader decompresses data produced by a Writer.
type Reader struct {
	ibs       rans.InputBitStream
	dec       *entropy.ANSDecoder
	blockSize int
	buf       []byte
	pos       int
	size      int
	blockID   int
	started   bool
	eof       bool
	closed    int32
	listeners []rans.Listener
}

// NewReader creates a Reader over is. opts must configure the same log
// range, interleave width and checksum setting the stream was written with;
// the block size is read back from the stream header.
func NewReader(is io.ReadCloser, opts ...entropy.Option) (*Reader, error) {
	if is == nil {
		return nil, errors.New("rans/io: nil reader")
	}

	ibs, err := bitstream.NewDefaultInputBitStream(is, _streamBufferSize)

	if err != nil {
		return nil, err
	}

	this := &Reader{ibs: ibs}

	if err := this.readHeader(); err != nil {
		return nil, err
	}

	allOpts := append([]entropy.Option{entropy.WithChunkSize(this.blockSize)}, opts...)
	dec, err := entropy.NewANSDecoder(ibs, allOpts...)

	if err != nil {
		return nil, err
	}

	this.dec = dec
	this.buf = make([]byte, this.blockSize)
	return this, nil
}

func (this *Reader) readHeader() error {
	magic := this.ibs.ReadBits(32)

	if magic != _bitstreamType {
		return errors.Wrap(rans.ErrDecodeMismatch, "not a rans stream: bad magic")
	}

	version := this.ibs.ReadBits(8)

	if version != _formatVersion {
		return errors.Wrapf(rans.ErrDecodeMismatch, "unsupported stream format version %d", version)
	}

	blockSize := uint32(this.ibs.ReadBits(32))
	cksum := uint32(this.ibs.ReadBits(16))

	if cksum != headerChecksum(version, blockSize)&0xFFFF {
		return errors.Wrap(rans.ErrDecodeMismatch, "corrupted stream header")
	}

	if blockSize < _minBlockSize || blockSize > _maxBlockSize {
		return errors.Wrapf(rans.ErrInvalidStats, "block size %d out of [%d..%d]", blockSize, _minBlockSize, _maxBlockSize)
	}

	this.blockSize = int(blockSize)
	return nil
}

// AddListener registers a listener notified of stream level events.
func (this *Reader) AddListener(l rans.Listener) bool {
	if l == nil {
		return false
	}

	this.listeners = append(this.listeners, l)
	return true
}

// RemoveListener removes a listener previously registered with AddListener.
func (this *Reader) RemoveListener(l rans.Listener) bool {
	for i, e := range this.listeners {
		if e == l {
			this.listeners = append(this.listeners[:i], this.listeners[i+1:]...)
			return true
		}
	}

	return false
}

func (this *Reader) notify(evtType, id int, size int64) {
	if len(this.listeners) == 0 {
		return
	}

	notifyListeners(this.listeners, rans.NewEvent(evtType, id, size, 0, rans.EVT_HASH_NONE, time.Now()))
}

// Read decompresses into p, pulling and decoding further blocks from the
// bitstream as needed. It satisfies io.Reader.
func (this *Reader) Read(p []byte) (int, error) {
	if atomic.LoadInt32(&this.closed) == 1 {
		return 0, errors.New("rans/io: stream closed")
	}

	if !this.started {
		this.started = true
		this.notify(rans.EVT_DECOMPRESSION_START, -1, 0)
	}

	read := 0

	for len(p) > 0 {
		if this.pos == this.size {
			if this.eof {
				if read == 0 {
					return 0, io.EOF
				}

				return read, nil
			}

			if err := this.fill(); err != nil {
				return read, err
			}

			if this.eof {
				continue
			}
		}

		n := copy(p, this.buf[this.pos:this.size])
		this.pos += n
		p = p[n:]
		read += n
	}

	return read, nil
}

func (this *Reader) fill() error {
	n := entropy.ReadVarInt(this.ibs)

	if n == 0 {
		this.eof = true
		this.pos = 0
		this.size = 0
		this.notify(rans.EVT_DECOMPRESSION_END, -1, int64(this.ibs.Read()>>3))
		return nil
	}

	if int(n) > this.blockSize {
		return errors.Wrapf(rans.ErrDecodeMismatch, "block length %d exceeds configured block size %d", n, this.blockSize)
	}

	if _, err := this.dec.Read(this.buf[:n]); err != nil {
		return err
	}

	this.notify(rans.EVT_BLOCK_INFO, this.blockID, int64(n))
	this.blockID++
	this.pos = 0
	this.size = int(n)
	return nil
}

// Close releases the underlying bitstream. Idempotent.
func (this *Reader) Close() error {
	if atomic.SwapInt32(&this.closed, 1) == 1 {
		return nil
	}

	this.dec.Dispose()
	_, err := this.ibs.Close()
	return err
}

// BitsRead returns the number of bits read from the underlying bitstream.
func (this *Reader) BitsRead() uint64 {
	return this.ibs.Read()
}
