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

package io

import (
	goio "io"
	"math/rand"
	"testing"

	"github.com/binrange/rans"
	"github.com/binrange/rans/entropy"
	"github.com/binrange/rans/internal"
)

func roundTrip(t *testing.T, data []byte, writeChunk, readChunk int, opts ...entropy.Option) {
	bs := internal.NewBufferStream()
	w, err := NewWriter(bs, 4096, opts...)

	if err != nil {
		t.Fatal(err)
	}

	for off := 0; off < len(data); off += writeChunk {
		end := off + writeChunk

		if end > len(data) {
			end = len(data)
		}

		if _, err := w.Write(data[off:end]); err != nil {
			t.Fatal(err)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := NewReader(bs, opts...)

	if err != nil {
		t.Fatal(err)
	}

	got := make([]byte, 0, len(data))
	buf := make([]byte, readChunk)

	for {
		n, err := r.Read(buf)
		got = append(got, buf[:n]...)

		if err == goio.EOF {
			break
		}

		if err != nil {
			t.Fatal(err)
		}
	}

	if err := r.Close(); err != nil {
		t.Fatal(err)
	}

	if len(got) != len(data) {
		t.Fatalf("length mismatch: got %d want %d", len(got), len(data))
	}

	for i := range data {
		if got[i] != data[i] {
			t.Fatalf("mismatch at byte %d: got %d want %d", i, got[i], data[i])
		}
	}
}

func TestStreamRoundTripAligned(t *testing.T) {
	data := make([]byte, 65536)

	for i := range data {
		data[i] = byte(rand.Intn(32))
	}

	roundTrip(t, data, 4096, 8192)
}

func TestStreamRoundTripUnaligned(t *testing.T) {
	data := make([]byte, 70000)

	for i := range data {
		data[i] = byte(rand.Intn(17))
	}

	roundTrip(t, data, 777, 513)
}

func TestStreamRoundTripIncompressible(t *testing.T) {
	data := make([]byte, 20000)

	for i := range data {
		data[i] = byte(rand.Intn(256))
	}

	roundTrip(t, data, 4096, 4096)
}

func TestStreamRoundTripInterleaved4(t *testing.T) {
	data := make([]byte, 50000)

	for i := range data {
		data[i] = byte(rand.Intn(12))
	}

	roundTrip(t, data, 4096, 4096, entropy.WithInterleave(entropy.Interleave4), entropy.WithChecksum(true))
}

func TestStreamRoundTripEmpty(t *testing.T) {
	roundTrip(t, []byte{}, 1, 16)
}

func TestStreamWriteAfterClose(t *testing.T) {
	bs := internal.NewBufferStream()
	w, err := NewWriter(bs, 4096)

	if err != nil {
		t.Fatal(err)
	}

	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("second Close should be a no-op, got %v", err)
	}

	if _, err := w.Write([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected an error writing after Close")
	}
}

type eventRecorder struct {
	counts map[int]int
}

func (this *eventRecorder) ProcessEvent(evt *rans.Event) {
	if this.counts == nil {
		this.counts = make(map[int]int)
	}

	this.counts[evt.Type()]++
}

func TestStreamListenerEvents(t *testing.T) {
	data := make([]byte, 10000)

	for i := range data {
		data[i] = byte(rand.Intn(10))
	}

	bs := internal.NewBufferStream()
	w, err := NewWriter(bs, 4096)

	if err != nil {
		t.Fatal(err)
	}

	wrec := &eventRecorder{}

	if !w.AddListener(wrec) {
		t.Fatal("AddListener refused a valid listener")
	}

	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}

	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	if wrec.counts[rans.EVT_COMPRESSION_START] != 1 || wrec.counts[rans.EVT_COMPRESSION_END] != 1 {
		t.Fatalf("expected one compression start and end event, got %v", wrec.counts)
	}

	if wrec.counts[rans.EVT_BLOCK_INFO] != 3 {
		t.Fatalf("expected 3 block info events for 10000 bytes in 4096 blocks, got %d", wrec.counts[rans.EVT_BLOCK_INFO])
	}

	r, err := NewReader(bs)

	if err != nil {
		t.Fatal(err)
	}

	rrec := &eventRecorder{}
	r.AddListener(rrec)
	got := make([]byte, len(data))

	if _, err := goio.ReadFull(r, got); err != nil {
		t.Fatal(err)
	}

	// Drain up to the end-of-stream sentinel so the end event fires.
	if _, err := r.Read(make([]byte, 1)); err != goio.EOF {
		t.Fatalf("expected EOF after the last block, got %v", err)
	}

	if err := r.Close(); err != nil {
		t.Fatal(err)
	}

	if rrec.counts[rans.EVT_DECOMPRESSION_START] != 1 || rrec.counts[rans.EVT_DECOMPRESSION_END] != 1 {
		t.Fatalf("expected one decompression start and end event, got %v", rrec.counts)
	}

	if rrec.counts[rans.EVT_BLOCK_INFO] != 3 {
		t.Fatalf("expected 3 block info events on decode, got %d", rrec.counts[rans.EVT_BLOCK_INFO])
	}

	if !r.RemoveListener(rrec) || r.RemoveListener(rrec) {
		t.Fatal("RemoveListener bookkeeping is off")
	}
}

func TestStreamBadMagic(t *testing.T) {
	bs := internal.NewBufferStream([]byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0})

	if _, err := NewReader(bs); err == nil {
		t.Fatal("expected an error for a stream with a bad magic number")
	}
}
