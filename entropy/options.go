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
	// DefaultChunkSize is used when WithChunkSize is not given.
	DefaultChunkSize = 1 << 16

	// DefaultLogRange is used when WithLogRange is not given.
	DefaultLogRange = uint(12)

	// MinChunkSize and MaxChunkSize bound the accepted chunk size.
	MinChunkSize = 1024
	MaxChunkSize = 1 << 30

	// Interleave widths supported by the rans core.
	Interleave1 = 1
	Interleave2 = 2
	Interleave4 = 4
)

type config struct {
	chunkSize  int
	logRange   uint
	interleave int
	checksum   bool
	listeners  []rans.Listener
}

// Option configures an ANSEncoder or ANSDecoder.
type Option func(*config) error

func defaultConfig() config {
	return config{
		chunkSize:  DefaultChunkSize,
		logRange:   DefaultLogRange,
		interleave: Interleave1,
		checksum:   false,
	}
}

// WithChunkSize sets the size, in bytes, of the blocks that are independently
// histogrammed, normalized and encoded.
func WithChunkSize(size int) Option {
	return func(c *config) error {
		if size < MinChunkSize || size > MaxChunkSize {
			return errors.Wrapf(rans.ErrInvalidStats, "chunk size %d out of [%d..%d]", size, MinChunkSize, MaxChunkSize)
		}

		c.chunkSize = size
		return nil
	}
}

// WithLogRange sets the probability scale (1<<logRange) used to normalize
// each chunk's frequency table.
func WithLogRange(logRange uint) Option {
	return func(c *config) error {
		if logRange < MinLogRange || logRange > MaxLogRange {
			return errors.Wrapf(rans.ErrInvalidStats, "log range %d out of [%d..%d]", logRange, MinLogRange, MaxLogRange)
		}

		c.logRange = logRange
		return nil
	}
}

// WithInterleave sets the number of rANS states multiplexed over the
// payload. Must be 1, 2 or 4.
func WithInterleave(width int) Option {
	return func(c *config) error {
		if width != Interleave1 && width != Interleave2 && width != Interleave4 {
			return errors.Wrapf(rans.ErrInvalidStats, "interleave width %d not in {1,2,4}", width)
		}

		c.interleave = width
		return nil
	}
}

// WithChecksum enables an XXHash64 checksum of each chunk's raw bytes,
// written to the stream right after the chunk payload.
func WithChecksum(enabled bool) Option {
	return func(c *config) error {
		c.checksum = enabled
		return nil
	}
}

// WithListener registers a listener notified of per-chunk encode/decode
// events.
func WithListener(l rans.Listener) Option {
	return func(c *config) error {
		if l != nil {
			c.listeners = append(c.listeners, l)
		}

		return nil
	}
}
