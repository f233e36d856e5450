// Package buffer provides the lock-free ring used to hand rendered audio from
// the processing goroutine to the audio device.
package buffer

import (
	"errors"
	"math"
	"sync/atomic"
	"time"
)

// ErrOverrun is returned by Write when the ring has no room for the block.
var ErrOverrun = errors.New("buffer overrun: not enough space available")

// DefaultLatency is the amount of silence the ring is primed with.
const DefaultLatency = 50 * time.Millisecond

// WriteAheadBuffer is a single-producer single-consumer ring of interleaved
// float32 samples. The write position starts ahead of the read position by the
// configured latency so a late producer is absorbed before the reader starves.
type WriteAheadBuffer struct {
	data           []float32
	readPos        atomic.Uint64
	writePos       atomic.Uint64
	size           uint32
	mask           uint32
	latencySamples uint32
	sampleRate     float64
	channels       int

	underruns atomic.Uint64
	overruns  atomic.Uint64
}

// BufferStats provides health monitoring information
type BufferStats struct {
	Underruns      uint64
	Overruns       uint64
	FillPercentage float32
	CurrentLatency time.Duration
}

// NewWriteAheadBuffer creates a ring for interleaved audio. The capacity is
// four times the latency rounded up to a power of two.
func NewWriteAheadBuffer(sampleRate float64, channels int, latency time.Duration) *WriteAheadBuffer {
	if channels < 1 {
		channels = 1
	}
	if latency <= 0 {
		latency = DefaultLatency
	}

	frames := uint32(math.Round(latency.Seconds() * sampleRate))
	latencySamples := frames * uint32(channels)

	size := nextPowerOf2(latencySamples * 4)
	buf := &WriteAheadBuffer{
		data:           make([]float32, size),
		size:           size,
		mask:           size - 1,
		latencySamples: latencySamples,
		sampleRate:     sampleRate,
		channels:       channels,
	}
	buf.writePos.Store(uint64(latencySamples))
	return buf
}

// Channels returns the interleave width.
func (buf *WriteAheadBuffer) Channels() int {
	return buf.channels
}

// Write appends samples. The whole block is written or none of it.
func (buf *WriteAheadBuffer) Write(samples []float32) error {
	if len(samples) == 0 {
		return nil
	}

	writePos := buf.writePos.Load()
	readPos := buf.readPos.Load()

	if buf.availableSpace(readPos, writePos) < uint32(len(samples)) {
		buf.overruns.Add(1)
		return ErrOverrun
	}

	remaining := len(samples)
	srcOffset := 0
	for remaining > 0 {
		dstIdx := uint32(writePos) & buf.mask
		copySize := remaining
		if dstIdx+uint32(copySize) > buf.size {
			copySize = int(buf.size - dstIdx)
		}

		copy(buf.data[dstIdx:dstIdx+uint32(copySize)], samples[srcOffset:srcOffset+copySize])

		srcOffset += copySize
		remaining -= copySize
		writePos += uint64(copySize)
	}

	buf.writePos.Store(writePos)
	return nil
}

// Read fills output with buffered samples and returns how many were real
// data. The rest of output is zeroed.
func (buf *WriteAheadBuffer) Read(output []float32) int {
	if len(output) == 0 {
		return 0
	}

	readPos := buf.readPos.Load()
	writePos := buf.writePos.Load()

	toRead := len(output)
	if available := buf.availableData(readPos, writePos); available < uint32(toRead) {
		toRead = int(available)
		buf.underruns.Add(1)
	}

	remaining := toRead
	dstOffset := 0
	for remaining > 0 {
		srcIdx := uint32(readPos) & buf.mask
		copySize := remaining
		if srcIdx+uint32(copySize) > buf.size {
			copySize = int(buf.size - srcIdx)
		}

		copy(output[dstOffset:dstOffset+copySize], buf.data[srcIdx:srcIdx+uint32(copySize)])

		dstOffset += copySize
		remaining -= copySize
		readPos += uint64(copySize)
	}

	buf.readPos.Store(readPos)

	for i := toRead; i < len(output); i++ {
		output[i] = 0
	}

	return toRead
}

// Free returns how many samples can be written without overrun.
func (buf *WriteAheadBuffer) Free() int {
	return int(buf.availableSpace(buf.readPos.Load(), buf.writePos.Load()))
}

// Buffered returns how many samples are waiting to be read.
func (buf *WriteAheadBuffer) Buffered() int {
	return int(buf.availableData(buf.readPos.Load(), buf.writePos.Load()))
}

// LatencySamples returns the primed distance in interleaved samples.
func (buf *WriteAheadBuffer) LatencySamples() int {
	return int(buf.latencySamples)
}

// GetBufferHealth returns current buffer statistics
func (buf *WriteAheadBuffer) GetBufferHealth() BufferStats {
	available := buf.Buffered()
	return BufferStats{
		Underruns:      buf.underruns.Load(),
		Overruns:       buf.overruns.Load(),
		FillPercentage: float32(available) / float32(buf.size) * 100.0,
		CurrentLatency: buf.samplesToDuration(available),
	}
}

func (buf *WriteAheadBuffer) samplesToDuration(samples int) time.Duration {
	frames := float64(samples) / float64(buf.channels)
	return time.Duration(frames / buf.sampleRate * float64(time.Second))
}

// Reset clears the buffer and re-primes the latency. Neither side may be
// running concurrently.
func (buf *WriteAheadBuffer) Reset() {
	for i := range buf.data {
		buf.data[i] = 0
	}

	buf.readPos.Store(0)
	buf.writePos.Store(uint64(buf.latencySamples))

	buf.underruns.Store(0)
	buf.overruns.Store(0)
}

// availableSpace calculates how many samples can be written
func (buf *WriteAheadBuffer) availableSpace(readPos, writePos uint64) uint32 {
	used := writePos - readPos
	if used >= uint64(buf.size) {
		return 0
	}
	return buf.size - uint32(used)
}

// availableData calculates how many samples can be read
func (buf *WriteAheadBuffer) availableData(readPos, writePos uint64) uint32 {
	if writePos < readPos {
		return 0
	}
	available := writePos - readPos
	if available > uint64(buf.size) {
		return buf.size
	}
	return uint32(available)
}

// nextPowerOf2 rounds up to the next power of 2
func nextPowerOf2(n uint32) uint32 {
	if n == 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}
