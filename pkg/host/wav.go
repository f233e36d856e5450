package host

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const wavFormatFloat = 3

type wavHeader struct {
	ChunkID   [4]byte
	ChunkSize uint32
	Format    [4]byte
}

type wavFmtChunk struct {
	SubchunkID    [4]byte
	SubchunkSize  uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

type wavDataChunk struct {
	SubchunkID   [4]byte
	SubchunkSize uint32
}

// WAVWriter streams 32-bit float WAV audio of a known length.
type WAVWriter struct {
	w        io.Writer
	channels int
	frames   int
	written  int
	buf      []byte
}

// NewWAVWriter writes the header for frames frames of audio.
func NewWAVWriter(w io.Writer, sampleRate, channels, frames int) (*WAVWriter, error) {
	if channels < 1 || sampleRate <= 0 || frames < 0 {
		return nil, fmt.Errorf("wav: invalid format %d Hz, %d channels, %d frames", sampleRate, channels, frames)
	}

	blockAlign := channels * 4
	dataSize := frames * blockAlign

	chunks := []any{
		wavHeader{
			ChunkID:   [4]byte{'R', 'I', 'F', 'F'},
			ChunkSize: uint32(36 + dataSize),
			Format:    [4]byte{'W', 'A', 'V', 'E'},
		},
		wavFmtChunk{
			SubchunkID:    [4]byte{'f', 'm', 't', ' '},
			SubchunkSize:  16,
			AudioFormat:   wavFormatFloat,
			NumChannels:   uint16(channels),
			SampleRate:    uint32(sampleRate),
			ByteRate:      uint32(sampleRate * blockAlign),
			BlockAlign:    uint16(blockAlign),
			BitsPerSample: 32,
		},
		wavDataChunk{
			SubchunkID:   [4]byte{'d', 'a', 't', 'a'},
			SubchunkSize: uint32(dataSize),
		},
	}
	for _, c := range chunks {
		if err := binary.Write(w, binary.LittleEndian, c); err != nil {
			return nil, fmt.Errorf("wav header: %w", err)
		}
	}

	return &WAVWriter{w: w, channels: channels, frames: frames}, nil
}

// WriteBlock appends one block of planar channels.
func (ww *WAVWriter) WriteBlock(block [][]float32) error {
	if len(block) != ww.channels {
		return fmt.Errorf("wav: got %d channels, want %d", len(block), ww.channels)
	}
	n := len(block[0])
	if ww.written+n > ww.frames {
		return fmt.Errorf("wav: %d frames exceed declared length %d", ww.written+n, ww.frames)
	}

	size := n * ww.channels * 4
	if cap(ww.buf) < size {
		ww.buf = make([]byte, size)
	}
	buf := ww.buf[:size]
	for i := 0; i < n; i++ {
		for ch, samples := range block {
			binary.LittleEndian.PutUint32(buf[(i*ww.channels+ch)*4:], math.Float32bits(samples[i]))
		}
	}

	if _, err := ww.w.Write(buf); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	ww.written += n
	return nil
}

// Close checks that the declared length was written.
func (ww *WAVWriter) Close() error {
	if ww.written != ww.frames {
		return fmt.Errorf("wav: wrote %d of %d frames", ww.written, ww.frames)
	}
	return nil
}
