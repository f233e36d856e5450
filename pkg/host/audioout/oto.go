// Package audioout plays a host's write-ahead ring on the system audio
// device.
package audioout

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/justyntemme/ladderfilter/pkg/dsp/buffer"
	"github.com/justyntemme/ladderfilter/pkg/framework/debug"
)

// OtoOutput pulls interleaved float32 audio from a ring into oto.
type OtoOutput struct {
	ctx    *oto.Context
	player *oto.Player
	ring   *buffer.WriteAheadBuffer
	log    *debug.Logger

	samples []float32 // only touched by the oto reader goroutine
	started bool
	mutex   sync.Mutex
}

// NewOtoOutput opens the audio device. oto allows one context per process.
func NewOtoOutput(sampleRate float64, ring *buffer.WriteAheadBuffer, bufferSize time.Duration) (*OtoOutput, error) {
	op := &oto.NewContextOptions{
		SampleRate:   int(sampleRate),
		ChannelCount: ring.Channels(),
		Format:       oto.FormatFloat32LE,
		BufferSize:   bufferSize,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	o := &OtoOutput{
		ctx:     ctx,
		ring:    ring,
		log:     debug.Default().Named("audio"),
		samples: make([]float32, 4096),
	}
	o.player = ctx.NewPlayer(o)
	return o, nil
}

// Read implements io.Reader for the oto player. An empty ring plays
// silence.
func (o *OtoOutput) Read(p []byte) (int, error) {
	n := len(p) / 4
	if len(o.samples) < n {
		o.samples = make([]float32, n)
	}
	samples := o.samples[:n]
	o.ring.Read(samples)

	for i, v := range samples {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
	}
	return n * 4, nil
}

// Start begins playback.
func (o *OtoOutput) Start() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if !o.started {
		o.player.Play()
		o.started = true
		o.log.Info("playback started")
	}
}

// Close stops playback.
func (o *OtoOutput) Close() error {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if o.player == nil {
		return nil
	}
	err := o.player.Close()
	o.player = nil
	o.started = false
	if health := o.ring.GetBufferHealth(); health.Underruns > 0 {
		o.log.Warn("%d underruns during playback", health.Underruns)
	}
	return err
}
