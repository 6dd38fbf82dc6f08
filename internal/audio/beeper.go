// Package audio provides the beeper driven by the sound timer.
package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
)

const (
	// DefaultSampleRate is the beeper output sample rate in Hz
	DefaultSampleRate = 44100

	// DefaultFrequency is the beeper tone frequency in Hz
	DefaultFrequency = 440.0

	// toneVolume keeps the square wave well below clipping
	toneVolume = 0.25
)

// Speaker is the audio surface the machine drives. The tone plays for
// as long as the speaker is active and not muted.
type Speaker interface {
	// SetActive starts or stops the tone
	SetActive(active bool)

	// SetMuted silences the speaker regardless of activity
	SetMuted(muted bool)

	// Close releases audio resources
	Close() error
}

// squareWave generates float32 square wave samples. Read runs on the
// audio goroutine, so the active flag is the only shared state.
type squareWave struct {
	sampleRate int
	frequency  float64
	active     atomic.Bool
	phase      float64
}

// Read implements io.Reader with FormatFloat32LE samples
func (w *squareWave) Read(p []byte) (int, error) {
	const bytesPerSample = 4
	numSamples := len(p) / bytesPerSample

	step := w.frequency / float64(w.sampleRate)
	active := w.active.Load()

	for i := 0; i < numSamples; i++ {
		var sample float32
		if active {
			if w.phase < 0.5 {
				sample = toneVolume
			} else {
				sample = -toneVolume
			}
			w.phase += step
			if w.phase >= 1.0 {
				w.phase -= 1.0
			}
		}
		binary.LittleEndian.PutUint32(p[i*bytesPerSample:], math.Float32bits(sample))
	}

	return numSamples * bytesPerSample, nil
}

// Beeper implements Speaker on an OTO audio context
type Beeper struct {
	ctx    *oto.Context
	player *oto.Player
	wave   *squareWave

	mutex sync.Mutex
	muted bool
}

// NewBeeper creates a beeper and starts the underlying audio player.
// The player keeps running and emits silence while inactive.
func NewBeeper(sampleRate int, frequency float64) (*Beeper, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if frequency <= 0 {
		frequency = DefaultFrequency
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   0, // OTO default
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio context: %v", err)
	}
	<-ready

	wave := &squareWave{
		sampleRate: sampleRate,
		frequency:  frequency,
	}

	beeper := &Beeper{
		ctx:  ctx,
		wave: wave,
	}
	beeper.player = ctx.NewPlayer(wave)
	beeper.player.Play()

	return beeper, nil
}

// SetActive starts or stops the tone. A muted beeper stays silent.
func (b *Beeper) SetActive(active bool) {
	b.mutex.Lock()
	muted := b.muted
	b.mutex.Unlock()

	b.wave.active.Store(active && !muted)
}

// SetMuted silences the beeper regardless of activity
func (b *Beeper) SetMuted(muted bool) {
	b.mutex.Lock()
	b.muted = muted
	b.mutex.Unlock()

	if muted {
		b.wave.active.Store(false)
	}
}

// Close releases audio resources
func (b *Beeper) Close() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.player != nil {
		if err := b.player.Close(); err != nil {
			return err
		}
		b.player = nil
	}
	return nil
}

// NullSpeaker implements Speaker without producing sound, used for
// headless runs and as a fallback when no audio device is available
type NullSpeaker struct {
	active bool
	muted  bool
}

// NewNullSpeaker creates a silent speaker
func NewNullSpeaker() *NullSpeaker {
	return &NullSpeaker{}
}

// SetActive records the activity state
func (s *NullSpeaker) SetActive(active bool) {
	s.active = active && !s.muted
}

// SetMuted records the mute state and silences a running tone
func (s *NullSpeaker) SetMuted(muted bool) {
	s.muted = muted
	if muted {
		s.active = false
	}
}

// IsActive returns the last recorded activity state
func (s *NullSpeaker) IsActive() bool {
	return s.active
}

// IsMuted returns the last recorded mute state
func (s *NullSpeaker) IsMuted() bool {
	return s.muted
}

// Close releases nothing
func (s *NullSpeaker) Close() error {
	return nil
}
