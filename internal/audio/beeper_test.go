package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

func readSamples(w *squareWave, n int) []float32 {
	buf := make([]byte, n*4)
	if _, err := w.Read(buf); err != nil {
		panic(err)
	}
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return samples
}

func TestSquareWave_InactiveProducesSilence(t *testing.T) {
	w := &squareWave{sampleRate: DefaultSampleRate, frequency: DefaultFrequency}

	for _, sample := range readSamples(w, 256) {
		if sample != 0 {
			t.Fatalf("Expected silence, got %f", sample)
		}
	}
}

func TestSquareWave_ActiveProducesSquareWave(t *testing.T) {
	w := &squareWave{sampleRate: 8, frequency: 2} // 4 samples per period
	w.active.Store(true)

	samples := readSamples(w, 8)

	want := []float32{toneVolume, toneVolume, -toneVolume, -toneVolume}
	for i, sample := range samples {
		if sample != want[i%4] {
			t.Errorf("Sample %d = %f, want %f", i, sample, want[i%4])
		}
	}
}

func TestSquareWave_PhaseContinuesAcrossReads(t *testing.T) {
	w := &squareWave{sampleRate: 8, frequency: 2}
	w.active.Store(true)

	first := readSamples(w, 3)
	second := readSamples(w, 1)

	if first[2] != -toneVolume || second[0] != -toneVolume {
		t.Error("Expected the wave phase to continue across Read calls")
	}
}

func TestNullSpeaker_TracksActivity(t *testing.T) {
	s := NewNullSpeaker()

	if s.IsActive() {
		t.Error("Expected new speaker inactive")
	}

	s.SetActive(true)
	if !s.IsActive() {
		t.Error("Expected speaker active")
	}

	s.SetActive(false)
	if s.IsActive() {
		t.Error("Expected speaker inactive again")
	}

	if err := s.Close(); err != nil {
		t.Errorf("Expected nil close error, got %v", err)
	}
}

func TestNullSpeaker_SetMuted_OverridesActivity(t *testing.T) {
	s := NewNullSpeaker()

	s.SetActive(true)
	s.SetMuted(true)
	if s.IsActive() {
		t.Error("Expected muting to silence a running tone")
	}

	s.SetActive(true)
	if s.IsActive() {
		t.Error("Expected muted speaker to ignore activation")
	}
	if !s.IsMuted() {
		t.Error("Expected speaker to report muted")
	}

	s.SetMuted(false)
	s.SetActive(true)
	if !s.IsActive() {
		t.Error("Expected unmuted speaker to activate again")
	}
}
